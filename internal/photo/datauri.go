package photo

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ToDataURI renders the photo as a base64 data URI. Well-formed input never
// fails; a decode error upstream is a defect, not a runtime condition.
func (e *Encoded) ToDataURI() string {
	return "data:" + e.MIME + ";base64," + base64.StdEncoding.EncodeToString(e.Bytes)
}

// ParseDataURI validates and decodes an image data URI back into an Encoded
// photo. The payload must carry an image MIME type and decode as base64.
func ParseDataURI(uri string) (*Encoded, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, fmt.Errorf("not an image data URI")
	}

	rest := strings.TrimPrefix(uri, "data:")
	_, payload, found := strings.Cut(rest, ";base64,")
	if !found {
		return nil, fmt.Errorf("missing base64 marker")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	// MIME type and dimensions are re-sniffed from the bytes; the URI label
	// is not trusted.
	return FromBytes(data)
}
