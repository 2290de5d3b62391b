package photo

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // webp decode support for picked files
)

// Encoded is a self-describing still image: the encoded bytes plus their
// MIME type and pixel dimensions. It is the one representation that crosses
// module boundaries; base64/data-URI conversion lives in datauri.go.
type Encoded struct {
	Bytes  []byte
	MIME   string
	Width  int
	Height int
}

const (
	// DefaultMaxDimension bounds the longer side of a normalized photo.
	DefaultMaxDimension = 1920
	// DefaultJPEGQuality matches the capture encoder setting.
	DefaultJPEGQuality = 92
)

// FromFrame normalizes a raw frame: downscales so neither dimension exceeds
// maxDim (preserving aspect ratio) and encodes as JPEG at the given quality.
func FromFrame(frame image.Image, maxDim, quality int) (*Encoded, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	scaled := Downscale(frame, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}

	bounds := scaled.Bounds()
	return &Encoded{
		Bytes:  buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Normalize decodes a picked file (JPEG, PNG or WebP) and runs it through
// the same downscale-and-encode path as a live frame, so downstream
// consumers never see the original format.
func Normalize(data []byte, maxDim, quality int) (*Encoded, error) {
	frame, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromFrame(frame, maxDim, quality)
}

// Decode returns the decoded pixels of an encoded photo.
func (e *Encoded) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(e.Bytes))
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", e.MIME, err)
	}
	return img, nil
}

// Downscale shrinks img so that its longer dimension does not exceed maxDim,
// preserving aspect ratio. Images already within bounds pass through.
func Downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// FromBytes wraps already-encoded image bytes, sniffing MIME type and
// dimensions. Used for service responses, which arrive as raw PNG or JPEG.
func FromBytes(data []byte) (*Encoded, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("sniffing image: %w", err)
	}
	return &Encoded{
		Bytes:  data,
		MIME:   "image/" + format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// EncodePNG re-encodes decoded pixels as PNG. The generation service
// responds with PNG bodies, matching the original backend.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
