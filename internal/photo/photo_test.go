package photo

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func TestFromFrame_DownscalesLargeFrames(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{"landscape 3000x2000", 3000, 2000, 1920, 1280},
		{"portrait 2000x3000", 2000, 3000, 1280, 1920},
		{"exact bound", 1920, 1080, 1920, 1080},
		{"small stays small", 640, 480, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := FromFrame(testFrame(tt.width, tt.height), 1920, 92)
			require.NoError(t, err)

			assert.Equal(t, "image/jpeg", enc.MIME)
			assert.Equal(t, tt.wantWidth, enc.Width)
			assert.Equal(t, tt.wantHeight, enc.Height)
			assert.LessOrEqual(t, enc.Width, 1920)
			assert.LessOrEqual(t, enc.Height, 1920)

			// Encoded bytes must agree with the reported dimensions.
			cfg, _, err := image.DecodeConfig(bytes.NewReader(enc.Bytes))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, cfg.Width)
			assert.Equal(t, tt.wantHeight, cfg.Height)
		})
	}
}

func TestFromFrame_PreservesAspectRatio(t *testing.T) {
	enc, err := FromFrame(testFrame(3000, 2000), 1920, 92)
	require.NoError(t, err)

	original := float64(3000) / float64(2000)
	scaled := float64(enc.Width) / float64(enc.Height)
	assert.InDelta(t, original, scaled, 0.01)
}

func TestNormalize_AcceptsPNGUploads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testFrame(2400, 1600)))

	enc, err := Normalize(buf.Bytes(), 1920, 92)
	require.NoError(t, err)

	// Uploads are re-encoded to the same representation as live capture.
	assert.Equal(t, "image/jpeg", enc.MIME)
	assert.Equal(t, 1920, enc.Width)
	assert.Equal(t, 1280, enc.Height)
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"), 1920, 92)
	assert.Error(t, err)
}

func TestFromBytes_SniffsFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testFrame(100, 50), nil))

	enc, err := FromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", enc.MIME)
	assert.Equal(t, 100, enc.Width)
	assert.Equal(t, 50, enc.Height)
}

func TestDataURI_RoundTrip(t *testing.T) {
	enc, err := FromFrame(testFrame(320, 240), 1920, 92)
	require.NoError(t, err)

	uri := enc.ToDataURI()
	assert.Contains(t, uri, "data:image/jpeg;base64,")

	back, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, enc.Bytes, back.Bytes)
	assert.Equal(t, enc.Width, back.Width)
	assert.Equal(t, enc.Height, back.Height)
}

func TestParseDataURI_Validation(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"wrong scheme", "https://example.com/photo.jpg"},
		{"non-image payload", "data:text/plain;base64,aGVsbG8="},
		{"missing base64 marker", "data:image/jpeg,rawbytes"},
		{"invalid base64", "data:image/jpeg;base64,@@@not-base64@@@"},
		{"valid base64, not an image", "data:image/jpeg;base64,aGVsbG8gd29ybGQ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataURI(tt.uri)
			assert.Error(t, err)
		})
	}
}
