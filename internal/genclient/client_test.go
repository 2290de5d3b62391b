package genclient

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilevision/tilevision/internal/photo"
)

func testPhoto(t *testing.T, w, h int) *photo.Encoded {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 100, B: 80, A: 255})
		}
	}
	enc, err := photo.FromFrame(img, 1920, 92)
	require.NoError(t, err)
	return enc
}

func pngBody(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestGenerate_RandomEndpointWithoutTile(t *testing.T) {
	var gotPath string
	var gotFiles int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotFiles = len(r.MultipartForm.File["files"])
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBody(t, 64, 48))
	}))
	defer srv.Close()

	client := New(srv.URL)
	result, err := client.Generate(context.Background(), testPhoto(t, 100, 80), nil)
	require.NoError(t, err)

	assert.Equal(t, "/tiles/generate-random/", gotPath)
	assert.Equal(t, 1, gotFiles, "random generation sends only the room photo")
	assert.Equal(t, "image/png", result.MIME)
	assert.Equal(t, 64, result.Width)
}

func TestGenerate_TileEndpointWithTile(t *testing.T) {
	var gotPath string
	var gotFiles int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotFiles = len(r.MultipartForm.File["files"])
		w.Write(pngBody(t, 32, 32))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Generate(context.Background(), testPhoto(t, 100, 80), testPhoto(t, 50, 50))
	require.NoError(t, err)

	assert.Equal(t, "/tiles/generate/", gotPath)
	assert.Equal(t, 2, gotFiles, "styled generation sends room and tile")
}

func TestGenerate_NonSuccessPropagatesBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model unavailable"))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Generate(context.Background(), testPhoto(t, 10, 10), nil)
	require.Error(t, err)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.Equal(t, "model unavailable", svcErr.Message)
}

func TestGenerate_UnreadableImageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not an image"))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Generate(context.Background(), testPhoto(t, 10, 10), nil)
	assert.Error(t, err)
}

func TestFetchRandomTile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 200, 200)), nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tiles", r.URL.Path)
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client := New(srv.URL)
	tile, err := client.FetchRandomTile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", tile.MIME)
	assert.Equal(t, 200, tile.Width)
}

func TestFetchRandomTile_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no tiles data available", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.FetchRandomTile(context.Background())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "no tiles data available", svcErr.Message)
}

func TestUserAgentHeader(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write(pngBody(t, 8, 8))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.FetchRandomTile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tilevision/1.0", gotUA)
}
