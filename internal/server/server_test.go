package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilevision/tilevision/internal/photo"
	"github.com/tilevision/tilevision/internal/tiles"
)

type fakeGenerator struct {
	calls  int
	result *photo.Encoded
	err    error
	prompt string
	images int
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, prompt string, images ...*photo.Encoded) (*photo.Encoded, error) {
	g.calls++
	g.prompt = prompt
	g.images = len(images)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func pngPhoto(t *testing.T, w, h int) *photo.Encoded {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	enc, err := photo.FromBytes(buf.Bytes())
	require.NoError(t, err)
	return enc
}

func testCatalog(t *testing.T, withImages bool) *tiles.Catalog {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := "tile_data"

	var entries []tiles.Tile
	if withImages {
		entries = []tiles.Tile{{Title: "Gresie", ImagePaths: []string{"Gresie/g.jpg"}}}
	}
	require.NoError(t, tiles.Save(fs, dir, entries))

	if withImages {
		path := filepath.Join(dir, tiles.ImagesDirName, "Gresie/g.jpg")
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, jpegBytes(t, 40, 40), 0o644))
	}

	cat, err := tiles.Load(fs, dir)
	require.NoError(t, err)
	return cat
}

func multipartBody(t *testing.T, field string, files ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, data := range files {
		part, err := writer.CreateFormFile(field, "file"+string(rune('0'+i))+".jpg")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleRandomTile(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	req := httptest.NewRequest(http.MethodGet, "/tiles", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHandleRandomTile_EmptyCatalog(t *testing.T) {
	srv := New(testCatalog(t, false), &fakeGenerator{}, "")

	req := httptest.NewRequest(http.MethodGet, "/tiles", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No tiles data available")
}

func TestHandleGenerateRandom(t *testing.T) {
	gen := &fakeGenerator{result: pngPhoto(t, 64, 64)}
	srv := New(testCatalog(t, true), gen, "")

	body, contentType := multipartBody(t, "files", jpegBytes(t, 100, 80))
	req := httptest.NewRequest(http.MethodPost, "/tiles/generate-random/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 2, gen.images, "room plus the randomly chosen tile")
	assert.Contains(t, gen.prompt, "flooring")

	cfg, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
}

func TestHandleGenerateRandom_WrongFileCount(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	body, contentType := multipartBody(t, "files", jpegBytes(t, 10, 10), jpegBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPost, "/tiles/generate-random/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Exactly one room image is required")
}

func TestHandleGenerate_RequiresTwoFiles(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	body, contentType := multipartBody(t, "files", jpegBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPost, "/tiles/generate/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Exactly two images are required")
}

func TestHandleGenerate_ConvertsResultToPNG(t *testing.T) {
	jpegResult, err := photo.FromBytes(jpegBytes(t, 32, 24))
	require.NoError(t, err)
	gen := &fakeGenerator{result: jpegResult}
	srv := New(testCatalog(t, true), gen, "")

	body, contentType := multipartBody(t, "files", jpegBytes(t, 10, 10), jpegBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPost, "/tiles/generate/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, format, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestHandleGenerate_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	srv := New(testCatalog(t, true), gen, "")

	body, contentType := multipartBody(t, "files", jpegBytes(t, 10, 10), jpegBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPost, "/tiles/generate/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model unavailable")
}

func TestHandleGenerate_RejectsNonImageUpload(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	body, contentType := multipartBody(t, "files", []byte("not an image"), jpegBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPost, "/tiles/generate/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a readable image")
}

func TestHandleUpload(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	photoBytes := jpegBytes(t, 50, 50)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "room.jpg")
	require.NoError(t, err)
	_, err = part.Write(photoBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "room.jpg", resp.Filename)
	assert.Equal(t, int64(len(photoBytes)), resp.Size)
}

func TestHandleUpload_NoFile(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	body, contentType := multipartBody(t, "unrelated", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "no file uploaded", resp.Error)
}

func TestCORSHeaders(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "http://localhost:3000")

	req := httptest.NewRequest(http.MethodOptions, "/tiles", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	srv := New(testCatalog(t, true), &fakeGenerator{}, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
}
