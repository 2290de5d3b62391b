package gallery

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilevision/tilevision/internal/photo"
)

func testDesign(t *testing.T) *photo.Encoded {
	t.Helper()
	enc, err := photo.FromFrame(image.NewRGBA(image.Rect(0, 0, 20, 20)), 1920, 92)
	require.NoError(t, err)
	return enc
}

func TestOpen_InitializesRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gallery")

	g, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, g.Dir())

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.NoError(t, err)

	// Reopening an existing gallery works too.
	_, err = Open(dir)
	assert.NoError(t, err)
}

func TestSave_WritesAndCommits(t *testing.T) {
	g, err := Open(filepath.Join(t.TempDir(), "gallery"))
	require.NoError(t, err)

	path, err := g.Save(testDesign(t), "abc123")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	history, err := g.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "abc123")
}

func TestHistory_EmptyGallery(t *testing.T) {
	g, err := Open(filepath.Join(t.TempDir(), "gallery"))
	require.NoError(t, err)

	history, err := g.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}
