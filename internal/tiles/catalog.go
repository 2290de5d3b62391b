// Package tiles manages the scraped tile catalog: an index file
// (tiles_data.json) plus the downloaded product images it refers to.
package tiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	IndexFileName = "tiles_data.json"
	ImagesDirName = "downloaded_images"
)

var (
	ErrEmptyCatalog = errors.New("no tiles data available")
	ErrImageMissing = errors.New("tile image not found")
)

// Tile is one scraped catalog entry. Field names match the index file
// produced by the scraper.
type Tile struct {
	Title        string   `json:"title"`
	RegularPrice string   `json:"regular_price,omitempty"`
	SalePrice    string   `json:"sale_price,omitempty"`
	ImageURLs    []string `json:"image_urls"`
	ImagePaths   []string `json:"image_paths"`
	ProductURL   string   `json:"product_url,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	InStock      bool     `json:"is_in_stock"`
	ScrapedAt    string   `json:"scraped_at,omitempty"`
}

// Catalog is a loaded tile index rooted at a data directory.
type Catalog struct {
	fs    afero.Fs
	dir   string
	tiles []Tile
}

// Load reads the index from dir. Entries without a downloaded image are
// skipped; they can never be served.
func Load(fs afero.Fs, dir string) (*Catalog, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("reading tile index: %w", err)
	}

	var all []Tile
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing tile index: %w", err)
	}

	usable := make([]Tile, 0, len(all))
	for _, t := range all {
		if len(t.ImagePaths) > 0 {
			usable = append(usable, t)
		}
	}

	return &Catalog{fs: fs, dir: dir, tiles: usable}, nil
}

// Save writes the index to dir, creating it as needed.
func Save(fs afero.Fs, dir string, entries []Tile) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating tile dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tile index: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, IndexFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing tile index: %w", err)
	}
	return nil
}

func (c *Catalog) Len() int { return len(c.tiles) }

// Random returns a uniformly chosen tile.
func (c *Catalog) Random() (Tile, error) {
	if len(c.tiles) == 0 {
		return Tile{}, ErrEmptyCatalog
	}
	return c.tiles[rand.Intn(len(c.tiles))], nil
}

// ImagePath returns the on-disk path of a tile's primary image.
func (c *Catalog) ImagePath(t Tile) string {
	return filepath.Join(c.dir, ImagesDirName, filepath.FromSlash(t.ImagePaths[0]))
}

// OpenImage reads a tile's primary image bytes.
func (c *Catalog) OpenImage(t Tile) ([]byte, error) {
	if len(t.ImagePaths) == 0 {
		return nil, ErrImageMissing
	}
	path := c.ImagePath(t)
	exists, err := afero.Exists(c.fs, path)
	if err != nil || !exists {
		return nil, ErrImageMissing
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading tile image: %w", err)
	}
	return data, nil
}
