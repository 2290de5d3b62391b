// Package scraper crawls a tile catalog site, downloads product images and
// writes the tiles_data.json index consumed by the generation service.
package scraper

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/tilevision/tilevision/internal/log"
	"github.com/tilevision/tilevision/internal/tiles"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"

// Scraper crawls catalog listing pages. Requests are rate limited; catalog
// sites throttle aggressive crawlers.
type Scraper struct {
	fs         afero.Fs
	httpClient *http.Client
	limiter    *rate.Limiter
	outputDir  string
	maxPages   int
}

func New(fs afero.Fs, outputDir string, requestDelay time.Duration, maxPages int) *Scraper {
	if requestDelay <= 0 {
		requestDelay = time.Second
	}
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Scraper{
		fs:         fs,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(requestDelay), 1),
		outputDir:  outputDir,
		maxPages:   maxPages,
	}
}

// Run crawls from startURL, following pagination, then downloads each
// product's primary image and saves the index.
func (s *Scraper) Run(ctx context.Context, startURL string) error {
	if startURL == "" {
		return fmt.Errorf("no start URL configured")
	}

	var entries []tiles.Tile
	pageURL := startURL
	for page := 0; page < s.maxPages && pageURL != ""; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		doc, base, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			return fmt.Errorf("fetching page %s: %w", pageURL, err)
		}

		pageEntries := parseProducts(doc, base)
		log.Infof("page %d: %d products", page+1, len(pageEntries))
		entries = append(entries, pageEntries...)

		pageURL = nextPageURL(doc, base)
	}

	kept := entries[:0]
	for _, entry := range entries {
		if len(entry.ImageURLs) == 0 {
			continue
		}
		relPath, err := s.downloadImage(ctx, entry)
		if err != nil {
			log.Warnf("skipping %q: %v", entry.Title, err)
			continue
		}
		entry.ImagePaths = []string{relPath}
		kept = append(kept, entry)
	}

	if err := tiles.Save(s.fs, s.outputDir, kept); err != nil {
		return err
	}
	log.Infof("saved %d tiles to %s", len(kept), s.outputDir)
	return nil
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (*html.Node, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing html: %w", err)
	}
	return doc, resp.Request.URL, nil
}

func (s *Scraper) downloadImage(ctx context.Context, entry tiles.Tile) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	imageURL := entry.ImageURLs[0]
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	relPath := path.Join(cleanTitle(entry.Title), imageBasename(imageURL))
	fullPath := filepath.Join(s.outputDir, tiles.ImagesDirName, filepath.FromSlash(relPath))
	if err := s.fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, fullPath, data, 0o644); err != nil {
		return "", err
	}
	return relPath, nil
}

// cleanTitle makes a product title filesystem-friendly, keeping only
// alphanumerics, spaces, dashes and underscores.
func cleanTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// imageBasename derives a stable filename from an image URL.
func imageBasename(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return fmt.Sprintf("%x.jpg", sha1.Sum([]byte(imageURL)))
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "." || base == "/" {
		return fmt.Sprintf("%x.jpg", sha1.Sum([]byte(imageURL)))
	}
	if !strings.Contains(base, ".") {
		base += ".jpg"
	}
	return base
}
