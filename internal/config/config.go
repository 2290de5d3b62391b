package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Studio configures the interactive capture/compare application.
type Studio struct {
	ServiceURL     string        `env:"TILEVISION_SERVICE_URL"     envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"TILEVISION_REQUEST_TIMEOUT" envDefault:"120s"`
	CameraDevice   string        `env:"TILEVISION_CAMERA_DEVICE"   envDefault:"/dev/video0"`
	CaptureWidth   int           `env:"TILEVISION_CAPTURE_WIDTH"   envDefault:"1920"`
	CaptureHeight  int           `env:"TILEVISION_CAPTURE_HEIGHT"  envDefault:"1080"`
	MaxDimension   int           `env:"TILEVISION_MAX_DIMENSION"   envDefault:"1920"`
	JPEGQuality    int           `env:"TILEVISION_JPEG_QUALITY"    envDefault:"92"`
	GalleryDir     string        `env:"TILEVISION_GALLERY_DIR"     envDefault:"gallery"`
}

// Server configures the generation API service.
type Server struct {
	ListenAddr   string `env:"TILEVISION_LISTEN_ADDR"   envDefault:"0.0.0.0:8000"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"TILEVISION_GEMINI_MODEL"  envDefault:"gemini-2.5-flash-image-preview"`
	TilesDataDir string `env:"TILEVISION_TILES_DIR"     envDefault:"tile_data"`
	CORSOrigin   string `env:"TILEVISION_CORS_ORIGIN"   envDefault:"http://localhost:3000"`
	LogFile      string `env:"TILEVISION_LOG_FILE"`
}

// Scraper configures the tile catalog scraper.
type Scraper struct {
	StartURL     string        `env:"TILEVISION_SCRAPE_URL"`
	OutputDir    string        `env:"TILEVISION_TILES_DIR"      envDefault:"tile_data"`
	RequestDelay time.Duration `env:"TILEVISION_SCRAPE_DELAY"   envDefault:"1s"`
	MaxPages     int           `env:"TILEVISION_SCRAPE_PAGES"   envDefault:"10"`
}

// LoadStudio returns studio configuration from the environment.
func LoadStudio() (Studio, error) {
	var cfg Studio
	if err := env.Parse(&cfg); err != nil {
		return Studio{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadServer returns server configuration from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadScraper returns scraper configuration from the environment.
func LoadScraper() (Scraper, error) {
	var cfg Scraper
	if err := env.Parse(&cfg); err != nil {
		return Scraper{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
