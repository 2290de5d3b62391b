// Package server exposes the tile generation service over HTTP: the tile
// catalog, the two generation endpoints and the photo upload endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/tilevision/tilevision/internal/photo"
	"github.com/tilevision/tilevision/internal/tiles"
)

// floorPrompt instructs the model to swap the flooring while leaving the
// rest of the room untouched.
const floorPrompt = `Using the provided images,
    replace the flooring material/pattern from image 2
    onto the floor area of the room in image 1.
    If the flooring material/pattern from image 2
    is a tile, use multiple tiles to cover the entire floor area.
    Ensure that the features of image 1's room - walls, furniture, layout,
    light direction, camera angle remain completely unchanged.
    The added element should match perspective and scale; align to room
    boundaries/baseboards; respect occlusions under furniture;
    inherit lighting/white balance; preserve existing shadows while adding
    realistic contact shadows/reflections appropriate to the material;
    keep edges clean at thresholds/doorways.`

// Generator produces a redesigned room image from a prompt and input images.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string, images ...*photo.Encoded) (*photo.Encoded, error)
}

// Server is the generation API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux

	catalog    *tiles.Catalog
	generator  Generator
	corsOrigin string
}

// New creates a server over the given catalog and generator.
func New(catalog *tiles.Catalog, generator Generator, corsOrigin string) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		catalog:    catalog,
		generator:  generator,
		corsOrigin: corsOrigin,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.enableCORS(s.handleHealth))
	s.mux.HandleFunc("/tiles", s.enableCORS(s.handleRandomTile))
	s.mux.HandleFunc("/tiles/generate/", s.enableCORS(s.handleGenerate))
	s.mux.HandleFunc("/tiles/generate-random/", s.enableCORS(s.handleGenerateRandom))
	s.mux.HandleFunc("/api/upload", s.enableCORS(s.handleUpload))
}

// enableCORS adds CORS headers so the web front end can reach the service.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := s.corsOrigin
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the server. This is blocking.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Stop stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
