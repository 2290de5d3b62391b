package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/tilevision/tilevision/internal/log"
	"github.com/tilevision/tilevision/internal/photo"
	"github.com/tilevision/tilevision/internal/tiles"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleRandomTile serves a random tile image from the catalog.
func (s *Server) handleRandomTile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tile, err := s.catalog.Random()
	if err != nil {
		http.Error(w, "No tiles data available", http.StatusInternalServerError)
		return
	}

	data, err := s.catalog.OpenImage(tile)
	if err != nil {
		if errors.Is(err, tiles.ErrImageMissing) {
			http.Error(w, "Tile image not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

// handleGenerate redesigns a room using an explicit style tile: multipart
// field "files" must hold exactly two images, room then tile.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	files, ok := s.readFiles(w, r)
	if !ok {
		return
	}
	if len(files) != 2 {
		http.Error(w, "Exactly two images are required: room and tile", http.StatusBadRequest)
		return
	}

	s.generate(w, r, files[0], files[1])
}

// handleGenerateRandom redesigns a room with a random catalog tile:
// multipart field "files" must hold exactly one image.
func (s *Server) handleGenerateRandom(w http.ResponseWriter, r *http.Request) {
	files, ok := s.readFiles(w, r)
	if !ok {
		return
	}
	if len(files) != 1 {
		http.Error(w, "Exactly one room image is required", http.StatusBadRequest)
		return
	}

	tile, err := s.catalog.Random()
	if err != nil {
		http.Error(w, "No tiles data available", http.StatusInternalServerError)
		return
	}
	tileData, err := s.catalog.OpenImage(tile)
	if err != nil {
		http.Error(w, "Tile image not found", http.StatusNotFound)
		return
	}
	tilePhoto, err := photo.FromBytes(tileData)
	if err != nil {
		http.Error(w, fmt.Sprintf("unreadable tile image: %v", err), http.StatusInternalServerError)
		return
	}

	s.generate(w, r, files[0], tilePhoto)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, room, tile *photo.Encoded) {
	result, err := s.generator.GenerateImage(r.Context(), floorPrompt, room, tile)
	if err != nil {
		log.Errorf("generation failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The service responds with PNG regardless of what the model produced.
	data := result.Bytes
	if result.MIME != "image/png" {
		img, err := result.Decode()
		if err != nil {
			http.Error(w, fmt.Sprintf("unreadable generated image: %v", err), http.StatusInternalServerError)
			return
		}
		if data, err = photo.EncodePNG(img); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="generated_image.png"`)
	w.Write(data)
}

// readFiles decodes every image in the multipart "files" field. A false
// return means the response has already been written.
func (s *Server) readFiles(w http.ResponseWriter, r *http.Request) ([]*photo.Encoded, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid multipart payload: %v", err), http.StatusBadRequest)
		return nil, false
	}

	headers := r.MultipartForm.File["files"]
	files := make([]*photo.Encoded, 0, len(headers))
	for _, header := range headers {
		enc, err := decodePart(header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		files = append(files, enc)
	}
	return files, true
}

func decodePart(header *multipart.FileHeader) (*photo.Encoded, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %q: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload %q: %w", header.Filename, err)
	}

	enc, err := photo.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("upload %q is not a readable image", header.Filename)
	}
	return enc, nil
}

type uploadResponse struct {
	OK       bool   `json:"ok"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleUpload accepts a photo upload. Storage of the bytes is a placeholder
// for future persistence; the endpoint only acknowledges receipt.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(uploadResponse{OK: false, Error: "method not allowed"})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(uploadResponse{OK: false, Error: "no file uploaded"})
		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(uploadResponse{OK: false, Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(uploadResponse{OK: true, Filename: header.Filename, Size: size})
}
