// Package genclient talks to the tile generation service and normalizes its
// responses into encoded photos.
package genclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tilevision/tilevision/internal/photo"
)

const defaultTimeout = 120 * time.Second

// ServiceError carries a non-success response from the generation service.
// The body text is the service's human-readable message.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service returned %d: %s", e.Status, e.Message)
}

// Client wraps the generation service HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests and for
// custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &UserAgentTransport{
				RoundTripper: http.DefaultTransport,
				UserAgent:    "tilevision/1.0",
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate produces a redesign of room. With a style tile the service
// applies that tile; without one it picks a style at random, which is the
// default interactive path.
func (c *Client) Generate(ctx context.Context, room *photo.Encoded, tile *photo.Encoded) (*photo.Encoded, error) {
	var (
		endpoint string
		images   []*photo.Encoded
	)
	if tile != nil {
		endpoint = c.baseURL + "/tiles/generate/"
		images = []*photo.Encoded{room, tile}
	} else {
		endpoint = c.baseURL + "/tiles/generate-random/"
		images = []*photo.Encoded{room}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, img := range images {
		part, err := writer.CreateFormFile("files", fmt.Sprintf("image_%d%s", i, extensionFor(img.MIME)))
		if err != nil {
			return nil, fmt.Errorf("building multipart payload: %w", err)
		}
		if _, err := part.Write(img.Bytes); err != nil {
			return nil, fmt.Errorf("writing multipart payload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling generation service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading generation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	generated, err := photo.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("service returned an unreadable image: %w", err)
	}
	return generated, nil
}

// FetchRandomTile retrieves a standalone style tile. Not used on the default
// interactive path, which lets the service randomize during generation.
func (c *Client) FetchRandomTile(ctx context.Context) (*photo.Encoded, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tiles", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching style tile: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading style tile: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	tile, err := photo.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("service returned an unreadable tile: %w", err)
	}
	return tile, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
