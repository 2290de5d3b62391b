package capture

import (
	"context"
	"fmt"

	"github.com/tilevision/tilevision/internal/errdefs"
	"github.com/tilevision/tilevision/internal/log"
	"github.com/tilevision/tilevision/internal/photo"
)

// State is the controller's single source of truth. Streaming and Frozen can
// never coexist: the stream is fully stopped before Frozen is entered.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateFrozen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Controller owns the camera lifecycle, frame freezing and photo encoding.
type Controller struct {
	camera  Camera
	maxDim  int
	quality int

	state  State
	stream Stream
	frame  *photo.Encoded
}

func NewController(camera Camera, maxDim, quality int) *Controller {
	if maxDim <= 0 {
		maxDim = photo.DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = photo.DefaultJPEGQuality
	}
	return &Controller{camera: camera, maxDim: maxDim, quality: quality}
}

func (c *Controller) State() State { return c.state }

// Frame returns the frozen photo, or nil outside StateFrozen.
func (c *Controller) Frame() *photo.Encoded { return c.frame }

// StartCamera acquires a live stream and enters Streaming. Any acquisition
// failure (no device, no permission, no backend) leaves the controller in
// Idle and returns a descriptive error; callers fall back to the file picker
// rather than treating this as fatal.
func (c *Controller) StartCamera(ctx context.Context) error {
	c.releaseStream()
	c.frame = nil
	c.state = StateIdle

	if c.camera == nil {
		return errdefs.NewCustomError(errdefs.ErrTypeCameraUnavailable, "no camera backend available")
	}

	stream, err := c.camera.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting camera: %w", err)
	}

	c.stream = stream
	c.state = StateStreaming
	return nil
}

// Capture freezes the current frame: grabs it, releases the stream, then
// downscales and encodes. The stream is stopped before Frozen is entered so
// a live camera and a frozen frame never coexist.
func (c *Controller) Capture(ctx context.Context) (*photo.Encoded, error) {
	if c.state != StateStreaming || c.stream == nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeGeneric, "capture requires a live stream")
	}

	frame, err := c.stream.Grab(ctx)
	if err != nil {
		return nil, fmt.Errorf("grabbing frame: %w", err)
	}

	if w, h := c.stream.Dimensions(); w > 0 && h > 0 {
		log.Debugf("capturing %dx%d frame", w, h)
	} else {
		bounds := frame.Bounds()
		log.Debugf("stream size unknown, using frame size %dx%d", bounds.Dx(), bounds.Dy())
	}

	c.releaseStream()

	enc, err := photo.FromFrame(frame, c.maxDim, c.quality)
	if err != nil {
		c.state = StateIdle
		return nil, err
	}

	c.frame = enc
	c.state = StateFrozen
	return enc, nil
}

// LoadFile decodes a picked image file into the same representation as a
// live capture and enters Frozen directly, stopping any active stream.
func (c *Controller) LoadFile(data []byte) (*photo.Encoded, error) {
	c.releaseStream()

	enc, err := photo.Normalize(data, c.maxDim, c.quality)
	if err != nil {
		c.state = StateIdle
		return nil, errdefs.NewCustomError(errdefs.ErrTypeInvalidImage, fmt.Sprintf("unreadable image file: %v", err))
	}

	c.frame = enc
	c.state = StateFrozen
	return enc, nil
}

// Retry discards the frozen frame and re-invokes the start-camera flow.
func (c *Controller) Retry(ctx context.Context) error {
	c.frame = nil
	return c.StartCamera(ctx)
}

// Close stops any active stream unconditionally. Must run on teardown; a
// dangling camera handle is a resource leak and a privacy issue.
func (c *Controller) Close() {
	c.releaseStream()
	if c.state == StateStreaming {
		c.state = StateIdle
	}
}

func (c *Controller) releaseStream() {
	if c.stream != nil {
		c.stream.Stop()
		c.stream = nil
	}
}
