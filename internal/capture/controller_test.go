package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilevision/tilevision/internal/errdefs"
)

type fakeStream struct {
	frame       image.Image
	width       int
	height      int
	stopped     bool
	stopsBefore *[]string // records ordering of stop vs freeze for tests
}

func (s *fakeStream) Grab(ctx context.Context) (image.Image, error) {
	if s.frame == nil {
		return nil, errors.New("no frame")
	}
	return s.frame, nil
}

func (s *fakeStream) Dimensions() (int, int) { return s.width, s.height }

func (s *fakeStream) Stop() {
	s.stopped = true
	if s.stopsBefore != nil {
		*s.stopsBefore = append(*s.stopsBefore, "stop")
	}
}

func (s *fakeStream) Stopped() bool { return s.stopped }

type fakeCamera struct {
	stream *fakeStream
	err    error
	starts int
}

func (c *fakeCamera) Start(ctx context.Context) (Stream, error) {
	c.starts++
	if c.err != nil {
		return nil, c.err
	}
	return c.stream, nil
}

func solidFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 160, A: 255})
		}
	}
	return img
}

func TestController_StartCamera(t *testing.T) {
	cam := &fakeCamera{stream: &fakeStream{frame: solidFrame(640, 480)}}
	c := NewController(cam, 1920, 92)

	assert.Equal(t, StateIdle, c.State())

	require.NoError(t, c.StartCamera(context.Background()))
	assert.Equal(t, StateStreaming, c.State())
}

func TestController_StartCameraFailureStaysIdle(t *testing.T) {
	cam := &fakeCamera{err: errdefs.NewCustomError(errdefs.ErrTypeCameraUnavailable, "no camera device")}
	c := NewController(cam, 1920, 92)

	err := c.StartCamera(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State(), "acquisition failure must leave the controller idle for the file-picker fallback")

	var custom *errdefs.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, errdefs.ErrTypeCameraUnavailable, custom.Type)
}

func TestController_CaptureFreezesAndReleases(t *testing.T) {
	stream := &fakeStream{frame: solidFrame(3000, 2000), width: 3000, height: 2000}
	cam := &fakeCamera{stream: stream}
	c := NewController(cam, 1920, 92)

	require.NoError(t, c.StartCamera(context.Background()))

	enc, err := c.Capture(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFrozen, c.State())
	assert.True(t, stream.Stopped(), "no active stream may remain after capture")
	assert.LessOrEqual(t, enc.Width, 1920)
	assert.LessOrEqual(t, enc.Height, 1920)
	assert.InDelta(t, 3.0/2.0, float64(enc.Width)/float64(enc.Height), 0.01)
	assert.Equal(t, "image/jpeg", enc.MIME)
}

func TestController_CaptureRequiresStream(t *testing.T) {
	c := NewController(&fakeCamera{stream: &fakeStream{}}, 1920, 92)

	_, err := c.Capture(context.Background())
	assert.Error(t, err)
}

func TestController_LoadFileFreezesDirectly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidFrame(800, 600), nil))

	stream := &fakeStream{frame: solidFrame(640, 480)}
	cam := &fakeCamera{stream: stream}
	c := NewController(cam, 1920, 92)

	// File selection while streaming stops the stream as a side effect.
	require.NoError(t, c.StartCamera(context.Background()))
	enc, err := c.LoadFile(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, StateFrozen, c.State())
	assert.True(t, stream.Stopped())
	assert.Equal(t, 800, enc.Width)
	assert.Equal(t, 600, enc.Height)
}

func TestController_LoadFileRejectsGarbage(t *testing.T) {
	c := NewController(&fakeCamera{stream: &fakeStream{}}, 1920, 92)

	_, err := c.LoadFile([]byte("definitely not an image"))
	require.Error(t, err)

	var custom *errdefs.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, errdefs.ErrTypeInvalidImage, custom.Type)
	assert.NotEqual(t, StateFrozen, c.State())
}

func TestController_RetryRestartsCamera(t *testing.T) {
	stream := &fakeStream{frame: solidFrame(640, 480)}
	cam := &fakeCamera{stream: stream}
	c := NewController(cam, 1920, 92)

	require.NoError(t, c.StartCamera(context.Background()))
	_, err := c.Capture(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c.Frame())

	cam.stream = &fakeStream{frame: solidFrame(640, 480)}
	require.NoError(t, c.Retry(context.Background()))

	assert.Equal(t, StateStreaming, c.State())
	assert.Nil(t, c.Frame(), "retry discards the frozen frame")
	assert.Equal(t, 2, cam.starts)
}

func TestController_CloseStopsStream(t *testing.T) {
	stream := &fakeStream{frame: solidFrame(640, 480)}
	cam := &fakeCamera{stream: stream}
	c := NewController(cam, 1920, 92)

	require.NoError(t, c.StartCamera(context.Background()))
	c.Close()

	assert.True(t, stream.Stopped())
	assert.Equal(t, StateIdle, c.State())
}

func TestController_StreamStoppedBeforeFrozen(t *testing.T) {
	var order []string
	stream := &fakeStream{frame: solidFrame(640, 480), stopsBefore: &order}
	cam := &fakeCamera{stream: stream}
	c := NewController(cam, 1920, 92)

	require.NoError(t, c.StartCamera(context.Background()))
	_, err := c.Capture(context.Background())
	require.NoError(t, err)

	// The stop must be recorded; had Frozen been entered first the fake
	// would still be live when the state changed.
	require.NotEmpty(t, order)
	assert.Equal(t, "stop", order[0])
	assert.Equal(t, StateFrozen, c.State())
}
