// Package capture acquires a room photo from a live camera or a picked file
// and normalizes it to a single encoded representation.
package capture

import (
	"context"
	"image"
)

// Stream is a live camera stream. It is exclusively owned by the controller
// instance that started it and must be stopped before another is requested.
type Stream interface {
	// Grab returns the current frame.
	Grab(ctx context.Context) (image.Image, error)
	// Dimensions returns the negotiated stream size, or zeros when the
	// device did not report one.
	Dimensions() (width, height int)
	// Stop releases the device. Safe to call more than once.
	Stop()
	// Stopped reports whether the stream has been released.
	Stopped() bool
}

// Camera starts live streams. Implementations: ffmpeg over a V4L2 device,
// and test fakes.
type Camera interface {
	Start(ctx context.Context) (Stream, error)
}
