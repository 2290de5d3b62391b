package capture

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/tilevision/tilevision/internal/errdefs"
)

// FFmpegCamera grabs frames from a V4L2 device through an ffmpeg subprocess
// streaming MJPEG to stdout. ffmpeg is the capture backend because it
// negotiates formats with the device and needs no cgo.
type FFmpegCamera struct {
	Device string
	Width  int
	Height int
}

// findFFmpeg searches PATH and common install locations.
func findFFmpeg() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	commonPaths := []string{
		"/usr/bin/ffmpeg",
		"/usr/local/bin/ffmpeg",
		"/opt/homebrew/bin/ffmpeg",
		"/snap/bin/ffmpeg",
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", errdefs.NewCustomError(errdefs.ErrTypeCameraUnavailable, "ffmpeg not found; camera capture unavailable")
}

// Start launches the ffmpeg stream. Failures are typed so the UI can offer
// the file-picker fallback with a useful message.
func (c *FFmpegCamera) Start(ctx context.Context) (Stream, error) {
	ffmpegPath, err := findFFmpeg()
	if err != nil {
		return nil, err
	}

	device := c.Device
	if device == "" {
		device = "/dev/video0"
	}

	f, err := os.OpenFile(device, os.O_RDONLY, 0)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errdefs.NewCustomError(errdefs.ErrTypeCameraDenied, fmt.Sprintf("camera access denied: %v", err))
		}
		return nil, errdefs.NewCustomError(errdefs.ErrTypeCameraUnavailable, fmt.Sprintf("no camera device: %v", err))
	}
	f.Close()

	width, height := c.Width, c.Height
	if width <= 0 || height <= 0 {
		width, height = 1920, 1080
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-framerate", "30",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-i", device,
		"-f", "mjpeg",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeCameraUnavailable, fmt.Sprintf("starting ffmpeg: %v", err))
	}

	return &ffmpegStream{
		cmd:    cmd,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		stderr: &stderr,
		width:  width,
		height: height,
	}, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout *bufio.Reader
	stderr *bytes.Buffer
	width  int
	height int

	mu      sync.Mutex
	stopped bool
}

func (s *ffmpegStream) Dimensions() (int, int) {
	// The requested size; the device may have negotiated down, in which
	// case the decoded frame bounds are authoritative.
	return s.width, s.height
}

func (s *ffmpegStream) Grab(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, fmt.Errorf("stream already stopped")
	}
	s.mu.Unlock()

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		data, err := readMJPEGFrame(s.stdout)
		if err != nil {
			done <- result{nil, fmt.Errorf("reading frame: %w (%s)", err, bytes.TrimSpace(s.stderr.Bytes()))}
			return
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			done <- result{nil, fmt.Errorf("decoding frame: %w", err)}
			return
		}
		done <- result{img, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.img, r.err
	}
}

func (s *ffmpegStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
}

func (s *ffmpegStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// readMJPEGFrame scans the stream for the next complete JPEG: from the SOI
// marker (FF D8) through the matching EOI marker (FF D9).
func readMJPEGFrame(r *bufio.Reader) ([]byte, error) {
	// Seek SOI.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != 0xFF {
			continue
		}
		next, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if next == 0xD8 {
			break
		}
	}

	frame := []byte{0xFF, 0xD8}
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		frame = append(frame, b)
		if b == 0xFF {
			next, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			frame = append(frame, next)
			if next == 0xD9 {
				return frame, nil
			}
		}
		if len(frame) > 64<<20 {
			return nil, io.ErrUnexpectedEOF
		}
	}
}
