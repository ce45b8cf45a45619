package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"depotscan/internal/domain"
	"depotscan/internal/ports"
)

var (
	// ErrCameraUnavailable means the device could not be opened at all;
	// the caller should fall back to file upload.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrNoActiveSession means a snapshot was requested after the session
	// ended or before it produced any frame.
	ErrNoActiveSession = errors.New("no active camera session")
)

const firstFrameTimeout = 3 * time.Second

// FFMPEGCamera streams webcam frames as an MJPEG pipe using ffmpeg.
type FFMPEGCamera struct {
	command string
}

func NewFFMPEGCamera(command string) *FFMPEGCamera {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCamera{command: command}
}

func (c *FFMPEGCamera) Open(ctx context.Context, cfg ports.CameraConfig) (ports.CameraSession, error) {
	if cfg.Device == "" {
		cfg.Device = "/dev/video0"
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "v4l2"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 15
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-framerate", strconv.Itoa(cfg.FrameRate),
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-i", cfg.Device,
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "5",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ffmpeg stdout pipe: %v", ErrCameraUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", ErrCameraUnavailable, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		detail := trimmed(stderr.String())
		if err != nil {
			return nil, fmt.Errorf("%w: ffmpeg exited before capture started: %v: %s", ErrCameraUnavailable, err, detail)
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before capture started: %s", ErrCameraUnavailable, detail)
	case <-time.After(250 * time.Millisecond):
	}

	session := &ffmpegSession{
		stdout:   stdout,
		stderr:   &stderr,
		process:  cmd.Process,
		waitErr:  waitErr,
		ready:    make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go session.readFrames()

	return session, nil
}

type ffmpegSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	mu     sync.Mutex
	frame  []byte
	closed bool

	ready     chan struct{}
	readyOnce sync.Once
	readDone  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Snapshot returns the latest JPEG frame, waiting briefly for the first one.
func (s *ffmpegSession) Snapshot() (domain.ImagePayload, error) {
	select {
	case <-s.ready:
	case <-s.readDone:
		return domain.ImagePayload{}, ErrNoActiveSession
	case <-time.After(firstFrameTimeout):
		return domain.ImagePayload{}, fmt.Errorf("%w: no frame received", ErrNoActiveSession)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.frame) == 0 {
		return domain.ImagePayload{}, ErrNoActiveSession
	}

	frame := append([]byte(nil), s.frame...)
	return domain.ImagePayload{
		Bytes:    frame,
		MimeType: "image/jpeg",
		Source:   domain.SourceCamera,
	}, nil
}

// Close releases the device. It is safe to call more than once.
func (s *ffmpegSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.closeErr = normalizeCloseErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.closeErr = normalizeCloseErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.closeErr == nil {
				s.closeErr = closeErr
			}
		}
		<-s.readDone

		if s.closeErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.closeErr = fmt.Errorf("%w: %s", s.closeErr, trimmed(s.stderr.String()))
		}
	})

	return s.closeErr
}

// readFrames splits the MJPEG byte stream on JPEG start/end markers and
// keeps only the most recent complete frame.
func (s *ffmpegSession) readFrames() {
	defer close(s.readDone)

	buf := make([]byte, 32*1024)
	var pending []byte
	for {
		n, err := s.stdout.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				frame, rest, ok := nextJPEGFrame(pending)
				if !ok {
					break
				}
				pending = rest
				s.storeFrame(frame)
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegSession) storeFrame(frame []byte) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// nextJPEGFrame extracts one complete frame from data, returning the frame,
// the unconsumed remainder, and whether a frame was found.
func nextJPEGFrame(data []byte) (frame []byte, rest []byte, ok bool) {
	start := bytes.Index(data, jpegSOI)
	if start < 0 {
		return nil, data, false
	}
	end := bytes.Index(data[start+len(jpegSOI):], jpegEOI)
	if end < 0 {
		return nil, data[start:], false
	}
	end += start + len(jpegSOI) + len(jpegEOI)
	frame = append([]byte(nil), data[start:end]...)
	return frame, data[end:], true
}

func normalizeCloseErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimmed(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
