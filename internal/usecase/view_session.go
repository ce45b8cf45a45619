package usecase

import (
	"sync"

	"depotscan/internal/domain"
	"depotscan/internal/ports"
)

// captureState is an open camera session plus the last photo taken from it.
type captureState struct {
	camera ports.CameraSession

	frameMu   sync.Mutex
	lastFrame *domain.ImagePayload
}

func (s *captureState) setFrame(frame domain.ImagePayload) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.lastFrame = &frame
}

func (s *captureState) clearFrame() {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.lastFrame = nil
}

// takeFrame removes and returns the pending photo, if any.
func (s *captureState) takeFrame() (domain.ImagePayload, bool) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.lastFrame == nil {
		return domain.ImagePayload{}, false
	}
	frame := *s.lastFrame
	s.lastFrame = nil
	return frame, true
}

func (s *captureState) close() error {
	return s.camera.Close()
}
