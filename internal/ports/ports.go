package ports

import (
	"context"

	"depotscan/internal/domain"
)

// CameraConfig describes how the webcam should be captured.
type CameraConfig struct {
	Device      string
	InputFormat string
	Width       int
	Height      int
	FrameRate   int
}

// CameraSession is a live camera stream. Snapshot returns the most recent
// frame as a JPEG payload. Close is idempotent.
type CameraSession interface {
	Snapshot() (domain.ImagePayload, error)
	Close() error
}

// Camera opens camera capture sessions.
type Camera interface {
	Open(ctx context.Context, cfg CameraConfig) (CameraSession, error)
}

// Identifier submits a validated image and returns a typed identification.
type Identifier interface {
	Identify(ctx context.Context, image domain.ImagePayload) (domain.Identification, error)
}

// Navigator opens an external URL in a new navigation context.
type Navigator interface {
	OpenURL(ctx context.Context, url string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SectionChanged(section domain.ViewSection, reason domain.ViewReason)
	ResultReady(plan domain.RenderPlan)
	ViewError(code domain.ErrorCode, detail string)
}
