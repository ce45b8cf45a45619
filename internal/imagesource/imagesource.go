package imagesource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"depotscan/internal/domain"
)

// MaxBytes caps accepted payloads at 16 MiB, matching the identification
// endpoint's request limit.
const MaxBytes = 16 << 20

var (
	ErrInvalidType = errors.New("unsupported image type")
	ErrTooLarge    = errors.New("image exceeds maximum size")
)

// ValidationError reports why a payload was rejected before submission.
type ValidationError struct {
	Reason   error
	MimeType string
	Size     int
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Reason, ErrTooLarge):
		return fmt.Sprintf("image of %d bytes exceeds the %d byte limit", e.Size, MaxBytes)
	case errors.Is(e.Reason, ErrInvalidType):
		return fmt.Sprintf("%q is not an image type", e.MimeType)
	default:
		return e.Reason.Error()
	}
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// FromCapture validates a camera snapshot.
func FromCapture(frame domain.ImagePayload) (domain.ImagePayload, error) {
	return validate(frame.Bytes, domain.SourceCamera)
}

// FromFile validates bytes read from a user-selected file.
func FromFile(data []byte) (domain.ImagePayload, error) {
	return validate(data, domain.SourceUpload)
}

// FromDrop validates bytes read from a dropped file.
func FromDrop(data []byte) (domain.ImagePayload, error) {
	return validate(data, domain.SourceDrop)
}

// validate is the single convergence point for all acquisition paths. The
// MIME type is sniffed from content so a renamed file cannot slip through.
func validate(data []byte, source domain.SourceKind) (domain.ImagePayload, error) {
	if len(data) > MaxBytes {
		return domain.ImagePayload{}, &ValidationError{Reason: ErrTooLarge, Size: len(data)}
	}

	detected := mimetype.Detect(data).String()
	if !strings.HasPrefix(detected, "image/") {
		return domain.ImagePayload{}, &ValidationError{Reason: ErrInvalidType, MimeType: detected, Size: len(data)}
	}

	return domain.ImagePayload{
		Bytes:    data,
		MimeType: detected,
		Source:   source,
	}, nil
}
