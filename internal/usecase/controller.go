package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"depotscan/internal/domain"
	"depotscan/internal/imagesource"
	"depotscan/internal/ports"
	"depotscan/internal/presenter"
)

var (
	ErrSubmissionInFlight   = errors.New("a submission is already in progress")
	ErrSubmissionSuperseded = errors.New("submission superseded by reset")
	ErrNoCaptureSession     = errors.New("no camera session is open")
	ErrNoPendingPhoto       = errors.New("no photo has been taken")
)

// resultPresenter decides the display branch and arms the redirect.
type resultPresenter interface {
	Present(result domain.Identification) (domain.RenderPlan, *presenter.Redirect)
}

// Config controls controller behavior.
type Config struct {
	Camera          ports.CameraConfig
	ShopFallbackURL string
}

// ViewController owns the capture/submit/display state machine. It enforces
// that at most one camera session is open and at most one submission is in
// flight, and that every opened session is eventually closed.
type ViewController struct {
	camera     ports.Camera
	identifier ports.Identifier
	presenter  resultPresenter
	navigator  ports.Navigator
	events     ports.EventSink
	logger     *zap.Logger
	cfg        Config

	mu       sync.Mutex
	state    domain.ViewState
	gen      uint64
	capture  *captureState
	redirect *presenter.Redirect
	lastPlan *domain.RenderPlan
}

func NewViewController(
	camera ports.Camera,
	identifier ports.Identifier,
	present resultPresenter,
	navigator ports.Navigator,
	events ports.EventSink,
	logger *zap.Logger,
	cfg Config,
) *ViewController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewController{
		camera:     camera,
		identifier: identifier,
		presenter:  present,
		navigator:  navigator,
		events:     events,
		logger:     logger,
		cfg:        cfg,
		state:      domain.ViewStateIdle,
	}
}

// StartCapture opens a camera session. Starting while one is already open
// closes the previous session first, so device handles never dangle.
func (c *ViewController) StartCapture(ctx context.Context) error {
	c.mu.Lock()
	if c.state == domain.ViewStateSubmitting {
		c.mu.Unlock()
		c.events.ViewError(domain.ErrorCodeBusy, ErrSubmissionInFlight.Error())
		return ErrSubmissionInFlight
	}
	previous := c.capture
	c.capture = nil
	pending := c.redirect
	c.redirect = nil
	c.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
	if previous != nil {
		_ = previous.close()
	}

	session, err := c.camera.Open(ctx, c.cfg.Camera)
	if err != nil {
		c.logger.Warn("camera open failed", zap.Error(err))
		// Upload stays usable; the UI falls back to file selection.
		c.setState(domain.ViewStateIdle)
		c.events.ViewError(domain.ErrorCodeCamera, err.Error())
		return err
	}

	c.mu.Lock()
	c.state = domain.ViewStateCapturing
	c.capture = &captureState{camera: session}
	c.mu.Unlock()

	reason := domain.ReasonCameraOpened
	if previous != nil {
		reason = domain.ReasonCameraReopened
	}
	c.events.SectionChanged(domain.SectionUpload, reason)
	return nil
}

// TakePhoto freezes the current camera frame as the pending capture.
func (c *ViewController) TakePhoto() error {
	capture, err := c.getCapture()
	if err != nil {
		return err
	}

	frame, err := capture.camera.Snapshot()
	if err != nil {
		c.logger.Warn("snapshot failed", zap.Error(err))
		c.events.ViewError(domain.ErrorCodeSnapshot, err.Error())
		return err
	}

	capture.setFrame(frame)
	c.events.SectionChanged(domain.SectionUpload, domain.ReasonPhotoTaken)
	return nil
}

// Retake discards the pending photo; the camera session stays open.
func (c *ViewController) Retake() error {
	capture, err := c.getCapture()
	if err != nil {
		return err
	}
	capture.clearFrame()
	c.events.SectionChanged(domain.SectionUpload, domain.ReasonPhotoDiscarded)
	return nil
}

// CancelCapture closes the camera session without submitting, e.g. when the
// capture modal is dismissed.
func (c *ViewController) CancelCapture() error {
	c.mu.Lock()
	capture := c.capture
	c.capture = nil
	if c.state == domain.ViewStateCapturing {
		c.state = domain.ViewStateIdle
	}
	c.mu.Unlock()

	if capture == nil {
		return ErrNoCaptureSession
	}
	_ = capture.close()
	c.events.SectionChanged(domain.SectionUpload, domain.ReasonCaptureCancelled)
	return nil
}

// ConfirmCapture closes the camera session and submits the pending photo.
func (c *ViewController) ConfirmCapture(ctx context.Context) (domain.RenderPlan, error) {
	c.mu.Lock()
	if c.state == domain.ViewStateSubmitting {
		c.mu.Unlock()
		c.events.ViewError(domain.ErrorCodeBusy, ErrSubmissionInFlight.Error())
		return domain.RenderPlan{}, ErrSubmissionInFlight
	}
	capture := c.capture
	c.capture = nil
	c.mu.Unlock()

	if capture == nil {
		return domain.RenderPlan{}, ErrNoCaptureSession
	}

	frame, ok := capture.takeFrame()
	_ = capture.close()
	if !ok {
		c.setState(domain.ViewStateIdle)
		return domain.RenderPlan{}, ErrNoPendingPhoto
	}

	payload, err := imagesource.FromCapture(frame)
	if err != nil {
		return domain.RenderPlan{}, c.rejectPayload(err)
	}
	return c.submit(ctx, payload)
}

// SubmitFile validates and submits bytes from a user-selected file.
func (c *ViewController) SubmitFile(ctx context.Context, data []byte) (domain.RenderPlan, error) {
	payload, err := imagesource.FromFile(data)
	if err != nil {
		return domain.RenderPlan{}, c.rejectPayload(err)
	}
	return c.submit(ctx, payload)
}

// SubmitDrop validates and submits bytes from a dropped file.
func (c *ViewController) SubmitDrop(ctx context.Context, data []byte) (domain.RenderPlan, error) {
	payload, err := imagesource.FromDrop(data)
	if err != nil {
		return domain.RenderPlan{}, c.rejectPayload(err)
	}
	return c.submit(ctx, payload)
}

// Reset returns the controller to the upload section, cancelling any pending
// redirect and closing any camera session that is still open.
func (c *ViewController) Reset() {
	c.mu.Lock()
	pending := c.redirect
	capture := c.capture
	c.redirect = nil
	c.capture = nil
	c.lastPlan = nil
	c.state = domain.ViewStateIdle
	// Invalidates any submission still in flight; its result is discarded
	// when it completes.
	c.gen++
	c.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
	if capture != nil {
		_ = capture.close()
	}
	c.events.SectionChanged(domain.SectionUpload, domain.ReasonResultDismissed)
}

// GoToShop opens the current result's product page, or the shop front page
// when there is no in-inventory result to point at.
func (c *ViewController) GoToShop(ctx context.Context) error {
	c.mu.Lock()
	url := c.cfg.ShopFallbackURL
	if c.lastPlan != nil && c.lastPlan.ShowShopLink && c.lastPlan.ShopURL != "" {
		url = c.lastPlan.ShopURL
	}
	c.mu.Unlock()

	if err := c.navigator.OpenURL(ctx, url); err != nil {
		c.events.ViewError(domain.ErrorCodeNavigation, err.Error())
		return err
	}
	return nil
}

// Status reports the current state and visible section.
func (c *ViewController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Status{
		State:   c.state,
		Section: sectionFor(c.state),
		Busy:    c.state == domain.ViewStateSubmitting,
	}
}

func (c *ViewController) submit(ctx context.Context, payload domain.ImagePayload) (domain.RenderPlan, error) {
	c.mu.Lock()
	if c.state == domain.ViewStateSubmitting {
		c.mu.Unlock()
		c.events.ViewError(domain.ErrorCodeBusy, ErrSubmissionInFlight.Error())
		return domain.RenderPlan{}, ErrSubmissionInFlight
	}
	pending := c.redirect
	c.redirect = nil
	c.lastPlan = nil
	c.state = domain.ViewStateSubmitting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
	c.events.SectionChanged(domain.SectionProcessing, domain.ReasonIdentifying)

	result, err := c.identifier.Identify(ctx, payload)
	if err != nil {
		c.mu.Lock()
		stale := gen != c.gen
		if !stale {
			c.state = domain.ViewStateIdle
		}
		c.mu.Unlock()
		if stale {
			c.logger.Info("dropping failure from superseded submission", zap.Error(err))
			return domain.RenderPlan{}, ErrSubmissionSuperseded
		}
		c.logger.Warn("submission failed", zap.Error(err))
		c.events.ViewError(domain.ErrorCodeSubmission, err.Error())
		c.events.SectionChanged(domain.SectionUpload, domain.ReasonSubmissionFailed)
		return domain.RenderPlan{}, err
	}

	plan, redirect := c.presenter.Present(result)

	c.mu.Lock()
	// Reset ran while the request was in flight; the user no longer wants
	// this result, so the display state and the redirect stay untouched.
	if gen != c.gen {
		c.mu.Unlock()
		if redirect != nil {
			redirect.Cancel()
		}
		c.logger.Info("discarding result from superseded submission")
		return domain.RenderPlan{}, ErrSubmissionSuperseded
	}
	c.state = domain.ViewStateDisplaying
	c.redirect = redirect
	c.lastPlan = &plan
	c.mu.Unlock()

	c.events.SectionChanged(domain.SectionResults, domain.ReasonResultReady)
	c.events.ResultReady(plan)
	return plan, nil
}

// rejectPayload reports a validation failure and keeps the controller in the
// upload section. No network call is issued for a rejected payload.
func (c *ViewController) rejectPayload(err error) error {
	c.logger.Warn("image rejected", zap.Error(err))
	c.setState(domain.ViewStateIdle)
	c.events.ViewError(domain.ErrorCodeValidation, err.Error())
	c.events.SectionChanged(domain.SectionUpload, domain.ReasonValidationFailed)
	return err
}

func (c *ViewController) getCapture() (*captureState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		return nil, ErrNoCaptureSession
	}
	return c.capture, nil
}

func (c *ViewController) setState(state domain.ViewState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func sectionFor(state domain.ViewState) domain.ViewSection {
	switch state {
	case domain.ViewStateSubmitting:
		return domain.SectionProcessing
	case domain.ViewStateDisplaying:
		return domain.SectionResults
	default:
		return domain.SectionUpload
	}
}
