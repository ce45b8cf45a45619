package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"depotscan/internal/bootstrap"
	"depotscan/internal/config"
	"depotscan/internal/domain"
	"depotscan/internal/usecase"
)

const (
	eventSection = "depotscan:section"
	eventResult  = "depotscan:result"
	eventError   = "depotscan:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.ViewController
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsNavigator{ctx: ctx})
	if err != nil {
		a.bootErr = err
		a.ViewError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.SectionChanged(domain.SectionUpload, domain.ReasonReady)
}

// OpenCamera opens the capture modal's camera session.
func (a *App) OpenCamera() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.StartCapture(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// TakePhoto freezes the current camera frame for review.
func (a *App) TakePhoto() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.TakePhoto()
}

// Retake discards the frozen frame and resumes the live preview.
func (a *App) Retake() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.Retake()
}

// CancelCamera closes the camera session when the modal is dismissed.
func (a *App) CancelCamera() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.controller.CancelCapture(); err != nil {
		if errors.Is(err, usecase.ErrNoCaptureSession) {
			return nil
		}
		return err
	}
	return nil
}

// ConfirmPhoto submits the frozen camera frame for identification.
func (a *App) ConfirmPhoto() (domain.RenderPlan, error) {
	if err := a.requireReady(); err != nil {
		return domain.RenderPlan{}, err
	}
	return a.controller.ConfirmCapture(a.ctx)
}

// UploadImage submits a user-selected file. Data is base64-encoded by the
// frontend file reader.
func (a *App) UploadImage(data string) (domain.RenderPlan, error) {
	return a.submitEncoded(data, false)
}

// DropImage submits a dropped file.
func (a *App) DropImage(data string) (domain.RenderPlan, error) {
	return a.submitEncoded(data, true)
}

func (a *App) submitEncoded(data string, dropped bool) (domain.RenderPlan, error) {
	if err := a.requireReady(); err != nil {
		return domain.RenderPlan{}, err
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		a.ViewError(domain.ErrorCodeValidation, "file contents could not be decoded")
		return domain.RenderPlan{}, fmt.Errorf("invalid file payload: %w", err)
	}
	if dropped {
		return a.controller.SubmitDrop(a.ctx, decoded)
	}
	return a.controller.SubmitFile(a.ctx, decoded)
}

// Reset returns to the upload section and cancels any pending redirect.
func (a *App) Reset() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.Reset()
	return nil
}

// GoToShop opens the product page for the current result, or the shop front
// page when there is none.
func (a *App) GoToShop() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.GoToShop(a.ctx)
}

// GetStatus returns the current view status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		status := domain.Status{State: domain.ViewStateIdle, Section: domain.SectionUpload}
		if a.bootErr != nil {
			status.Message = a.bootErr.Error()
		}
		return status
	}
	return a.controller.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"endpoint":     a.cfg.Endpoint.URL,
		"cameraDevice": a.cfg.Camera.Device,
		"cameraSize":   fmt.Sprintf("%dx%d", a.cfg.Camera.Width, a.cfg.Camera.Height),
		"shopUrl":      a.cfg.Shop.FallbackURL,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// SectionChanged emits UI section transitions to the frontend.
func (a *App) SectionChanged(section domain.ViewSection, reason domain.ViewReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSection, map[string]string{
		"section": string(section),
		"reason":  string(reason),
		"message": sectionReasonMessage(reason),
	})
}

// ResultReady emits the rendered identification result.
func (a *App) ResultReady(plan domain.RenderPlan) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventResult, plan)
}

// ViewError emits backend errors to the UI.
func (a *App) ViewError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func sectionReasonMessage(reason domain.ViewReason) string {
	switch reason {
	case domain.ReasonReady:
		return "Ready"
	case domain.ReasonCameraOpened:
		return "Camera on"
	case domain.ReasonCameraReopened:
		return "Camera restarted; previous session closed"
	case domain.ReasonPhotoTaken:
		return "Photo captured"
	case domain.ReasonPhotoDiscarded:
		return "Photo discarded"
	case domain.ReasonCaptureCancelled:
		return "Camera closed"
	case domain.ReasonIdentifying:
		return "Identifying item..."
	case domain.ReasonResultReady:
		return "Identification complete"
	case domain.ReasonValidationFailed:
		return "Image rejected"
	case domain.ReasonSubmissionFailed:
		return "Identification failed"
	case domain.ReasonResultDismissed:
		return "Result dismissed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCamera:
		return "Camera unavailable; use file upload instead"
	case domain.ErrorCodeSnapshot:
		return "Could not take a photo"
	case domain.ErrorCodeValidation:
		return "That file cannot be submitted"
	case domain.ErrorCodeSubmission:
		return "Identification failed"
	case domain.ErrorCodeBusy:
		return "An identification is already running"
	case domain.ErrorCodeNavigation:
		return "Could not open the shop page"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsNavigator struct {
	ctx context.Context
}

func (n *wailsNavigator) OpenURL(_ context.Context, url string) error {
	runtime.BrowserOpenURL(n.ctx, url)
	return nil
}
