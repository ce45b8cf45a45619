package bootstrap

import (
	"go.uber.org/zap"

	"depotscan/internal/camera"
	"depotscan/internal/config"
	"depotscan/internal/identify"
	"depotscan/internal/logging"
	"depotscan/internal/ports"
	"depotscan/internal/presenter"
	"depotscan/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.ViewController
	Config     config.Config
	Logger     *zap.Logger
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, navigator ports.Navigator) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger, err := logging.NewLogger()
	if err != nil {
		return Services{}, err
	}

	client := identify.NewClient(identify.Config{
		EndpointURL: cfg.Endpoint.URL,
		FieldName:   cfg.Endpoint.FieldName,
	}, logger)

	present := presenter.New(navigator, eventSink, presenter.Config{
		RedirectDelay: cfg.Results.RedirectDelay(),
	})

	controller := usecase.NewViewController(
		camera.NewFFMPEGCamera(cfg.Camera.Command),
		client,
		present,
		navigator,
		eventSink,
		logger,
		usecase.Config{
			Camera: ports.CameraConfig{
				Device:      cfg.Camera.Device,
				InputFormat: cfg.Camera.InputFormat,
				Width:       cfg.Camera.Width,
				Height:      cfg.Camera.Height,
				FrameRate:   cfg.Camera.FrameRate,
			},
			ShopFallbackURL: cfg.Shop.FallbackURL,
		},
	)

	return Services{Controller: controller, Config: cfg, Logger: logger}, nil
}
