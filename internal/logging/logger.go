package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds the structured logger used across the backend.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	return cfg.Build()
}
