// Package logging builds the zap logger shared by the session, the API and
// the server binary.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ModeDebug = "debug"

// New returns a colored console logger in debug mode and a JSON logger with
// ISO8601 timestamps otherwise.
func New(mode string) (*zap.Logger, error) {
	var config zap.Config

	if mode == ModeDebug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.With(zap.String("service", "daybook")), nil
}
