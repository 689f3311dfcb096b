package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger
var Logger *zap.Logger

// InitLogger initializes the logger. format "text" selects the development encoder,
// anything else produces JSON lines.
func InitLogger(level, format string) error {
	var zapConfig zap.Config

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	if format == "text" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	if Logger == nil {
		// Fallback to default logger
		Logger, _ = zap.NewProduction()
	}
	return Logger
}

// WithComponent adds component name to logger
func WithComponent(component string) *zap.Logger {
	return GetLogger().With(zap.String("component", component))
}

// Sync flushes buffered entries. Errors from syncing stdout are ignored.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
