package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zlog is the process-wide logger. It is a no-op logger until InitLogger runs
// so packages can log from tests without setup.
var Zlog = zap.NewNop()

// InitLogger builds the global logger. Production JSON output is used unless
// debug is set, in which case a development console encoder is used.
func InitLogger(level string, debug bool, fields ...zap.Field) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build(zap.Fields(fields...))
	if err != nil {
		return nil, err
	}
	Zlog = logger
	return logger, nil
}
