package design

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// LogLevel is a configurable log level shared by every design component.
	LogLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

	l = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			LogLevel,
		),
	)

	// log is the package's default sugared logger.
	log = l.Sugar()
)
