// Package logging builds the zap loggers used by the command-line tools.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a JSON logger writing to w.
func New(w io.Writer, verbose bool) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core)
}

// Printf adapts a zap logger to config.Logger. Library code reports only failures it
// couldn't return, so everything is logged as a warning.
type Printf struct {
	sugar *zap.SugaredLogger
}

func NewPrintf(logger *zap.Logger) Printf {
	return Printf{sugar: logger.Sugar()}
}

func (p Printf) Printf(format string, v ...any) {
	p.sugar.Warnf(format, v...)
}
