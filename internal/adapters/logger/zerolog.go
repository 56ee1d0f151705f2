package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZeroLogger implements the ports.Logger interface on top of zerolog.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a logger writing structured output to w at the given level.
// Unknown level strings fall back to info.
func New(level string, w io.Writer) *ZeroLogger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &ZeroLogger{logger: l}
}

func (z *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	z.emit(z.logger.Error().Err(err), msg, fields)
}

func (z *ZeroLogger) emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, m := range fields {
		event = event.Fields(m)
	}
	event.Msg(msg)
}
