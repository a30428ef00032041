package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"deskqueue/internal/config"
)

// New builds the application logger. Format "console" gives a human readable
// development encoder, anything else structured JSON on stdout.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig = encoderConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel), zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "undefined_host"
	}
	return l.With(zap.String("service", "deskqueue"), zap.String("hostname", hostname)), nil
}

// NewWithWriter returns a JSON logger writing one object per line to w.
func NewWithWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), level)
	return zap.New(core)
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.MessageKey = "msg"
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	return ec
}

// L returns the global logger, tagged with the trace of ctx when there is one.
func L(ctx context.Context) *zap.Logger {
	return WithTrace(ctx, zap.L())
}

// WithTrace adds trace_id and span_id fields from the span in ctx.
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.HasTraceID() {
		return l
	}

	return l.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}
