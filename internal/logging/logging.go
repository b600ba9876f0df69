package logging

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/bizledger/cashbank/internal/config"
)

type contextKey string

const loggerKey contextKey = "logger"

// New builds the root logger. Unknown levels fall back to info.
func New(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := logrus.New()
	logger.Out = out

	switch cfg.Format {
	case "text":
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		logger.Formatter = new(logrus.JSONFormatter)
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Level = level
	return logger
}

// WithLogger stores a request scoped logger in ctx.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the request scoped logger, or the standard logger when
// none was attached.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
			return log
		}
	}
	return logrus.StandardLogger()
}

// RequestLogger attaches a logger tagged with the chi request id to every
// request and logs the outcome once the handler returns.
func RequestLogger(base logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := base.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(WithLogger(r.Context(), entry)))

			entry.WithFields(logrus.Fields{
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("request completed")
		})
	}
}
