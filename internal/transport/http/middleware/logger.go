package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"warbler/internal/logging"
)

// RequestLogger writes one zap entry per request.
func RequestLogger(next http.Handler) http.Handler {
	logger := logging.WithComponent("http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		}

		switch {
		case ww.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case ww.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	})
}
