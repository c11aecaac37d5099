package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/folio/core/logger"
)

// accessLog writes one debug line per request; probes are too frequent for info.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.HTTP.Debug("http request",
			slog.String("event", "http.request"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("code", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("took", logger.RoundMS(time.Since(start))),
			slog.String("rid", middleware.GetReqID(r.Context())),
		)
	})
}
