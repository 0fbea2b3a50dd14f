package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// wrappedWriter captures the HTTP status code set by the wrapped handler.
// It embeds the original http.ResponseWriter so every other method is
// promoted unchanged.
type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *wrappedWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.statusCode = statusCode
}

// Flush forwards to the underlying writer so streaming handlers (SSE)
// still work behind the logging middleware.
func (w *wrappedWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Status defaults to 200; the http server writes that implicitly
		// when a handler never calls WriteHeader.
		wrapped := &wrappedWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		end := time.Since(start)

		logger.Info(
			"Request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("host", r.Host),
			slog.Int64("duration_ns", end.Nanoseconds()),
			slog.Int("status", wrapped.statusCode),
			slog.String("remote_addr", r.RemoteAddr),
		)
	})
}

// Logging middleware is used to write log information out to the console
// on each request/response.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return logging(logger, next)
	}
}
