package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type logAttrsKey struct{}

// logAttrs collects attributes that inner middleware learns after the request logger
// has run, such as the authenticated user.
type logAttrs struct {
	mu    sync.Mutex
	attrs []any
}

// annotate adds key/value pairs to the request's log line. It is a no-op outside Logger.
func annotate(ctx context.Context, args ...any) {
	la, ok := ctx.Value(logAttrsKey{}).(*logAttrs)
	if !ok {
		return
	}
	la.mu.Lock()
	la.attrs = append(la.attrs, args...)
	la.mu.Unlock()
}

// Logger writes one line per request. Server errors log at error level and client
// errors at warn. Job submissions include the polling location of the new job.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		la := &logAttrs{}

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), logAttrsKey{}, la)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			args = append(args, "route", rctx.RoutePattern())
		}
		if loc := ww.Header().Get("Location"); loc != "" && status == http.StatusAccepted {
			args = append(args, "job", loc)
		}
		la.mu.Lock()
		args = append(args, la.attrs...)
		la.mu.Unlock()

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "request", args...)
	})
}
