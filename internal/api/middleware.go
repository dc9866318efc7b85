package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/gavelhq/gavel/internal/observability"
)

// courtContextKey is a private type to prevent context key collisions.
type courtContextKey struct{}

// RequestLogger creates a middleware that logs the start and end of each request.
// It integrates with slog to provide structured logs including RequestID, Method, Path, Status, and Duration.
// It also feeds the Prometheus HTTP metrics.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Get RequestID set by Chi's RequestID middleware
		reqID := middleware.GetReqID(r.Context())

		// Wrap the ResponseWriter to capture the status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Process the request
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()

		observability.APIReqDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
		observability.APIReqTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(status)).Inc()

		// We use Info level for success, Warn for 4xx, Error for 5xx
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		slog.Log(r.Context(), level, "HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", duration.String(),
			"request_id", reqID,
			"remote_ip", r.RemoteAddr,
		)
	})
}

// requireCourt extracts the court district from the X-Court-District header
// and stores it in the request context. Requests without one are rejected:
// there is no cross-court view of the rules table.
func (a *API) requireCourt(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		courtID := strings.TrimSpace(r.Header.Get(CourtHeader))
		if courtID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_MISSING_COURT",
				Message: "The " + CourtHeader + " header is required",
			})
			return
		}

		ctx := context.WithValue(r.Context(), courtContextKey{}, courtID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// courtFromContext returns the court district stored by requireCourt.
func courtFromContext(ctx context.Context) string {
	if courtID, ok := ctx.Value(courtContextKey{}).(string); ok {
		return courtID
	}
	return ""
}
