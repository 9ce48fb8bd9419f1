// internal/planner/middleware.go
package planner

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs basic request details and latency.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Printf(
				"request id=%s method=%s path=%s status=%d duration=%s",
				middleware.GetReqID(r.Context()),
				r.Method,
				r.URL.Path,
				status,
				time.Since(start),
			)
		})
	}
}

// NewRouter builds the HTTP front end for the planner.
func NewRouter(h *Handler, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	h.Routes(r)
	return r
}
