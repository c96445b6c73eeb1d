package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/svsu-dev/samadhan/internal/pkg/httputil"
	"github.com/svsu-dev/samadhan/internal/pkg/logger"
)

// SetupRoutes configures the router. staticDir is the built front end; when
// empty, only the API is served.
func SetupRoutes(h *Handlers, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(recoverer)

	// The portal form may be served from a different origin during
	// development, so CORS stays permissive for the read/submit endpoints.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Post("/generate-application", h.GenerateApplication)
	r.Post("/submit-issue", h.SubmitIssue)
	r.Get("/issues", h.ListIssues)
	r.Get("/admin-issues", h.AdminIssues)
	r.Get("/infra-issues", h.InfraIssues)
	r.Get("/notices", h.Notices)

	if staticDir != "" {
		r.NotFound(spaHandler(staticDir))
	} else {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			httputil.NotFound(w)
		})
	}

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
		)
	})
}

// recoverer converts panics into the portal's JSON 500 envelope instead of
// a bare connection reset.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered", "path", r.URL.Path, "panic", rec)
				httputil.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
