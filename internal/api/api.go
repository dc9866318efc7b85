package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/rulestore"
)

// CourtHeader carries the court district a request operates on.
// Every /api/v1 route is scoped to exactly one court.
const CourtHeader = "X-Court-District"

// API is the main struct that holds dependencies and the router.
// It follows the Dependency Injection pattern to facilitate testing.
type API struct {
	// Router is the Chi multiplexer that handles HTTP requests.
	Router *chi.Mux

	// rules is the data access layer for procedural rules.
	// We use the interface type to allow for mocking in unit tests.
	rules rulestore.RuleRepository

	// l1 is the optional in-process rule set cache for the evaluation hot
	// path. May be nil (e.g. in handler unit tests).
	l1 *cache.MemoryCache

	// l2 is the optional shared Redis cache. May be nil.
	l2 cache.Service

	// engine runs compliance evaluations. Stateless and shared.
	engine *compliance.Engine
}

// NewAPI creates a new API instance.
//
// Panics if ruleRepo or engine are nil; l1 and l2 may be nil to run
// cache-less (every evaluation hits the repository directly).
func NewAPI(ruleRepo rulestore.RuleRepository, l1 *cache.MemoryCache, l2 cache.Service, engine *compliance.Engine) *API {
	// We check the interface explicitly.
	// An interface is only nil if it has no underlying type and no value.
	if ruleRepo == nil {
		panic("api: rule repository cannot be nil")
	}
	if engine == nil {
		panic("api: compliance engine cannot be nil")
	}

	a := &API{
		Router: chi.NewRouter(),
		rules:  ruleRepo,
		l1:     l1,
		l2:     l2,
		engine: engine,
	}

	a.configureRoutes()
	return a
}

// configureRoutes registers the global middleware stack and API endpoints.
func (a *API) configureRoutes() {
	// 1. Global Middleware Stack
	// RequestID: Adds a unique ID to each request context (essential for tracing).
	a.Router.Use(middleware.RequestID)
	// RealIP: correctly sets the IP if behind a proxy/LB.
	a.Router.Use(middleware.RealIP)
	// Logger: Logs request method, path, status, and duration.
	a.Router.Use(RequestLogger)
	// Recoverer: Prevents the server from crashing on panics, returning 500 instead.
	a.Router.Use(middleware.Recoverer)
	// Content-Type: Forces JSON content type for API responses.
	a.Router.Use(render.SetContentType(render.ContentTypeJSON))

	// 2. Public Routes
	a.Router.Get("/health", a.handleHealthCheck)

	// 3. API V1 Routes (court-scoped via the X-Court-District header)
	a.Router.Route("/api/v1", func(r chi.Router) {
		r.Use(a.requireCourt)

		r.Route("/deadlines", func(r chi.Router) {
			r.Post("/compute", a.handleComputeDeadline)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Post("/", a.handleCreateRule)
			r.Get("/", a.handleListRules)
			r.Post("/evaluate", a.handleEvaluate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.handleGetRule)
				r.Patch("/", a.handleUpdateRule)
				r.Delete("/", a.handleDeleteRule)
			})
		})
	})
}

// handleHealthCheck verifies if the service is serving HTTP. Deep dependency
// checks live on the observability server's readiness probe.
func (a *API) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}
