package handlers

import (
	"net/http"
	"time"

	"taskhub/config"
	"taskhub/database"
	"taskhub/logging"
	"taskhub/middleware"
	"taskhub/response"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const requestTimeout = 30 * time.Second

// NewRouter wires every API route against store.
func NewRouter(cfg *config.Config, store database.Store) http.Handler {
	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTExpiration, store)
	policy := middleware.NewPolicy(auth, cfg.PublicReads)

	// Initialize handlers
	authHandler := NewAuthHandler(cfg, store, auth)
	teamHandler := NewTeamHandler(cfg, store)
	projectHandler := NewProjectHandler(cfg, store)
	taskHandler := NewTaskHandler(cfg, store)
	dashboardHandler := NewDashboardHandler(cfg, store)
	healthHandler := NewHealthHandler(store)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestIDHeader)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{Logger: logging.Logger, NoColor: true}))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	router.Use(chimiddleware.Timeout(requestTimeout))

	// Set before any Route call so sub-routers inherit them
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", healthHandler.Check)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(policy.Authorize(middleware.ResourceUser, middleware.OpRead)).Get("/me", authHandler.Me)
			r.With(
				middleware.ValidateObjectID("id"),
				policy.Authorize(middleware.ResourceUser, middleware.OpAssignRole),
			).Put("/{id}/role", authHandler.UpdateRole)
		})

		r.Route("/teams", func(r chi.Router) {
			resourceRoutes(r, policy, middleware.ResourceTeam, crud{
				create: teamHandler.Create,
				list:   teamHandler.List,
				get:    teamHandler.Get,
				update: teamHandler.Update,
				delete: teamHandler.Delete,
			}, func(r chi.Router) {
				r.With(policy.Authorize(middleware.ResourceTeam, middleware.OpRead)).Get("/summary", teamHandler.Summary)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			resourceRoutes(r, policy, middleware.ResourceProject, crud{
				create: projectHandler.Create,
				list:   projectHandler.List,
				get:    projectHandler.Get,
				update: projectHandler.Update,
				delete: projectHandler.Delete,
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(policy.Authorize(middleware.ResourceTask, middleware.OpRead)).Get("/export", taskHandler.ExportCSV)
			resourceRoutes(r, policy, middleware.ResourceTask, crud{
				create: taskHandler.Create,
				list:   taskHandler.List,
				get:    taskHandler.Get,
				update: taskHandler.Update,
				delete: taskHandler.Delete,
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(policy.Authorize(middleware.ResourceDashboard, middleware.OpRead))
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/me", dashboardHandler.Me)
		})
	})

	return router
}

type crud struct {
	create, list, get, update, delete http.HandlerFunc
}

// resourceRoutes mounts the five CRUD routes of one resource plus any extra
// routes under /{id}. Path IDs are checked before authorization, like every
// other request validation.
func resourceRoutes(r chi.Router, policy *middleware.Policy, resource middleware.Resource, h crud, idRoutes ...func(r chi.Router)) {
	r.With(policy.Authorize(resource, middleware.OpRead)).Get("/", h.list)
	r.With(policy.Authorize(resource, middleware.OpCreate)).Post("/", h.create)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(middleware.ValidateObjectID("id"))
		r.With(policy.Authorize(resource, middleware.OpRead)).Get("/", h.get)
		r.With(policy.Authorize(resource, middleware.OpUpdate)).Put("/", h.update)
		r.With(policy.Authorize(resource, middleware.OpDelete)).Delete("/", h.delete)
		for _, fn := range idRoutes {
			fn(r)
		}
	})
}
