package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aburizalp/ministry-management/internal/auth"
	"github.com/aburizalp/ministry-management/internal/event"
	"github.com/aburizalp/ministry-management/internal/finance"
	"github.com/aburizalp/ministry-management/internal/hierarchy"
	"github.com/aburizalp/ministry-management/internal/member"
	"github.com/aburizalp/ministry-management/internal/rbac"
	"github.com/aburizalp/ministry-management/internal/transport/middleware"
	"github.com/aburizalp/ministry-management/internal/transport/swagger"
	"github.com/aburizalp/ministry-management/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Hierarchy *hierarchy.Handler
	RBAC      *rbac.Handler
	Member    *member.Handler
	Event     *event.Handler
	Finance   *finance.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redisClient *redis.Client, handlers Handlers, registry *prometheus.Registry, metrics *middleware.Metrics, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redisClient)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if registry != nil && metrics != nil {
		router.Use(middleware.HTTPMetricsMiddleware(metrics))
		router.Handle("/metrics", middleware.MetricsHandler(registry))
	}

	// Published contract and its UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Post("/logout", handlers.Auth.Logout)
		})

		// Everything below requires an authenticated caller with the
		// resolved scope loaded into the request context.
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", handlers.User.ListUsers)
				ur.Post("/", handlers.User.CreateUser)
				ur.Get("/me", handlers.User.Me)
				ur.Put("/{id}/scope", handlers.User.AssignScope)
			})

			pr.Route("/regions", func(hr chi.Router) {
				hr.Get("/", handlers.Hierarchy.ListRegions)
				hr.Post("/", handlers.Hierarchy.CreateRegion)
				hr.Delete("/{id}", handlers.Hierarchy.DeleteRegion)
			})
			pr.Route("/universities", func(hr chi.Router) {
				hr.Get("/", handlers.Hierarchy.ListUniversities)
				hr.Post("/", handlers.Hierarchy.CreateUniversity)
				hr.Delete("/{id}", handlers.Hierarchy.DeleteUniversity)
			})
			pr.Route("/small-groups", func(hr chi.Router) {
				hr.Get("/", handlers.Hierarchy.ListSmallGroups)
				hr.Post("/", handlers.Hierarchy.CreateSmallGroup)
				hr.Delete("/{id}", handlers.Hierarchy.DeleteSmallGroup)
			})
			pr.Route("/alumni-groups", func(hr chi.Router) {
				hr.Get("/", handlers.Hierarchy.ListAlumniGroups)
				hr.Post("/", handlers.Hierarchy.CreateAlumniGroup)
				hr.Delete("/{id}", handlers.Hierarchy.DeleteAlumniGroup)
			})
			pr.Post("/hierarchy/selection", handlers.Hierarchy.ApplySelection)

			pr.Route("/roles", func(rr chi.Router) {
				rr.Get("/", handlers.RBAC.ListRoles)
				rr.Post("/", handlers.RBAC.CreateRole)
				rr.Delete("/{id}", handlers.RBAC.DeleteRole)
				rr.Get("/{id}/permissions", handlers.RBAC.ListRolePermissions)
				rr.Put("/{id}/permissions", handlers.RBAC.ReconcilePermissions)
				rr.Post("/{id}/permissions/{permissionID}", handlers.RBAC.AssignPermission)
				rr.Delete("/{id}/permissions/{permissionID}", handlers.RBAC.UnassignPermission)
			})
			pr.Route("/permissions", func(pm chi.Router) {
				pm.Get("/", handlers.RBAC.ListPermissions)
				pm.Post("/", handlers.RBAC.CreatePermission)
				pm.Delete("/{id}", handlers.RBAC.DeletePermission)
			})

			pr.Route("/members", func(mr chi.Router) {
				mr.Get("/", handlers.Member.List)
				mr.Post("/", handlers.Member.Create)
				mr.Get("/{id}", handlers.Member.Get)
				mr.Patch("/{id}", handlers.Member.Update)
				mr.Delete("/{id}", handlers.Member.Delete)
			})

			pr.Route("/events", func(er chi.Router) {
				er.Get("/", handlers.Event.List)
				er.Post("/", handlers.Event.Create)
				er.Get("/{id}", handlers.Event.Get)
				er.Patch("/{id}", handlers.Event.Update)
				er.Delete("/{id}", handlers.Event.Delete)
				er.Get("/{id}/attendance", handlers.Event.ListAttendance)
				er.Post("/{id}/attendance", handlers.Event.RecordAttendance)
			})

			pr.Route("/designations", func(dr chi.Router) {
				dr.Get("/", handlers.Finance.ListDesignations)
				dr.Post("/", handlers.Finance.CreateDesignation)
				dr.Delete("/{id}", handlers.Finance.DeleteDesignation)
			})
			pr.Route("/contributions", func(cr chi.Router) {
				cr.Get("/", handlers.Finance.ListContributions)
				cr.Post("/", handlers.Finance.RecordContribution)
			})
		})
	})
}
