package routes

import (
	"github.com/fairwaylabs/clubtrack/handlers"
	"github.com/fairwaylabs/clubtrack/middleware"
	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Round     *handlers.RoundHandler
	Course    *handlers.CourseHandler
	Squad     *handlers.SquadHandler
	Dashboard *handlers.DashboardHandler
	Scorecard *handlers.ScorecardHandler
	Admin     *handlers.AdminHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, gate services.AccessGate, jwtSecret string, allowedOrigins []string) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)
	router.Post("/auth/forgot-password", h.Auth.ForgotPassword)
	router.Post("/auth/reset-password", h.Auth.ResetPassword)

	// Authenticated, but reachable while approval is still pending, because
	// the waiting view needs the profile itself.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))

		r.Get("/me", h.Profile.Me)
		r.Patch("/me", h.Profile.UpdateMe)
	})

	// Approved members only
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))
		r.Use(middleware.RequireApproved(gate))

		r.Route("/rounds", func(r chi.Router) {
			r.Post("/", h.Round.Save)
			r.Get("/", h.Round.List)
			r.Get("/{roundID}", h.Round.Get)
			r.Delete("/{roundID}", h.Round.Delete)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Post("/", h.Course.Create)
			r.Get("/", h.Course.List)
			r.Get("/{courseID}", h.Course.Get)
		})

		r.Route("/squads", func(r chi.Router) {
			r.Post("/", h.Squad.Create)
			r.Get("/", h.Squad.List)
			r.Get("/{squadID}", h.Squad.Get)
			r.Delete("/{squadID}", h.Squad.Delete)
			r.Post("/{squadID}/join", h.Squad.Join)
			r.Post("/{squadID}/leave", h.Squad.Leave)
		})

		r.Get("/dashboard", h.Dashboard.Summary)
		r.Get("/leaderboard", h.Dashboard.Leaderboard)

		r.Post("/scorecards/extract", h.Scorecard.Extract)

		r.Get("/ws", h.WebSocket.ServeWs)
	})

	// Admin
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))
		r.Use(middleware.Authorize(models.RoleAdmin, models.RoleSuperAdmin))

		r.Get("/admin/profiles", h.Admin.ListProfiles)
		r.Patch("/admin/profiles/{profileID}/status", h.Admin.SetStatus)
		r.Patch("/admin/profiles/{profileID}/role", h.Admin.SetRole)
		r.Post("/admin/profiles", h.Admin.CreateMember)
	})
}
