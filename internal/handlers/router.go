package handlers

import (
	"net/http"

	"collab-match-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Router bundles everything the HTTP API needs
type Router struct {
	Users          *UserHandler
	Listings       *ListingHandler
	Matches        *MatchHandler
	Tasks          *TaskHandler
	System         *SystemHandler
	Auth           middleware.TokenValidator
	AllowedOrigins []string
	RequestLogging bool
}

// Handler builds the chi router
func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if rt.RequestLogging {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: rt.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.UserIDHeader},
		MaxAge:         300,
	}).Handler)

	r.Get("/health", rt.System.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(rt.Auth))

		r.Post("/users", rt.Users.CreateUser)
		r.Patch("/users/me", rt.Users.UpdateMe)
		r.Post("/users/me/avatar", rt.Users.UploadAvatar)
		r.Get("/users/{user_id}", rt.Users.GetUser)

		r.Post("/listings", rt.Listings.CreateListing)
		r.Get("/listings", rt.Listings.Discover)
		r.Get("/listings/mine", rt.Listings.Mine)
		r.Get("/listings/{listing_id}", rt.Listings.GetListing)
		r.Patch("/listings/{listing_id}", rt.Listings.UpdateListing)

		r.Post("/swipes", rt.Listings.Swipe)

		r.Get("/matches", rt.Matches.ListMatches)
		r.Route("/matches/{match_id}", func(r chi.Router) {
			r.Get("/", rt.Matches.GetMatch)
			r.Post("/archive", rt.Matches.ArchiveMatch)
			r.Get("/messages", rt.Matches.ListMessages)
			r.Post("/messages", rt.Matches.PostMessage)
			r.Get("/tasks", rt.Matches.ListTasks)
			r.Post("/tasks", rt.Matches.CreateTask)
		})

		r.Patch("/tasks/{task_id}", rt.Tasks.UpdateTask)
		r.Delete("/tasks/{task_id}", rt.Tasks.DeleteTask)

		r.Get("/stats", rt.System.Stats)
	})

	return r
}
