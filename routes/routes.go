package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/wefitlabs/courtside/handlers"
	"github.com/wefitlabs/courtside/middleware"
	"github.com/wefitlabs/courtside/models"
)

// SetupRoutes wires the full HTTP surface. Reading is public; score
// entry needs a logged-in user and reseeding needs an organizer.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	matchHandler *handlers.MatchHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)
	router.With(auth.Authenticate).Get("/auth/me", authHandler.Me)

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Get("/{eventID}/bracket", eventHandler.GetBracket)
		r.Get("/{eventID}/matches", eventHandler.ListMatches)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer))

			r.Post("/{eventID}/participants", eventHandler.RegisterParticipant)
			r.Patch("/{eventID}/participants/{participantID}/check-in", eventHandler.CheckInParticipant)
			r.Post("/{eventID}/reseed", eventHandler.Reseed)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RolePlayer, models.RoleOrganizer))

			r.Patch("/{matchID}/score", matchHandler.SubmitScore)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}", playerHandler.GetProfile)
		r.Get("/{playerID}/chemistry", playerHandler.GetChemistry)
		r.Get("/{playerID}/form", playerHandler.GetForm)
		r.Get("/{playerID}/matchup/{opponentID}", playerHandler.GetMatchup)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", playerHandler.CreateProfile)
			r.Get("/me", playerHandler.GetMyProfile)
			r.Post("/{playerID}/avatar", playerHandler.UploadAvatar)
		})
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
