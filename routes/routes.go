package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtmate/matchmaking-system/handlers"
	"github.com/courtmate/matchmaking-system/middleware"
	"github.com/courtmate/matchmaking-system/models"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	scheduleHandler *handlers.ScheduleHandler,
	courtHandler *handlers.CourtHandler,
	matchHandler *handlers.MatchHandler,
	matchmakingHandler *handlers.MatchmakingHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Каталог кортов открыт на чтение.
	router.Route("/courts", func(r chi.Router) {
		r.Get("/", courtHandler.List)
		r.Get("/{courtID}", courtHandler.Get)

		// Управление каталогом только для организаторов.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(models.RoleOrganizer))

			r.Post("/", courtHandler.Create)
			r.Put("/{courtID}", courtHandler.Update)
			r.Delete("/{courtID}", courtHandler.Delete)
			r.Post("/{courtID}/photo", courtHandler.UploadPhoto)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.ListGuildPlayers)
			r.Get("/{userID}", playerHandler.GetProfile)
			r.Patch("/me", playerHandler.UpdateProfile)
			r.Put("/me/preferences", playerHandler.UpdatePreferences)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", scheduleHandler.Create)
			r.Get("/", scheduleHandler.ListMine)
			r.Delete("/", scheduleHandler.Clear)
			r.Get("/{scheduleID}", scheduleHandler.Get)
			r.Delete("/{scheduleID}", scheduleHandler.Cancel)
			r.Get("/{scheduleID}/suggestions", matchmakingHandler.SuggestionsForSchedule)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListGuild)
			r.Get("/me", matchHandler.ListMine)
			r.Post("/propose", matchmakingHandler.Propose)
			r.Get("/{matchID}", matchHandler.Get)
			r.Post("/{matchID}/confirm", matchHandler.Confirm)
			r.Post("/{matchID}/cancel", matchHandler.Cancel)
			r.Post("/{matchID}/start", matchHandler.Start)
			r.Post("/{matchID}/complete", matchHandler.Complete)
		})

		r.Get("/matchmaking/suggestions", matchmakingHandler.SuggestionsForMe)
	})

	router.Get("/ws/guilds/{guildID}", webSocketHandler.ServeWs)
}
