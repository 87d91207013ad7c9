package routes

import (
	"net/http"

	_ "github.com/Dosada05/clubscore/docs"
	"github.com/Dosada05/clubscore/handlers"
	"github.com/Dosada05/clubscore/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Rating     *handlers.RatingHandler
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/ratings", func(r chi.Router) {
		r.Get("/simulate", h.Rating.Simulate)
		r.Get("/tiers", h.Rating.Tiers)
		r.Get("/progress", h.Rating.Progress)
	})
	router.Get("/players/{playerID}/rating", h.Rating.PlayerRating)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/bracket", h.Bracket.Get)

		// Только для организаторов и админов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(middleware.RoleAdmin, middleware.RoleOrganizer))

			r.Post("/", h.Tournament.CreateHandler)
			r.Post("/{tournamentID}/bracket", h.Bracket.Generate)
			r.Post("/{tournamentID}/matches/{matchID}/result", h.Bracket.RecordResult)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
