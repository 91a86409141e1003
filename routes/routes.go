package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/checkmate-cup/docs"
	"github.com/Dosada05/checkmate-cup/handlers"
	"github.com/Dosada05/checkmate-cup/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Admin      *handlers.AdminHandler
	Game       *handlers.GameHandler
	Bot        *handlers.BotHandler
	Tournament *handlers.TournamentHandler
	Standings  *handlers.StandingsHandler
	Profile    *handlers.ProfileHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, auth *middleware.Authenticator, allowedOrigins []string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// Совместимые с прежним клиентом функции
	router.Route("/functions/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.With(auth.OptionalAuthenticate).Post("/admin-action", h.Admin.ActionHandler)
		r.With(auth.Authenticate).Post("/finalize-game", h.Game.FinalizeHandler)
		r.Post("/chess-bot", h.Bot.MoveHandler)
		r.Post("/chess-commentary", h.Bot.CommentaryHandler)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/current", h.Tournament.CurrentHandler)
			r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
			r.Get("/{tournamentID}/players", h.Tournament.ListPlayersHandler)
			r.Get("/{tournamentID}/games", h.Tournament.ListGamesHandler)
			r.Get("/{tournamentID}/bracket", h.Tournament.BracketHandler)
		})
		r.Get("/champions", h.Tournament.ListChampionsHandler)
		r.Get("/standings", h.Standings.GetHandler)
		r.Post("/practice/move", h.Bot.PracticeMoveHandler)

		r.Route("/profiles", func(r chi.Router) {
			r.With(auth.Authenticate).Get("/me", h.Profile.MeHandler)
			r.Get("/{profileID}", h.Profile.GetByIDHandler)
		})

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", h.Game.GetByIDHandler)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/ready", h.Game.ReadyHandler)
				r.Post("/moves", h.Game.MoveHandler)
				r.Post("/resign", h.Game.ResignHandler)
				r.Post("/draw/offer", h.Game.OfferDrawHandler)
				r.Post("/draw/accept", h.Game.AcceptDrawHandler)
			})
		})
	})

	// Realtime-комнаты, без таймаута
	router.Route("/ws", func(r chi.Router) {
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
		r.Get("/games/{gameID}", h.WebSocket.ServeGame)
		r.Get("/standings", h.WebSocket.ServeStandings)
	})
}
