package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/pelicansoup/internal/soup"
)

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	a := newAnalyzer(d.Engine, d.Cache, d.Metrics, logger)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Pelican Soup API", "/openapi.json", "/docs"))
	r.Handle("/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(optionalUser(d.Store))

		// Accounts.
		r.Post("/auth/register", handleRegister(d.Store))
		r.Post("/auth/login", handleLogin(d.Store))
		r.With(requireUser).Post("/auth/logout", handleLogout(d.Store))
		r.With(requireUser).Get("/auth/me", handleMe())
		r.Get("/users/{id}/stats", handleUserStats(d.Store))

		// Puzzles, single-player judging and comments.
		r.Route("/puzzles", func(r chi.Router) {
			r.Get("/", handleListPuzzles(d.Store))
			r.With(requireUser).Post("/", handleCreatePuzzle(d.Store, d.DefaultLang))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handleGetPuzzle(d.Store))
				r.With(requireUser).Put("/", handleUpdatePuzzle(d.Store, a, d.DefaultLang))
				r.With(requireUser).Delete("/", handleDeletePuzzle(d.Store, a))
				r.With(requireUser).Post("/like", handleLikePuzzle(d.Store))

				r.Get("/questions", handleListPuzzleQuestions(d.Store))
				r.Post("/questions", handleAskPuzzle(d.Store, a))
				r.Post("/guesses", handleGuessPuzzle(d.Store, a))

				r.Get("/comments", handleListComments(d.Store))
				r.With(requireUser).Post("/comments", handleCreateComment(d.Store))
			})
		})

		// Rooms. {code} is resolved by roomMiddleware, players by token.
		r.Post("/rooms", handleCreateRoom(d.Store, d.DefaultLang))
		r.Route("/rooms/{code}", func(r chi.Router) {
			r.Use(roomMiddleware(d.Store))
			r.Get("/", handleRoomState(d.Store))
			r.Post("/join", handleJoinRoom(d.Store, d.Broker))

			r.Group(func(r chi.Router) {
				r.Use(requirePlayer(d.Store))
				r.Post("/questions", handleAskRoom(d.Store, d.Broker, a))
				r.Post("/guesses", handleGuessRoom(d.Store, d.Broker, a))
				r.Post("/vote", handleVote(d.Store, d.Broker))
				r.Get("/chat", handleListChat(d.Store))
				r.Post("/chat", handlePostChat(d.Store, d.Broker))
				r.Get("/events", handleEvents(d.Broker, d.Metrics))
				r.Get("/ws", handleRoomWS(d.Broker, d.Metrics, logger))

				r.Group(func(r chi.Router) {
					r.Use(requireHost)
					r.Post("/start", handleRoomTransition(d.Store, d.Broker, soup.RoomPlaying))
					r.Post("/finish", handleRoomTransition(d.Store, d.Broker, soup.RoomFinished))
					r.Put("/questions/{qid}/verdict", handleSetVerdict(d.Store, d.Broker))
					r.Post("/questions/{qid}/reanalyze", handleReanalyze(d.Store, d.Broker, a))
					r.Post("/players/{pid}/eliminate", handleEliminate(d.Store, d.Broker))
				})
			})
		})
	})

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
			return
		}
	}
	r.NotFound(handleNotFound)
}
