// internal/httpserver/server.go
//
// HTTP server wiring for the Wordscape backend.
// Responsibilities:
//   - Router + middleware (request IDs, request logging, panic recovery,
//     CORS, JSON, timeouts).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): /game/* (see routes_game.go).
//   - Event stream: GET /game/{id}/events (no timeout, see events.go).
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /rounds/*.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; game routes still run for guests.

package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscape/apps/go-server/internal/config"
	"github.com/robalobadob/wordscape/apps/go-server/internal/game"
	"github.com/robalobadob/wordscape/apps/go-server/internal/storage"
	"github.com/robalobadob/wordscape/apps/go-server/internal/store"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config   config.Config
	Sessions store.Store
	DB       *storage.Store
	Words    game.Source
	// Reactions builds the side-effect services of a new session.
	Reactions func() game.Reactions
}

// Server bundles router, session store, and DB handle.
type Server struct {
	r         *chi.Mux
	cfg       config.Config
	sessions  store.Store
	db        *storage.Store
	words     game.Source
	reactions func() game.Reactions
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       d.Config,
		sessions:  d.Sessions,
		db:        d.DB,
		words:     d.Words,
		reactions: d.Reactions,
	}
	if s.reactions == nil {
		s.reactions = func() game.Reactions { return nil }
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)          // add X-Request-ID
	s.r.Use(chimw.RealIP)             // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)            // one log line per request
	s.r.Use(chimw.Recoverer)          // recover from panics
	s.r.Use(cors(s.cfg.ClientOrigin)) // credentials-friendly CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "wordscape-go",
				"endpoints": []string{"/health", "POST /game/new", "/game/{id}/*", "/auth/*", "/rounds/leaderboard"},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]int{
				"words":    len(s.words.MovingWords()),
				"sessions": s.sessions.Len(),
			})
		})

		// Game endpoints: optional auth (guests can play)
		s.mountGame(r.With(s.withOptionalAuth()))

		// Auth + profile/stats
		s.mountAuthRoutes(r)
		r.Get("/rounds/leaderboard", s.handleLeaderboard)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	// Long-lived stream; must stay outside the timeout group.
	s.r.With(s.withOptionalAuth()).Get("/game/{id}/events", s.handleEvents)

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// CloseSessions closes every live session (used on shutdown).
func (s *Server) CloseSessions(ctx context.Context) {
	for _, id := range s.sessions.IDs() {
		if sess, err := s.sessions.Delete(ctx, id); err == nil {
			sess.Close()
		}
	}
	log.Info().Msg("sessions closed")
}

// handleLeaderboard returns the best recorded rounds (?limit=N, capped by storage).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.db.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if rows == nil {
		rows = []storage.LBRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
