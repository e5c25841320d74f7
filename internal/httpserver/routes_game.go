// internal/httpserver/routes_game.go
//
// Game session endpoints. Guests may play; when a user is logged in,
// finished rounds are recorded under their account, otherwise under the
// anonymous cookie id.
//
//	POST   /game/new                        create a session (ready_to_play)
//	GET    /game/{id}                       current snapshot
//	POST   /game/{id}/toggle                start / reset
//	POST   /game/{id}/words/{index}/lost    word finished its traversal
//	POST   /game/{id}/words/{index}/caught  word tapped
//	POST   /game/{id}/speech                recognizer transcript or error
//	POST   /game/{id}/permission            {"granted": bool}
//	DELETE /game/{id}/permission            dismiss the permission dialog
//	DELETE /game/{id}                       close the session

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscape/apps/go-server/internal/game"
	"github.com/robalobadob/wordscape/apps/go-server/internal/speech"
	"github.com/robalobadob/wordscape/apps/go-server/internal/storage"
	"github.com/robalobadob/wordscape/apps/go-server/internal/store"
)

// speechSink is the push side of a device-fed recognizer.
type speechSink interface {
	Deliver(transcript string) bool
	DeliverWords(words []string) bool
	Fail(msg string)
}

type speechReq struct {
	Transcript string   `json:"transcript"`
	Words      []string `json:"words"`
	Error      string   `json:"error"`
}

type permissionReq struct {
	Granted bool `json:"granted"`
}

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.withSession(func(w http.ResponseWriter, r *http.Request, g *game.Session) {
		writeJSON(w, http.StatusOK, toSnapshotDTO(g.Snapshot()))
	}))
	r.Post("/game/{id}/toggle", s.withSession(func(w http.ResponseWriter, r *http.Request, g *game.Session) {
		writeJSON(w, http.StatusOK, toSnapshotDTO(g.ToggleStatus()))
	}))
	r.Post("/game/{id}/words/{index}/lost", s.withSession(func(w http.ResponseWriter, r *http.Request, g *game.Session) {
		transition(w, r, g, g.WordLost)
	}))
	r.Post("/game/{id}/words/{index}/caught", s.withSession(func(w http.ResponseWriter, r *http.Request, g *game.Session) {
		transition(w, r, g, g.WordCaught)
	}))
	r.Post("/game/{id}/speech", s.withSession(s.handleSpeech))
	r.Post("/game/{id}/permission", s.withSession(func(w http.ResponseWriter, r *http.Request, g *game.Session) {
		var body permissionReq
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		writeJSON(w, http.StatusOK, toSnapshotDTO(g.SetVoicePermission(body.Granted)))
	}))
	r.Delete("/game/{id}/permission", s.withSession(func(w http.ResponseWriter, r *http.Request, g *game.Session) {
		writeJSON(w, http.StatusOK, toSnapshotDTO(g.DismissPermissionDialog()))
	}))
	r.Delete("/game/{id}", func(w http.ResponseWriter, r *http.Request) {
		g, err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "Game not found")
			return
		}
		g.Close()
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}

// handleNewGame creates a session bound to the caller (user or guest).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	owner := storage.Round{}
	if u := currentUser(r); u != nil {
		owner.UserID = u.ID
	} else {
		owner.AnonymousID = s.ensureAnonID(w, r)
	}

	g := game.New(s.words,
		game.WithReactions(s.reactions()),
		game.WithRecognizer(speech.NewSession(s.cfg.SpeechEnabled)),
		game.WithServerClock(s.cfg.ServerClock),
		game.WithRecorder(s.roundRecorder(owner)),
	)
	if err := s.sessions.Save(r.Context(), g); err != nil {
		g.Close()
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("session", g.ID).Str("user", owner.UserID).Msg("game created")
	writeJSON(w, http.StatusOK, toSnapshotDTO(g.Snapshot()))
}

// roundRecorder persists finished rounds for one owner (best effort).
func (s *Server) roundRecorder(owner storage.Round) game.RoundRecorder {
	return game.RecorderFunc(func(rd game.Round) {
		if s.db == nil {
			return
		}
		row := owner
		row.SessionID = rd.SessionID
		row.Caught = rd.Caught
		row.Lost = rd.Lost
		row.StartedAt = rd.StartedAt
		row.FinishedAt = rd.FinishedAt

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.RecordRound(ctx, row); err != nil {
			log.Warn().Err(err).Str("session", rd.SessionID).Msg("record round")
		}
	})
}

// handleSpeech feeds a device transcript (or recognizer error) into the
// session's recognizer. Matching happens asynchronously.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request, g *game.Session) {
	sink, ok := g.Recognizer().(speechSink)
	if !ok {
		writeError(w, http.StatusConflict, "speech_unavailable")
		return
	}
	var body speechReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if body.Error != "" {
		sink.Fail(body.Error)
		writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
		return
	}
	var accepted bool
	if len(body.Words) > 0 {
		accepted = sink.DeliverWords(body.Words)
	} else {
		accepted = sink.Deliver(body.Transcript)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

// transition parses {index} and applies a word transition.
func transition(w http.ResponseWriter, r *http.Request, g *game.Session, apply func(int) (bool, error)) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_index")
		return
	}
	changed, err := apply(i)
	if errors.Is(err, game.ErrNoSuchWord) {
		writeError(w, http.StatusBadRequest, "invalid_index")
		return
	}
	writeJSON(w, http.StatusOK, transitionDTO{Changed: changed, snapshotDTO: toSnapshotDTO(g.Snapshot())})
}

// withSession resolves {id} to a live session or answers 404.
func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *game.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Game not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store_error")
			return
		}
		h(w, r, g)
	}
}
