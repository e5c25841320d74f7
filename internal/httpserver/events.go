package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// handleEvents streams session snapshots as server-sent events.
// The first event is the current state; a "closed" event ends the stream
// when the session is closed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	g, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, cancel := g.Subscribe()
	defer cancel()
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			b, err := json.Marshal(toSnapshotDTO(snap))
			if err != nil {
				log.Warn().Err(err).Str("session", g.ID).Msg("encode snapshot")
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}
