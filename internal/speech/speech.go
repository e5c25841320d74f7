// Package speech is the speech-to-text boundary of the game.
//
// Recognition itself runs on the player's device; the device pushes
// transcripts and recognizer errors here. A Session turns them into a
// stream of recognized-word batches for the game to match against.
package speech

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable is the error text published when recognition is disabled.
const ErrUnavailable = "speech recognition unavailable"

// clientAbort is the error code a device reports when it cancels its own
// recognizer; it carries no information for the player.
const clientAbort = "client"

const subscriberBuffer = 16

// State is the latest recognition result.
// Gen identifies the listening session that produced SpokenWords; it is
// bumped by every successful StartListening.
type State struct {
	SpokenWords []string
	Error       string
	Gen         int
}

// Service is the recognizer contract used by game sessions.
type Service interface {
	StartListening()
	StopListening()
	State() State
	Subscribe() (<-chan State, func())
}

// Session is a Service fed by Deliver and Fail.
// At most one listening session is active at a time.
type Session struct {
	mu        sync.Mutex
	available bool
	listening bool
	gen       int
	state     State
	next      int
	subs      map[int]chan State
}

// NewSession returns a recognizer. When available is false every start
// attempt publishes ErrUnavailable instead of listening.
func NewSession(available bool) *Session {
	return &Session{available: available, subs: make(map[int]chan State)}
}

// StartListening begins a listening session; repeated calls are no-ops.
func (s *Session) StartListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening {
		return
	}
	if !s.available {
		s.state.Error = ErrUnavailable
		s.publishLocked()
		return
	}
	s.listening = true
	s.gen++
	s.state = State{Gen: s.gen}
	s.publishLocked()
}

// StopListening ends the listening session, if any.
func (s *Session) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
}

// Listening reports whether a session is active.
func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Deliver publishes one transcript as a batch of words. It reports false
// when nothing is listening or the transcript is blank.
func (s *Session) Deliver(transcript string) bool {
	return s.DeliverWords(Tokenize(transcript))
}

// DeliverWords publishes an already tokenized batch.
func (s *Session) DeliverWords(words []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listening || len(words) == 0 {
		return false
	}
	s.state = State{SpokenWords: append([]string(nil), words...), Error: s.state.Error, Gen: s.gen}
	s.publishLocked()
	return true
}

// Fail records a recognizer error. Client aborts are ignored.
func (s *Session) Fail(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" || strings.EqualFold(msg, clientAbort) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = "Error: " + msg
	log.Error().Str("error", msg).Msg("speech recognition")
	s.publishLocked()
}

// State returns a copy of the latest result.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Subscribe returns a channel of published states and a cancel func.
// A reader that falls more than subscriberBuffer states behind loses the
// oldest ones.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan State, subscriberBuffer)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) publishLocked() {
	st := s.copyLocked()
	for _, ch := range s.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

func (s *Session) copyLocked() State {
	st := s.state
	st.SpokenWords = append([]string(nil), s.state.SpokenWords...)
	return st
}

// Tokenize splits a transcript into words on whitespace.
func Tokenize(transcript string) []string {
	return strings.Fields(transcript)
}
