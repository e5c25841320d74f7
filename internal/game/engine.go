// internal/game/engine.go
//
// Core game engine for a single word-catching session.
// Responsibilities:
//   - Own the word list state and the score/status state of one player.
//   - Toggle between ready_to_play and playing (the single start/reset action).
//   - Apply the per-word transitions: moving → end (lost), moving → caught.
//   - Match recognized speech against moving words.
//   - Fire reactions (readback, haptic pulse, catch sound) and publish
//     every change to observers.
//
// Notes:
//   - Word transitions are only valid while playing; repeated calls on a
//     word that is already caught or past moving are no-ops.
//   - Reactions are fire-and-forget; the engine never waits on them.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscape/apps/go-server/internal/speech"
)

const (
	// CatchSound is the effect played when a word is caught.
	CatchSound = "catch"
	// HapticPulse is the vibration length used when a word is lost.
	HapticPulse = 100 * time.Millisecond
)

// ErrNoSuchWord is returned for a word index outside the current list.
var ErrNoSuchWord = errors.New("no such word")

// Reactions are the fire-and-forget side effects of word transitions.
type Reactions interface {
	LoadSound(name string)
	PlayEffect(name string)
	PlayText(text string)
	Vibrate(d time.Duration)
	Release()
}

// Recognizer is the speech-to-text service a session listens to.
type Recognizer interface {
	StartListening()
	StopListening()
	State() speech.State
	Subscribe() (<-chan speech.State, func())
}

// Round summarizes a finished round (playing → ready_to_play).
type Round struct {
	SessionID  string
	Caught     int
	Lost       int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RoundRecorder receives finished rounds.
type RoundRecorder interface {
	RecordRound(r Round)
}

// RecorderFunc adapts a plain function to RoundRecorder.
type RecorderFunc func(Round)

func (f RecorderFunc) RecordRound(r Round) { f(r) }

// Snapshot is an immutable view of a session published to observers.
type Snapshot struct {
	ID              string
	Game            GameState
	Words           WordsState
	VoicePermission bool
	Speech          speech.State
}

// Option configures a Session.
type Option func(*Session)

// WithReactions sets the side-effect services (default: none).
func WithReactions(r Reactions) Option {
	return func(s *Session) {
		if r != nil {
			s.reactions = r
		}
	}
}

// WithRecognizer attaches a speech recognizer.
func WithRecognizer(r Recognizer) Option { return func(s *Session) { s.recognizer = r } }

// WithRecorder receives every finished round.
func WithRecorder(r RoundRecorder) Option { return func(s *Session) { s.recorder = r } }

// WithServerClock makes the session expire words itself at delay+duration
// instead of waiting for the client to report finished animations.
func WithServerClock(on bool) Option { return func(s *Session) { s.serverClock = on } }

// WithID overrides the random session id.
func WithID(id string) Option { return func(s *Session) { s.ID = id } }

// Session holds the state of a single game session.
type Session struct {
	ID string

	mu              sync.Mutex
	src             Source
	words           WordsState
	state           GameState
	voicePermission bool
	startedAt       time.Time
	closed          bool

	reactions   Reactions
	recognizer  Recognizer
	recorder    RoundRecorder
	serverClock bool
	clock       *clock

	listening bool // recognition started for the current round
	listenGen int  // speech.State.Gen of that listening session

	obs        observers
	stopListen context.CancelFunc
	listenDone chan struct{}
}

// New constructs a session in ready_to_play with the canonical words at start.
func New(src Source, opts ...Option) *Session {
	s := &Session{
		ID:              randomID(),
		src:             src,
		words:           NewWordsState(src.MovingWords(), PositionStart),
		state:           NewGameState(),
		voicePermission: true,
		reactions:       nopReactions{},
	}
	for _, o := range opts {
		o(s)
	}
	s.reactions.LoadSound(CatchSound)
	if s.serverClock {
		s.clock = newClock(s.expire)
	}
	if s.recognizer != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopListen = cancel
		s.listenDone = make(chan struct{})
		updates, unsubscribe := s.recognizer.Subscribe()
		go s.listen(ctx, updates, unsubscribe)
	}
	return s
}

// ToggleStatus starts a round when ready and resets it when playing.
func (s *Session) ToggleStatus() Snapshot {
	s.mu.Lock()
	var finished *Round
	if s.state.Status == StatusReadyToPlay {
		s.startLocked()
	} else {
		finished = s.resetLocked()
	}
	snap := s.publishLocked()
	s.mu.Unlock()

	if finished != nil && s.recorder != nil {
		s.recorder.RecordRound(*finished)
	}
	return snap
}

func (s *Session) startLocked() {
	s.state = s.state.ToPlaying()
	s.words = NewWordsState(s.src.MovingWords(), PositionMoving)
	s.startedAt = time.Now().UTC()
	if s.clock != nil {
		s.clock.start(s.words.Moving)
	}
	if s.voicePermission && s.recognizer != nil {
		s.startRecognitionLocked()
	}
	log.Debug().Str("session", s.ID).Int("words", len(s.words.Moving)).Msg("round started")
}

func (s *Session) resetLocked() *Round {
	r := &Round{
		SessionID:  s.ID,
		Caught:     s.state.CaughtScore,
		Lost:       s.state.LostScore,
		StartedAt:  s.startedAt,
		FinishedAt: time.Now().UTC(),
	}
	s.state = s.state.ToReadyToPlay()
	s.words = NewWordsState(s.src.MovingWords(), PositionStart)
	if s.clock != nil {
		s.clock.stop()
	}
	if s.recognizer != nil {
		s.stopRecognitionLocked()
	}
	log.Debug().Str("session", s.ID).Int("caught", r.Caught).Int("lost", r.Lost).Msg("round reset")
	return r
}

func (s *Session) startRecognitionLocked() {
	s.recognizer.StartListening()
	s.listening = true
	s.listenGen = s.recognizer.State().Gen
}

func (s *Session) stopRecognitionLocked() {
	s.recognizer.StopListening()
	s.listening = false
}

// WordLost marks word i as having finished its traversal uncaught.
// It reports whether the state changed.
func (s *Session) WordLost(i int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.words.Moving) {
		return false, ErrNoSuchWord
	}
	if !s.lostLocked(i) {
		return false, nil
	}
	s.publishLocked()
	return true, nil
}

func (s *Session) lostLocked(i int) bool {
	w := s.words.Moving[i]
	if s.state.Status != StatusPlaying || w.Position != PositionMoving || w.Caught {
		return false
	}
	s.reactions.PlayText(w.Text)
	s.words = s.words.UpdatePosition(i, PositionEnd)
	s.state = s.state.IncrementLost()
	s.reactions.Vibrate(HapticPulse)
	return true
}

// WordCaught marks word i as caught by the player.
// It reports whether the state changed.
func (s *Session) WordCaught(i int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.words.Moving) {
		return false, ErrNoSuchWord
	}
	if !s.caughtLocked(i) {
		return false, nil
	}
	s.publishLocked()
	return true, nil
}

func (s *Session) caughtLocked(i int) bool {
	w := s.words.Moving[i]
	if s.state.Status != StatusPlaying || w.Position != PositionMoving || w.Caught {
		return false
	}
	s.words = s.words.AddCaught(i)
	s.state = s.state.IncrementCaught()
	s.reactions.PlayEffect(CatchSound)
	return true
}

// ProcessRecognized applies one batch of recognized words and returns how
// many words it caught. Batches are ignored without voice permission.
func (s *Session) ProcessRecognized(tokens []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.recognizedLocked(tokens)
	if n > 0 {
		s.publishLocked()
	}
	return n
}

func (s *Session) recognizedLocked(tokens []string) int {
	if !s.voicePermission || len(tokens) == 0 {
		return 0
	}
	log.Info().Str("session", s.ID).Strs("tokens", tokens).Msg("recognized text")
	caught := 0
	for _, tok := range tokens {
		i := MatchIndex(s.words.Moving, tok)
		if i < 0 {
			logNearMiss(s.ID, s.words.Moving, tok)
			continue
		}
		log.Info().Str("session", s.ID).Str("word", s.words.Moving[i].Text).Msg("found word")
		if s.caughtLocked(i) {
			caught++
		}
	}
	return caught
}

// SetVoicePermission records whether speech catching is allowed.
// Recognition follows the permission while a round is running.
func (s *Session) SetVoicePermission(granted bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voicePermission != granted && s.recognizer != nil && s.state.Status == StatusPlaying {
		if granted {
			s.startRecognitionLocked()
		} else {
			s.stopRecognitionLocked()
		}
	}
	s.voicePermission = granted
	return s.publishLocked()
}

// DismissPermissionDialog restores the default (granted) permission state.
func (s *Session) DismissPermissionDialog() Snapshot { return s.SetVoicePermission(true) }

// Recognizer returns the attached recognizer, or nil.
func (s *Session) Recognizer() Recognizer { return s.recognizer }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:              s.ID,
		Game:            s.state,
		Words:           s.words,
		VoicePermission: s.voicePermission,
	}
	if s.recognizer != nil {
		snap.Speech = s.recognizer.State()
	}
	return snap
}

// Subscribe registers an observer. The channel always holds the latest
// snapshot; intermediate ones are dropped for slow readers. The returned
// func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, id := s.obs.add()
	if s.closed {
		s.obs.remove(id)
		return ch, func() {}
	}
	ch <- s.snapshotLocked()
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.obs.remove(id)
	}
}

func (s *Session) publishLocked() Snapshot {
	snap := s.snapshotLocked()
	s.obs.publish(snap)
	return snap
}

// listen consumes the recognizer stream until the session closes.
// Batches from an earlier listening session are dropped so words spoken
// before a reset or a permission change never catch anything.
func (s *Session) listen(ctx context.Context, updates <-chan speech.State, unsubscribe func()) {
	defer close(s.listenDone)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			s.mu.Lock()
			if !s.closed {
				if len(st.SpokenWords) > 0 && s.listening && st.Gen == s.listenGen {
					s.recognizedLocked(st.SpokenWords)
				}
				s.publishLocked()
			}
			s.mu.Unlock()
		}
	}
}

// expire is the server clock callback; gen guards against stale timers.
func (s *Session) expire(gen, i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.clock == nil || !s.clock.current(gen) || i >= len(s.words.Moving) {
		return
	}
	if s.lostLocked(i) {
		s.publishLocked()
	}
}

// Close stops recognition and timers, releases reactions and closes all
// observer channels. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.clock != nil {
		s.clock.stop()
	}
	if s.recognizer != nil {
		s.stopRecognitionLocked()
	}
	s.obs.closeAll()
	s.mu.Unlock()

	if s.stopListen != nil {
		s.stopListen()
		<-s.listenDone
	}
	s.reactions.Release()
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

type nopReactions struct{}

func (nopReactions) LoadSound(string)      {}
func (nopReactions) PlayEffect(string)     {}
func (nopReactions) PlayText(string)       {}
func (nopReactions) Vibrate(time.Duration) {}
func (nopReactions) Release()              {}
