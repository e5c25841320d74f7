// Package reaction provides the feedback a player gets when words are
// caught or lost.
//
// Every call is fire-and-forget. Playback runs on its own goroutine and
// Release waits for whatever is still in flight.
package reaction

import (
	"sync"
	"time"
)

// Speaker reads text aloud.
type Speaker interface {
	PlayText(text string)
}

// Effects plays short preloaded sounds.
type Effects interface {
	LoadSound(name string)
	PlayEffect(name string)
}

// Vibrator produces a haptic pulse.
type Vibrator interface {
	Vibrate(d time.Duration)
}

// Backend performs the actual (blocking) playback.
type Backend interface {
	Speak(text string) error
	Sound(name string) error
	Pulse(d time.Duration) error
	Close() error
}

// Service combines the three feedback channels on top of a Backend.
type Service struct {
	backend Backend
	onError func(op string, err error)

	mu       sync.Mutex
	sounds   map[string]struct{}
	released bool
	wg       sync.WaitGroup
}

var (
	_ Speaker  = (*Service)(nil)
	_ Effects  = (*Service)(nil)
	_ Vibrator = (*Service)(nil)
)

// New wraps a backend. onError may be nil.
func New(b Backend, onError func(op string, err error)) *Service {
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Service{backend: b, onError: onError, sounds: make(map[string]struct{})}
}

// LoadSound registers a sound; unknown sounds are silently skipped on play.
func (s *Service) LoadSound(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounds[name] = struct{}{}
}

// PlayEffect plays a loaded sound.
func (s *Service) PlayEffect(name string) {
	s.mu.Lock()
	_, ok := s.sounds[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.spawn("sound", func() error { return s.backend.Sound(name) })
}

// PlayText reads text aloud.
func (s *Service) PlayText(text string) {
	s.spawn("speak", func() error { return s.backend.Speak(text) })
}

// Vibrate pulses for d.
func (s *Service) Vibrate(d time.Duration) {
	s.spawn("vibrate", func() error { return s.backend.Pulse(d) })
}

// Release waits for in-flight playback and closes the backend.
// Calls made after Release are dropped.
func (s *Service) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	s.wg.Wait()
	if err := s.backend.Close(); err != nil {
		s.onError("close", err)
	}
}

func (s *Service) spawn(op string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(); err != nil {
			s.onError(op, err)
		}
	}()
}
