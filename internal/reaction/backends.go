package reaction

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// LogBackend writes every reaction to a structured logger. It is the
// headless default: the client device does the real playback.
type LogBackend struct {
	Logger zerolog.Logger
}

func (b LogBackend) Speak(text string) error {
	b.Logger.Info().Str("text", text).Msg("playing text")
	return nil
}

func (b LogBackend) Sound(name string) error {
	b.Logger.Info().Str("sound", name).Msg("playing effect")
	return nil
}

func (b LogBackend) Pulse(d time.Duration) error {
	b.Logger.Info().Dur("duration", d).Msg("vibrate")
	return nil
}

func (b LogBackend) Close() error { return nil }

// NewLogService returns a Service that only logs.
func NewLogService(l zerolog.Logger) *Service {
	return New(LogBackend{Logger: l}, func(op string, err error) {
		l.Warn().Err(err).Str("op", op).Msg("reaction failed")
	})
}

// DesktopBackend plays reactions on the machine running the server:
// beeps stand in for the catch sound and the haptic pulse, notifications
// for the spoken readback.
type DesktopBackend struct {
	AppName string
	// Freq of the catch beep in Hz; the pulse uses half of it.
	Freq float64
}

const catchBeep = 150 * time.Millisecond

func (b DesktopBackend) Speak(text string) error {
	return beeep.Notify(b.AppName, text, "")
}

func (b DesktopBackend) Sound(name string) error {
	if err := beeep.Beep(b.freq(), int(catchBeep/time.Millisecond)); err != nil {
		return fmt.Errorf("beep %s: %w", name, err)
	}
	return nil
}

func (b DesktopBackend) Pulse(d time.Duration) error {
	return beeep.Beep(b.freq()/2, int(d/time.Millisecond))
}

func (b DesktopBackend) Close() error { return nil }

func (b DesktopBackend) freq() float64 {
	if b.Freq <= 0 {
		return beeep.DefaultFreq
	}
	return b.Freq
}

// NewDesktopService returns a Service backed by desktop beeps/notifications.
func NewDesktopService(appName string, l zerolog.Logger) *Service {
	return New(DesktopBackend{AppName: appName}, func(op string, err error) {
		l.Warn().Err(err).Str("op", op).Msg("desktop reaction failed")
	})
}

// Event is one reaction captured by a Recorder.
type Event struct {
	Op    string // "speak" | "sound" | "vibrate"
	Value string
}

// Recorder is a Backend that keeps every reaction in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Speak(text string) error     { r.add(Event{Op: "speak", Value: text}); return nil }
func (r *Recorder) Sound(name string) error     { r.add(Event{Op: "sound", Value: name}); return nil }
func (r *Recorder) Pulse(d time.Duration) error { r.add(Event{Op: "vibrate", Value: d.String()}); return nil }

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Events returns a copy of what was recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Closed reports whether the owning Service was released.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
