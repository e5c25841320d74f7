// internal/game/types.go
//
// Core type definitions for the word-catching game.
// Defines:
//   - Position: where a word is on its traversal (start/moving/end).
//   - Status:   whether a round is running (ready_to_play/playing).
//   - Word, WordState: a drifting word and its position.
//   - Animation: per-word traversal timing supplied by the word source.

package game

import "time"

// Position is where a word sits on its traversal of the play area.
type Position string

const (
	PositionStart  Position = "start"
	PositionMoving Position = "moving"
	PositionEnd    Position = "end"
)

// Status is the coarse game status.
// ReadyToPlay is the initial status; the toggle action flips between the two.
type Status string

const (
	StatusReadyToPlay Status = "ready_to_play"
	StatusPlaying     Status = "playing"
)

// Animation is the traversal timing of a word.
type Animation struct {
	Duration time.Duration // time to cross the play area
	Delay    time.Duration // wait before the word starts moving
}

// Word is a single word as supplied by the canonical word source.
type Word struct {
	Text      string    // Display text; matching is case-insensitive.
	Color     string    // "#RRGGBB"
	Caught    bool      // True once the player caught it (tap or speech).
	Animation Animation // Traversal timing.
}

// WordState wraps a Word with its current position.
type WordState struct {
	Word
	Position Position
}

// Source supplies the canonical word list.
// Every call must return a fresh slice of uncaught words.
type Source interface {
	MovingWords() []Word
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() []Word

func (f SourceFunc) MovingWords() []Word { return f() }
