// internal/game/state.go
//
// Immutable state records for a session.
// All mutators use value receivers and return a new value (copy-on-write);
// the receiver is never modified, so published snapshots stay stable.

package game

import "sort"

// WordsState holds the ordered word list plus the set of caught words.
// Invariant: Moving[i].Caught is true iff i is a key of Caught.
type WordsState struct {
	Moving []WordState
	Caught map[int]WordState
}

// NewWordsState wraps words at the given position with an empty caught set.
func NewWordsState(words []Word, pos Position) WordsState {
	out := make([]WordState, len(words))
	for i, w := range words {
		w.Caught = false
		out[i] = WordState{Word: w, Position: pos}
	}
	return WordsState{Moving: out, Caught: map[int]WordState{}}
}

// UpdatePosition returns a copy with word i moved to pos.
func (s WordsState) UpdatePosition(i int, pos Position) WordsState {
	moving := append([]WordState(nil), s.Moving...)
	moving[i].Position = pos
	return WordsState{Moving: moving, Caught: s.Caught}
}

// AddCaught returns a copy with word i flagged caught and placed in the caught set.
func (s WordsState) AddCaught(i int) WordsState {
	moving := append([]WordState(nil), s.Moving...)
	moving[i].Caught = true

	caught := make(map[int]WordState, len(s.Caught)+1)
	for k, v := range s.Caught {
		caught[k] = v
	}
	caught[i] = moving[i]
	return WordsState{Moving: moving, Caught: caught}
}

// CaughtIndexes lists the caught set in ascending index order.
func (s WordsState) CaughtIndexes() []int {
	out := make([]int, 0, len(s.Caught))
	for i := range s.Caught {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// GameState is the status plus the running score.
// Invariant: both scores are zero whenever Status is StatusReadyToPlay.
type GameState struct {
	Status      Status
	CaughtScore int
	LostScore   int
}

// NewGameState returns the initial state.
func NewGameState() GameState {
	return GameState{Status: StatusReadyToPlay}
}

func (g GameState) ToPlaying() GameState {
	g.Status = StatusPlaying
	return g
}

// ToReadyToPlay flips the status back and zeroes both scores.
func (g GameState) ToReadyToPlay() GameState {
	return GameState{Status: StatusReadyToPlay}
}

func (g GameState) IncrementCaught() GameState {
	g.CaughtScore++
	return g
}

func (g GameState) IncrementLost() GameState {
	g.LostScore++
	return g
}
