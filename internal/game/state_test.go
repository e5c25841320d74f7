package game

import "testing"

func TestGameStateToReadyToPlayZeroesScores(t *testing.T) {
	g := NewGameState().ToPlaying().IncrementCaught().IncrementCaught().IncrementLost()
	if g.CaughtScore != 2 || g.LostScore != 1 {
		t.Fatalf("unexpected scores: %+v", g)
	}
	r := g.ToReadyToPlay()
	if r != (GameState{Status: StatusReadyToPlay}) {
		t.Fatalf("reset did not zero scores: %+v", r)
	}
	if g.CaughtScore != 2 {
		t.Fatalf("receiver mutated")
	}
}

func TestWordsStateCaughtInvariant(t *testing.T) {
	s := NewWordsState([]Word{{Text: "a"}, {Text: "b"}, {Text: "c"}}, PositionMoving)
	s = s.AddCaught(2).AddCaught(0).UpdatePosition(1, PositionEnd)

	for i, w := range s.Moving {
		_, inSet := s.Caught[i]
		if w.Caught != inSet {
			t.Fatalf("word %d: caught=%v inSet=%v", i, w.Caught, inSet)
		}
	}
	got := s.CaughtIndexes()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("CaughtIndexes = %v", got)
	}
}

func TestNewWordsStateClearsCaughtFlag(t *testing.T) {
	s := NewWordsState([]Word{{Text: "a", Caught: true}}, PositionStart)
	if s.Moving[0].Caught || len(s.Caught) != 0 {
		t.Fatalf("fresh state must start uncaught")
	}
}

func TestMatchIndex(t *testing.T) {
	words := NewWordsState([]Word{{Text: "Apple"}, {Text: "Banana"}, {Text: "banana"}}, PositionMoving).Moving
	cases := []struct {
		token string
		want  int
	}{
		{"banana", 1},
		{"BANANA", 1},
		{" apple ", 0},
		{"grape", -1},
		{"", -1},
		{"appl", -1},
	}
	for _, c := range cases {
		if got := MatchIndex(words, c.token); got != c.want {
			t.Errorf("MatchIndex(%q) = %d, want %d", c.token, got, c.want)
		}
	}
}
