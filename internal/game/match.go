package game

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

// nearMissDistance is the edit distance reported as a near miss in logs.
const nearMissDistance = 2

// MatchIndex returns the index of the first word whose text equals token
// case-insensitively, or -1. Caught and finished words still match; the
// caught transition rejects them.
func MatchIndex(words []WordState, token string) int {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(token))
	if want == "" {
		return -1
	}
	for i, w := range words {
		if fold.String(w.Text) == want {
			return i
		}
	}
	return -1
}

// logNearMiss reports the closest moving word when a token did not match.
// It never catches anything.
func logNearMiss(sessionID string, words []WordState, token string) {
	fold := cases.Fold()
	tok := fold.String(token)
	best, bestDist := -1, nearMissDistance+1
	for i, w := range words {
		if w.Position != PositionMoving || w.Caught {
			continue
		}
		if d := levenshtein.ComputeDistance(tok, fold.String(w.Text)); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return
	}
	log.Debug().
		Str("session", sessionID).
		Str("token", token).
		Str("nearest", words[best].Text).
		Int("distance", bestDist).
		Msg("near miss")
}
