// internal/words/words.go
//
// Provides the canonical word list for game sessions.
//
// Responsibilities:
//   - Load words from a file (WORDS_FILE) or fall back to the embedded list.
//   - Parse one word per line: text, color, duration ms, delay ms.
//   - Hand every session a fresh copy at reset (List implements game.Source).
//
// Line format:
//   Apple  #FD5115 4000 0
//
// Constraints:
//   • Text is a single token (no spaces); matching is case-insensitive.
//   • Color is "#RRGGBB".
//   • Duration must be positive, delay non-negative.
//   • Blank lines and lines starting with '#' are skipped.

package words

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/wordscape/apps/go-server/assets"
	"github.com/robalobadob/wordscape/apps/go-server/internal/game"
)

// List is an immutable canonical word list.
type List struct {
	words []game.Word
}

var _ game.Source = (*List)(nil)

// Load reads the list from path, or from the embedded default if path is empty.
// Returns an error if the list ends up empty.
func Load(path string) (*List, error) {
	var lines []string
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if lines, err = assets.ReadLines(f); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	} else {
		var err error
		if lines, err = assets.WordLines(); err != nil {
			return nil, fmt.Errorf("embedded words: %w", err)
		}
	}
	return parse(lines)
}

// New builds a list from words already in memory.
func New(ws []game.Word) (*List, error) {
	if len(ws) == 0 {
		return nil, errors.New("words: list is empty")
	}
	return &List{words: append([]game.Word(nil), ws...)}, nil
}

// MovingWords returns a fresh, uncaught copy of the list.
func (l *List) MovingWords() []game.Word {
	out := make([]game.Word, len(l.words))
	copy(out, l.words)
	for i := range out {
		out[i].Caught = false
	}
	return out
}

// Len returns the number of words.
func (l *List) Len() int { return len(l.words) }

func parse(lines []string) (*List, error) {
	ws := make([]game.Word, 0, len(lines))
	for n, line := range lines {
		w, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("words: entry %d: %w", n+1, err)
		}
		ws = append(ws, w)
	}
	return New(ws)
}

// parseLine decodes "Text #RRGGBB durationMs delayMs".
func parseLine(line string) (game.Word, error) {
	f := strings.Fields(line)
	if len(f) != 4 {
		return game.Word{}, fmt.Errorf("want 4 fields, got %d in %q", len(f), line)
	}
	if !isColor(f[1]) {
		return game.Word{}, fmt.Errorf("bad color %q", f[1])
	}
	dur, err := strconv.Atoi(f[2])
	if err != nil || dur <= 0 {
		return game.Word{}, fmt.Errorf("bad duration %q", f[2])
	}
	delay, err := strconv.Atoi(f[3])
	if err != nil || delay < 0 {
		return game.Word{}, fmt.Errorf("bad delay %q", f[3])
	}
	return game.Word{
		Text:  f[0],
		Color: strings.ToUpper(f[1]),
		Animation: game.Animation{
			Duration: time.Duration(dur) * time.Millisecond,
			Delay:    time.Duration(delay) * time.Millisecond,
		},
	}, nil
}

// isColor reports whether s is "#RRGGBB".
func isColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}
