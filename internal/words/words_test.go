package words

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	l, err := Load("")
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if l.Len() != 7 {
		t.Fatalf("expected 7 canonical words, got %d", l.Len())
	}
	ws := l.MovingWords()
	if ws[0].Text != "Apple" || ws[0].Color != "#FD5115" {
		t.Fatalf("unexpected first word: %+v", ws[0])
	}
	if ws[0].Animation.Duration != 4*time.Second || ws[0].Animation.Delay != 0 {
		t.Fatalf("unexpected apple animation: %+v", ws[0].Animation)
	}
	if ws[6].Text != "Peach" || ws[6].Animation.Delay != 2500*time.Millisecond {
		t.Fatalf("unexpected last word: %+v", ws[6])
	}
}

func TestMovingWordsReturnsFreshCopy(t *testing.T) {
	l, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	a := l.MovingWords()
	a[0].Text = "changed"
	a[0].Caught = true
	b := l.MovingWords()
	if b[0].Text != "Apple" || b[0].Caught {
		t.Fatalf("list was mutated through a returned copy: %+v", b[0])
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	body := "# comment\n\nKiwi #00ff00 1200 300\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ws := l.MovingWords()
	if len(ws) != 1 || ws[0].Text != "Kiwi" || ws[0].Color != "#00FF00" {
		t.Fatalf("unexpected words: %+v", ws)
	}
}

func TestParseLineRejectsBadInput(t *testing.T) {
	cases := []string{
		"Apple #FD5115 4000",
		"Apple red 4000 0",
		"Apple #FD51 4000 0",
		"Apple #FD5115 0 0",
		"Apple #FD5115 4000 -1",
		"Apple #FD5115 abc 0",
	}
	for _, line := range cases {
		if _, err := parseLine(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty list")
	}
}
