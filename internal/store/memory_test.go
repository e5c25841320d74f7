package store

import (
	"context"
	"errors"
	"testing"

	"github.com/robalobadob/wordscape/apps/go-server/internal/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	src := game.SourceFunc(func() []game.Word { return []game.Word{{Text: "a"}} })
	s := game.New(src, game.WithID("abc"))
	defer s.Close()

	if err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := st.Get(ctx, "abc")
	if err != nil || got != s {
		t.Fatalf("get: %v %v", got, err)
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d", st.Len())
	}
	if ids := st.IDs(); len(ids) != 1 || ids[0] != "abc" {
		t.Fatalf("ids = %v", ids)
	}
	if _, err := st.Delete(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := st.Delete(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound on second delete, got %v", err)
	}
}
