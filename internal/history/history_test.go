package history

import (
	"context"
	"testing"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_History_AppendAndRecent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "/docs/a.txt", "what is it?", "a document"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "/docs/a.txt", "who wrote it?", "unknown"); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns, err := s.Recent(ctx, "/docs/a.txt", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("want 2 turns, got %d", len(turns))
	}
	if turns[0].Question != "what is it?" || turns[0].Answer != "a document" {
		t.Errorf("turn[0]: got %q/%q", turns[0].Question, turns[0].Answer)
	}
	if turns[1].Question != "who wrote it?" || turns[1].Answer != "unknown" {
		t.Errorf("turn[1]: got %q/%q", turns[1].Question, turns[1].Answer)
	}
}

func Test_History_RecentLimitRespected(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for range 6 {
		if err := s.Append(ctx, "/docs/b.txt", "q", "a"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	turns, err := s.Recent(ctx, "/docs/b.txt", 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 4 {
		t.Errorf("want 4 turns, got %d", len(turns))
	}
}

func Test_History_DocumentIsolation(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "/docs/x.txt", "from x?", "x"); err != nil {
		t.Fatalf("append x: %v", err)
	}
	if err := s.Append(ctx, "/docs/y.txt", "from y?", "y"); err != nil {
		t.Fatalf("append y: %v", err)
	}

	turnsX, err := s.Recent(ctx, "/docs/x.txt", 10)
	if err != nil {
		t.Fatalf("recent x: %v", err)
	}
	turnsY, err := s.Recent(ctx, "/docs/y.txt", 10)
	if err != nil {
		t.Fatalf("recent y: %v", err)
	}
	if len(turnsX) != 1 || turnsX[0].Answer != "x" {
		t.Errorf("x turns: %+v", turnsX)
	}
	if len(turnsY) != 1 || turnsY[0].Answer != "y" {
		t.Errorf("y turns: %+v", turnsY)
	}
}

func Test_History_RecentEmpty(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	turns, err := s.Recent(context.Background(), "/docs/none.txt", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("want no turns, got %d", len(turns))
	}
}

func Test_History_ResolvePath_EnvOverride(t *testing.T) {
	t.Setenv("ASKDOC_HISTORY_DB", "/tmp/custom.db")
	p, err := ResolvePath()
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if p != "/tmp/custom.db" {
		t.Errorf("got %q, want /tmp/custom.db", p)
	}

	t.Setenv("ASKDOC_HISTORY_DB", Disabled)
	p, err = ResolvePath()
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if p != Disabled {
		t.Errorf("got %q, want %q", p, Disabled)
	}
}
