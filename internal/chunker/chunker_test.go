package chunker

import (
	"errors"
	"strings"
	"testing"
)

func mustSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(size, overlap)
	if err != nil {
		t.Fatalf("NewSplitter(%d, %d): %v", size, overlap, err)
	}
	return s
}

func Test_NewSplitter_RejectsInvalidParams(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSplitter(tc.size, tc.overlap)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("NewSplitter(%d, %d): want ErrInvalidParams, got %v", tc.size, tc.overlap, err)
			}
		})
	}
}

func Test_Split_EmptyTextYieldsNoChunks(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 1000, 200)
	if got := s.Split(""); len(got) != 0 {
		t.Errorf("want 0 chunks for empty text, got %d", len(got))
	}
}

func Test_Split_ShortTextYieldsSingleChunk(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 1000, 200)
	chunks := s.Split("short text")
	if len(chunks) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short text" || chunks[0].Start != 0 || chunks[0].Index != 0 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

// The worked example: 2500 bytes with size 1000 and overlap 200 must yield
// chunks at offsets 0, 800, 1600 with lengths 1000, 1000, 900.
func Test_Split_KnownBoundaries(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 1000, 200)
	text := strings.Repeat("abcde", 500) // 2500 bytes
	chunks := s.Split(text)

	want := []struct {
		start  int
		length int
	}{
		{0, 1000},
		{800, 1000},
		{1600, 900},
	}
	if len(chunks) != len(want) {
		t.Fatalf("want %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Start != w.start {
			t.Errorf("chunk %d: start = %d, want %d", i, chunks[i].Start, w.start)
		}
		if len(chunks[i].Text) != w.length {
			t.Errorf("chunk %d: length = %d, want %d", i, len(chunks[i].Text), w.length)
		}
		if chunks[i].Index != i {
			t.Errorf("chunk %d: index = %d", i, chunks[i].Index)
		}
	}
}

func Test_Split_ConsecutiveChunksShareOverlap(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 50, 10)
	text := strings.Repeat("0123456789", 20) // 200 bytes
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("want multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1].Text[len(chunks[i-1].Text)-10:]
		nextHead := chunks[i].Text[:10]
		if prevTail != nextHead {
			t.Errorf("chunks %d/%d: tail %q != head %q", i-1, i, prevTail, nextHead)
		}
		if chunks[i].Start != chunks[i-1].Start+40 {
			t.Errorf("chunk %d: start = %d, want %d", i, chunks[i].Start, chunks[i-1].Start+40)
		}
	}
}

func Test_Split_ReassembleRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"zero overlap", 10, 0, strings.Repeat("x y z ", 30)},
		{"small overlap", 10, 3, strings.Repeat("lorem ipsum dolor ", 25)},
		{"large overlap", 100, 99, strings.Repeat("q", 450)},
		{"exact multiple", 50, 10, strings.Repeat("a", 200)},
		{"one byte", 7, 2, "k"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := mustSplitter(t, tc.size, tc.overlap)
			chunks := s.Split(tc.text)
			if got := s.Reassemble(chunks); got != tc.text {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(tc.text))
			}
		})
	}
}

func Test_Split_ChunkLengthBounded(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 64, 16)
	text := strings.Repeat("abcdefg ", 100)
	chunks := s.Split(text)
	for i, c := range chunks {
		if len(c.Text) > 64 {
			t.Errorf("chunk %d exceeds size: %d", i, len(c.Text))
		}
		if i < len(chunks)-1 && len(c.Text) != 64 {
			t.Errorf("non-final chunk %d not full: %d", i, len(c.Text))
		}
	}
}

func Test_Split_Deterministic(t *testing.T) {
	t.Parallel()
	s := mustSplitter(t, 33, 7)
	text := strings.Repeat("the quick brown fox ", 40)
	a := s.Split(text)
	b := s.Split(text)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
