// Package chunker splits document text into overlapping fixed-size chunks
// for embedding and retrieval. The split is a deterministic hard character
// cut: consecutive chunk start offsets advance by size − overlap, and the
// trailing overlap of each chunk reappears at the start of the next. This
// keeps the split reproducible — the same text and parameters always yield
// the same chunk sequence — and lets callers reconstruct the original text
// by stripping the known overlap.
package chunker

import (
	"errors"
	"fmt"
)

// Default chunking parameters, matching the defaults exposed by the CLI.
const (
	// DefaultChunkSize is the maximum number of bytes per chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of bytes shared between
	// consecutive chunks.
	DefaultChunkOverlap = 200
)

// ErrInvalidParams reports chunk-size/overlap combinations that cannot
// produce a finite chunk sequence. It is returned by NewSplitter before any
// chunking is attempted.
var ErrInvalidParams = errors.New("chunker: invalid chunk parameters")

// Chunk is a contiguous substring of a document's text.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Start is the byte offset of the chunk within the source text.
	Start int

	// Index is the position of this chunk in the document's chunk sequence.
	Index int
}

// Splitter produces overlapping chunks of a configured size.
// A Splitter is immutable after construction and safe for concurrent use.
type Splitter struct {
	// size is the maximum chunk length in bytes.
	size int

	// overlap is the number of bytes shared between consecutive chunks.
	overlap int
}

// NewSplitter validates the size/overlap pair and returns a ready Splitter.
// size must be positive and overlap must satisfy 0 <= overlap < size;
// anything else fails fast with ErrInvalidParams.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidParams, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidParams, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidParams, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the configured maximum chunk length.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap between consecutive chunks.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks text into an ordered sequence covering the whole input.
// Every chunk except possibly the last is exactly size bytes long; start
// offsets advance by size − overlap. Empty text yields an empty sequence.
func (s *Splitter) Split(text string) []Chunk {
	if len(text) == 0 {
		return nil
	}

	step := s.size - s.overlap
	chunks := make([]Chunk, 0, (len(text)+step-1)/step)

	for start := 0; start < len(text); start += step {
		end := start + s.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			Text:  text[start:end],
			Start: start,
			Index: len(chunks),
		})
		// The final chunk reached the end of the text; stepping again would
		// produce a redundant tail that is pure overlap.
		if end == len(text) {
			break
		}
	}

	return chunks
}

// Reassemble concatenates chunks back into the original text by dropping
// the leading overlap of every chunk after the first. It is the inverse of
// Split and exists mainly for verification.
func (s *Splitter) Reassemble(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	out := chunks[0].Text
	for _, c := range chunks[1:] {
		if len(c.Text) <= s.overlap {
			// Tail chunk entirely inside the previous chunk's overlap region
			// cannot occur for sequences produced by Split.
			continue
		}
		out += c.Text[s.overlap:]
	}
	return out
}
