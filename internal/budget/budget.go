// Package budget estimates token counts and trims retrieved context to fit
// the model's input window. Because multiple LLM backends with different
// tokenizers are supported, it uses a conservative character-based
// heuristic: 1 token ≈ 4 characters (English prose and code). This
// deliberately under-estimates token counts to leave headroom for
// model-specific overhead.
package budget

import (
	"github.com/54b3r/askdoc-go/internal/rag"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the answer.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimDocuments drops retrieved documents from the tail of docs until the
// estimated token count of fixed (prompt scaffolding plus the question) and
// the remaining document contents fits within maxTokens. docs is expected in
// descending score order, so the least relevant context is dropped first.
//
// The returned slice shares backing storage with docs. If even a single
// document exceeds the budget, the empty slice is returned — the caller
// decides whether to proceed without context.
func TrimDocuments(fixed string, docs []rag.Document, maxTokens int) []rag.Document {
	if len(docs) == 0 {
		return docs
	}

	budget := maxTokens - Estimate(fixed)
	total := 0
	for _, d := range docs {
		total += Estimate(d.Content)
	}

	for len(docs) > 0 && total > budget {
		last := docs[len(docs)-1]
		total -= Estimate(last.Content)
		docs = docs[:len(docs)-1]
	}
	return docs
}
