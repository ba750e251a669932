// Package rag defines the retrieval-augmented-generation interfaces:
// embedding, vector storage, and document retrieval. Concrete backends
// (the in-memory chromem index, Qdrant) satisfy these interfaces so the
// pipeline never depends on a specific store.
package rag

import (
	"context"
)

// Document is one retrievable chunk of a source document.
type Document struct {
	// ID uniquely identifies the chunk within the store.
	ID string

	// Content is the chunk text.
	Content string

	// Source is the file path of the document the chunk came from.
	Source string

	// Metadata holds auxiliary key-value pairs (chunk index, start offset).
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval (0.0–1.0).
	// Zero value means the score was not computed.
	Score float32
}

// VectorStore persists document embeddings and answers similarity queries.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores a batch of documents with their pre-computed embeddings.
	// embeddings is parallel to docs — embeddings[i] is the vector for docs[i].
	Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error

	// Search returns the top-k documents most similar to the query embedding,
	// ordered by descending score.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Count reports the number of documents currently stored.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever fetches the chunks most relevant to a query. It combines
// query embedding and vector search behind a single call.
type Retriever interface {
	// Retrieve returns the top-k most relevant documents for the query.
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}
