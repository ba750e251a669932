package rag

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

// MemoryStore implements VectorStore backed by an in-process chromem-go
// collection. This is the default store: the index lives entirely in memory,
// is populated once per document, and is read-only afterwards.
type MemoryStore struct {
	// collection is the underlying chromem collection.
	collection *chromem.Collection
}

// NewMemoryStore creates an empty in-memory vector store using cosine
// similarity. collection names partition documents within one process.
func NewMemoryStore(collection string) (*MemoryStore, error) {
	if collection == "" {
		collection = "askdoc"
	}

	db := chromem.NewDB()
	// Embeddings are always computed upstream and passed in explicitly, so a
	// collection-level embedding function must never be invoked.
	c, err := db.GetOrCreateCollection(collection, nil, func(_ context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("memstore: no embedding function configured — embeddings must be precomputed")
	})
	if err != nil {
		return nil, fmt.Errorf("memstore: create collection %q: %w", collection, err)
	}

	return &MemoryStore{collection: c}, nil
}

// Upsert stores documents with their pre-computed embeddings. Documents that
// reuse an existing ID replace the stored entry.
func (s *MemoryStore) Upsert(ctx context.Context, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("memstore: %d documents but %d embeddings", len(docs), len(embeddings))
	}

	entries := make([]chromem.Document, 0, len(docs))
	for i, doc := range docs {
		metadata := map[string]string{"source": doc.Source}
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		entries = append(entries, chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: embeddings[i],
			Metadata:  metadata,
		})
	}

	// Concurrency of 1 keeps ingestion strictly sequential.
	if err := s.collection.AddDocuments(ctx, entries, 1); err != nil {
		return fmt.Errorf("memstore: add documents: %w", err)
	}
	return nil
}

// Search returns the top-k documents by cosine similarity to queryEmbedding.
// When fewer than k documents are stored, all of them are returned.
func (s *MemoryStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, fmt.Errorf("memstore: topK must be positive, got %d", topK)
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("memstore: query: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		doc := Document{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: make(map[string]string, len(r.Metadata)),
		}
		for k, v := range r.Metadata {
			if k == "source" {
				doc.Source = v
				continue
			}
			doc.Metadata[k] = v
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Count reports the number of documents in the collection.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
