// Package pipeline orchestrates the question-answering flow: load a
// document, chunk it, embed the chunks into a vector store, and answer
// questions by retrieving the most similar chunks and handing them to the
// chat model together with the question.
//
// The pipeline is strictly sequential — one stage at a time, one question
// at a time. Collaborator errors are wrapped with a descriptive message and
// surfaced to the caller; nothing is retried.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/askdoc-go/internal/budget"
	"github.com/54b3r/askdoc-go/internal/chunker"
	"github.com/54b3r/askdoc-go/internal/document"
	"github.com/54b3r/askdoc-go/internal/logging"
	"github.com/54b3r/askdoc-go/internal/rag"
)

// answerInstructions is the system prompt for the answering model. The
// wording deliberately biases the model towards "I don't know" over
// fabrication when the retrieved context is insufficient.
const answerInstructions = `Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.`

// ChatModel is the narrow chat-completion surface the pipeline needs.
// *provider-constructed eino models satisfy it; tests inject a stub.
type ChatModel interface {
	// Generate produces a single completion for the given messages.
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// QueryResult is the outcome of answering one question. It is created per
// question and never persisted by the pipeline itself.
type QueryResult struct {
	// Question is the question as asked.
	Question string

	// Answer is the chat model's response text.
	Answer string

	// Sources lists the chunks used as context, ordered by descending
	// similarity score.
	Sources []rag.Document
}

// Config holds the collaborators and tuning knobs for a Pipeline.
type Config struct {
	// Splitter chunks document text. Required.
	Splitter *chunker.Splitter

	// Embedder converts text to vectors. Required.
	Embedder rag.Embedder

	// Store holds the embedded chunks. Required.
	Store rag.VectorStore

	// Chat generates answers. Required.
	Chat ChatModel

	// TopK is the number of chunks retrieved per question. Defaults to 3.
	TopK int

	// MaxContextTokens is the estimated token budget for the full prompt.
	// Defaults to budget.DefaultMaxContextTokens.
	MaxContextTokens int
}

// Pipeline answers questions about a single loaded document.
type Pipeline struct {
	// splitter chunks document text.
	splitter *chunker.Splitter

	// embedder converts chunk and question text to vectors.
	embedder rag.Embedder

	// store holds the embedded chunks; read-only after Init.
	store rag.VectorStore

	// chat generates answers from context plus question.
	chat ChatModel

	// retriever performs embed-then-search for questions.
	retriever rag.Retriever

	// topK is the number of chunks retrieved per question.
	topK int

	// maxContextTokens is the estimated token budget for the full prompt.
	maxContextTokens int

	// source is the path of the loaded document, set by Init.
	source string
}

// New constructs a Pipeline from the provided Config.
func New(cfg *Config) (*Pipeline, error) {
	if cfg.Splitter == nil {
		return nil, fmt.Errorf("pipeline: splitter must not be nil")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("pipeline: embedder must not be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("pipeline: store must not be nil")
	}
	if cfg.Chat == nil {
		return nil, fmt.Errorf("pipeline: chat model must not be nil")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	retriever, err := rag.NewRetriever(cfg.Embedder, cfg.Store, topK)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return &Pipeline{
		splitter:         cfg.Splitter,
		embedder:         cfg.Embedder,
		store:            cfg.Store,
		chat:             cfg.Chat,
		retriever:        retriever,
		topK:             topK,
		maxContextTokens: maxCtx,
	}, nil
}

// Source returns the path of the document loaded by Init, or empty string
// before initialization.
func (p *Pipeline) Source() string { return p.source }

// Init loads the document at path, chunks it, embeds every chunk, and
// upserts the results into the vector store. It returns the number of
// chunks indexed. The file is read and chunked before any network call, so
// a missing file never reaches the embedding service.
func (p *Pipeline) Init(ctx context.Context, path string) (int, error) {
	log := logging.FromContext(ctx)

	doc, err := document.Load(path)
	if err != nil {
		return 0, fmt.Errorf("pipeline: loading document: %w", err)
	}
	log.Info("document loaded", slog.String("source", doc.Source), slog.Int("bytes", len(doc.Text)))

	chunks := p.splitter.Split(doc.Text)
	if len(chunks) == 0 {
		log.Warn("document produced no chunks — questions will be answered without context",
			slog.String("source", doc.Source))
		p.source = doc.Source
		return 0, nil
	}
	log.Info("document chunked", slog.Int("chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("pipeline: embedding %d chunks: %w", len(chunks), err)
	}

	docs := make([]rag.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, rag.Document{
			ID:      chunkID(doc.Source, c.Index),
			Content: c.Text,
			Source:  doc.Source,
			Metadata: map[string]string{
				"chunk_index": strconv.Itoa(c.Index),
				"start":       strconv.Itoa(c.Start),
			},
		})
	}

	if err := p.store.Upsert(ctx, docs, embeddings); err != nil {
		return 0, fmt.Errorf("pipeline: indexing chunks: %w", err)
	}

	p.source = doc.Source
	log.Info("index ready", slog.String("source", doc.Source), slog.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Ask answers a single question using the indexed document. It embeds the
// question, retrieves the top-k most similar chunks, trims them to the
// context budget, and asks the chat model for an answer.
func (p *Pipeline) Ask(ctx context.Context, question string) (*QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("pipeline: question must not be empty")
	}

	docs, err := p.retriever.Retrieve(ctx, question, p.topK)
	if err != nil {
		return nil, fmt.Errorf("pipeline: retrieving context: %w", err)
	}

	trimmed := budget.TrimDocuments(answerInstructions+question, docs, p.maxContextTokens)
	if dropped := len(docs) - len(trimmed); dropped > 0 {
		logging.FromContext(ctx).Warn("budget: dropped context chunks to fit the model window",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(trimmed)),
		)
	}

	messages := []*schema.Message{
		schema.SystemMessage(answerInstructions),
		schema.UserMessage(buildQuestionPrompt(trimmed, question)),
	}

	resp, err := p.chat.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("pipeline: generating answer: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("pipeline: chat model returned no response")
	}

	return &QueryResult{
		Question: question,
		Answer:   strings.TrimSpace(resp.Content),
		Sources:  trimmed,
	}, nil
}

// buildQuestionPrompt assembles the user message from the retrieved context
// and the question.
func buildQuestionPrompt(docs []rag.Document, question string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	if len(docs) == 0 {
		sb.WriteString("(no relevant context found)\n")
	}
	for i, doc := range docs {
		fmt.Fprintf(&sb, "\n[%d] %s\n", i+1, doc.Content)
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\n\nAnswer:", question)
	return sb.String()
}

// chunkID generates a deterministic ID for a chunk from its source path and
// position, so re-indexing the same document overwrites rather than
// duplicates. The hash is formatted as a UUID because Qdrant only accepts
// UUID or integer point IDs.
func chunkID(source string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", source, index)))
	return fmt.Sprintf("%x-%x-%x-%x-%x", h[0:4], h[4:6], h[6:8], h[8:10], h[10:16])
}
