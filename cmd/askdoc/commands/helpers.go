package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/askdoc-go/internal/chunker"
	"github.com/54b3r/askdoc-go/internal/embedder"
	"github.com/54b3r/askdoc-go/internal/history"
	"github.com/54b3r/askdoc-go/internal/pipeline"
	"github.com/54b3r/askdoc-go/internal/provider"
	"github.com/54b3r/askdoc-go/internal/rag"
	"github.com/54b3r/askdoc-go/internal/server"
)

// pipelineOptions collects the per-invocation tuning knobs for buildPipeline.
type pipelineOptions struct {
	// ChunkSize is the chunk size in characters.
	ChunkSize int
	// ChunkOverlap is the number of characters shared between adjacent chunks.
	ChunkOverlap int
	// TopK is the number of chunks retrieved per question.
	TopK int
	// APIKey is the --api-key flag value; overrides env credentials.
	APIKey string
}

// buildPipeline wires the splitter, embedder, chat model, and vector store
// into a ready pipeline. The store is returned alongside so serve mode can
// attach readiness probes; the cleanup function closes it.
// Credentials are validated before any client is constructed so missing keys
// fail fast with a descriptive error.
func buildPipeline(ctx context.Context, log *slog.Logger, opts *pipelineOptions) (*pipeline.Pipeline, rag.VectorStore, func(), error) {
	splitter, err := chunker.NewSplitter(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := embedder.Validate(log, opts.APIKey); err != nil {
		return nil, nil, nil, err
	}
	emb, err := embedder.NewFromEnv(opts.APIKey)
	if err != nil {
		return nil, nil, nil, err
	}

	chat, err := provider.NewFromEnv(ctx, opts.APIKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("askdoc: failed to initialise model provider: %w", err)
	}

	store, closeStore, err := buildStore(ctx, log)
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := pipeline.New(&pipeline.Config{
		Splitter: splitter,
		Embedder: emb,
		Store:    store,
		Chat:     chat,
		TopK:     opts.TopK,
	})
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	return p, store, closeStore, nil
}

// buildStore constructs the vector store selected by VECTOR_STORE: the
// in-memory index (default) or a Qdrant collection.
func buildStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, func(), error) {
	backend := strings.ToLower(envOrDefault("VECTOR_STORE", "memory"))

	switch backend {
	case "memory":
		s, err := rag.NewMemoryStore("")
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case "qdrant":
		dims := embedder.DefaultDimensions(embedder.ResolveBackend())
		cfg := &rag.QdrantConfig{
			Host:       envOrDefault("QDRANT_HOST", "localhost"),
			Port:       envIntOrDefault("QDRANT_PORT", 6334),
			Collection: envOrDefault("QDRANT_COLLECTION", "askdoc"),
			VectorSize: uint64(dims),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		}
		s, err := rag.NewQdrantStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("qdrant store ready",
			slog.String("host", cfg.Host),
			slog.String("collection", cfg.Collection),
		)
		return s, func() { _ = s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("askdoc: unknown VECTOR_STORE %q (expected memory or qdrant)", backend)
	}
}

// openHistory opens the question/answer history store unless it is disabled.
// A nil store means history is off; the close function is always safe to call.
func openHistory(log *slog.Logger) (history.Store, func()) {
	noop := func() {}

	path, err := history.ResolvePath()
	if err != nil {
		log.Warn("history: could not resolve DB path, disabling", slog.Any("error", err))
		return nil, noop
	}
	if path == history.Disabled {
		log.Info("history: disabled via ASKDOC_HISTORY_DB=disabled")
		return nil, noop
	}

	hs, err := history.Open(path)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, noop
	}
	log.Info("history: store opened", slog.String("path", path))
	return hs, func() { _ = hs.Close() }
}

// buildPingers assembles the dependency probes for GET /api/ready based on
// the active embedding backend and vector store.
func buildPingers(store rag.VectorStore) []server.Pinger {
	var pingers []server.Pinger

	switch embedder.ResolveBackend() {
	case "ollama":
		host := envOrDefault("OLLAMA_HOST", "http://localhost:11434")
		pingers = append(pingers, server.NewHTTPPinger(host, "ollama"))
	case "openai":
		endpoint := envOrDefault("EMBEDDING_ENDPOINT", "https://api.openai.com/v1") + "/models"
		pingers = append(pingers, server.NewHTTPPinger(endpoint, "openai"))
	}

	if qs, ok := store.(*rag.QdrantStore); ok {
		pingers = append(pingers, server.NewQdrantPinger(qs.Client()))
	}

	return pingers
}

// flagOrEnvInt returns the flag value if the user set it explicitly,
// otherwise the env var value when present, otherwise the current default.
func flagOrEnvInt(cmd *cobra.Command, flag, envKey string, current int) int {
	if cmd.Flags().Changed(flag) {
		return current
	}
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return current
}

// envOrDefault returns the env var value, or fallback when unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOrDefault returns the env var parsed as int, or fallback when unset
// or unparseable.
func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
