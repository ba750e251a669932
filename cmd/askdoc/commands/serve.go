package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/54b3r/askdoc-go/internal/chunker"
	"github.com/54b3r/askdoc-go/internal/logging"
	"github.com/54b3r/askdoc-go/internal/server"
	"github.com/54b3r/askdoc-go/internal/tracing"
)

// NewServeCmd constructs the `askdoc serve` command, which indexes a document
// and exposes it for question answering over HTTP.
func NewServeCmd() *cobra.Command {
	var (
		host         string
		port         int
		apiKey       string
		chunkSize    int
		chunkOverlap int
		topK         int
	)

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Index a document and answer questions over HTTP",
		Long: `Start the askdoc HTTP server on localhost.

The document is loaded and indexed once at startup; questions are then
answered via POST /api/ask. GET /api/health reports liveness, GET /api/ready
probes the model and vector store dependencies, and GET /metrics exposes
Prometheus metrics.

Examples:
  askdoc serve report.txt
  askdoc serve manual.pdf --port 9090
  ASKDOC_API_KEY=secret askdoc serve report.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.NewServer()
			if quiet {
				log = logging.Discard()
			}
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting",
				slog.String("document", args[0]),
				slog.String("provider", os.Getenv("MODEL_PROVIDER")),
			)

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chunkSize = flagOrEnvInt(cmd, "chunk-size", "ASKDOC_CHUNK_SIZE", chunkSize)
			chunkOverlap = flagOrEnvInt(cmd, "chunk-overlap", "ASKDOC_CHUNK_OVERLAP", chunkOverlap)
			topK = flagOrEnvInt(cmd, "top-k", "ASKDOC_TOP_K", topK)

			p, store, cleanup, err := buildPipeline(ctx, log, &pipelineOptions{
				ChunkSize:    chunkSize,
				ChunkOverlap: chunkOverlap,
				TopK:         topK,
				APIKey:       apiKey,
			})
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer cleanup()

			chunks, err := p.Init(ctx, args[0])
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			if chunks == 0 {
				return errors.New("serve: document produced no chunks, nothing to serve")
			}

			hist, closeHist := openHistory(log)
			defer closeHist()

			srv, err := server.New(p, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: buildPingers(store),
				APIKey:  os.Getenv("ASKDOC_API_KEY"),
				History: hist,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the model provider (overrides env)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", chunker.DefaultChunkSize, "Chunk size in characters")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", chunker.DefaultChunkOverlap, "Characters shared between adjacent chunks")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 3, "Number of chunks retrieved per question")

	return cmd
}
