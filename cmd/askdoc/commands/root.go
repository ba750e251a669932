// Package commands defines all Cobra CLI commands for the askdoc binary.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/askdoc-go/internal/audit"
	"github.com/54b3r/askdoc-go/internal/chunker"
	"github.com/54b3r/askdoc-go/internal/config"
	"github.com/54b3r/askdoc-go/internal/document"
	"github.com/54b3r/askdoc-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// quiet holds the --quiet flag value; it silences log output on stderr.
var quiet bool

// cliLogger returns the logger for CLI commands, honouring --quiet.
func cliLogger() *slog.Logger {
	if quiet {
		return logging.Discard()
	}
	return logging.New()
}

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
// The root command itself runs the question-answering flow against a document.
func NewRootCmd() *cobra.Command {
	var (
		question     string
		apiKey       string
		chunkSize    int
		chunkOverlap int
		topK         int
	)

	root := &cobra.Command{
		Use:   "askdoc <file>",
		Short: "Ask questions about a local document, answered by an LLM",
		Long: `askdoc loads a text or PDF document, splits it into overlapping chunks,
embeds the chunks into a vector index, and answers your questions using the
most relevant passages as context.

With -q a single question is answered and the program exits. Without -q an
interactive prompt reads questions from stdin until you type quit, exit, or q.

Model provider is selected via the MODEL_PROVIDER environment variable or a
YAML config file (~/.askdoc/config.yaml). The default is OpenAI, which needs
OPENAI_API_KEY (or --api-key).

Examples:
  askdoc report.txt -q "What were the main findings?"
  askdoc manual.pdf --chunk-size 1500 --chunk-overlap 300
  MODEL_PROVIDER=ollama askdoc notes.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := cliLogger()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("askdoc: a document path is required (see askdoc --help)")
			}
			path := args[0]

			chunkSize = flagOrEnvInt(cmd, "chunk-size", "ASKDOC_CHUNK_SIZE", chunkSize)
			chunkOverlap = flagOrEnvInt(cmd, "chunk-overlap", "ASKDOC_CHUNK_OVERLAP", chunkOverlap)
			topK = flagOrEnvInt(cmd, "top-k", "ASKDOC_TOP_K", topK)

			// Parameters and the document path are validated before any
			// collaborator is constructed, so bad input never causes a
			// network call.
			if _, err := chunker.NewSplitter(chunkSize, chunkOverlap); err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("askdoc: %w: %s", document.ErrNotFound, path)
				}
				return fmt.Errorf("askdoc: checking %s: %w", path, err)
			}

			ctx := cmd.Context()
			log := cliLogger()
			ctx = logging.WithLogger(ctx, log)

			p, _, cleanup, err := buildPipeline(ctx, log, &pipelineOptions{
				ChunkSize:    chunkSize,
				ChunkOverlap: chunkOverlap,
				TopK:         topK,
				APIKey:       apiKey,
			})
			if err != nil {
				return err
			}
			defer cleanup()

			chunks, err := p.Init(ctx, path)
			if err != nil {
				return err
			}

			hist, closeHist := openHistory(log)
			defer closeHist()

			if question != "" {
				res, err := p.Ask(ctx, question)
				if err != nil {
					return err
				}
				fmt.Println(res.Answer)
				if hist != nil {
					if err := hist.Append(ctx, p.Source(), res.Question, res.Answer); err != nil {
						log.Warn("history append failed", slog.Any("error", err))
					}
				}
				return nil
			}

			// Interactive mode: answer questions from stdin until the user quits.
			fmt.Printf("Indexed %s (%d chunks). Ask a question, or type 'quit' to exit.\n", path, chunks)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					break
				}
				q := strings.TrimSpace(scanner.Text())
				if q == "" {
					continue
				}
				switch strings.ToLower(q) {
				case "quit", "exit", "q":
					return nil
				}

				res, err := p.Ask(ctx, q)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Println(res.Answer)
				if hist != nil {
					if err := hist.Append(ctx, p.Source(), res.Question, res.Answer); err != nil {
						log.Warn("history append failed", slog.Any("error", err))
					}
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("askdoc: reading stdin: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.askdoc/config.yaml)")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress log output on stderr (answers still print)")

	root.Flags().StringVarP(&question, "question", "q", "", "Question to answer; omit for interactive mode")
	root.Flags().StringVar(&apiKey, "api-key", "", "API key for the model provider (overrides env)")
	root.Flags().IntVar(&chunkSize, "chunk-size", chunker.DefaultChunkSize, "Chunk size in characters")
	root.Flags().IntVar(&chunkOverlap, "chunk-overlap", chunker.DefaultChunkOverlap, "Characters shared between adjacent chunks")
	root.Flags().IntVarP(&topK, "top-k", "k", 3, "Number of chunks retrieved per question")

	root.AddCommand(
		NewServeCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
