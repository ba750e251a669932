package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/askdoc-go/internal/history"
	"github.com/54b3r/askdoc-go/internal/pipeline"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.NewServer] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// History, when non-nil, records every answered question.
	History history.Store
	// Registry receives the server's Prometheus metrics. If nil a fresh
	// registry with the standard process/go collectors is created.
	Registry *prometheus.Registry
}

// asker is the interface handleAsk calls to answer a question.
// *pipeline.Pipeline satisfies it; tests inject a fake.
type asker interface {
	// Ask answers a single question about the indexed document.
	Ask(ctx context.Context, question string) (*pipeline.QueryResult, error)
	// Source returns the path of the indexed document.
	Source() string
}

// Server is the HTTP server that wraps an initialised question pipeline.
type Server struct {
	// qa answers questions; set to the pipeline in production, overridden
	// by a fake in tests.
	qa asker
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the user's natural language question.
	Question string `json:"question"`
}

// askSource is one retrieved context chunk in an askResponse.
type askSource struct {
	// Content is the chunk text.
	Content string `json:"content"`
	// Source is the document path the chunk came from.
	Source string `json:"source"`
	// Score is the similarity score assigned by the vector store.
	Score float32 `json:"score"`
}

// askResponse is the JSON response for POST /api/ask.
type askResponse struct {
	// Question echoes the question as asked.
	Question string `json:"question"`
	// Answer is the model's answer.
	Answer string `json:"answer"`
	// Sources lists the context chunks the answer was grounded on.
	Sources []askSource `json:"sources"`
}
