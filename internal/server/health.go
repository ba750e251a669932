package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/54b3r/askdoc-go/internal/logging"
)

// probeTimeout bounds each dependency probe so /api/ready stays responsive
// when a dependency hangs instead of refusing the connection.
const probeTimeout = 5 * time.Second

// Pinger reports the reachability of one external dependency. A nil return
// means healthy. Implementations must be safe for concurrent use.
type Pinger interface {
	// Ping probes the dependency, returning nil on success.
	Ping(ctx context.Context) error

	// Name labels the dependency in readiness responses ("ollama", "qdrant").
	Name() string
}

// MultiPinger folds several Pingers into one, failing on the first
// unhealthy dependency.
type MultiPinger struct {
	pingers []Pinger
}

// NewMultiPinger constructs a MultiPinger over the given probes.
func NewMultiPinger(pingers ...Pinger) *MultiPinger {
	return &MultiPinger{pingers: pingers}
}

// Ping probes each dependency in order. The first failure is returned,
// prefixed with the dependency name; nil means everything answered.
func (m *MultiPinger) Ping(ctx context.Context) error {
	for _, p := range m.pingers {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}

// Name implements Pinger.
func (m *MultiPinger) Name() string { return "multi" }

// readyCheck is one dependency's entry in the readiness response.
type readyCheck struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readyResponse is the GET /api/ready body.
type readyResponse struct {
	Ready  bool         `json:"ready"`
	Checks []readyCheck `json:"checks"`
}

// handleReady probes every registered dependency with a short per-probe
// timeout. All healthy → 200; any failure → 503 with the failing checks
// listed. /api/health is the liveness counterpart and never probes anything.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	resp := readyResponse{Ready: true, Checks: make([]readyCheck, 0, len(s.pingers))}
	for _, p := range s.pingers {
		resp.Checks = append(resp.Checks, s.probe(r.Context(), log, p))
	}
	for _, c := range resp.Checks {
		if !c.OK {
			resp.Ready = false
			break
		}
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("ready encode error", slog.Any("error", err))
	}
}

// probe runs a single dependency check under probeTimeout.
func (s *Server) probe(ctx context.Context, log *slog.Logger, p Pinger) readyCheck {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := p.Ping(probeCtx)
	if err == nil {
		return readyCheck{Name: p.Name(), OK: true}
	}

	log.Warn("readiness probe failed",
		slog.String("dependency", p.Name()),
		slog.Any("error", err),
	)
	return readyCheck{Name: p.Name(), Error: err.Error()}
}
