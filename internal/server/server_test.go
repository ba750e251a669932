package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/askdoc-go/internal/history"
	"github.com/54b3r/askdoc-go/internal/pipeline"
	"github.com/54b3r/askdoc-go/internal/rag"
)

// fakeAsker implements the asker interface for tests.
type fakeAsker struct {
	// result is returned on every Ask call.
	result *pipeline.QueryResult
	// err is returned as the error value.
	err error
}

func (f *fakeAsker) Ask(_ context.Context, question string) (*pipeline.QueryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Question = question
	return &res, nil
}

func (f *fakeAsker) Source() string { return "/docs/sample.txt" }

// newAskTestServer builds a *Server wired with the given asker fake.
func newAskTestServer(qa asker, hist history.Store) *Server {
	return &Server{
		qa:      qa,
		cfg:     &Config{Port: 8080, History: hist},
		log:     slog.Default(),
		metrics: newServerMetrics(prometheus.NewRegistry()),
	}
}

func TestHandleAsk_InvalidJSON(t *testing.T) {
	t.Parallel()

	s := newAskTestServer(&fakeAsker{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`not-json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleAsk_MissingQuestion(t *testing.T) {
	t.Parallel()

	s := newAskTestServer(&fakeAsker{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleAsk_Success(t *testing.T) {
	t.Parallel()

	qa := &fakeAsker{result: &pipeline.QueryResult{
		Answer: "Paris.",
		Sources: []rag.Document{
			{Content: "The capital of France is Paris.", Source: "/docs/sample.txt", Score: 0.91},
		},
	}}
	s := newAskTestServer(qa, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"What is the capital of France?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp askResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != "Paris." {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if resp.Question != "What is the capital of France?" {
		t.Errorf("question: got %q", resp.Question)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Source != "/docs/sample.txt" {
		t.Errorf("sources: got %+v", resp.Sources)
	}
}

func TestHandleAsk_PipelineError(t *testing.T) {
	t.Parallel()

	s := newAskTestServer(&fakeAsker{err: fmt.Errorf("model unavailable")}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"anything"}`))
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandleAsk_RecordsHistory(t *testing.T) {
	t.Parallel()

	hist, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	qa := &fakeAsker{result: &pipeline.QueryResult{Answer: "yes"}}
	s := newAskTestServer(qa, hist)

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"is it recorded?"}`))
	w := httptest.NewRecorder()

	s.handleAsk(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	turns, err := hist.Recent(context.Background(), "/docs/sample.txt", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(turns) != 1 || turns[0].Question != "is it recorded?" || turns[0].Answer != "yes" {
		t.Errorf("unexpected turns: %+v", turns)
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newAskTestServer(&fakeAsker{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status: got %q", body["status"])
	}
	if body["document"] != "/docs/sample.txt" {
		t.Errorf("document: got %q", body["document"])
	}
}

// TestNew_RoutingAndAuth exercises the full mux built by New, including the
// auth middleware on /api/ask and the open health endpoint.
func TestNew_RoutingAndAuth(t *testing.T) {
	t.Parallel()

	qa := &fakeAsker{result: &pipeline.QueryResult{Answer: "ok"}}
	s, err := New(qa, &Config{
		APIKey:   "secret",
		Logger:   slog.Default(),
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)

	handler := s.httpServer.Handler

	// No token — rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"q"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without token: expected 401, got %d", w.Code)
	}

	// Correct token — answered.
	req = httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Health stays open.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	// Metrics endpoint serves the injected registry.
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "askdoc_ask_requests_total") {
		t.Error("metrics output missing askdoc_ask_requests_total")
	}
}
