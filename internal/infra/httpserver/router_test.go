package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/insight-pipeline/internal/application"
	apppipeline "github.com/bryanwahyu/insight-pipeline/internal/application/pipeline"
	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/middleware"
)

type stubIdentifiers struct {
	n    int
	fail int // 1-based call that fails, 0 = never
}

func (s *stubIdentifiers) Fetch(ctx context.Context) (string, error) {
	s.n++
	if s.n == s.fail {
		return "", errors.New("dial tcp: i/o timeout")
	}
	return "2f1b6f0c-6d3e-4a8b-9c1d-0e2f3a4b5c6d", nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	reply := "It is a UUID. Sentiment: balanced."
	return domain.Analysis{Text: reply, Sentiment: domain.ClassifySentiment(reply)}, nil
}

type memRepo struct {
	records []*domain.Record
}

func (m *memRepo) Save(ctx context.Context, r *domain.Record) error {
	r.ID = domain.RecordID(len(m.records) + 1)
	cp := *r
	m.records = append(m.records, &cp)
	return nil
}

func (m *memRepo) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memRepo) Latest(ctx context.Context, limit int) ([]*domain.Record, error) {
	out := []*domain.Record{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func newTestRouter(ids *stubIdentifiers, repo *memRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := middleware.NewMetrics()
	svc := &apppipeline.Service{
		Identifiers: ids,
		Analyzer:    stubAnalyzer{},
		Repo:        repo,
		Clock:       application.SystemClock{},
		Logger:      logger,
		Observer:    metrics,
	}
	return NewRouter(svc, Options{Logger: logger, Metrics: metrics})
}

func TestRunPipelineReturnsReport(t *testing.T) {
	repo := &memRepo{}
	h := newTestRouter(&stubIdentifiers{}, repo)
	start := time.Now().UTC().Add(-time.Second)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pipeline", strings.NewReader(`{"email":"me@example.com","source":"web"}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id")
	}

	var body struct {
		Items []struct {
			Original  string `json:"original"`
			Analysis  string `json:"analysis"`
			Sentiment string `json:"sentiment"`
			Stored    bool   `json:"stored"`
			Timestamp string `json:"timestamp"`
		} `json:"items"`
		NotificationSent bool     `json:"notificationSent"`
		ProcessedAt      string   `json:"processedAt"`
		Errors           []string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 3 || !body.NotificationSent || body.Errors == nil || len(body.Errors) != 0 {
		t.Fatalf("body = %+v", body)
	}
	for _, it := range body.Items {
		ts, err := time.Parse(time.RFC3339Nano, it.Timestamp)
		if err != nil || ts.Before(start) {
			t.Fatalf("timestamp %q: %v", it.Timestamp, err)
		}
		if !it.Stored || it.Sentiment != "balanced" {
			t.Fatalf("item = %+v", it)
		}
	}
	if len(repo.records) != 3 || repo.records[0].Source != "web" {
		t.Fatalf("records = %+v", repo.records)
	}
}

func TestRunPipelineEmptyErrorsSerializeAsArray(t *testing.T) {
	h := newTestRouter(&stubIdentifiers{fail: 2}, &memRepo{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pipeline", strings.NewReader(`{}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var items []json.RawMessage
	var errs []string
	_ = json.Unmarshal(body["items"], &items)
	_ = json.Unmarshal(body["errors"], &errs)
	if len(items) != 2 || len(errs) != 1 || !strings.HasPrefix(errs[0], "API error: ") {
		t.Fatalf("items = %d, errors = %v", len(items), errs)
	}
}

func TestRunPipelineRejectsBadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ``},
		{name: "null", body: `null`},
		{name: "array", body: `[]`},
		{name: "unknown field", body: `{"mail":"x@example.com"}`},
		{name: "wrong type", body: `{"source": 42}`},
		{name: "bad email", body: `{"email":"nope"}`},
		{name: "too long source", body: `{"source":"` + strings.Repeat("s", 300) + `"}`},
		{name: "trailing data", body: `{} {}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			h := newTestRouter(&stubIdentifiers{}, repo)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pipeline", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != "invalid_payload" {
				t.Fatalf("code = %q", resp.Error.Code)
			}
			if len(repo.records) != 0 {
				t.Fatalf("pipeline ran on invalid payload")
			}
		})
	}
}

func TestResultsEndpoints(t *testing.T) {
	repo := &memRepo{}
	h := newTestRouter(&stubIdentifiers{}, repo)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/pipeline", strings.NewReader(`{"source":"cli"}`)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []domain.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0].ID != 3 {
		t.Fatalf("list = %+v", list)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/1", nil))
	var one domain.Record
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &one) != nil || one.ID != 1 || one.Source != "cli" {
		t.Fatalf("get status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestCORSPreflightAllowsAnyOrigin(t *testing.T) {
	h := newTestRouter(&stubIdentifiers{}, &memRepo{})

	req := httptest.NewRequest(http.MethodOptions, "/pipeline", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&stubIdentifiers{fail: 1}, &memRepo{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/pipeline", strings.NewReader(`{}`)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="POST",route="/pipeline",status="200"} 1`) {
		t.Fatalf("metrics missing request counter:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `pipeline_step_failures_total{step="fetch"} 1`) {
		t.Fatalf("metrics missing step failure counter:\n%s", rec.Body.String())
	}
}
