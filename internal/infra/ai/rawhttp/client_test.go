package rawhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

func TestAnalyzeSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Model != "gpt-test" || len(body.Messages) != 1 || !strings.Contains(body.Messages[0].Content, "uuid-1") {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Just an id. Optimistic."}}]}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "tok-123", "gpt-test", time.Second).Analyze(context.Background(), "uuid-1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Sentiment != domain.SentimentOptimistic || got.Text != "Just an id. Optimistic." {
		t.Fatalf("got = %+v", got)
	}
}

func TestAnalyzeNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad token","type":"auth"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "nope", "", time.Second).Analyze(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "bad token") {
		t.Fatalf("err = %v", err)
	}
}

func TestAnalyzeEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "t", "", time.Second).Analyze(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
}
