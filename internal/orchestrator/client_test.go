package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fullpotential/dashboard/internal/status"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestMetricsDecodesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orchestrator/metrics" {
			t.Errorf("path = %q, want /orchestrator/metrics", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active_tasks":4,"queue_depth":0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, status.NewProber(nil), discardLogger())

	got := c.Metrics(context.Background())

	if got["active_tasks"] != float64(4) {
		t.Errorf("active_tasks = %v, want 4", got["active_tasks"])
	}

	if got["queue_depth"] != float64(0) {
		t.Errorf("queue_depth = %v, want 0", got["queue_depth"])
	}
}

func TestMetricsEmptyOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, status.NewProber(nil), discardLogger())

	got := c.Metrics(context.Background())

	if got == nil || len(got) != 0 {
		t.Errorf("metrics = %v, want empty map", got)
	}
}

func TestMetricsEmptyWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, status.NewProber(nil), discardLogger())

	got := c.Metrics(context.Background())

	if got == nil || len(got) != 0 {
		t.Errorf("metrics = %v, want empty map", got)
	}
}

func TestMetricsEmptyOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, status.NewProber(nil), discardLogger())

	got := c.Metrics(context.Background())

	if got == nil || len(got) != 0 {
		t.Errorf("metrics = %v, want empty map", got)
	}
}
