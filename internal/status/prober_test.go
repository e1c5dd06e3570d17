package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProberClassifiesByStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       string
		wantErr    string
	}{
		{name: "200 is online", statusCode: http.StatusOK, want: Online},
		{name: "204 is online", statusCode: http.StatusNoContent, want: Online},
		{name: "500 is degraded", statusCode: http.StatusInternalServerError, want: Degraded, wantErr: "HTTP 500"},
		{name: "404 is degraded", statusCode: http.StatusNotFound, want: Degraded, wantErr: "HTTP 404"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.statusCode)
			}))
			defer srv.Close()

			p := NewProber(nil)

			got := p.Check(context.Background(), "Registry", srv.URL, srv.URL+"/health")

			if got.Status != tc.want {
				t.Errorf("status = %s, want %s", got.Status, tc.want)
			}

			if got.Error != tc.wantErr {
				t.Errorf("error = %q, want %q", got.Error, tc.wantErr)
			}

			if got.Name != "Registry" {
				t.Errorf("name = %q, want Registry", got.Name)
			}

			if got.URL != srv.URL {
				t.Errorf("url = %q, want %q", got.URL, srv.URL)
			}
		})
	}
}

func TestProberUnreachableIsOffline(t *testing.T) {
	// grab an address that refuses connections
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewProber(nil)

	got := p.Check(context.Background(), "Orchestrator", url, url+"/health")

	if got.Status != Offline {
		t.Errorf("status = %s, want %s", got.Status, Offline)
	}

	if got.Error == "" {
		t.Error("offline result is missing the failure description")
	}
}

func TestProberRecordsLatencyOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(nil)

	got := p.Check(context.Background(), "Registry", srv.URL, srv.URL+"/health")

	if got.ResponseTimeMS < 0 {
		t.Errorf("response time = %d, want >= 0", got.ResponseTimeMS)
	}

	if got.LastChecked.IsZero() {
		t.Error("last checked timestamp not set")
	}
}
