package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fullpotential/dashboard/internal/config"
	"github.com/fullpotential/dashboard/internal/http/handlers"
	"github.com/fullpotential/dashboard/internal/registry"
	"github.com/fullpotential/dashboard/internal/status"
	"github.com/gin-gonic/gin"
)

type fakeChecker struct {
	name   string
	status string
}

func (f *fakeChecker) CheckHealth(_ context.Context) status.ServiceStatus {
	return status.ServiceStatus{Name: f.name, Status: f.status}
}

type fakeDirectory struct {
	droplets []registry.Droplet
}

func (f *fakeDirectory) Droplets(_ context.Context) []registry.Droplet {
	return f.droplets
}

type fakeMetrics struct {
	doc map[string]any
}

func (f *fakeMetrics) Metrics(_ context.Context) map[string]any {
	return f.doc
}

func setupStatusRouter(registryStatus, orchestratorStatus string, droplets []registry.Droplet, metrics map[string]any) *gin.Engine {
	h := handlers.NewStatusHandler(
		&fakeChecker{name: "Registry", status: registryStatus},
		&fakeChecker{name: "Orchestrator", status: orchestratorStatus},
		&fakeDirectory{droplets: droplets},
		&fakeMetrics{doc: metrics},
	)

	r := gin.New()
	r.GET("/api/system/status", h.SystemStatus)
	r.GET("/api/droplets", h.Droplets)
	r.GET("/api/orchestrator/metrics", h.OrchestratorMetrics)

	return r
}

func TestSystemStatusAggregation(t *testing.T) {
	tests := []struct {
		name         string
		registry     string
		orchestrator string
		want         string
	}{
		{name: "both online", registry: status.Online, orchestrator: status.Online, want: status.Healthy},
		{name: "one offline", registry: status.Online, orchestrator: status.Offline, want: status.Degraded},
		{name: "one degraded", registry: status.Degraded, orchestrator: status.Online, want: status.Degraded},
		{name: "both down", registry: status.Offline, orchestrator: status.Offline, want: status.Critical},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := setupStatusRouter(tc.registry, tc.orchestrator, nil, nil)

			w := doJSON(router, http.MethodGet, "/api/system/status", "")

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}

			var resp struct {
				OverallHealth string                 `json:"overall_health"`
				Services      []status.ServiceStatus `json:"services"`
				DropletCount  int                    `json:"droplet_count"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if resp.OverallHealth != tc.want {
				t.Errorf("overall_health = %q, want %q", resp.OverallHealth, tc.want)
			}

			if len(resp.Services) != 2 {
				t.Errorf("services = %d, want 2", len(resp.Services))
			}

			// even with an empty directory at least the two peers exist
			if resp.DropletCount < 2 {
				t.Errorf("droplet_count = %d, want >= 2", resp.DropletCount)
			}
		})
	}
}

func TestDropletsPassthrough(t *testing.T) {
	listed := []registry.Droplet{
		{ID: "registry", Name: "Registry", Status: "active", Port: 8000},
		{ID: "dashboard", Name: "Dashboard", Status: "active", Port: 8002},
	}

	router := setupStatusRouter(status.Online, status.Online, listed, nil)

	w := doJSON(router, http.MethodGet, "/api/droplets", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var droplets []registry.Droplet

	if err := json.Unmarshal(w.Body.Bytes(), &droplets); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(droplets) != 2 || droplets[0].ID != "registry" {
		t.Errorf("unexpected droplets: %+v", droplets)
	}
}

func TestDropletsFallbackWhenDirectoryEmpty(t *testing.T) {
	router := setupStatusRouter(status.Online, status.Online, nil, nil)

	w := doJSON(router, http.MethodGet, "/api/droplets", "")

	var droplets []registry.Droplet

	if err := json.Unmarshal(w.Body.Bytes(), &droplets); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(droplets) != 3 {
		t.Fatalf("fallback droplets = %d, want the 3 well-known ones", len(droplets))
	}

	ids := map[string]bool{}
	for _, d := range droplets {
		ids[d.ID] = true
	}

	for _, want := range []string{"registry", "orchestrator", "dashboard"} {
		if !ids[want] {
			t.Errorf("fallback listing missing %q", want)
		}
	}
}

func TestOrchestratorMetricsPassthrough(t *testing.T) {
	doc := map[string]any{"active_tasks": float64(4), "queue_depth": float64(0)}

	router := setupStatusRouter(status.Online, status.Online, nil, doc)

	w := doJSON(router, http.MethodGet, "/api/orchestrator/metrics", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got["active_tasks"] != float64(4) {
		t.Errorf("active_tasks = %v, want 4", got["active_tasks"])
	}
}

func TestOrchestratorMetricsEmptyDocument(t *testing.T) {
	router := setupStatusRouter(status.Online, status.Online, nil, map[string]any{})

	w := doJSON(router, http.MethodGet, "/api/orchestrator/metrics", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if body := w.Body.String(); body != "{}" {
		t.Errorf("body = %q, want {}", body)
	}
}

func setupUDCRouter(registryStatus, orchestratorStatus string) *gin.Engine {
	cfg := config.Config{
		DropletID:   "dashboard",
		DropletName: "Dashboard",
		Version:     "1.0.0",
	}

	h := handlers.NewUDCHandler(cfg,
		&fakeChecker{name: "Registry", status: registryStatus},
		&fakeChecker{name: "Orchestrator", status: orchestratorStatus},
	)

	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/capabilities", h.Capabilities)
	r.GET("/state", h.State)
	r.GET("/dependencies", h.Dependencies)
	r.POST("/message", h.Message)

	return r
}

func TestHealthEndpoint(t *testing.T) {
	router := setupUDCRouter(status.Online, status.Online)

	w := doJSON(router, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Status string `json:"status"`
	}

	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Status != "active" {
		t.Errorf("status = %q, want active", resp.Status)
	}
}

func TestStateReportsConnectedServices(t *testing.T) {
	router := setupUDCRouter(status.Online, status.Offline)

	w := doJSON(router, http.MethodGet, "/state", "")

	var resp struct {
		DropletID         string          `json:"droplet_id"`
		ConnectedServices map[string]bool `json:"connected_services"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.DropletID != "dashboard" {
		t.Errorf("droplet_id = %q", resp.DropletID)
	}

	if !resp.ConnectedServices["registry"] || resp.ConnectedServices["orchestrator"] {
		t.Errorf("connected_services = %v", resp.ConnectedServices)
	}
}

func TestDependenciesReportsCurrentStatus(t *testing.T) {
	router := setupUDCRouter(status.Degraded, status.Online)

	w := doJSON(router, http.MethodGet, "/dependencies", "")

	var resp struct {
		RequiredServices []string          `json:"required_services"`
		CurrentStatus    map[string]string `json:"current_status"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(resp.RequiredServices) != 2 {
		t.Errorf("required_services = %v", resp.RequiredServices)
	}

	if resp.CurrentStatus["registry"] != status.Degraded {
		t.Errorf("registry status = %q, want degraded", resp.CurrentStatus["registry"])
	}
}

func TestMessagePing(t *testing.T) {
	router := setupUDCRouter(status.Online, status.Online)

	w := doJSON(router, http.MethodPost, "/message",
		`{"from_droplet":"orchestrator","message_type":"ping"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	if !resp.Success || resp.Message != "pong" {
		t.Errorf("ping response = %+v", resp)
	}
}

func TestMessageStatusRequest(t *testing.T) {
	router := setupUDCRouter(status.Online, status.Offline)

	w := doJSON(router, http.MethodPost, "/message",
		`{"from_droplet":"orchestrator","message_type":"status_request"}`)

	var resp struct {
		OverallHealth string `json:"overall_health"`
	}

	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.OverallHealth != status.Degraded {
		t.Errorf("overall_health = %q, want degraded", resp.OverallHealth)
	}
}

func TestMessageRejectsMissingFields(t *testing.T) {
	router := setupUDCRouter(status.Online, status.Online)

	w := doJSON(router, http.MethodPost, "/message", `{"payload":{}}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
