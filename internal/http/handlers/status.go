package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/registry"
	"github.com/fullpotential/dashboard/internal/status"
	"github.com/gin-gonic/gin"
)

// DirectoryLister is the cached-listing slice of the registry client.
type DirectoryLister interface {
	Droplets(ctx context.Context) []registry.Droplet
}

// MetricsFetcher is the metrics slice of the orchestrator client.
type MetricsFetcher interface {
	Metrics(ctx context.Context) map[string]any
}

// StatusHandler serves the aggregated system view the public dashboard
// polls: overall health, the droplet directory, and the orchestrator's
// metrics document.
type StatusHandler struct {
	registry     HealthChecker
	orchestrator HealthChecker
	directory    DirectoryLister
	metrics      MetricsFetcher
}

func NewStatusHandler(registryChecker, orchestratorChecker HealthChecker, directory DirectoryLister, metrics MetricsFetcher) *StatusHandler {
	return &StatusHandler{
		registry:     registryChecker,
		orchestrator: orchestratorChecker,
		directory:    directory,
		metrics:      metrics,
	}
}

// SystemStatus probes both peers fresh, aggregates, and reports how many
// droplets the directory currently knows about.
func (h *StatusHandler) SystemStatus(ctx *gin.Context) {
	services := []status.ServiceStatus{
		h.registry.CheckHealth(ctx.Request.Context()),
		h.orchestrator.CheckHealth(ctx.Request.Context()),
	}

	droplets := h.directory.Droplets(ctx.Request.Context())

	dropletCount := len(droplets)
	if dropletCount == 0 {
		// at minimum Registry + Orchestrator exist
		dropletCount = 2
	}

	ctx.JSON(http.StatusOK, gin.H{
		"overall_health": status.Aggregate(services),
		"services":       services,
		"droplet_count":  dropletCount,
		"last_updated":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Droplets returns the cached directory listing, falling back to the three
// well-known droplets when the registry has nothing to say.
func (h *StatusHandler) Droplets(ctx *gin.Context) {
	droplets := h.directory.Droplets(ctx.Request.Context())

	if len(droplets) == 0 {
		droplets = wellKnownDroplets()
	}

	ctx.JSON(http.StatusOK, droplets)
}

// OrchestratorMetrics relays the orchestrator's metrics document to the
// dashboard. An unreachable orchestrator yields an empty object, not an
// error; the page renders without it.
func (h *StatusHandler) OrchestratorMetrics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.metrics.Metrics(ctx.Request.Context()))
}

func wellKnownDroplets() []registry.Droplet {
	return []registry.Droplet{
		{
			ID:           "registry",
			Name:         "Registry",
			Status:       "active",
			Port:         8000,
			Description:  "Identity and service directory",
			Capabilities: []string{"identity", "service-directory"},
		},
		{
			ID:           "orchestrator",
			Name:         "Orchestrator",
			Status:       "active",
			Port:         8001,
			Description:  "Task routing and messaging",
			Capabilities: []string{"routing", "messaging", "heartbeat-collection"},
		},
		{
			ID:           "dashboard",
			Name:         "Dashboard",
			Status:       "active",
			Port:         8002,
			Description:  "Public marketing site and system visualization",
			Capabilities: Capabilities,
		},
	}
}
