package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/config"
	"github.com/fullpotential/dashboard/internal/status"
	"github.com/gin-gonic/gin"
)

// Capabilities this droplet announces; shared with the registration payload.
var Capabilities = []string{"web-interface", "system-visualization", "marketing-site"}

// HealthChecker is the one-probe slice of a peer client.
type HealthChecker interface {
	CheckHealth(ctx context.Context) status.ServiceStatus
}

// UDCHandler serves the inter-droplet contract endpoints: /health,
// /capabilities, /state, /dependencies and /message.
type UDCHandler struct {
	cfg          config.Config
	registry     HealthChecker
	orchestrator HealthChecker
	startedAt    time.Time
}

func NewUDCHandler(cfg config.Config, registry, orchestrator HealthChecker) *UDCHandler {
	return &UDCHandler{
		cfg:          cfg,
		registry:     registry,
		orchestrator: orchestrator,
		startedAt:    time.Now().UTC(),
	}
}

func (h *UDCHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   h.cfg.DropletName + " is operational",
	})
}

func (h *UDCHandler) Capabilities(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"provides": Capabilities,
		"version":  h.cfg.Version,
		"endpoints": []string{
			"/health",
			"/capabilities",
			"/state",
			"/dependencies",
			"/message",
			"/api/system/status",
			"/api/droplets",
			"/api/orchestrator/metrics",
		},
	})
}

// State probes both peers fresh on every call; the answer is a snapshot,
// not a cached view.
func (h *UDCHandler) State(ctx *gin.Context) {
	registryStatus := h.registry.CheckHealth(ctx.Request.Context())
	orchestratorStatus := h.orchestrator.CheckHealth(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"droplet_id":     h.cfg.DropletID,
		"name":           h.cfg.DropletName,
		"status":         "active",
		"uptime_seconds": time.Since(h.startedAt).Seconds(),
		"last_heartbeat": time.Now().UTC().Format(time.RFC3339),
		"connected_services": gin.H{
			"registry":     registryStatus.Status == status.Online,
			"orchestrator": orchestratorStatus.Status == status.Online,
		},
	})
}

func (h *UDCHandler) Dependencies(ctx *gin.Context) {
	registryStatus := h.registry.CheckHealth(ctx.Request.Context())
	orchestratorStatus := h.orchestrator.CheckHealth(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"required_services": []string{"registry", "orchestrator"},
		"optional_services": []string{},
		"current_status": gin.H{
			"registry":     registryStatus.Status,
			"orchestrator": orchestratorStatus.Status,
		},
	})
}

type MessageRequest struct {
	FromDroplet string         `json:"from_droplet" binding:"required"`
	MessageType string         `json:"message_type" binding:"required"`
	Payload     map[string]any `json:"payload"`
}

func (h *UDCHandler) Message(ctx *gin.Context) {
	var msg MessageRequest

	if !BindJSON(ctx, &msg) {
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)

	switch msg.MessageType {
	case "ping":
		ctx.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "pong",
			"timestamp": now,
		})

	case "status_request":
		services := []status.ServiceStatus{
			h.registry.CheckHealth(ctx.Request.Context()),
			h.orchestrator.CheckHealth(ctx.Request.Context()),
		}

		ctx.JSON(http.StatusOK, gin.H{
			"success":        true,
			"message":        "status",
			"overall_health": status.Aggregate(services),
			"timestamp":      now,
		})

	default:
		ctx.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "received",
			"timestamp": now,
		})
	}
}
