package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/status"
)

const metricsTimeout = 5 * time.Second

// Client talks to the orchestrator droplet. Only its health and metrics
// surface matter here; its internals are someone else's problem.
type Client struct {
	baseURL string
	client  *http.Client
	prober  *status.Prober
	log     *slog.Logger
}

func NewClient(baseURL string, prober *status.Prober, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: metricsTimeout},
		prober:  prober,
		log:     log,
	}
}

// CheckHealth performs one bounded probe of the orchestrator.
func (c *Client) CheckHealth(ctx context.Context) status.ServiceStatus {
	return c.prober.Check(ctx, "Orchestrator", c.baseURL, c.baseURL+"/orchestrator/health")
}

// Metrics fetches the orchestrator's metrics document if it exposes one.
// Any failure yields an empty map; metrics are decorative here.
func (c *Client) Metrics(ctx context.Context) map[string]any {
	ctx, cancel := context.WithTimeout(ctx, metricsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orchestrator/metrics", nil)

	if err != nil {
		return map[string]any{}
	}

	resp, err := c.client.Do(req)

	if err != nil {
		c.log.Warn("orchestrator metrics fetch failed", "err", err)
		return map[string]any{}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("orchestrator metrics fetch failed", "err", fmt.Sprintf("HTTP %d", resp.StatusCode))
		return map[string]any{}
	}

	var out map[string]any

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return map[string]any{}
	}

	return out
}
