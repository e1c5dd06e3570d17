package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/observability"
	"github.com/fullpotential/dashboard/internal/status"
	"go.opentelemetry.io/otel"
)

const (
	registerTimeout  = 10 * time.Second
	heartbeatTimeout = 5 * time.Second
	dropletsTimeout  = 5 * time.Second
)

// Droplet is one entry in the registry's service directory.
type Droplet struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Port         int      `json:"port,omitempty"`
	Description  string   `json:"description,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// RegistrationPayload announces this droplet to the registry.
type RegistrationPayload struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Port         int      `json:"port"`
	Capabilities []string `json:"capabilities"`
	Status       string   `json:"status"`
}

// Client talks to the registry droplet: health probes, registration,
// heartbeats and the cached directory listing.
type Client struct {
	baseURL string
	client  *http.Client
	prober  *status.Prober
	cache   *directoryCache
	prom    *observability.Prom
	log     *slog.Logger
}

func NewClient(baseURL string, cacheTTL time.Duration, prober *status.Prober, prom *observability.Prom, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: registerTimeout},
		prober:  prober,
		cache:   newDirectoryCache(cacheTTL),
		prom:    prom,
		log:     log,
	}
}

// CheckHealth performs one bounded probe of the registry's health endpoint.
func (c *Client) CheckHealth(ctx context.Context) status.ServiceStatus {
	return c.prober.Check(ctx, "Registry", c.baseURL, c.baseURL+"/health")
}

// Register announces this droplet. A false return means the registry
// rejected or never saw the announcement; the caller decides whether that
// matters.
func (c *Client) Register(ctx context.Context, payload RegistrationPayload) bool {
	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	code, err := c.postJSON(ctx, c.baseURL+"/droplets/register", payload)

	if err != nil {
		c.log.Error("registration error", "err", err)
		return false
	}

	if code != http.StatusOK && code != http.StatusCreated {
		c.log.Error("registration failed", "status", code)
		return false
	}

	c.log.Info("registered with registry")
	return true
}

// Heartbeat sends a liveness ping. Failures are reported to the caller and
// otherwise swallowed.
func (c *Client) Heartbeat(ctx context.Context, dropletID string) bool {
	ctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()

	code, err := c.postJSON(ctx, c.baseURL+"/droplets/heartbeat", map[string]string{
		"id":     dropletID,
		"status": "active",
	})

	ok := err == nil && code == http.StatusOK

	if c.prom != nil {
		result := "ok"
		if !ok {
			result = "failed"
		}
		c.prom.HeartbeatsTotal.WithLabelValues(result).Inc()
	}

	if err != nil {
		c.log.Warn("heartbeat failed", "err", err)
	} else if !ok {
		c.log.Warn("heartbeat failed", "status", code)
	}

	return ok
}

// Droplets returns the directory listing. A value younger than the cache
// TTL is served without a network call; on refresh failure the last
// successful listing is served unchanged, and only a client that has never
// seen a successful fetch gets an empty list.
func (c *Client) Droplets(ctx context.Context) []Droplet {
	now := time.Now()

	if droplets, ok := c.cache.fresh(now); ok {
		c.cacheOutcome("hit")
		return droplets
	}

	droplets, err := c.fetchDroplets(ctx)

	if err != nil {
		c.log.Error("directory fetch failed", "err", err)

		if stale, ok := c.cache.stale(); ok {
			c.cacheOutcome("stale_fallback")
			return stale
		}

		c.cacheOutcome("empty")
		return []Droplet{}
	}

	c.cache.store(droplets, now)
	c.cacheOutcome("refresh")

	return droplets
}

func (c *Client) fetchDroplets(ctx context.Context) ([]Droplet, error) {
	tracer := otel.Tracer("dashboard/registry")
	ctx, span := tracer.Start(ctx, "registry.droplets")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, dropletsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/droplets", nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory fetch: HTTP %d", resp.StatusCode)
	}

	return decodeDroplets(resp.Body)
}

// decodeDroplets accepts both payload shapes the registry has shipped: a
// bare JSON array, or an object wrapping the array in a "droplets" field.
func decodeDroplets(r io.Reader) ([]Droplet, error) {
	var raw json.RawMessage

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	var droplets []Droplet

	if err := json.Unmarshal(raw, &droplets); err == nil {
		return droplets, nil
	}

	var wrapped struct {
		Droplets []Droplet `json:"droplets"`
	}

	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}

	return wrapped.Droplets, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body any) (int, error) {
	payload, err := json.Marshal(body)

	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))

	if err != nil {
		return 0, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)

	if err != nil {
		return 0, err
	}

	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func (c *Client) cacheOutcome(outcome string) {
	if c.prom != nil {
		c.prom.DirectoryCache.WithLabelValues(outcome).Inc()
	}
}
