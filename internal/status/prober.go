package status

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fullpotential/dashboard/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const probeTimeout = 5 * time.Second

// Prober performs single-shot bounded health probes. There is no retry and
// no backoff; each call costs exactly one round trip.
type Prober struct {
	client *http.Client
	prom   *observability.Prom
}

func NewProber(prom *observability.Prom) *Prober {
	return &Prober{
		client: &http.Client{Timeout: probeTimeout},
		prom:   prom,
	}
}

// Check probes healthURL and classifies the outcome: 2xx is online, any
// other response is degraded, a transport fault or timeout is offline.
func (p *Prober) Check(ctx context.Context, name, baseURL, healthURL string) ServiceStatus {
	tracer := otel.Tracer("dashboard/status")
	ctx, span := tracer.Start(ctx, "probe "+name)
	defer span.End()

	span.SetAttributes(attribute.String("probe.target", name))

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)

	if err != nil {
		return p.record(ServiceStatus{
			Name:        name,
			Status:      Offline,
			LastChecked: time.Now().UTC(),
			URL:         baseURL,
			Error:       err.Error(),
		}, start)
	}

	resp, err := p.client.Do(req)

	if err != nil {
		return p.record(ServiceStatus{
			Name:        name,
			Status:      Offline,
			LastChecked: time.Now().UTC(),
			URL:         baseURL,
			Error:       err.Error(),
		}, start)
	}

	defer resp.Body.Close()

	elapsed := time.Since(start)

	s := ServiceStatus{
		Name:           name,
		Status:         Online,
		ResponseTimeMS: elapsed.Milliseconds(),
		LastChecked:    time.Now().UTC(),
		URL:            baseURL,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.Status = Degraded
		s.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	return p.record(s, start)
}

func (p *Prober) record(s ServiceStatus, start time.Time) ServiceStatus {
	if p.prom != nil {
		p.prom.ProbeDuration.WithLabelValues(s.Name).Observe(time.Since(start).Seconds())
		p.prom.ProbeResults.WithLabelValues(s.Name, s.Status).Inc()
	}

	return s
}
