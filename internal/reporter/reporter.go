package reporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/fullpotential/dashboard/internal/registry"
)

// Registrar is the slice of the registry client the reporter needs. Kept
// small so tests can fake it.
type Registrar interface {
	Register(ctx context.Context, payload registry.RegistrationPayload) bool
	Heartbeat(ctx context.Context, dropletID string) bool
}

type Config struct {
	DropletID    string
	DropletName  string
	Port         int
	Capabilities []string
	Interval     time.Duration
}

// Reporter announces this droplet to the registry once at startup and then
// keeps sending liveness pings until its context is cancelled. Every
// failure is logged and swallowed; the loop never gives up and never
// blocks anything else.
type Reporter struct {
	cfg      Config
	registry Registrar
	log      *slog.Logger
}

func New(cfg Config, reg Registrar, log *slog.Logger) *Reporter {
	return &Reporter{
		cfg:      cfg,
		registry: reg,
		log:      log,
	}
}

// Run blocks until ctx is cancelled. Callers own the goroutine and must
// wait for Run to return at shutdown so no heartbeat send is left
// dangling.
func (r *Reporter) Run(ctx context.Context) {
	if r.registry.Register(ctx, registry.RegistrationPayload{
		ID:           r.cfg.DropletID,
		Name:         r.cfg.DropletName,
		Port:         r.cfg.Port,
		Capabilities: r.cfg.Capabilities,
		Status:       "active",
	}) {
		r.log.Info("registered with registry", "droplet", r.cfg.DropletID)
	} else {
		r.log.Warn("registration failed, heartbeats will keep the registry informed")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("heartbeat loop stopping")
			return

		case <-ticker.C:
			if r.registry.Heartbeat(ctx, r.cfg.DropletID) {
				r.log.Debug("heartbeat sent")
			}
		}
	}
}
