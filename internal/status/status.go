package status

import "time"

// Probe classifications for a single peer service.
const (
	Online   = "online"
	Degraded = "degraded"
	Offline  = "offline"
)

// Overall classifications for a set of probes.
const (
	Healthy  = "healthy"
	Critical = "critical"
	// Degraded is shared with the per-service constant above.
)

// ServiceStatus is the transient result of one health probe. It is never
// persisted; every poll recomputes it.
type ServiceStatus struct {
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	ResponseTimeMS int64     `json:"responseTimeMs,omitempty"`
	LastChecked    time.Time `json:"lastChecked"`
	URL            string    `json:"url"`
	Error          string    `json:"error,omitempty"`
}

// Aggregate folds individual probe results into one classification:
// healthy when everything is online, critical when nothing is, degraded
// in between.
func Aggregate(statuses []ServiceStatus) string {
	online := 0

	for _, s := range statuses {
		if s.Status == Online {
			online++
		}
	}

	switch {
	case online == len(statuses):
		return Healthy
	case online == 0:
		return Critical
	default:
		return Degraded
	}
}
