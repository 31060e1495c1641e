package domain

import "time"

// HealthStatus is the JSON snapshot served by the /status endpoint.
type HealthStatus struct {
	Status           string    `json:"status"`
	StartedAt        time.Time `json:"started_at"`
	Uptime           string    `json:"uptime"`
	StorageBackend   string    `json:"storage_backend"`
	IngestSource     string    `json:"ingest_source"`
	Window           string    `json:"window"`
	MinMentions      int       `json:"min_mentions"`
	MinUniqueSources int       `json:"min_unique_sources"`
	DetectionCycles  int       `json:"detection_cycles"`
	LastCycleAt      time.Time `json:"last_cycle_at,omitzero"`
	LastCycleError   string    `json:"last_cycle_error,omitempty"`
	AlertsSent       int64     `json:"alerts_sent"`
	ActiveCooldowns  int       `json:"active_cooldowns"`
}
