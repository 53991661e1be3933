package domain

import (
	"context"
	"time"
)

// FetchKind names the backend call a FetchLog describes
type FetchKind string

const (
	FetchLocations   FetchKind = "locations"
	FetchUtilization FetchKind = "utilization"
)

// FetchLog records the outcome of one backend fetch
type FetchLog struct {
	Kind         FetchKind `json:"kind"`
	SPID         string    `json:"sp_id,omitempty"`
	SampleCount  int       `json:"sample_count"`
	IsMock       bool      `json:"is_mock"`
	AvgActual    float64   `json:"avg_actual"`
	AvgPredicted float64   `json:"avg_predicted"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// FetchLogRepository defines the interface for fetch log persistence
type FetchLogRepository interface {
	// SaveFetchLog persists one fetch log entry
	SaveFetchLog(ctx context.Context, entry FetchLog) error

	// RecentFetchLogs returns the newest entries first.
	// An empty spID matches every service point.
	RecentFetchLogs(ctx context.Context, spID string, limit int) ([]FetchLog, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
