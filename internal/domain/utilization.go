package domain

import "time"

// UtilizationSample is one day's measured vs. predicted usage for a location.
// Timestamp is a calendar date (YYYY-MM-DD); utilization values are percentages.
type UtilizationSample struct {
	Timestamp            string  `json:"timestamp"`
	ActualUtilization    float64 `json:"actualUtilization"`
	PredictedUtilization float64 `json:"predictedUtilization"`
}

// UtilizationSeries wraps the samples returned for one service point
type UtilizationSeries struct {
	SPID      string              `json:"sp_id"`
	Samples   []UtilizationSample `json:"samples"`
	IsMock    bool                `json:"is_mock"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// UtilizationRequest is the body sent to the prediction endpoint
type UtilizationRequest struct {
	SPID string `json:"sp_id"`
}

// CalendarDate is the timestamp layout used by utilization samples
const CalendarDate = "2006-01-02"
