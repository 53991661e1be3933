package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/spdash/dashboard/internal/domain"
	"github.com/spdash/dashboard/pkg/utils"
)

// DashboardService combines the backend client with fetch logging
type DashboardService struct {
	client *SPClient
	repo   FetchLogRepository

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(client *SPClient, repo FetchLogRepository) *DashboardService {
	return &DashboardService{
		client: client,
		repo:   repo,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *DashboardService) WaitBackground() {
	s.wgBg.Wait()
}

// FetchLocations returns the location list for one page load
func (s *DashboardService) FetchLocations(ctx context.Context) (domain.LocationSet, error) {
	start := time.Now()
	set, err := s.client.FetchLocations(ctx)
	if err != nil {
		return set, err
	}

	s.record(domain.FetchLog{
		Kind:        domain.FetchLocations,
		SampleCount: len(set.Locations),
		IsMock:      set.IsMock,
		DurationMs:  time.Since(start).Milliseconds(),
		Timestamp:   start,
	})
	return set, nil
}

// FetchUtilization returns the utilization series for one location.
// It satisfies UtilizationFetcher so controllers can use it directly.
func (s *DashboardService) FetchUtilization(ctx context.Context, locationID string) (domain.UtilizationSeries, error) {
	start := time.Now()
	series, err := s.client.FetchUtilization(ctx, locationID)
	if err != nil {
		return series, err
	}

	actual, predicted := averages(series.Samples)
	s.record(domain.FetchLog{
		Kind:         domain.FetchUtilization,
		SPID:         locationID,
		SampleCount:  len(series.Samples),
		IsMock:       series.IsMock,
		AvgActual:    actual,
		AvgPredicted: predicted,
		DurationMs:   time.Since(start).Milliseconds(),
		Timestamp:    start,
	})
	return series, nil
}

// RecentFetchLogs returns persisted fetch logs, newest first
func (s *DashboardService) RecentFetchLogs(ctx context.Context, spID string, limit int) ([]domain.FetchLog, error) {
	return s.repo.RecentFetchLogs(ctx, spID, limit)
}

// Health checks fetch log storage
func (s *DashboardService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// record persists entry asynchronously (tracked for graceful shutdown)
func (s *DashboardService) record(entry domain.FetchLog) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveFetchLog(bgCtx, entry); err != nil {
			log.Printf("Failed to save fetch log: %v", err)
		}
	}()
}

func averages(samples []domain.UtilizationSample) (actual, predicted float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	for _, s := range samples {
		actual += s.ActualUtilization
		predicted += s.PredictedUtilization
	}
	n := float64(len(samples))
	return utils.RoundTo(actual/n, 2), utils.RoundTo(predicted/n, 2)
}
