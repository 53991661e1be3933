package postgres

import (
	"context"
	"sync"

	"github.com/spdash/dashboard/internal/domain"
)

// MockRepository implements domain.FetchLogRepository in memory for demo mode.
// It keeps the newest maxFetchLogs entries.
type MockRepository struct {
	mu      sync.Mutex
	entries []domain.FetchLog
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveFetchLog appends entry, dropping the oldest once full
func (r *MockRepository) SaveFetchLog(ctx context.Context, entry domain.FetchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if len(r.entries) > maxFetchLogs {
		r.entries = r.entries[len(r.entries)-maxFetchLogs:]
	}
	return nil
}

// RecentFetchLogs returns stored entries newest first
func (r *MockRepository) RecentFetchLogs(ctx context.Context, spID string, limit int) ([]domain.FetchLog, error) {
	if limit <= 0 || limit > maxFetchLogs {
		limit = maxFetchLogs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]domain.FetchLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(results) < limit; i-- {
		if spID != "" && r.entries[i].SPID != spID {
			continue
		}
		results = append(results, r.entries[i])
	}
	return results, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
