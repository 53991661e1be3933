package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/spdash/dashboard/internal/domain"
)

func TestMockRepository_RecentNewestFirst(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"1", "2", "1"} {
		entry := domain.FetchLog{Kind: domain.FetchUtilization, SPID: id, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.SaveFetchLog(ctx, entry); err != nil {
			t.Fatalf("SaveFetchLog failed: %v", err)
		}
	}

	all, _ := repo.RecentFetchLogs(ctx, "", 10)
	if len(all) != 3 || !all[0].Timestamp.Equal(base.Add(2*time.Minute)) {
		t.Errorf("expected 3 entries newest first, got %+v", all)
	}

	ones, _ := repo.RecentFetchLogs(ctx, "1", 10)
	if len(ones) != 2 {
		t.Errorf("expected 2 entries for sp 1, got %d", len(ones))
	}

	limited, _ := repo.RecentFetchLogs(ctx, "", 1)
	if len(limited) != 1 || limited[0].SPID != "1" {
		t.Errorf("expected newest single entry, got %+v", limited)
	}
}

func TestMockRepository_DropsOldest(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	for i := 0; i < maxFetchLogs+5; i++ {
		_ = repo.SaveFetchLog(ctx, domain.FetchLog{SampleCount: i})
	}

	all, _ := repo.RecentFetchLogs(ctx, "", 0)
	if len(all) != maxFetchLogs {
		t.Fatalf("expected %d entries, got %d", maxFetchLogs, len(all))
	}
	if all[len(all)-1].SampleCount != 5 {
		t.Errorf("expected oldest kept entry to be 5, got %d", all[len(all)-1].SampleCount)
	}
	if err := repo.Health(ctx); err != nil {
		t.Errorf("expected healthy mock, got %v", err)
	}
}
