package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spdash/dashboard/internal/domain"
)

// fetchFunc adapts a function to UtilizationFetcher
type fetchFunc func(ctx context.Context, id string) (domain.UtilizationSeries, error)

func (f fetchFunc) FetchUtilization(ctx context.Context, id string) (domain.UtilizationSeries, error) {
	return f(ctx, id)
}

type gateResult struct {
	series domain.UtilizationSeries
	err    error
}

// gatedFetcher blocks each fetch until its id's gate is released.
// With honorCancel it returns ctx.Err() as soon as ctx is cancelled.
type gatedFetcher struct {
	honorCancel bool
	started     chan string

	mu        sync.Mutex
	gates     map[string]chan gateResult
	cancelled []string
}

func newGatedFetcher(honorCancel bool, ids ...string) *gatedFetcher {
	f := &gatedFetcher{
		honorCancel: honorCancel,
		started:     make(chan string, 16),
		gates:       make(map[string]chan gateResult),
	}
	for _, id := range ids {
		f.gates[id] = make(chan gateResult, 1)
	}
	return f
}

func (f *gatedFetcher) FetchUtilization(ctx context.Context, id string) (domain.UtilizationSeries, error) {
	f.mu.Lock()
	gate := f.gates[id]
	f.mu.Unlock()

	f.started <- id

	if !f.honorCancel {
		r := <-gate
		return r.series, r.err
	}

	select {
	case r := <-gate:
		return r.series, r.err
	case <-ctx.Done():
		f.mu.Lock()
		f.cancelled = append(f.cancelled, id)
		f.mu.Unlock()
		return domain.UtilizationSeries{}, ctx.Err()
	}
}

func (f *gatedFetcher) release(id string, samples ...domain.UtilizationSample) {
	f.gates[id] <- gateResult{series: domain.UtilizationSeries{SPID: id, Samples: samples}}
}

func (f *gatedFetcher) awaitStart(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-f.started:
		if got != want {
			t.Fatalf("expected fetch for %s to start, got %s", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for %s never started", want)
	}
}

func sample(date string, actual float64) domain.UtilizationSample {
	return domain.UtilizationSample{Timestamp: date, ActualUtilization: actual, PredictedUtilization: actual + 1}
}

func waitForStatus(t *testing.T, c *Controller, status domain.SelectionStatus) domain.SelectionState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := c.Snapshot(); s.Status == status {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("controller never reached %s, last state %+v", status, c.Snapshot())
	return domain.SelectionState{}
}

func TestController_StartsIdle(t *testing.T) {
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		return domain.UtilizationSeries{}, nil
	}))

	s := c.Snapshot()
	if s.Status != domain.StatusIdle || s.SelectedID != "" || len(s.Samples) != 0 {
		t.Errorf("expected idle state, got %+v", s)
	}
}

func TestController_SelectLoads(t *testing.T) {
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		return domain.UtilizationSeries{SPID: id, Samples: []domain.UtilizationSample{sample("2025-01-01", 50)}, IsMock: true}, nil
	}))
	defer c.Close()

	if err := c.Select("1"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	c.Wait()

	s := c.Snapshot()
	if s.Status != domain.StatusLoaded || s.SelectedID != "1" {
		t.Fatalf("expected loaded selection 1, got %+v", s)
	}
	if len(s.Samples) != 1 || !s.IsMock || s.Generation != 1 {
		t.Errorf("unexpected loaded state: %+v", s)
	}
}

func TestController_SelectClearsPreviousData(t *testing.T) {
	f := newGatedFetcher(true, "a", "b")
	c := NewController(f)
	defer c.Close()

	_ = c.Select("a")
	f.awaitStart(t, "a")
	f.release("a", sample("2025-01-01", 50))
	waitForStatus(t, c, domain.StatusLoaded)

	_ = c.Select("b")
	s := c.Snapshot()
	if s.Status != domain.StatusLoading || s.SelectedID != "b" {
		t.Fatalf("expected loading b, got %+v", s)
	}
	if len(s.Samples) != 0 || s.Error != "" {
		t.Errorf("expected cleared data and error, got %+v", s)
	}
	f.awaitStart(t, "b")
	f.release("b")
}

func TestController_StaleResultIgnored(t *testing.T) {
	// the fetcher ignores cancellation, so a's result arrives after b's
	f := newGatedFetcher(false, "a", "b")
	c := NewController(f)
	defer c.Close()

	_ = c.Select("a")
	f.awaitStart(t, "a")
	_ = c.Select("b")
	f.awaitStart(t, "b")

	f.release("b", sample("2025-02-02", 20))
	waitForStatus(t, c, domain.StatusLoaded)

	f.release("a", sample("2025-01-01", 90), sample("2025-01-02", 91))
	c.Wait()

	s := c.Snapshot()
	if s.SelectedID != "b" || s.Status != domain.StatusLoaded {
		t.Fatalf("expected loaded b, got %+v", s)
	}
	if len(s.Samples) != 1 || s.Samples[0].Timestamp != "2025-02-02" {
		t.Errorf("stale result for a leaked into state: %+v", s.Samples)
	}
	if s.Generation != 2 {
		t.Errorf("expected generation 2, got %d", s.Generation)
	}
}

func TestController_CancellationIsNotFailure(t *testing.T) {
	f := newGatedFetcher(true, "a", "b")
	c := NewController(f)
	defer c.Close()

	_ = c.Select("a")
	f.awaitStart(t, "a")
	_ = c.Select("b")
	f.awaitStart(t, "b")

	// a has been cancelled; b is still loading with no error
	s := c.Snapshot()
	if s.Status != domain.StatusLoading || s.Error != "" {
		t.Fatalf("expected silent supersede, got %+v", s)
	}

	f.release("b", sample("2025-03-03", 33))
	c.Wait()

	s = c.Snapshot()
	if s.Status != domain.StatusLoaded || s.SelectedID != "b" || s.Error != "" {
		t.Errorf("expected loaded b without error, got %+v", s)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cancelled) != 1 || f.cancelled[0] != "a" {
		t.Errorf("expected a to be cancelled, got %v", f.cancelled)
	}
}

func TestController_FailureSetsMessage(t *testing.T) {
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		return domain.UtilizationSeries{}, errors.New("boom")
	}))
	defer c.Close()

	_ = c.Select("1")
	c.Wait()

	s := c.Snapshot()
	if s.Status != domain.StatusFailed || s.Error != LoadFailedMessage {
		t.Errorf("expected failed state with message, got %+v", s)
	}
}

func TestController_PanicSetsFailed(t *testing.T) {
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		panic("unexpected")
	}))
	defer c.Close()

	_ = c.Select("1")
	c.Wait()

	if s := c.Snapshot(); s.Status != domain.StatusFailed {
		t.Errorf("expected failed state after panic, got %+v", s)
	}
}

func TestController_SameIDRestartsFetch(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return domain.UtilizationSeries{Samples: []domain.UtilizationSample{sample("2025-01-01", 1)}}, nil
	}))
	defer c.Close()

	_ = c.Select("1")
	c.Wait()
	_ = c.Select("1")
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("expected 2 fetches, got %d", calls)
	}
	if g := c.Snapshot().Generation; g != 2 {
		t.Errorf("expected generation 2, got %d", g)
	}
}

func TestController_CloseCancelsInFlight(t *testing.T) {
	f := newGatedFetcher(true, "a")
	c := NewController(f)

	_ = c.Select("a")
	f.awaitStart(t, "a")
	c.Close()

	f.mu.Lock()
	cancelled := len(f.cancelled)
	f.mu.Unlock()
	if cancelled != 1 {
		t.Errorf("expected in-flight fetch to be cancelled, got %d", cancelled)
	}

	if err := c.Select("a"); !errors.Is(err, ErrControllerClosed) {
		t.Errorf("expected ErrControllerClosed, got %v", err)
	}
	if s := c.Snapshot(); s.Error != "" {
		t.Errorf("close must not surface an error, got %+v", s)
	}
}

func TestController_EmptyID(t *testing.T) {
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		t.Error("fetch must not run for an empty id")
		return domain.UtilizationSeries{}, nil
	}))

	if err := c.Select(""); !errors.Is(err, ErrEmptyLocationID) {
		t.Errorf("expected ErrEmptyLocationID, got %v", err)
	}
	if s := c.Snapshot(); s.Status != domain.StatusIdle {
		t.Errorf("expected idle, got %+v", s)
	}
}

func TestController_OnChange(t *testing.T) {
	var (
		mu     sync.Mutex
		states []domain.SelectionStatus
	)
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		return domain.UtilizationSeries{}, nil
	}))
	c.OnChange = func(s domain.SelectionState) {
		mu.Lock()
		states = append(states, s.Status)
		mu.Unlock()
	}
	defer c.Close()

	_ = c.Select("1")
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 || states[0] != domain.StatusLoading || states[1] != domain.StatusLoaded {
		t.Errorf("expected loading then loaded, got %v", states)
	}
}

func TestController_SnapshotIsolation(t *testing.T) {
	c := NewController(fetchFunc(func(ctx context.Context, id string) (domain.UtilizationSeries, error) {
		return domain.UtilizationSeries{Samples: []domain.UtilizationSample{sample("2025-01-01", 10)}}, nil
	}))
	defer c.Close()

	_ = c.Select("1")
	c.Wait()

	s := c.Snapshot()
	s.Samples[0].ActualUtilization = 99

	if got := c.Snapshot().Samples[0].ActualUtilization; got != 10 {
		t.Errorf("snapshot mutation leaked into controller: %v", got)
	}
}
