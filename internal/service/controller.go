package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spdash/dashboard/internal/domain"
)

// LoadFailedMessage is shown when a utilization fetch fails unexpectedly
const LoadFailedMessage = "Failed to load utilization data."

// ErrControllerClosed is returned by Select after Close
var ErrControllerClosed = errors.New("service: controller is closed")

// UtilizationFetcher loads the utilization series of one location
type UtilizationFetcher interface {
	FetchUtilization(ctx context.Context, locationID string) (domain.UtilizationSeries, error)
}

// Controller owns one SelectionState. Every Select supersedes the previous
// fetch: its context is cancelled and its result, should it still arrive,
// is dropped because its generation no longer matches.
type Controller struct {
	fetcher UtilizationFetcher

	// OnChange, when set, receives every committed snapshot.
	// It is called without the controller lock held, so concurrent
	// callbacks may interleave; order them by Generation.
	OnChange func(domain.SelectionState)

	mu     sync.Mutex
	state  domain.SelectionState
	cancel context.CancelFunc
	closed bool
	now    func() time.Time

	wg sync.WaitGroup // in-flight fetch goroutines
}

// NewController creates an idle controller
func NewController(fetcher UtilizationFetcher) *Controller {
	c := &Controller{
		fetcher: fetcher,
		now:     time.Now,
	}
	c.state = domain.SelectionState{
		Status:    domain.StatusIdle,
		Samples:   []domain.UtilizationSample{},
		UpdatedAt: c.now(),
	}
	return c
}

// Select makes locationID the active selection, clears previous data and
// starts a fresh fetch. Selecting the current id again restarts the fetch.
func (c *Controller) Select(locationID string) error {
	if locationID == "" {
		return ErrEmptyLocationID
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.cancel != nil {
		c.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = domain.SelectionState{
		SelectedID: locationID,
		Status:     domain.StatusLoading,
		Samples:    []domain.UtilizationSample{},
		Generation: c.state.Generation + 1,
		UpdatedAt:  c.now(),
	}
	gen := c.state.Generation
	snapshot := c.state.Clone()
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify(snapshot)
	go c.load(ctx, gen, locationID)
	return nil
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() domain.SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Wait blocks until no fetch is in flight
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels any in-flight fetch and rejects further selections.
// It waits for the cancelled fetch to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) load(ctx context.Context, gen uint64, locationID string) {
	defer c.wg.Done()

	series, err := c.fetch(ctx, locationID)
	c.commit(gen, series, err)
}

// fetch converts a panicking fetcher into an error
func (c *Controller) fetch(ctx context.Context, locationID string) (series domain.UtilizationSeries, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("controller: fetch panicked: %v", r)
		}
	}()
	return c.fetcher.FetchUtilization(ctx, locationID)
}

func (c *Controller) commit(gen uint64, series domain.UtilizationSeries, err error) {
	c.mu.Lock()
	if gen != c.state.Generation || c.closed {
		c.mu.Unlock()
		return
	}
	if errors.Is(err, context.Canceled) {
		// superseded; the newer selection owns the state
		c.mu.Unlock()
		return
	}

	if err != nil {
		log.Printf("controller: utilization fetch for %s failed: %v", c.state.SelectedID, err)
		c.state.Status = domain.StatusFailed
		c.state.Error = LoadFailedMessage
	} else {
		c.state.Status = domain.StatusLoaded
		c.state.Samples = series.Samples
		if c.state.Samples == nil {
			c.state.Samples = []domain.UtilizationSample{}
		}
		c.state.IsMock = series.IsMock
	}
	c.state.UpdatedAt = c.now()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	snapshot := c.state.Clone()
	c.mu.Unlock()

	c.notify(snapshot)
}

func (c *Controller) notify(state domain.SelectionState) {
	if c.OnChange != nil {
		c.OnChange(state)
	}
}
