package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spdash/dashboard/internal/domain"
)

const maxResponseBytes = 8 << 20

// ErrEmptyLocationID is returned when a utilization fetch has no location id
var ErrEmptyLocationID = errors.New("service: location id is empty")

// SPClient talks to the service-point backend. Every failure other than the
// caller's context ending is absorbed and replaced with fallback data.
type SPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
	random     func() float64
}

// ClientOption customizes an SPClient
type ClientOption func(*SPClient)

// WithRateLimit paces outbound requests
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *SPClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithClock overrides the time source used for fallback dates
func WithClock(now func() time.Time) ClientOption {
	return func(c *SPClient) { c.now = now }
}

// WithRandom overrides the random source used for fallback values.
// The function must return values in [0,1).
func WithRandom(random func() float64) ClientOption {
	return func(c *SPClient) { c.random = random }
}

// NewSPClient creates a new backend client
func NewSPClient(baseURL string, timeout time.Duration, opts ...ClientOption) *SPClient {
	c := &SPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
		now:     time.Now,
		random:  rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLocations returns the backend location list, or the static fallback
// list when the backend fails or answers with an unexpected shape.
// The error is non-nil only when ctx is done.
func (c *SPClient) FetchLocations(ctx context.Context) (domain.LocationSet, error) {
	body, err := c.do(ctx, http.MethodGet, "/sp_detail", nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.LocationSet{}, ctxErr
		}
		log.Printf("sp_client: using fallback locations due to API error: %v", err)
		return c.fallbackLocations(), nil
	}

	locations, err := parseLocations(body)
	if err != nil {
		log.Printf("sp_client: using fallback locations due to invalid API response format: %v", err)
		return c.fallbackLocations(), nil
	}

	return domain.LocationSet{Locations: locations}, nil
}

// FetchUtilization asks the prediction endpoint for the series of one
// location. Failures and unexpected shapes yield a synthetic series of
// FallbackDays samples. The error is non-nil only when ctx is done or
// locationID is empty.
func (c *SPClient) FetchUtilization(ctx context.Context, locationID string) (domain.UtilizationSeries, error) {
	if locationID == "" {
		return domain.UtilizationSeries{}, ErrEmptyLocationID
	}

	body, err := c.do(ctx, http.MethodPost, "/predict_utilization", domain.UtilizationRequest{SPID: locationID})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.UtilizationSeries{}, ctxErr
		}
		log.Printf("sp_client: using fallback utilization for %s due to API error: %v", locationID, err)
		return c.fallbackSeries(locationID), nil
	}

	samples, err := parseSamples(body)
	if err != nil {
		log.Printf("sp_client: using fallback utilization for %s due to invalid API response format: %v", locationID, err)
		return c.fallbackSeries(locationID), nil
	}

	return domain.UtilizationSeries{
		SPID:      locationID,
		Samples:   samples,
		FetchedAt: c.now(),
	}, nil
}

// do executes a single request attempt and returns the raw body of a 2xx response
func (c *SPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("sp_client: rate limiter: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sp_client: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("sp_client: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sp_client: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sp_client: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("sp_client: failed to read response: %w", err)
	}
	return body, nil
}

func (c *SPClient) fallbackLocations() domain.LocationSet {
	return domain.LocationSet{
		Locations: FallbackLocations(),
		IsMock:    true,
	}
}

func (c *SPClient) fallbackSeries(locationID string) domain.UtilizationSeries {
	now := c.now()
	return domain.UtilizationSeries{
		SPID:      locationID,
		Samples:   generateFallbackSeries(now, FallbackDays, c.random),
		IsMock:    true,
		FetchedAt: now,
	}
}
