package service

import (
	"time"

	"github.com/spdash/dashboard/internal/domain"
)

// FallbackDays is the length of the synthetic utilization series
const FallbackDays = 130

// fallbackLocations is served whenever the backend location list is unusable.
// Ids "3" appear twice with different longitudes; kept as-is.
var fallbackLocations = []domain.Location{
	{ID: "1", Name: "SP London Central", Latitude: 51.505, Longitude: -0.09},
	{ID: "2", Name: "SP Canary Wharf", Latitude: 51.51, Longitude: -0.1},
	{ID: "3", Name: "SP Westminster", Latitude: 51.515, Longitude: -0.095},
	{ID: "3", Name: "SP Westminster", Latitude: 51.515, Longitude: -0.099},
}

// FallbackLocations returns a fresh copy of the static location list
func FallbackLocations() []domain.Location {
	out := make([]domain.Location, len(fallbackLocations))
	copy(out, fallbackLocations)
	return out
}

// generateFallbackSeries builds one sample per day starting at today (UTC).
// Actual is drawn from [40,70), predicted from [45,70).
func generateFallbackSeries(now time.Time, days int, random func() float64) []domain.UtilizationSample {
	samples := make([]domain.UtilizationSample, 0, days)
	today := now.UTC()

	for i := 0; i < days; i++ {
		samples = append(samples, domain.UtilizationSample{
			Timestamp:            today.AddDate(0, 0, i).Format(domain.CalendarDate),
			ActualUtilization:    40 + random()*30,
			PredictedUtilization: 45 + random()*25,
		})
	}

	return samples
}
