package utils

import (
	"math"
)

// Clamp limits a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// TickStep returns the stride that keeps at most maxLabels of n labels
func TickStep(n, maxLabels int) int {
	if maxLabels <= 0 || n <= maxLabels {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(maxLabels)))
}
