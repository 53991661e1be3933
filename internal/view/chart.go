package view

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spdash/dashboard/internal/domain"
	"github.com/spdash/dashboard/pkg/utils"
)

// ErrNoSamples is returned when there is nothing to chart
var ErrNoSamples = errors.New("view: no samples to chart")

const (
	chartWidth          = 750
	chartHeight         = 500
	maxDateLabels       = 10
	actualSeriesName    = "Actual Utilization (%)"
	predictedSeriesName = "Predicted Utilization (%)"
)

var (
	actualColor    = drawing.ColorFromHex("4BC0C0")
	predictedColor = drawing.ColorFromHex("9966FF")
)

// RenderChart writes an SVG line chart of actual vs. predicted utilization.
// The x axis is the sample dates in order; the y axis is fixed to [0,100].
func RenderChart(w io.Writer, samples []domain.UtilizationSample) error {
	graph, err := buildChart(samples)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("view: failed to render chart: %w", err)
	}
	return nil
}

func buildChart(samples []domain.UtilizationSample) (*chart.Chart, error) {
	n := len(samples)
	if n == 0 {
		return nil, ErrNoSamples
	}

	xs := make([]float64, n)
	actual := make([]float64, n)
	predicted := make([]float64, n)
	for i, s := range samples {
		xs[i] = float64(i)
		actual[i] = utils.Clamp(s.ActualUtilization, 0, 100)
		predicted[i] = utils.Clamp(s.PredictedUtilization, 0, 100)
	}

	graph := &chart.Chart{
		Title:  "Utilization Overview",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 60},
		},
		XAxis: chart.XAxis{
			Name:  "Date",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax(n)},
			Ticks: dateTicks(samples),
		},
		YAxis: chart.YAxis{
			Name:  "Utilization (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			Ticks: percentTicks(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    actualSeriesName,
				XValues: xs,
				YValues: actual,
				Style: chart.Style{
					StrokeColor: actualColor,
					StrokeWidth: 3,
				},
			},
			chart.ContinuousSeries{
				Name:    predictedSeriesName,
				XValues: xs,
				YValues: predicted,
				Style: chart.Style{
					StrokeColor:     predictedColor,
					StrokeWidth:     3,
					StrokeDashArray: []float64{8, 8},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}

	return graph, nil
}

// xMax keeps the x range non-zero for single-sample series
func xMax(n int) float64 {
	if n < 2 {
		return 1
	}
	return float64(n - 1)
}

// dateTicks labels every step-th sample. go-chart derives the x range from
// custom ticks, so the first and last ticks must span the whole series.
func dateTicks(samples []domain.UtilizationSample) []chart.Tick {
	n := len(samples)
	step := utils.TickStep(n, maxDateLabels)
	ticks := make([]chart.Tick, 0, maxDateLabels+2)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: samples[i].Timestamp})
	}

	if n == 1 {
		return append(ticks, chart.Tick{Value: xMax(n)})
	}

	last := chart.Tick{Value: float64(n - 1), Label: samples[n-1].Timestamp}
	switch gap := n - 1 - int(ticks[len(ticks)-1].Value); {
	case gap == 0:
	case gap < step/2:
		// too close to the previous label to fit both
		ticks[len(ticks)-1] = last
	default:
		ticks = append(ticks, last)
	}
	return ticks
}

func percentTicks() []chart.Tick {
	ticks := make([]chart.Tick, 0, 6)
	for v := 0; v <= 100; v += 20 {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}
