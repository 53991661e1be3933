package view

import (
	"fmt"

	"github.com/spdash/dashboard/internal/domain"
)

// PopupKind selects what a marker popup displays
type PopupKind string

const (
	PopupLoading PopupKind = "loading"
	PopupError   PopupKind = "error"
	PopupChart   PopupKind = "chart"
	PopupEmpty   PopupKind = "empty"
)

// EmptyMessage is shown when a selection has no samples
const EmptyMessage = "No utilization data available."

// Popup describes the popup body for the current selection
type Popup struct {
	Kind       PopupKind `json:"kind"`
	SelectedID string    `json:"selected_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	ChartURL   string    `json:"chart_url,omitempty"`
	Points     int       `json:"points"`
	Generation uint64    `json:"generation"`
	IsMock     bool      `json:"is_mock"`
}

// PopupFor maps a selection snapshot onto a popup. An error wins over
// loading, and an idle selection renders as empty.
func PopupFor(state domain.SelectionState) Popup {
	p := Popup{
		SelectedID: state.SelectedID,
		Points:     len(state.Samples),
		Generation: state.Generation,
		IsMock:     state.IsMock,
	}

	switch {
	case state.Error != "":
		p.Kind = PopupError
		p.Message = state.Error
	case state.Loading():
		p.Kind = PopupLoading
	case len(state.Samples) > 0:
		p.Kind = PopupChart
		p.ChartURL = fmt.Sprintf("/api/v1/selection/chart.svg?g=%d", state.Generation)
	default:
		p.Kind = PopupEmpty
		p.Message = EmptyMessage
	}

	return p
}
