package domain

import "time"

// SelectionStatus is the lifecycle state of the current selection
type SelectionStatus string

const (
	StatusIdle    SelectionStatus = "idle"
	StatusLoading SelectionStatus = "loading"
	StatusLoaded  SelectionStatus = "loaded"
	StatusFailed  SelectionStatus = "failed"
)

// SelectionState is the controller-owned view of which service point is
// active and what has been loaded for it. Values handed out by the
// controller are snapshots; mutating them has no effect on the controller.
type SelectionState struct {
	SelectedID string              `json:"selected_id,omitempty"`
	Status     SelectionStatus     `json:"status"`
	Samples    []UtilizationSample `json:"samples"`
	Error      string              `json:"error,omitempty"`
	IsMock     bool                `json:"is_mock"`
	Generation uint64              `json:"generation"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Loading reports whether a fetch is in flight
func (s SelectionState) Loading() bool {
	return s.Status == StatusLoading
}

// Clone returns a deep copy of the state
func (s SelectionState) Clone() SelectionState {
	out := s
	if s.Samples != nil {
		out.Samples = make([]UtilizationSample, len(s.Samples))
		copy(out.Samples, s.Samples)
	}
	return out
}
