package service

import (
	"encoding/json"
	"fmt"

	"github.com/spdash/dashboard/internal/domain"
)

// ShapeError reports a backend response that parsed as JSON but does not
// have the expected layout.
type ShapeError struct {
	Index  int // element index, -1 for the top level value
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("shape: %s", e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("shape: element %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("shape: element %d: field %q %s", e.Index, e.Field, e.Reason)
}

// decodeArray parses body and requires a JSON array of objects
func decodeArray(body []byte) ([]map[string]any, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("shape: failed to decode body: %w", err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, &ShapeError{Index: -1, Reason: "response is not an array"}
	}

	objects := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ShapeError{Index: i, Reason: "element is not an object"}
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func stringField(obj map[string]any, index int, name string) (string, error) {
	v, ok := obj[name].(string)
	if !ok {
		return "", &ShapeError{Index: index, Field: name, Reason: "is not a string"}
	}
	return v, nil
}

func numberField(obj map[string]any, index int, name string) (float64, error) {
	v, ok := obj[name].(float64)
	if !ok {
		return 0, &ShapeError{Index: index, Field: name, Reason: "is not a number"}
	}
	return v, nil
}

// parseLocations validates every element against the Location shape
func parseLocations(body []byte) ([]domain.Location, error) {
	objects, err := decodeArray(body)
	if err != nil {
		return nil, err
	}

	locations := make([]domain.Location, 0, len(objects))
	for i, obj := range objects {
		var loc domain.Location
		if loc.ID, err = stringField(obj, i, "id"); err != nil {
			return nil, err
		}
		if loc.Name, err = stringField(obj, i, "name"); err != nil {
			return nil, err
		}
		if loc.Latitude, err = numberField(obj, i, "latitude"); err != nil {
			return nil, err
		}
		if loc.Longitude, err = numberField(obj, i, "longitude"); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// parseSamples validates every element against the UtilizationSample shape
func parseSamples(body []byte) ([]domain.UtilizationSample, error) {
	objects, err := decodeArray(body)
	if err != nil {
		return nil, err
	}

	samples := make([]domain.UtilizationSample, 0, len(objects))
	for i, obj := range objects {
		var s domain.UtilizationSample
		if s.Timestamp, err = stringField(obj, i, "timestamp"); err != nil {
			return nil, err
		}
		if s.ActualUtilization, err = numberField(obj, i, "actualUtilization"); err != nil {
			return nil, err
		}
		if s.PredictedUtilization, err = numberField(obj, i, "predictedUtilization"); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}
