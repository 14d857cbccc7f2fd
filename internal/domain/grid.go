package domain

import (
	"encoding/json"
	"fmt"

	m "pscan.dev/pkg/pscan/internal/model"
)

// NewScanState builds the initial scheduling state for spec: every cursor at
// zero and no claims yet. Dimension order follows spec.
func NewScanState(spec m.ScanSpec) (m.ScanState, error) {
	if len(spec.Parameters) == 0 {
		return m.ScanState{}, fmt.Errorf("%w: no parameters", m.ErrInvalidSpec)
	}

	seen := make(map[string]struct{}, len(spec.Parameters))
	dims := make([]m.Dimension, 0, len(spec.Parameters))

	for _, p := range spec.Parameters {
		if p.Name == "" {
			return m.ScanState{}, fmt.Errorf("%w: parameter with empty name", m.ErrInvalidSpec)
		}

		if _, dup := seen[p.Name]; dup {
			return m.ScanState{}, fmt.Errorf("%w: parameter %q is listed twice", m.ErrInvalidSpec, p.Name)
		}

		seen[p.Name] = struct{}{}

		if len(p.Values) == 0 {
			return m.ScanState{}, fmt.Errorf("%w: parameter %q has no values", m.ErrInvalidSpec, p.Name)
		}

		values := make([]json.RawMessage, len(p.Values))
		copy(values, p.Values)

		dims = append(dims, m.Dimension{Name: p.Name, Values: values})
	}

	return m.ScanState{Dimensions: dims}, nil
}

// sameGrid reports whether two states describe the same parameter space,
// ignoring cursors and iteration count.
func sameGrid(a, b m.ScanState) bool {
	if len(a.Dimensions) != len(b.Dimensions) {
		return false
	}

	for i := range a.Dimensions {
		da, db := a.Dimensions[i], b.Dimensions[i]
		if da.Name != db.Name || len(da.Values) != len(db.Values) {
			return false
		}

		for j := range da.Values {
			if string(da.Values[j]) != string(db.Values[j]) {
				return false
			}
		}
	}

	return true
}
