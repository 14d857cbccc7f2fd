package domain

import (
	"fmt"

	m "pscan.dev/pkg/pscan/internal/model"
)

// NextCombination advances the index vector current as a mixed-radix counter
// whose digit i runs from 0 to limits[i], with digit 0 the least
// significant. It returns the next vector and true, or, when the carry runs
// past the last digit, the wrapped all-zero vector and false. current is not
// modified.
func NextCombination(current, limits []int) ([]int, bool, error) {
	if len(current) != len(limits) {
		return nil, false, fmt.Errorf("%w: %d indices, %d limits", m.ErrDimensionMismatch, len(current), len(limits))
	}

	next := make([]int, len(current))
	copy(next, current)

	for i := range next {
		next[i]++

		if next[i] <= limits[i] {
			return next, true, nil
		}

		next[i] = 0
	}

	return next, false, nil
}

// Advance moves state past its current combination and counts the claim.
// The boolean is false when the combination just passed was the last one;
// the returned state is then the wrapped state, kept for audit.
func Advance(state m.ScanState) (m.ScanState, bool, error) {
	idx, more, err := NextCombination(state.Indices(), state.Limits())
	if err != nil {
		return m.ScanState{}, false, err
	}

	next := state.WithIndices(idx)
	next.Iteration = state.Iteration + 1

	return next, more, nil
}
