package cmd

import (
	"errors"

	m "pscan.dev/pkg/pscan/internal/model"
)

// Process exit codes. They are stable so orchestrating scripts can tell a
// finished scan from ordinary termination.
const (
	// ExitOK means the workers stopped before the scan was exhausted.
	ExitOK = 0
	// ExitFailure covers I/O failures, a spent retry budget and failed
	// trials under --fail-fast.
	ExitFailure = 1
	// ExitFatal reports an invalid specification or a corrupt scan state.
	ExitFatal = 2
	// ExitScanComplete means every combination has been claimed; rerun
	// with a new output directory.
	ExitScanComplete = 3
)

// errScanComplete is returned by run once the scan is exhausted.
var errScanComplete = errors.New("parameter scan complete")

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errScanComplete):
		return ExitScanComplete
	case errors.Is(err, m.ErrInvalidSpec), errors.Is(err, m.ErrCorruptState):
		return ExitFatal
	default:
		return ExitFailure
	}
}
