package model

import "errors"

var (
	// ErrInvalidSpec reports a malformed or empty parameter specification.
	ErrInvalidSpec = errors.New("invalid parameter scan specification")

	// ErrCorruptState reports a status document that is missing or fails
	// structural validation. It is never repaired automatically.
	ErrCorruptState = errors.New("corrupt parameter scan state")

	// ErrLockAcquisition reports that the scan lock could not be obtained
	// within the configured wait.
	ErrLockAcquisition = errors.New("parameter scan lock acquisition failed")

	// ErrPersistence reports a failed write of the scan state.
	ErrPersistence = errors.New("parameter scan state persistence failed")

	// ErrSimulationFailed reports a trial whose simulation did not complete.
	ErrSimulationFailed = errors.New("simulation failed")

	// ErrDimensionMismatch reports index vectors of different lengths.
	ErrDimensionMismatch = errors.New("index and limit vectors differ in length")
)
