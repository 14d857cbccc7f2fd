package model

import "time"

// TrialStatus is the outcome of one simulation trial.
type TrialStatus int

const (
	// TrialSucceeded indicates the simulation completed.
	TrialSucceeded TrialStatus = iota
	// TrialFailed indicates the simulation returned an error.
	TrialFailed
)

func (s TrialStatus) String() string {
	switch s {
	case TrialSucceeded:
		return "succeeded"
	case TrialFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Claim is one combination handed out by the coordinator.
type Claim struct {
	// Iteration is the zero-based position of the combination in the scan.
	Iteration  int
	Assignment Assignment
}

// TrialRecord is the journal entry written after a trial finishes.
type TrialRecord struct {
	Iteration  int
	WorkerID   string
	Assignment Assignment
	Status     TrialStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Trial is everything a simulation runner needs to execute one claim.
type Trial struct {
	Iteration  int
	Assignment Assignment
	OutputDir  Path
	// TrialDir is the per-iteration directory under OutputDir.
	TrialDir Path
}

// WorkerSummary counts what one worker did.
type WorkerSummary struct {
	WorkerID  string
	Claimed   int
	Succeeded int
	Failed    int
	// Journaled counts the trial records written to the worker's journal.
	Journaled uint64
	// Exhausted is true when the worker stopped because the scan is done.
	Exhausted bool
}

// RunSummary aggregates the workers of one run.
type RunSummary struct {
	Workers   []WorkerSummary
	Exhausted bool
}

// Totals sums claims and outcomes over all workers.
func (r RunSummary) Totals() (claimed, succeeded, failed int) {
	for _, w := range r.Workers {
		claimed += w.Claimed
		succeeded += w.Succeeded
		failed += w.Failed
	}

	return claimed, succeeded, failed
}

// ScanStatus is the read-only report shown by the status command.
type ScanStatus struct {
	OutputDir Path
	State     ScanState
	Complete  bool
	Succeeded int
	Failed    int
	// JournalWarnings lists journals that could not be read completely.
	JournalWarnings []string
}
