// Package controller provides output adapters for displaying parameter scan
// progress and status.
package controller

import (
	"context"

	"github.com/spf13/cobra"

	m "pscan.dev/pkg/pscan/internal/model"
)

// UI defines how scan lifecycle events are shown to the operator.
// Implementations must be safe for concurrent use by several workers.
type UI interface {
	DisplayScanInitialized(ctx context.Context, outputDir m.Path, state m.ScanState, created bool)
	DisplayConcurrencyInfo(ctx context.Context, workers int, outputDir m.Path)
	DisplayClaim(ctx context.Context, workerID string, claim m.Claim)
	DisplayTrialResult(ctx context.Context, record m.TrialRecord)
	DisplayRunSummary(ctx context.Context, summary m.RunSummary)
	DisplayStatus(ctx context.Context, status m.ScanStatus) error
}

// NewUI returns the UI used by the CLI. Output goes through cmd so tests
// can capture it.
func NewUI(cmd *cobra.Command) UI {
	return NewSimpleUI(cmd)
}
