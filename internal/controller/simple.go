package controller

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "pscan.dev/pkg/pscan/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayScanInitialized reports a new or resumed scan.
func (s *SimpleUI) DisplayScanInitialized(ctx context.Context, outputDir m.Path, state m.ScanState, created bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	if created {
		s.printf("Initialized parameter scan in %s: %d parameter(s), %d combination(s)\n",
			outputDir, len(state.Dimensions), state.Total())

		return
	}

	s.printf("Resuming parameter scan in %s: %d of %d combination(s) issued\n",
		outputDir, min(state.Iteration, state.Total()), state.Total())
}

// DisplayConcurrencyInfo shows how many workers were started.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, workers int, outputDir m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running parameter scan in %s with %d worker(s)\n", outputDir, workers)
}

// DisplayClaim shows a combination handed to a worker.
func (s *SimpleUI) DisplayClaim(ctx context.Context, workerID string, claim m.Claim) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("[%s] iteration %d: %s\n", shortID(workerID), claim.Iteration, claim.Assignment)
}

// DisplayTrialResult shows the outcome of a trial.
func (s *SimpleUI) DisplayTrialResult(ctx context.Context, record m.TrialRecord) {
	if err := ctx.Err(); err != nil {
		return
	}

	elapsed := record.FinishedAt.Sub(record.StartedAt).Round(time.Millisecond)

	if record.Status == m.TrialFailed {
		s.printf("[%s] iteration %d %s after %s: %s\n", shortID(record.WorkerID), record.Iteration, record.Status, elapsed, record.Error)
		return
	}

	s.printf("[%s] iteration %d %s in %s\n", shortID(record.WorkerID), record.Iteration, record.Status, elapsed)
}

// DisplayRunSummary prints per-worker counts after a run.
func (s *SimpleUI) DisplayRunSummary(_ context.Context, summary m.RunSummary) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Worker", "Claimed", "Succeeded", "Failed"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	for _, w := range summary.Workers {
		table.Append([]string{shortID(w.WorkerID), fmt.Sprint(w.Claimed), fmt.Sprint(w.Succeeded), fmt.Sprint(w.Failed)})
	}

	claimed, succeeded, failed := summary.Totals()
	table.SetFooter([]string{"Total", fmt.Sprint(claimed), fmt.Sprint(succeeded), fmt.Sprint(failed)})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	if summary.Exhausted {
		s.printf("Parameter scan complete. To run again, use a different output directory.\n")
	}
}

// DisplayStatus prints the dimensions, progress and trial outcomes of a scan.
func (s *SimpleUI) DisplayStatus(ctx context.Context, status m.ScanStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderDimensionTable(status.State))

	issued := min(status.State.Iteration, status.State.Total())

	s.printf("Output directory: %s\n", status.OutputDir)
	s.printf("Issued: %d/%d\n", issued, status.State.Total())
	s.printf("Complete: %s\n", yesNo(status.Complete))
	s.printf("Trials: %d succeeded, %d failed\n", status.Succeeded, status.Failed)

	for _, warning := range status.JournalWarnings {
		s.printf("Warning: %s\n", warning)
	}

	return nil
}

func renderDimensionTable(state m.ScanState) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Parameter", "Values", "Next Index", "Next Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	for _, d := range state.Dimensions {
		index, value := fmt.Sprint(d.CurrentIdx), string(d.Values[d.CurrentIdx])
		if state.Exhausted() {
			index, value = "-", "-"
		}

		table.Append([]string{d.Name, fmt.Sprint(len(d.Values)), index, value})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Parameters %d", len(state.Dimensions)),
		fmt.Sprint(state.Total()),
		"",
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
