package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"pscan.dev/pkg/pscan/internal/adapter"
	"pscan.dev/pkg/pscan/internal/controller"
	m "pscan.dev/pkg/pscan/internal/model"
	"pscan.dev/pkg/pscan/pkg"
)

// Claimer is the part of a Coordinator a Driver needs.
type Claimer interface {
	Claim(ctx context.Context) (ClaimResult, error)
	Finish(ctx context.Context) error
}

// IsRetryable reports whether a failed claim may be retried as a whole.
func IsRetryable(err error) bool {
	return errors.Is(err, m.ErrLockAcquisition) || errors.Is(err, m.ErrPersistence)
}

// DriverSettings tune one worker loop.
type DriverSettings struct {
	WorkerID  string `validate:"required"`
	OutputDir m.Path `validate:"required"`
	// MaxClaims stops the worker after that many claims; zero is unbounded.
	MaxClaims int  `validate:"min=0"`
	FailFast  bool
	// RetryInitialInterval and RetryMaxElapsed shape the backoff applied to
	// retryable claim errors.
	RetryInitialInterval time.Duration `validate:"min=0"`
	RetryMaxElapsed      time.Duration `validate:"min=0"`
}

// Driver repeatedly claims combinations and runs them until the scan is
// exhausted. It holds no scan state of its own.
type Driver struct {
	claimer  Claimer
	runner   adapter.SimulationRunner
	journal  pkg.Journal[m.TrialRecord]
	ui       controller.UI
	settings DriverSettings
}

// NewDriver constructs a Driver. journal may be nil.
func NewDriver(
	claimer Claimer,
	runner adapter.SimulationRunner,
	journal pkg.Journal[m.TrialRecord],
	ui controller.UI,
	settings DriverSettings,
) *Driver {
	return &Driver{
		claimer:  claimer,
		runner:   runner,
		journal:  journal,
		ui:       ui,
		settings: settings,
	}
}

// Run drives the worker loop. It returns with Exhausted set once the scan
// is complete, or early on MaxClaims, a fatal error, a failed trial under
// FailFast, or ctx cancellation.
func (d *Driver) Run(ctx context.Context) (m.WorkerSummary, error) {
	summary := m.WorkerSummary{WorkerID: d.settings.WorkerID}

	log := slog.With("worker", d.settings.WorkerID, "output", d.settings.OutputDir)
	log.Info("Worker started")

	for {
		if d.settings.MaxClaims > 0 && summary.Claimed >= d.settings.MaxClaims {
			log.Info("Worker reached its claim limit", "claims", summary.Claimed)
			return summary, nil
		}

		result, err := d.claim(ctx)
		if err != nil {
			log.Error("Claim failed", "error", err)
			return summary, err
		}

		if result.Exhausted {
			if err := d.claimer.Finish(ctx); err != nil {
				return summary, err
			}

			summary.Exhausted = true

			log.Info("Parameter scan complete", "claims", summary.Claimed)

			return summary, nil
		}

		summary.Claimed++

		if runErr := d.runTrial(ctx, result.Claim); runErr != nil {
			summary.Failed++

			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}

			if d.settings.FailFast {
				if !errors.Is(runErr, m.ErrSimulationFailed) {
					runErr = fmt.Errorf("%w: %w", m.ErrSimulationFailed, runErr)
				}

				return summary, runErr
			}

			continue
		}

		summary.Succeeded++
	}
}

func (d *Driver) claim(ctx context.Context) (ClaimResult, error) {
	expBackoff := backoff.NewExponentialBackOff()
	if d.settings.RetryInitialInterval > 0 {
		expBackoff.InitialInterval = d.settings.RetryInitialInterval
	}

	expBackoff.MaxElapsedTime = d.settings.RetryMaxElapsed

	var result ClaimResult

	operation := func() error {
		r, err := d.claimer.Claim(ctx)
		if err != nil {
			if IsRetryable(err) {
				return err
			}

			return backoff.Permanent(err)
		}

		result = r

		return nil
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("Claim failed, will retry", "worker", d.settings.WorkerID, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(expBackoff, ctx), notify); err != nil {
		return ClaimResult{}, err
	}

	return result, nil
}

// runTrial runs and journals one claim, returning the simulation error.
func (d *Driver) runTrial(ctx context.Context, claim m.Claim) error {
	trial := m.Trial{
		Iteration:  claim.Iteration,
		Assignment: claim.Assignment,
		OutputDir:  d.settings.OutputDir,
		TrialDir:   TrialDir(d.settings.OutputDir, claim.Iteration),
	}

	if d.ui != nil {
		d.ui.DisplayClaim(ctx, d.settings.WorkerID, claim)
	}

	record := m.TrialRecord{
		Iteration:  claim.Iteration,
		WorkerID:   d.settings.WorkerID,
		Assignment: claim.Assignment,
		Status:     m.TrialSucceeded,
		StartedAt:  time.Now(),
	}

	runErr := d.runner.Run(ctx, trial)
	if runErr != nil {
		slog.Error("Simulation failed", "worker", d.settings.WorkerID, "iteration", claim.Iteration, "error", runErr)

		record.Status = m.TrialFailed
		record.Error = runErr.Error()
	}

	record.FinishedAt = time.Now()

	if d.journal != nil {
		if err := d.journal.Append(record); err != nil {
			slog.Error("Failed to journal trial", "worker", d.settings.WorkerID, "iteration", claim.Iteration, "error", err)
		}
	}

	if d.ui != nil {
		d.ui.DisplayTrialResult(ctx, record)
	}

	return runErr
}

// TrialDir returns the directory a trial of the given iteration runs in.
func TrialDir(outputDir m.Path, iteration int) m.Path {
	return outputDir.Join(fmt.Sprintf("iteration_%d", iteration))
}
