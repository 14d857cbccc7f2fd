package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pscan.dev/pkg/pscan/internal/adapter"
	m "pscan.dev/pkg/pscan/internal/model"
)

// ClaimResult is the outcome of one claim: either a combination to run or
// the exhaustion signal.
type ClaimResult struct {
	Claim     m.Claim
	Exhausted bool
}

// Snapshot is an unlocked, read-only view of a scan.
type Snapshot struct {
	State    m.ScanState
	Complete bool
}

// Coordinator serializes every read-modify-write of one output directory's
// scan state behind the scan lock, so concurrent workers in any number of
// processes never receive the same combination.
type Coordinator interface {
	// Initialize creates the status document for spec unless one exists.
	// It reports whether a new document was written.
	Initialize(ctx context.Context, spec m.ScanSpec) (bool, error)

	// Claim hands out the next unissued combination, or Exhausted once
	// every combination has been handed out.
	//
	// If persisting the advanced state fails the on-disk state is left as
	// it was and the error is returned: a retry reissues the same
	// combination. Delivery is therefore at-least-once under failure and
	// exactly-once otherwise.
	Claim(ctx context.Context) (ClaimResult, error)

	// Finish records completion. It is safe to call repeatedly.
	Finish(ctx context.Context) error

	// Snapshot reads the current state without taking the lock.
	Snapshot(ctx context.Context) (Snapshot, error)
}

type coordinator struct {
	outputDir   m.Path
	lockTimeout time.Duration
	store       adapter.StatusStore
	signal      adapter.CompletionSignal
	locker      adapter.Locker
}

// NewCoordinator constructs a Coordinator for outputDir. lockTimeout bounds
// the wait for the scan lock; zero waits as long as ctx allows.
func NewCoordinator(
	outputDir m.Path,
	lockTimeout time.Duration,
	store adapter.StatusStore,
	signal adapter.CompletionSignal,
	locker adapter.Locker,
) Coordinator {
	return &coordinator{
		outputDir:   outputDir,
		lockTimeout: lockTimeout,
		store:       store,
		signal:      signal,
		locker:      locker,
	}
}

func (c *coordinator) Initialize(ctx context.Context, spec m.ScanSpec) (bool, error) {
	state, err := NewScanState(spec)
	if err != nil {
		return false, err
	}

	lease, err := c.acquire(ctx)
	if err != nil {
		return false, err
	}

	defer c.release(lease)

	exists, err := c.store.Exists(ctx, c.outputDir)
	if err != nil {
		return false, err
	}

	if exists {
		c.warnOnGridChange(ctx, state)
		return false, nil
	}

	if err := c.store.Initialize(ctx, c.outputDir, state); err != nil {
		return false, err
	}

	slog.Info("Initialized parameter scan", "output", c.outputDir, "parameters", len(state.Dimensions), "combinations", state.Total())

	return true, nil
}

func (c *coordinator) warnOnGridChange(ctx context.Context, spec m.ScanState) {
	existing, err := c.store.Load(ctx, c.outputDir)
	if err != nil {
		slog.Warn("Existing status document could not be read", "output", c.outputDir, "error", err)
		return
	}

	if !sameGrid(existing, spec) {
		slog.Warn("Specification differs from the existing scan, continuing the existing scan", "output", c.outputDir)
	}
}

func (c *coordinator) Claim(ctx context.Context) (ClaimResult, error) {
	complete, err := c.signal.IsComplete(ctx, c.outputDir)
	if err != nil {
		return ClaimResult{}, err
	}

	if complete {
		return ClaimResult{Exhausted: true}, nil
	}

	lease, err := c.acquire(ctx)
	if err != nil {
		return ClaimResult{}, err
	}

	defer c.release(lease)

	return c.claimLocked(ctx)
}

// claimLocked must only run while the scan lock is held.
func (c *coordinator) claimLocked(ctx context.Context) (ClaimResult, error) {
	state, err := c.store.Load(ctx, c.outputDir)
	if err != nil {
		return ClaimResult{}, err
	}

	if state.Exhausted() {
		// Another worker may have taken the final claim while this one waited
		// for the lock.
		complete, err := c.signal.IsComplete(ctx, c.outputDir)
		if err != nil {
			return ClaimResult{}, err
		}

		if complete {
			return ClaimResult{Exhausted: true}, nil
		}

		// The final save and the marker are two writes; a crash between them
		// leaves an exhausted state without a marker.
		slog.Warn("Scan state is exhausted but not marked complete, marking it now", "output", c.outputDir, "iteration", state.Iteration)

		if err := c.signal.MarkComplete(ctx, c.outputDir); err != nil {
			return ClaimResult{}, err
		}

		return ClaimResult{Exhausted: true}, nil
	}

	claim := m.Claim{Iteration: state.Iteration, Assignment: state.Current()}

	next, more, err := Advance(state)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("%w: %w", m.ErrCorruptState, err)
	}

	if err := c.store.Save(ctx, c.outputDir, next); err != nil {
		return ClaimResult{}, err
	}

	if !more {
		// The claim is already durable; a missing marker is repaired by
		// the exhausted-state check on the next claim.
		if err := c.signal.MarkComplete(ctx, c.outputDir); err != nil {
			slog.Error("Failed to mark scan complete", "output", c.outputDir, "error", err)
		}
	}

	slog.Debug("Claimed combination", "output", c.outputDir, "iteration", claim.Iteration, "parameters", claim.Assignment.String())

	return ClaimResult{Claim: claim}, nil
}

func (c *coordinator) Finish(ctx context.Context) error {
	return c.signal.MarkComplete(ctx, c.outputDir)
}

func (c *coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	state, err := c.store.Load(ctx, c.outputDir)
	if err != nil {
		return Snapshot{}, err
	}

	complete, err := c.signal.IsComplete(ctx, c.outputDir)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{State: state, Complete: complete}, nil
}

func (c *coordinator) acquire(ctx context.Context) (adapter.Lease, error) {
	lockCtx := ctx

	if c.lockTimeout > 0 {
		var cancel context.CancelFunc

		lockCtx, cancel = context.WithTimeout(ctx, c.lockTimeout)
		defer cancel()
	}

	lease, err := c.locker.Acquire(lockCtx, adapter.LockPath(c.outputDir))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !errors.Is(err, m.ErrLockAcquisition) {
			err = fmt.Errorf("%w: %w", m.ErrLockAcquisition, err)
		}

		return nil, err
	}

	return lease, nil
}

func (c *coordinator) release(lease adapter.Lease) {
	if err := lease.Release(); err != nil {
		slog.Error("Failed to release scan lock", "output", c.outputDir, "error", err)
	}
}
