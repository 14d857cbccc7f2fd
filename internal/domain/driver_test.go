package domain

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pscan.dev/pkg/pscan/internal/model"
	"pscan.dev/pkg/pscan/pkg"
)

type claimStep struct {
	iteration int
	err       error
}

// scriptedClaimer replays steps, then reports exhaustion.
type scriptedClaimer struct {
	mu       sync.Mutex
	steps    []claimStep
	calls    int
	finished int
}

func (c *scriptedClaimer) Claim(_ context.Context) (ClaimResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++

	if len(c.steps) == 0 {
		return ClaimResult{Exhausted: true}, nil
	}

	step := c.steps[0]
	c.steps = c.steps[1:]

	if step.err != nil {
		return ClaimResult{}, step.err
	}

	return ClaimResult{Claim: m.Claim{
		Iteration:  step.iteration,
		Assignment: m.Assignment{{Name: "A", Value: []byte(fmt.Sprint(step.iteration))}},
	}}, nil
}

func (c *scriptedClaimer) Finish(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.finished++

	return nil
}

func claims(iterations ...int) []claimStep {
	steps := make([]claimStep, 0, len(iterations))
	for _, i := range iterations {
		steps = append(steps, claimStep{iteration: i})
	}

	return steps
}

type recordingRunner struct {
	mu     sync.Mutex
	trials []m.Trial
	failOn map[int]bool
}

func (r *recordingRunner) Run(_ context.Context, trial m.Trial) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trials = append(r.trials, trial)

	if r.failOn[trial.Iteration] {
		return fmt.Errorf("%w: exit status 1", m.ErrSimulationFailed)
	}

	return nil
}

func testSettings(t *testing.T) DriverSettings {
	t.Helper()

	return DriverSettings{
		WorkerID:             "worker-1",
		OutputDir:            m.Path(t.TempDir()),
		RetryInitialInterval: time.Millisecond,
		RetryMaxElapsed:      time.Second,
	}
}

func TestDriver_RunsUntilExhausted(t *testing.T) {
	claimer := &scriptedClaimer{steps: claims(0, 1, 2)}
	runner := &recordingRunner{}
	settings := testSettings(t)

	journal, err := pkg.CreateJournal[m.TrialRecord](t.TempDir(), settings.WorkerID)
	require.NoError(t, err)

	summary, err := NewDriver(claimer, runner, journal, nil, settings).Run(testContext(t))
	require.NoError(t, err)
	require.NoError(t, journal.Close())

	assert.True(t, summary.Exhausted)
	assert.Equal(t, 3, summary.Claimed)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, claimer.finished)

	require.Len(t, runner.trials, 3)
	assert.Equal(t, settings.OutputDir, runner.trials[1].OutputDir)
	assert.Equal(t, settings.OutputDir.Join("iteration_1"), runner.trials[1].TrialDir)

	var records []m.TrialRecord

	n, err := pkg.ReadJournal(journal.Path(), func(_ uint64, r m.TrialRecord) error {
		records = append(records, r)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	assert.Equal(t, "worker-1", records[2].WorkerID)
	assert.Equal(t, 2, records[2].Iteration)
	assert.Equal(t, m.TrialSucceeded, records[2].Status)
	assert.False(t, records[2].FinishedAt.Before(records[2].StartedAt))
}

func TestDriver_RetriesRetryableClaimErrors(t *testing.T) {
	claimer := &scriptedClaimer{steps: []claimStep{
		{err: fmt.Errorf("%w: rename failed", m.ErrPersistence)},
		{err: fmt.Errorf("%w: timed out", m.ErrLockAcquisition)},
		{iteration: 0},
	}}

	summary, err := NewDriver(claimer, &recordingRunner{}, nil, nil, testSettings(t)).Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Claimed)
	assert.True(t, summary.Exhausted)
	assert.Equal(t, 4, claimer.calls)
}

func TestDriver_FatalClaimErrorStops(t *testing.T) {
	claimer := &scriptedClaimer{steps: []claimStep{
		{err: fmt.Errorf("%w: bad document", m.ErrCorruptState)},
		{iteration: 0},
	}}

	summary, err := NewDriver(claimer, &recordingRunner{}, nil, nil, testSettings(t)).Run(testContext(t))
	require.ErrorIs(t, err, m.ErrCorruptState)

	assert.Equal(t, 1, claimer.calls)
	assert.Equal(t, 0, summary.Claimed)
	assert.False(t, summary.Exhausted)
}

func TestDriver_RetryBudgetExhausted(t *testing.T) {
	steps := make([]claimStep, 0, 1000)
	for n := 0; n < 1000; n++ {
		steps = append(steps, claimStep{err: fmt.Errorf("%w: busy", m.ErrLockAcquisition)})
	}

	settings := testSettings(t)
	settings.RetryMaxElapsed = 20 * time.Millisecond

	_, err := NewDriver(&scriptedClaimer{steps: steps}, &recordingRunner{}, nil, nil, settings).Run(testContext(t))
	require.ErrorIs(t, err, m.ErrLockAcquisition)
}

func TestDriver_MaxClaims(t *testing.T) {
	claimer := &scriptedClaimer{steps: claims(0, 1, 2, 3)}
	settings := testSettings(t)
	settings.MaxClaims = 2

	summary, err := NewDriver(claimer, &recordingRunner{}, nil, nil, settings).Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Claimed)
	assert.False(t, summary.Exhausted)
	assert.Equal(t, 2, claimer.calls)
	assert.Equal(t, 0, claimer.finished)
}

func TestDriver_FailedTrialIsRecordedAndSkipped(t *testing.T) {
	claimer := &scriptedClaimer{steps: claims(0, 1, 2)}
	runner := &recordingRunner{failOn: map[int]bool{1: true}}

	dir := t.TempDir()
	journal, err := pkg.CreateJournal[m.TrialRecord](dir, "w")
	require.NoError(t, err)

	summary, err := NewDriver(claimer, runner, journal, nil, testSettings(t)).Run(testContext(t))
	require.NoError(t, err)
	require.NoError(t, journal.Close())

	assert.Equal(t, 3, summary.Claimed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.Exhausted)
	assert.Len(t, runner.trials, 3, "a failed combination is not retried")

	var failed []m.TrialRecord

	_, err = pkg.ReadJournal(filepath.Join(dir, "w"+pkg.JournalExt), func(_ uint64, r m.TrialRecord) error {
		if r.Status == m.TrialFailed {
			failed = append(failed, r)
		}

		return nil
	})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Iteration)
	assert.Contains(t, failed[0].Error, "exit status 1")
}

func TestDriver_FailFast(t *testing.T) {
	claimer := &scriptedClaimer{steps: claims(0, 1, 2)}
	runner := &recordingRunner{failOn: map[int]bool{1: true}}
	settings := testSettings(t)
	settings.FailFast = true

	summary, err := NewDriver(claimer, runner, nil, nil, settings).Run(testContext(t))
	require.ErrorIs(t, err, m.ErrSimulationFailed)

	assert.Equal(t, 2, summary.Claimed)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.Exhausted)
}

func TestDriver_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	claimer := &scriptedClaimer{steps: []claimStep{{err: fmt.Errorf("%w: busy", m.ErrLockAcquisition)}}}

	_, err := NewDriver(claimer, &recordingRunner{}, nil, nil, testSettings(t)).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, m.ErrLockAcquisition))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("x: %w", m.ErrLockAcquisition)))
	assert.True(t, IsRetryable(fmt.Errorf("x: %w", m.ErrPersistence)))
	assert.False(t, IsRetryable(fmt.Errorf("x: %w", m.ErrCorruptState)))
	assert.False(t, IsRetryable(fmt.Errorf("x: %w", m.ErrInvalidSpec)))
	assert.False(t, IsRetryable(errors.New("other")))
}

func TestTrialDir(t *testing.T) {
	assert.Equal(t, m.Path(filepath.Join("out", "iteration_7")), TrialDir("out", 7))
}
