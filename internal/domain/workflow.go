package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pscan.dev/pkg/pscan/internal/adapter"
	"pscan.dev/pkg/pscan/internal/controller"
	m "pscan.dev/pkg/pscan/internal/model"
	"pscan.dev/pkg/pscan/pkg"
)

// InitArgs contains the arguments for initializing a scan.
type InitArgs struct {
	OutputDir   m.Path `validate:"required"`
	SpecPath    m.Path `validate:"required"`
	ProjectDir  m.Path
	LockTimeout time.Duration `validate:"min=0"`
}

// RunArgs contains the arguments for running workers against a scan.
type RunArgs struct {
	OutputDir m.Path `validate:"required"`
	// SpecPath, when set, initializes the scan first if it does not exist.
	SpecPath m.Path
	// Command is the simulation command template. Empty selects a dry run.
	Command              []string
	Parallel             int  `validate:"min=1"`
	MaxClaims            int  `validate:"min=0"`
	FailFast             bool
	SimulationTimeout    time.Duration `validate:"min=0"`
	LockTimeout          time.Duration `validate:"min=0"`
	RetryInitialInterval time.Duration `validate:"min=0"`
	RetryMaxElapsed      time.Duration `validate:"min=0"`
}

// StatusArgs contains the arguments for reporting on a scan.
type StatusArgs struct {
	OutputDir m.Path `validate:"required"`
}

// Workflow defines the parameter scan commands.
type Workflow interface {
	Init(ctx context.Context, args InitArgs) error
	Run(ctx context.Context, args RunArgs) (m.RunSummary, error)
	Status(ctx context.Context, args StatusArgs) error
}

// RunnerFactory builds the simulation runner for a run.
type RunnerFactory func(command []string, timeout time.Duration) (adapter.SimulationRunner, error)

// WorkflowOption configures a Workflow.
type WorkflowOption func(*workflow)

// WithRunnerFactory replaces the factory used to build simulation runners.
func WithRunnerFactory(factory RunnerFactory) WorkflowOption {
	return func(w *workflow) {
		w.newRunner = factory
	}
}

// DefaultRunnerFactory runs command as an external process, or dry-runs
// when command is empty.
func DefaultRunnerFactory(command []string, timeout time.Duration) (adapter.SimulationRunner, error) {
	if len(command) == 0 {
		return adapter.NewDryRunSimulationRunner(), nil
	}

	return adapter.NewLocalSimulationRunner(command, timeout)
}

type workflow struct {
	loader    adapter.SpecLoader
	store     adapter.StatusStore
	signal    adapter.CompletionSignal
	locker    adapter.Locker
	fs        adapter.ProjectFSAdapter
	ui        controller.UI
	validate  *validator.Validate
	newRunner RunnerFactory
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	loader adapter.SpecLoader,
	store adapter.StatusStore,
	signal adapter.CompletionSignal,
	locker adapter.Locker,
	fs adapter.ProjectFSAdapter,
	ui controller.UI,
	opts ...WorkflowOption,
) Workflow {
	w := &workflow{
		loader:    loader,
		store:     store,
		signal:    signal,
		locker:    locker,
		fs:        fs,
		ui:        ui,
		validate:  validator.New(),
		newRunner: DefaultRunnerFactory,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *workflow) Init(ctx context.Context, args InitArgs) error {
	if err := w.validate.Struct(args); err != nil {
		return fmt.Errorf("invalid init arguments: %w", err)
	}

	if err := w.fs.EnsureDir(ctx, args.OutputDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if args.ProjectDir != "" {
		target, copied, err := w.fs.CopyProject(ctx, args.ProjectDir, args.OutputDir)
		if err != nil {
			return fmt.Errorf("copy project: %w", err)
		}

		if copied {
			slog.Info("Copied simulation project", "from", args.ProjectDir, "to", target)
		} else {
			slog.Info("Simulation project already present, skipping copy", "path", target)
		}
	}

	spec, err := w.loader.Load(ctx, args.SpecPath)
	if err != nil {
		return err
	}

	coord := w.coordinator(args.OutputDir, args.LockTimeout)

	created, err := coord.Initialize(ctx, spec)
	if err != nil {
		return err
	}

	snapshot, err := coord.Snapshot(ctx)
	if err != nil {
		return err
	}

	w.ui.DisplayScanInitialized(ctx, args.OutputDir, snapshot.State, created)

	return nil
}

func (w *workflow) Run(ctx context.Context, args RunArgs) (m.RunSummary, error) {
	if err := w.validate.Struct(args); err != nil {
		return m.RunSummary{}, fmt.Errorf("invalid run arguments: %w", err)
	}

	if args.SpecPath != "" {
		initArgs := InitArgs{OutputDir: args.OutputDir, SpecPath: args.SpecPath, LockTimeout: args.LockTimeout}
		if err := w.Init(ctx, initArgs); err != nil {
			return m.RunSummary{}, err
		}
	}

	exists, err := w.store.Exists(ctx, args.OutputDir)
	if err != nil {
		return m.RunSummary{}, err
	}

	if !exists {
		return m.RunSummary{}, fmt.Errorf("%w: no scan in %s, run init first", m.ErrCorruptState, args.OutputDir)
	}

	runner, err := w.newRunner(args.Command, args.SimulationTimeout)
	if err != nil {
		return m.RunSummary{}, fmt.Errorf("build simulation runner: %w", err)
	}

	coord := w.coordinator(args.OutputDir, args.LockTimeout)

	w.ui.DisplayConcurrencyInfo(ctx, args.Parallel, args.OutputDir)

	summaries := make([]m.WorkerSummary, args.Parallel)

	var closeMu sync.Mutex

	var closeErrs []error

	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < args.Parallel; i++ {
		i := i
		workerID := uuid.New().String()
		summaries[i].WorkerID = workerID

		settings := DriverSettings{
			WorkerID:             workerID,
			OutputDir:            args.OutputDir,
			MaxClaims:            args.MaxClaims,
			FailFast:             args.FailFast,
			RetryInitialInterval: args.RetryInitialInterval,
			RetryMaxElapsed:      args.RetryMaxElapsed,
		}

		group.Go(func() error {
			if err := w.validate.Struct(settings); err != nil {
				return fmt.Errorf("invalid worker settings: %w", err)
			}

			journal, err := pkg.CreateJournal[m.TrialRecord](string(adapter.JournalDir(args.OutputDir)), workerID)
			if err != nil {
				return fmt.Errorf("%w: create trial journal: %w", m.ErrPersistence, err)
			}

			defer func() {
				if err := journal.Close(); err != nil {
					closeMu.Lock()
					closeErrs = append(closeErrs, err)
					closeMu.Unlock()
				}
			}()

			driver := NewDriver(coord, runner, journal, w.ui, settings)

			summary, err := driver.Run(groupCtx)
			summary.Journaled = journal.Len()
			summaries[i] = summary

			if summary.Journaled != uint64(summary.Claimed) {
				slog.Warn("Trial journal is missing records", "worker", workerID, "claimed", summary.Claimed, "journaled", summary.Journaled)
			}

			return err
		})
	}

	runErr := group.Wait()

	summary := m.RunSummary{Workers: summaries}
	for _, s := range summaries {
		summary.Exhausted = summary.Exhausted || s.Exhausted
	}

	w.ui.DisplayRunSummary(ctx, summary)

	if runErr != nil {
		return summary, runErr
	}

	if err := errors.Join(closeErrs...); err != nil {
		slog.Warn("Failed to close trial journals", "error", err)
	}

	return summary, nil
}

func (w *workflow) Status(ctx context.Context, args StatusArgs) error {
	if err := w.validate.Struct(args); err != nil {
		return fmt.Errorf("invalid status arguments: %w", err)
	}

	exists, err := w.store.Exists(ctx, args.OutputDir)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: no scan in %s", m.ErrCorruptState, args.OutputDir)
	}

	snapshot, err := w.coordinator(args.OutputDir, 0).Snapshot(ctx)
	if err != nil {
		return err
	}

	status := m.ScanStatus{
		OutputDir: args.OutputDir,
		State:     snapshot.State,
		Complete:  snapshot.Complete,
	}

	if err := countTrials(&status, adapter.JournalDir(args.OutputDir)); err != nil {
		return err
	}

	return w.ui.DisplayStatus(ctx, status)
}

// countTrials tallies journaled outcomes into status. Damaged journals are
// counted up to the damage and reported as warnings.
func countTrials(status *m.ScanStatus, journalDir m.Path) error {
	paths, err := pkg.ListJournals(string(journalDir))
	if err != nil {
		return fmt.Errorf("list trial journals: %w", err)
	}

	for _, path := range paths {
		_, err := pkg.ReadJournal(path, func(_ uint64, record m.TrialRecord) error {
			if record.Status == m.TrialSucceeded {
				status.Succeeded++
			} else {
				status.Failed++
			}

			return nil
		})
		if err != nil {
			slog.Warn("Trial journal is damaged", "path", path, "error", err)
			status.JournalWarnings = append(status.JournalWarnings, err.Error())
		}
	}

	return nil
}

func (w *workflow) coordinator(outputDir m.Path, lockTimeout time.Duration) Coordinator {
	return NewCoordinator(outputDir, lockTimeout, w.store, w.signal, w.locker)
}
