package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"text/template"
	"time"

	m "pscan.dev/pkg/pscan/internal/model"
)

// SimulationLogName is the file inside a trial directory that receives the
// simulation's combined output.
const SimulationLogName = "simulation.log"

// SimulationRunner executes one simulation trial.
type SimulationRunner interface {
	Run(ctx context.Context, trial m.Trial) error
}

// LocalSimulationRunner runs an external command per trial. Arguments are
// text/template strings over the parameter values plus Iteration,
// OutputDir and TrialDir.
type LocalSimulationRunner struct {
	args    []*template.Template
	timeout time.Duration
}

// NewLocalSimulationRunner parses the command templates. A zero timeout
// leaves the trial bounded only by ctx.
func NewLocalSimulationRunner(command []string, timeout time.Duration) (*LocalSimulationRunner, error) {
	if len(command) == 0 {
		return nil, errors.New("simulation command is empty")
	}

	args := make([]*template.Template, 0, len(command))

	for i, arg := range command {
		tmpl, err := template.New(fmt.Sprintf("arg%d", i)).Option("missingkey=error").Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("parse simulation argument %q: %w", arg, err)
		}

		args = append(args, tmpl)
	}

	return &LocalSimulationRunner{args: args, timeout: timeout}, nil
}

// Run executes the command inside the trial directory and captures its
// output in SimulationLogName.
func (r *LocalSimulationRunner) Run(ctx context.Context, trial m.Trial) error {
	argv, err := r.render(trial)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(string(trial.TrialDir), 0o750); err != nil {
		slog.Error("Failed to create trial directory", "dir", trial.TrialDir, "error", err)
		return fmt.Errorf("create trial directory: %w", err)
	}

	logPath := trial.TrialDir.Join(SimulationLogName)

	// #nosec G304 - log path is derived from the output directory
	logFile, err := os.Create(string(logPath))
	if err != nil {
		return fmt.Errorf("create simulation log: %w", err)
	}

	defer func() { _ = logFile.Close() }()

	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// #nosec G204 - the command is configured by the operator
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = string(trial.TrialDir)
	cmd.Env = append(os.Environ(), trialEnv(trial)...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	slog.Debug("Starting simulation", "iteration", trial.Iteration, "argv", argv)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: iteration %d (see %s): %w", m.ErrSimulationFailed, trial.Iteration, logPath, err)
	}

	return nil
}

func (r *LocalSimulationRunner) render(trial m.Trial) ([]string, error) {
	data := map[string]any{
		"Iteration": trial.Iteration,
		"OutputDir": string(trial.OutputDir),
		"TrialDir":  string(trial.TrialDir),
	}

	for _, b := range trial.Assignment {
		data[b.Name] = b.Text()
	}

	argv := make([]string, 0, len(r.args))

	for _, tmpl := range r.args {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, data); err != nil {
			return nil, fmt.Errorf("%w: render argument: %w", m.ErrSimulationFailed, err)
		}

		argv = append(argv, sb.String())
	}

	return argv, nil
}

func trialEnv(trial m.Trial) []string {
	env := []string{
		"PSCAN_ITERATION=" + strconv.Itoa(trial.Iteration),
		"PSCAN_OUTPUT_DIR=" + string(trial.OutputDir),
		"PSCAN_TRIAL_DIR=" + string(trial.TrialDir),
	}

	for _, b := range trial.Assignment {
		env = append(env, ParamEnvName(b.Name)+"="+b.Text())
	}

	return env
}

// ParamEnvName maps a parameter name to its environment variable.
func ParamEnvName(name string) string {
	var sb strings.Builder

	sb.WriteString("PSCAN_PARAM_")

	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}

	return sb.String()
}

// DryRunSimulationRunner only logs the trial it is given.
type DryRunSimulationRunner struct{}

// NewDryRunSimulationRunner constructs a DryRunSimulationRunner.
func NewDryRunSimulationRunner() *DryRunSimulationRunner {
	return &DryRunSimulationRunner{}
}

// Run logs the assignment.
func (r *DryRunSimulationRunner) Run(ctx context.Context, trial m.Trial) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Info("Running simulation", "iteration", trial.Iteration, "parameters", trial.Assignment.String())

	return nil
}
