// Package cmd provides the root command and CLI setup for pscan.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pscan.dev/pkg/pscan/internal/adapter"
	"pscan.dev/pkg/pscan/internal/controller"
	"pscan.dev/pkg/pscan/internal/domain"
	m "pscan.dev/pkg/pscan/internal/model"
)

var specLoader adapter.SpecLoader
var statusStore adapter.StatusStore
var completionSignal adapter.CompletionSignal
var locker adapter.Locker
var projectFS adapter.ProjectFSAdapter
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag naming the scan output directory.
var outputDirFlag string

// verboseFlag switches logging to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		configureLogger("", viper.GetBool(logVerboseKey))
	}

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd)
	specLoader = adapter.NewLocalSpecLoader()
	statusStore = adapter.NewLocalStatusStore()
	completionSignal = adapter.NewLocalCompletionSignal()
	locker = adapter.NewFileLocker(time.Duration(viper.GetInt64(lockRetryDelayKey)) * time.Millisecond)
	projectFS = adapter.NewLocalProjectFSAdapter()
	workflow = domain.NewWorkflow(
		specLoader,
		statusStore,
		completionSignal,
		locker,
		projectFS,
		ui,
	)
}

const rootLongDescription = `pscan runs a parameter scan: every combination of the values listed in a
scan specification is handed to exactly one simulation trial, no matter how
many workers or processes share the output directory.

Scan progress is kept in the output directory, so an interrupted scan picks
up where it stopped. Once every combination has been claimed the scan is
marked complete; to scan again, use a new output directory.`

const runLongDescription = `Claim combinations from the scan in the output directory and run the
simulation command for each one until the scan is exhausted.

Everything after "--" is the simulation command. Each argument is a Go
template over the parameter values ({{.NAME}}) and {{.Iteration}},
{{.OutputDir}} and {{.TrialDir}}. The command runs inside
<output>/iteration_<n> with PSCAN_PARAM_<NAME> set for every parameter.
Without a command the combinations are only logged.

Start the same command in several terminals or hosts sharing the output
directory to spread the scan over more workers.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pscan",
		Short: "Crash-resumable parameter scan scheduler",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory holding the scan state",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if code := exitCodeFor(err); code != ExitOK {
		os.Exit(code)
	}
}

func outputDir() m.Path {
	return m.Path(viper.GetString(outputFlagName))
}
