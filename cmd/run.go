package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pscan.dev/pkg/pscan/internal/domain"
	m "pscan.dev/pkg/pscan/internal/model"
)

var runSpecFlag string
var runParallelFlag int
var runMaxClaimsFlag int
var runFailFastFlag bool
var runSimulationTimeoutFlag int64
var runLockTimeoutFlag int64

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- command [args...]]",
		Short: "Run simulations for the combinations of a parameter scan",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			summary, err := workflow.Run(cmd.Context(), domain.RunArgs{
				OutputDir:         outputDir(),
				SpecPath:          m.Path(runSpecFlag),
				Command:           args,
				Parallel:          viper.GetInt(runParallelConfigKey),
				MaxClaims:         viper.GetInt(maxClaimsConfigKey),
				FailFast:          viper.GetBool(failFastConfigKey),
				SimulationTimeout: secondsKey(simulationTimeoutKey),
				LockTimeout:       secondsKey(lockTimeoutKey),
				RetryMaxElapsed:   secondsKey(retryMaxElapsedKey),
			})
			if err != nil {
				return err
			}

			if summary.Exhausted {
				cmd.SilenceErrors = true
				return errScanComplete
			}

			return nil
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runSpecFlag, specFlagName, "", "scan specification to initialize the scan from if it does not exist yet")

	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of workers in this process")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().IntVar(&runMaxClaimsFlag, maxClaimsFlagName, viper.GetInt(maxClaimsConfigKey), "stop each worker after this many claims (0 = no limit)")
	bindFlagToConfig(cmd.Flags().Lookup(maxClaimsFlagName), maxClaimsConfigKey)

	cmd.Flags().BoolVar(&runFailFastFlag, failFastFlagName, viper.GetBool(failFastConfigKey), "stop a worker after its first failed trial")
	bindFlagToConfig(cmd.Flags().Lookup(failFastFlagName), failFastConfigKey)

	cmd.Flags().Int64Var(&runSimulationTimeoutFlag, simulationTimeoutFlagName, viper.GetInt64(simulationTimeoutKey), "timeout in seconds for one simulation (0 = none)")
	bindFlagToConfig(cmd.Flags().Lookup(simulationTimeoutFlagName), simulationTimeoutKey)

	cmd.Flags().Int64Var(&runLockTimeoutFlag, lockTimeoutFlagName, viper.GetInt64(lockTimeoutKey), "seconds to wait for the scan lock before retrying")
	bindFlagToConfig(cmd.Flags().Lookup(lockTimeoutFlagName), lockTimeoutKey)
}
