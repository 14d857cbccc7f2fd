package cmd

import (
	"github.com/spf13/cobra"

	"pscan.dev/pkg/pscan/internal/domain"
	m "pscan.dev/pkg/pscan/internal/model"
)

var initProjectFlag string

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <spec-file>",
		Short: "Create a parameter scan from a scan specification",
		Long: `Create the scan state in the output directory from a JSON or YAML scan
specification:

  {"parameter_list": {"A": {"values": [0, 1]}, "B": {"values": [10, 20, 30]}}}

The order of the parameters in the file is the order of the scan. If the
output directory already holds a scan it is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			return workflow.Init(cmd.Context(), domain.InitArgs{
				OutputDir:   outputDir(),
				SpecPath:    m.Path(args[0]),
				ProjectDir:  m.Path(initProjectFlag),
				LockTimeout: secondsKey(lockTimeoutKey),
			})
		},
	}

	cmd.Flags().StringVar(&initProjectFlag, projectFlagName, "", "simulation project directory to copy into the output directory")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
