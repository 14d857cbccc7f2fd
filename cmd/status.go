package cmd

import (
	"github.com/spf13/cobra"

	"pscan.dev/pkg/pscan/internal/domain"
)

// statusCmd represents the status command.
var statusCmd = newStatusCmd()

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the progress of a parameter scan",
		Long: `Show the parameters of the scan in the output directory, the next
combination to be claimed, whether the scan is complete, and how many
trials have succeeded or failed so far. The scan lock is not taken, so the
numbers may lag behind running workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			return workflow.Status(cmd.Context(), domain.StatusArgs{OutputDir: outputDir()})
		},
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
