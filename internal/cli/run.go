package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var runsLimit int

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "number of artifacts to show")
}

var runCmd = &cobra.Command{
	Use:   "run <template-id>",
	Short: "Run a template now, bypassing the schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.RunNow(cmd.Context(), args[0]))
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs <template-id> [n]",
	Short: "Show recent run artifacts for a template",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := runsLimit
		if len(args) == 2 {
			parsed, err := strconv.Atoi(args[1])
			if err == nil && parsed > 0 {
				limit = parsed
			}
		}
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.Runs(args[0], limit))
	},
}
