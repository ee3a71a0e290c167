package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rdtlab/rdtlab/sim/trace"
)

// convertCmd rewrites a report in the encoding implied by the output
// extension, so JSON reports from automated runs can be turned into YAML
// for human review and back.
var convertCmd = &cobra.Command{
	Use:   "convert <in-report> <out-report>",
	Short: "Re-encode a run report between JSON and YAML",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		report, err := trace.ReadFile(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := trace.WriteFile(args[1], report); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("converted %s -> %s", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
