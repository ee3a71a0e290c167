package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rdtlab/rdtlab/sim/trace"
)

var showEvents bool // Also print the chronological link-event log

// inspectCmd summarizes a previously written run report.
var inspectCmd = &cobra.Command{
	Use:   "inspect <report-file>",
	Short: "Summarize a saved run report (.json or .yaml)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report, err := trace.ReadFile(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		out, err := yaml.Marshal(trace.Summarize(report))
		if err != nil {
			logrus.Fatalf("rendering summary: %v", err)
		}
		fmt.Print(string(out))

		if showEvents {
			fmt.Println("events:")
			for _, ev := range report.LinkEvents {
				fmt.Printf("  %6dms  %s\n", ev.Time, ev.Description)
			}
		}
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&showEvents, "events", false, "Print the chronological link-event log")
	rootCmd.AddCommand(inspectCmd)
}
