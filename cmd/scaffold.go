package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rdtlab/rdtlab/sim"
	"github.com/rdtlab/rdtlab/sim/scenario"
)

// scaffoldCmd prints a starter scenario that passes against the built-in
// stop-and-wait pair. Graders copy it, swap in their own sends and drops,
// and tighten the assertions.
var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Print a starter scenario YAML to stdout",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		dropSeq := uint32(0)
		maxDuration := uint64(5000)
		scn := &scenario.Scenario{
			Name:        "example: stop-and-wait rides out one loss",
			Description: "Three application sends with the first data packet dropped once. The protocol must retransmit and still deliver everything in order.",
			Protocol:    "stopwait",
			Config: &sim.Config{
				MinLatency: 100,
				MaxLatency: 100,
				Seed:       7,
			},
			AbortAfter: 20000,
			Actions: []scenario.Action{
				{Time: 1000, AppSend: "Packet 1"},
				{Time: 2000, AppSend: "Packet 2"},
				{Time: 3000, AppSend: "Packet 3"},
				{DropSenderSeq: &dropSeq},
			},
			Assertions: []scenario.Assertion{
				{DataDelivered: []string{"Packet 1", "Packet 2", "Packet 3"}},
				{SenderPacketCount: &scenario.CountRange{Min: 4}},
				{MaxDurationMS: &maxDuration},
			},
		}
		if err := scn.Validate(); err != nil {
			logrus.Fatalf("scaffold scenario is invalid: %v", err)
		}
		out, err := yaml.Marshal(scn)
		if err != nil {
			logrus.Fatalf("rendering scaffold: %v", err)
		}
		fmt.Println("# Starter scenario. Save, adjust, then run with:")
		fmt.Println("#   rdtlab scenario <file>.yaml")
		fmt.Print(string(out))
	},
}

func init() {
	rootCmd.AddCommand(scaffoldCmd)
}
