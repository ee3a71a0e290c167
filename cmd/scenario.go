package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rdtlab/rdtlab/sim/luaproto"
	"github.com/rdtlab/rdtlab/sim/rdt"
	"github.com/rdtlab/rdtlab/sim/scenario"
)

var (
	scenarioProtocol string // Overrides each scenario's own protocol field
	scenarioLua      string // Lua protocol script, wins over scenarioProtocol
)

// scenarioCmd runs scenario files and reports pass/fail per scenario.
var scenarioCmd = &cobra.Command{
	Use:   "scenario [path ...]",
	Short: "Run scenario files or directories and check their assertions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		var scenarios []*scenario.Scenario
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				logrus.Fatalf("reading %s: %v", path, err)
			}
			if info.IsDir() {
				loaded, err := scenario.LoadDir(path)
				if err != nil {
					logrus.Fatalf("%v", err)
				}
				scenarios = append(scenarios, loaded...)
			} else {
				scn, err := scenario.Load(path)
				if err != nil {
					logrus.Fatalf("%v", err)
				}
				scenarios = append(scenarios, scn)
			}
		}

		failed := 0
		for _, scn := range scenarios {
			result, err := runScenario(scn)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			if result.Passed {
				fmt.Printf("PASS %s\n", scn.Name)
				continue
			}
			failed++
			fmt.Printf("FAIL %s\n", scn.Name)
			for _, reason := range result.Failures {
				fmt.Printf("     %s\n", reason)
			}
		}
		if failed > 0 {
			logrus.Fatalf("%d of %d scenarios failed", failed, len(scenarios))
		}
		fmt.Printf("all %d scenarios passed\n", len(scenarios))
	},
}

// runScenario picks the protocol pair for one scenario. A fresh Lua
// runtime per scenario keeps script state from leaking across runs.
func runScenario(scn *scenario.Scenario) (*scenario.Result, error) {
	if scenarioLua != "" {
		rt, err := luaproto.Load(scenarioLua)
		if err != nil {
			return nil, err
		}
		defer rt.Close()
		return scenario.Run(scn, rt.Sender(), rt.Receiver())
	}
	if scenarioProtocol != "" {
		sender, receiver, err := rdt.NewPair(scenarioProtocol)
		if err != nil {
			return nil, err
		}
		return scenario.Run(scn, sender, receiver)
	}
	return scenario.RunBuiltin(scn)
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioProtocol, "protocol", "", "Built-in protocol pair (overrides each scenario's protocol field)")
	scenarioCmd.Flags().StringVar(&scenarioLua, "lua", "", "Lua protocol script (overrides --protocol)")
	rootCmd.AddCommand(scenarioCmd)
}
