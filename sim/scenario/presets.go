package scenario

// Built-in scenario presets for common grading setups.
// Each returns a valid Scenario ready for Run or RunBuiltin.

import "github.com/rdtlab/rdtlab/sim"

// PresetThreePackets sends three application messages over a perfect
// channel and expects all three delivered in order.
func PresetThreePackets(protocol string) *Scenario {
	return &Scenario{
		Name:     "three-packets-perfect",
		Protocol: protocol,
		Actions: []Action{
			{Time: 1000, AppSend: "Packet 1"},
			{Time: 2000, AppSend: "Packet 2"},
			{Time: 3000, AppSend: "Packet 3"},
		},
		Assertions: []Assertion{
			{DataDelivered: []string{"Packet 1", "Packet 2", "Packet 3"}},
		},
	}
}

// PresetLossyTransfer sends three messages over a 10% lossy channel with
// 100-500ms latency, the classic setup for checking retransmission.
func PresetLossyTransfer(protocol string, seed uint64) *Scenario {
	return &Scenario{
		Name:     "three-packets-lossy",
		Protocol: protocol,
		Config: &sim.Config{
			LossRate:   0.1,
			MinLatency: 100,
			MaxLatency: 500,
			Seed:       seed,
		},
		Actions: []Action{
			{Time: 1000, AppSend: "Packet 1"},
			{Time: 2000, AppSend: "Packet 2"},
			{Time: 3000, AppSend: "Packet 3"},
		},
		Assertions: []Assertion{
			{DataDelivered: []string{"Packet 1", "Packet 2", "Packet 3"}},
		},
	}
}
