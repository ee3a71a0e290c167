package sim

import "fmt"

// Config groups the channel fault-model parameters for one simulation.
// A Config is immutable once a simulator has been constructed from it.
type Config struct {
	LossRate    float64 `json:"loss_rate" yaml:"loss_rate"`       // probability a packet is dropped, in [0, 1]
	CorruptRate float64 `json:"corrupt_rate" yaml:"corrupt_rate"` // probability a packet's checksum is flipped, in [0, 1]
	MinLatency  uint64  `json:"min_latency" yaml:"min_latency"`   // lower latency bound (ms, inclusive)
	MaxLatency  uint64  `json:"max_latency" yaml:"max_latency"`   // upper latency bound (ms, inclusive)
	Seed        uint64  `json:"seed" yaml:"seed"`                 // seed for the channel RNG stream
}

// DefaultConfig returns the standard lossless channel: no corruption,
// latency uniform in [10, 100] ms, seed 0.
func DefaultConfig() Config {
	return Config{
		LossRate:    0.0,
		CorruptRate: 0.0,
		MinLatency:  10,
		MaxLatency:  100,
		Seed:        0,
	}
}

// Validate checks the construction-time contract. An invalid Config is a
// caller bug, never a runtime-recoverable condition.
func (c Config) Validate() error {
	if c.LossRate < 0 || c.LossRate > 1 {
		return fmt.Errorf("loss_rate %v outside [0, 1]", c.LossRate)
	}
	if c.CorruptRate < 0 || c.CorruptRate > 1 {
		return fmt.Errorf("corrupt_rate %v outside [0, 1]", c.CorruptRate)
	}
	if c.MinLatency > c.MaxLatency {
		return fmt.Errorf("min_latency %d exceeds max_latency %d", c.MinLatency, c.MaxLatency)
	}
	return nil
}
