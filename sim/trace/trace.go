// Package trace holds the serializable record of a finished simulation run.
// It has no dependencies on the engine so that graders, persistence, and
// visualization tooling can consume reports without linking the simulator.
package trace

// Config is the channel configuration snapshot embedded in every report.
// It mirrors the engine's configuration field for field.
type Config struct {
	LossRate    float64 `json:"loss_rate" yaml:"loss_rate"`
	CorruptRate float64 `json:"corrupt_rate" yaml:"corrupt_rate"`
	MinLatency  uint64  `json:"min_latency" yaml:"min_latency"`
	MaxLatency  uint64  `json:"max_latency" yaml:"max_latency"`
	Seed        uint64  `json:"seed" yaml:"seed"`
}

// Report is the immutable snapshot of everything a run accumulated.
// Two runs with the same config, seed, and scheduled actions produce
// identical reports, byte for byte once serialized.
type Report struct {
	Config            Config                    `json:"config" yaml:"config"`
	DurationMS        uint64                    `json:"duration_ms" yaml:"duration_ms"`
	DeliveredData     [][]byte                  `json:"delivered_data" yaml:"delivered_data"`
	SenderPacketCount uint32                    `json:"sender_packet_count" yaml:"sender_packet_count"`
	SenderWindowSizes []uint16                  `json:"sender_window_sizes" yaml:"sender_window_sizes"`
	Metrics           map[string][]MetricSample `json:"metrics" yaml:"metrics"`
	LinkEvents        []LinkEvent               `json:"link_events" yaml:"link_events"`
}

// DeliveredBytes returns the total number of payload bytes delivered to
// the application across all chunks.
func (r *Report) DeliveredBytes() int {
	total := 0
	for _, chunk := range r.DeliveredData {
		total += len(chunk)
	}
	return total
}

// DeliveredString concatenates all delivered chunks into one string,
// the shape most grading assertions compare against.
func (r *Report) DeliveredString() string {
	buf := make([]byte, 0, r.DeliveredBytes())
	for _, chunk := range r.DeliveredData {
		buf = append(buf, chunk...)
	}
	return string(buf)
}
