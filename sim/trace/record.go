package trace

// MetricSample is one (time, value) pair of a named metric series.
type MetricSample struct {
	Time  uint64  `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// LinkEvent is a compact textual summary of one channel or delivery event,
// in the order it happened. Descriptions are human-readable and stable:
// graders and visualizers match on their prefixes (SEND, DROP, CORRUPT,
// DELIVERED).
type LinkEvent struct {
	Time        uint64 `json:"time" yaml:"time"`
	Description string `json:"description" yaml:"description"`
}
