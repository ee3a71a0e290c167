package trace

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// MetricStats aggregates one named metric series.
type MetricStats struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Stddev float64 `json:"stddev" yaml:"stddev"`
}

// Summary aggregates statistics from a Report for quick inspection.
type Summary struct {
	DurationMS        uint64 `json:"duration_ms" yaml:"duration_ms"`
	DeliveredChunks   int    `json:"delivered_chunks" yaml:"delivered_chunks"`
	DeliveredBytes    int    `json:"delivered_bytes" yaml:"delivered_bytes"`
	SenderPacketCount uint32 `json:"sender_packet_count" yaml:"sender_packet_count"`

	// Link-event tallies, counted from the event log.
	Sends       int `json:"sends" yaml:"sends"`
	Drops       int `json:"drops" yaml:"drops"`
	Corruptions int `json:"corruptions" yaml:"corruptions"`

	// Window-size sample statistics; zero-valued when the sender never
	// advertised a window.
	WindowSamples int     `json:"window_samples" yaml:"window_samples"`
	WindowMin     uint16  `json:"window_min" yaml:"window_min"`
	WindowMax     uint16  `json:"window_max" yaml:"window_max"`
	WindowMean    float64 `json:"window_mean" yaml:"window_mean"`
	WindowP95     float64 `json:"window_p95" yaml:"window_p95"`

	Metrics map[string]MetricStats `json:"metrics" yaml:"metrics"`
}

// Summarize computes aggregate statistics from a Report.
// Safe for nil or empty reports (returns zero-value fields).
func Summarize(r *Report) *Summary {
	summary := &Summary{
		Metrics: make(map[string]MetricStats),
	}
	if r == nil {
		return summary
	}

	summary.DurationMS = r.DurationMS
	summary.DeliveredChunks = len(r.DeliveredData)
	summary.DeliveredBytes = r.DeliveredBytes()
	summary.SenderPacketCount = r.SenderPacketCount

	for _, ev := range r.LinkEvents {
		switch {
		case strings.Contains(ev.Description, "] SEND"):
			summary.Sends++
		case strings.Contains(ev.Description, "] DROP"):
			summary.Drops++
		case strings.Contains(ev.Description, "] CORRUPT"):
			summary.Corruptions++
		}
	}

	if len(r.SenderWindowSizes) > 0 {
		xs := make([]float64, len(r.SenderWindowSizes))
		for i, w := range r.SenderWindowSizes {
			xs[i] = float64(w)
		}
		sort.Float64s(xs)
		summary.WindowSamples = len(xs)
		summary.WindowMin = uint16(xs[0])
		summary.WindowMax = uint16(xs[len(xs)-1])
		summary.WindowMean = stat.Mean(xs, nil)
		summary.WindowP95 = stat.Quantile(0.95, stat.Empirical, xs, nil)
	}

	for name, samples := range r.Metrics {
		if len(samples) == 0 {
			continue
		}
		vals := make([]float64, len(samples))
		for i, sample := range samples {
			vals[i] = sample.Value
		}
		sort.Float64s(vals)
		stats := MetricStats{
			Count: len(vals),
			Min:   vals[0],
			Max:   vals[len(vals)-1],
			Mean:  stat.Mean(vals, nil),
		}
		if len(vals) > 1 {
			stats.Stddev = stat.StdDev(vals, nil)
		}
		summary.Metrics[name] = stats
	}

	return summary
}
