// Package testutil provides shared test infrastructure for the simulator.
// It holds the golden-run dataset types and assertion helpers used by
// sim/ and sim/rdt/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenRuns represents the structure of testdata/goldenruns.json.
type GoldenRuns struct {
	Runs []GoldenRun `json:"runs"`
}

// GoldenRun is one canned simulation together with its expected outcome.
// Every run uses a fault-free channel with fixed latency, so each
// expectation is exact rather than statistical.
type GoldenRun struct {
	Name      string       `json:"name"`
	Protocol  string       `json:"protocol"`
	LatencyMS uint64       `json:"latency_ms"`
	Seed      uint64       `json:"seed"`
	SendTimes []uint64     `json:"send_times"`
	SendData  []string     `json:"send_data"`
	DropSeqs  []uint32     `json:"drop_seqs,omitempty"`
	DropAcks  []uint32     `json:"drop_acks,omitempty"`
	Expect    GoldenExpect `json:"expect"`
}

// GoldenExpect pins the outcome a golden run must reproduce.
type GoldenExpect struct {
	// Virtual duration, including the drain of stale retransmission timers.
	DurationMS uint64 `json:"duration_ms"`

	// Count of packets the sender handed to the channel, dropped or not.
	SenderPacketCount uint32 `json:"sender_packet_count"`

	// Chunks delivered to the receiving application, in order.
	Delivered []string `json:"delivered"`

	// Link-event tallies across both directions.
	Sends int `json:"sends"`
	Drops int `json:"drops"`

	// Mean advertised window over all sampled data packets. Zero means
	// the protocol does not advertise a window and the check is skipped.
	MeanWindow float64 `json:"mean_window,omitempty"`
}

// LoadGoldenRuns loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenRuns(t *testing.T) *GoldenRuns {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldenruns.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden dataset: %v", err)
	}

	var runs GoldenRuns
	if err := json.Unmarshal(data, &runs); err != nil {
		t.Fatalf("failed to parse golden dataset: %v", err)
	}

	return &runs
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
