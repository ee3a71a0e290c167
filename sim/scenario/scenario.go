// Package scenario runs scripted simulations from YAML files and checks
// their outcomes. A scenario bundles a channel configuration, a list of
// actions to apply before the run (application sends, deterministic drop
// overrides), and assertions evaluated against the finished report. It is
// the harness graders use to exercise a protocol pair without writing Go.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rdtlab/rdtlab/sim"
)

// DefaultAbortMS bounds a run's virtual time when the scenario does not
// set its own limit. A protocol stuck in a retransmission loop keeps
// scheduling timer events forever; the guard turns that into a failure
// instead of a hang.
const DefaultAbortMS uint64 = 10000

// Scenario is a scripted run loaded from YAML via Load(path).
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Protocol    string      `yaml:"protocol,omitempty"`
	Config      *sim.Config `yaml:"config,omitempty"`
	AbortAfter  uint64      `yaml:"abort_after_ms,omitempty"` // 0 = DefaultAbortMS
	Actions     []Action    `yaml:"actions"`
	Assertions  []Assertion `yaml:"assertions,omitempty"`
}

// Action is a single scripted input. Exactly one directive must be set.
// Time is only meaningful for app_send; drop overrides arm on the next
// matching packet regardless of when it is sent.
type Action struct {
	Time            uint64  `yaml:"time,omitempty"`
	AppSend         string  `yaml:"app_send,omitempty"`
	DropSenderSeq   *uint32 `yaml:"drop_sender_seq,omitempty"`
	DropReceiverAck *uint32 `yaml:"drop_receiver_ack,omitempty"`
}

// Assertion is one outcome check. Each entry needs at least one directive;
// entries with several set are evaluated as a conjunction.
type Assertion struct {
	DataDelivered     []string    `yaml:"data_delivered,omitempty"`
	SenderPacketCount *CountRange `yaml:"sender_packet_count,omitempty"`
	WindowMax         *CountRange `yaml:"window_max,omitempty"`
	WindowDrop        *WindowDrop `yaml:"window_drop,omitempty"`
	MaxDurationMS     *uint64     `yaml:"max_duration_ms,omitempty"`
}

// CountRange bounds an observed count. Max of 0 means unbounded above.
type CountRange struct {
	Min uint32 `yaml:"min,omitempty"`
	Max uint32 `yaml:"max,omitempty"`
}

// WindowDrop asserts that the sender's advertised window fell from at
// least FromAtLeast down to ToAtMost at some point during the run, the
// signature of a congestion response to loss.
type WindowDrop struct {
	FromAtLeast uint16 `yaml:"from_at_least"`
	ToAtMost    uint16 `yaml:"to_at_most"`
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var scn Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scn); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := scn.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scn, nil
}

// LoadDir loads every *.yaml / *.yml file in dir, sorted by filename so
// suites run in a stable order.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		scn, err := Load(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scn)
	}
	return scenarios, nil
}

// Validate checks that the scenario is well formed.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Config != nil {
		if err := s.Config.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	for i, a := range s.Actions {
		if err := validateAction(&a, i); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(&a, i); err != nil {
			return err
		}
	}
	return nil
}

func validateAction(a *Action, idx int) error {
	prefix := fmt.Sprintf("action[%d]", idx)
	set := 0
	if a.AppSend != "" {
		set++
	}
	if a.DropSenderSeq != nil {
		set++
	}
	if a.DropReceiverAck != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%s: exactly one of app_send, drop_sender_seq, drop_receiver_ack required", prefix)
	}
	return nil
}

func validateAssertion(a *Assertion, idx int) error {
	prefix := fmt.Sprintf("assertion[%d]", idx)
	set := 0
	if a.DataDelivered != nil {
		set++
	}
	if a.SenderPacketCount != nil {
		set++
	}
	if a.WindowMax != nil {
		set++
	}
	if a.WindowDrop != nil {
		set++
	}
	if a.MaxDurationMS != nil {
		set++
	}
	if set == 0 {
		return fmt.Errorf("%s: at least one check required", prefix)
	}
	return nil
}
