package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rdtlab/rdtlab/sim"
	"github.com/rdtlab/rdtlab/sim/rdt"
	"github.com/rdtlab/rdtlab/sim/trace"
)

// Result is the outcome of one scenario run. Failures holds one message
// per violated assertion; an aborted run contributes a failure too.
type Result struct {
	Scenario string
	Passed   bool
	Failures []string
	Report   *trace.Report
}

// Run executes the scenario against the given protocol pair and evaluates
// its assertions. Construction errors (bad config, nil protocols) come
// back as an error; assertion violations land in Result.Failures.
func Run(scn *Scenario, sender, receiver sim.Protocol) (*Result, error) {
	cfg := sim.DefaultConfig()
	if scn.Config != nil {
		cfg = *scn.Config
	}
	s, err := sim.NewSimulator(cfg, sender, receiver)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scn.Name, err)
	}
	for _, a := range scn.Actions {
		switch {
		case a.AppSend != "":
			s.ScheduleAppSend(a.Time, []byte(a.AppSend))
		case a.DropSenderSeq != nil:
			s.DropNextSenderSeq(*a.DropSenderSeq)
		case a.DropReceiverAck != nil:
			s.DropNextReceiverAck(*a.DropReceiverAck)
		}
	}

	abort := scn.AbortAfter
	if abort == 0 {
		abort = DefaultAbortMS
	}

	var failures []string
	s.Init()
	for {
		next, ok := s.PeekNextEventTime()
		if !ok {
			break
		}
		if next > abort {
			failures = append(failures, fmt.Sprintf("aborted: events still pending past %dms", abort))
			break
		}
		s.Step()
	}

	report := s.Report()
	failures = append(failures, evaluate(scn, report)...)

	result := &Result{
		Scenario: scn.Name,
		Passed:   len(failures) == 0,
		Failures: failures,
		Report:   report,
	}
	if result.Passed {
		logrus.Infof("scenario %q passed (%dms, %d packets)", scn.Name, report.DurationMS, report.SenderPacketCount)
	} else {
		logrus.Warnf("scenario %q failed: %v", scn.Name, failures)
	}
	return result, nil
}

// RunBuiltin resolves the scenario's protocol name against the built-in
// registry and runs it. An empty name selects the default protocol.
func RunBuiltin(scn *Scenario) (*Result, error) {
	name := scn.Protocol
	if name == "" {
		name = rdt.DefaultProtocol
	}
	sender, receiver, err := rdt.NewPair(name)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scn.Name, err)
	}
	return Run(scn, sender, receiver)
}

func evaluate(scn *Scenario, r *trace.Report) []string {
	var failures []string
	for _, a := range scn.Assertions {
		if a.DataDelivered != nil {
			failures = append(failures, checkDelivered(a.DataDelivered, r)...)
		}
		if a.SenderPacketCount != nil {
			failures = append(failures, checkRange("sender_packet_count", r.SenderPacketCount, a.SenderPacketCount)...)
		}
		if a.WindowMax != nil {
			failures = append(failures, checkRange("window_max", uint32(maxWindow(r.SenderWindowSizes)), a.WindowMax)...)
		}
		if a.WindowDrop != nil {
			if !windowDropped(r.SenderWindowSizes, a.WindowDrop.FromAtLeast, a.WindowDrop.ToAtMost) {
				failures = append(failures, fmt.Sprintf("window_drop: window never fell from >=%d to <=%d",
					a.WindowDrop.FromAtLeast, a.WindowDrop.ToAtMost))
			}
		}
		if a.MaxDurationMS != nil && r.DurationMS > *a.MaxDurationMS {
			failures = append(failures, fmt.Sprintf("max_duration_ms: run took %dms, limit %dms",
				r.DurationMS, *a.MaxDurationMS))
		}
	}
	return failures
}

func checkDelivered(want []string, r *trace.Report) []string {
	var failures []string
	if len(r.DeliveredData) != len(want) {
		failures = append(failures, fmt.Sprintf("data_delivered: got %d chunks, want %d",
			len(r.DeliveredData), len(want)))
	}
	for i := 0; i < len(want) && i < len(r.DeliveredData); i++ {
		if got := string(r.DeliveredData[i]); got != want[i] {
			failures = append(failures, fmt.Sprintf("data_delivered[%d]: got %q, want %q", i, got, want[i]))
		}
	}
	return failures
}

func checkRange(name string, got uint32, want *CountRange) []string {
	var failures []string
	if got < want.Min {
		failures = append(failures, fmt.Sprintf("%s: got %d, want >= %d", name, got, want.Min))
	}
	if want.Max > 0 && got > want.Max {
		failures = append(failures, fmt.Sprintf("%s: got %d, want <= %d", name, got, want.Max))
	}
	return failures
}

func maxWindow(samples []uint16) uint16 {
	var max uint16
	for _, w := range samples {
		if w > max {
			max = w
		}
	}
	return max
}

// windowDropped reports whether the advertised window reached at least
// from and later fell to at most to.
func windowDropped(samples []uint16, from, to uint16) bool {
	seenHigh := false
	for _, w := range samples {
		if seenHigh && w <= to {
			return true
		}
		if w >= from {
			seenHigh = true
		}
	}
	return false
}
