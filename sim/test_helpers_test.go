package sim

import (
	"strings"
	"testing"
)

// scriptedProtocol implements Protocol with per-callback closures, so a
// test can wire arbitrary endpoint behavior without declaring a new type.
// Nil callbacks are no-ops.
type scriptedProtocol struct {
	onInit    func(SystemContext)
	onPacket  func(SystemContext, Packet)
	onTimer   func(SystemContext, uint32)
	onAppData func(SystemContext, []byte)
}

func (p *scriptedProtocol) Init(ctx SystemContext) {
	if p.onInit != nil {
		p.onInit(ctx)
	}
}

func (p *scriptedProtocol) OnPacket(ctx SystemContext, pkt Packet) {
	if p.onPacket != nil {
		p.onPacket(ctx, pkt)
	}
}

func (p *scriptedProtocol) OnTimer(ctx SystemContext, timerID uint32) {
	if p.onTimer != nil {
		p.onTimer(ctx, timerID)
	}
}

func (p *scriptedProtocol) OnAppData(ctx SystemContext, data []byte) {
	if p.onAppData != nil {
		p.onAppData(ctx, data)
	}
}

// quietConfig returns a channel with no faults and a constant 10ms
// latency, so event times in assertions are exact.
func quietConfig() Config {
	return Config{MinLatency: 10, MaxLatency: 10}
}

// newTestSim builds a simulator or fails the test.
func newTestSim(t *testing.T, cfg Config, sender, receiver Protocol) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, sender, receiver)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return s
}

// echoPair wires a sender that transmits every app chunk once and a
// receiver that delivers every payload. No reliability, no timers.
func echoPair() (Protocol, Protocol) {
	var seq uint32
	sender := &scriptedProtocol{
		onAppData: func(ctx SystemContext, data []byte) {
			ctx.SendPacket(NewDataPacket(seq, 0, 0, data))
			seq++
		},
	}
	receiver := &scriptedProtocol{
		onPacket: func(ctx SystemContext, pkt Packet) {
			if pkt.Len() > 0 {
				ctx.DeliverData(pkt.Payload)
			}
		},
	}
	return sender, receiver
}

// reliablePair wires a minimal stop-and-wait pair for channel-fault tests:
// the sender retransmits on a 100ms timer until each chunk is ACKed, the
// receiver delivers in-order chunks exactly once and ACKs everything.
func reliablePair() (Protocol, Protocol) {
	var (
		pending  [][]byte
		inflight []byte
		seq      uint32
		waiting  bool
	)
	trySend := func(ctx SystemContext) {
		if waiting || len(pending) == 0 {
			return
		}
		inflight = pending[0]
		pending = pending[1:]
		ctx.SendPacket(NewDataPacket(seq, 0, 0, inflight))
		ctx.StartTimer(100, 1)
		waiting = true
	}
	sender := &scriptedProtocol{
		onAppData: func(ctx SystemContext, data []byte) {
			pending = append(pending, data)
			trySend(ctx)
		},
		onPacket: func(ctx SystemContext, pkt Packet) {
			if !pkt.Header.IsACK() || !waiting || pkt.Header.AckNum != seq {
				return
			}
			ctx.CancelTimer(1)
			waiting = false
			seq++
			trySend(ctx)
		},
		onTimer: func(ctx SystemContext, timerID uint32) {
			if waiting {
				ctx.SendPacket(NewDataPacket(seq, 0, 0, inflight))
				ctx.StartTimer(100, 1)
			}
		},
	}
	var expected uint32
	receiver := &scriptedProtocol{
		onPacket: func(ctx SystemContext, pkt Packet) {
			if pkt.Header.IsACK() {
				return
			}
			if pkt.Header.SeqNum == expected {
				ctx.DeliverData(pkt.Payload)
				expected++
			}
			ctx.SendPacket(NewAckPacket(pkt.Header.SeqNum, pkt.Header.SeqNum, 0))
		},
	}
	return sender, receiver
}

// linkEventLines flattens the recorded link events to their descriptions.
func linkEventLines(s *Simulator) []string {
	lines := make([]string, 0, len(s.LinkEvents))
	for _, ev := range s.LinkEvents {
		lines = append(lines, ev.Description)
	}
	return lines
}

// countLines returns how many lines contain substr.
func countLines(lines []string, substr string) int {
	n := 0
	for _, line := range lines {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// deliveredStrings converts the simulator's delivered chunks to strings.
func deliveredStrings(s *Simulator) []string {
	out := make([]string, 0, len(s.DeliveredData))
	for _, chunk := range s.DeliveredData {
		out = append(out, string(chunk))
	}
	return out
}
