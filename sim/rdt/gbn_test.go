package rdt

import (
	"reflect"
	"testing"

	"github.com/rdtlab/rdtlab/sim"
)

func TestGoBackN_PerfectChannel_WindowGrowsPerAck(t *testing.T) {
	// GIVEN six chunks queued at the same instant on a clean channel
	s := newSim(t, fixedLatency(), NewGoBackNSender(), &GoBackNReceiver{})
	chunks := []string{"m0", "m1", "m2", "m3", "m4", "m5"}
	for _, chunk := range chunks {
		s.ScheduleAppSend(1000, []byte(chunk))
	}

	// WHEN the run completes
	s.RunUntilComplete()

	// THEN everything arrived in order with one transmission each
	if got := delivered(s); !reflect.DeepEqual(got, chunks) {
		t.Errorf("delivered %v, want %v", got, chunks)
	}
	if s.SenderPacketCount != 6 {
		t.Errorf("expected 6 sender packets, got %d", s.SenderPacketCount)
	}

	// THEN the window grew by one per advancing ACK: 4 at startup, then
	// six ACKs carry it to 10
	wantWindows := []float64{4, 5, 6, 7, 8, 9, 10}
	if got := windowMetricValues(s); !reflect.DeepEqual(got, wantWindows) {
		t.Errorf("window metric series %v, want %v", got, wantWindows)
	}

	// THEN the channel sampled the advertised window of each data packet:
	// the first four went out under window 4, the last two under window 5
	wantSamples := []uint16{4, 4, 4, 4, 5, 5}
	if !reflect.DeepEqual(s.SenderWindowSizes, wantSamples) {
		t.Errorf("window samples %v, want %v", s.SenderWindowSizes, wantSamples)
	}
}

func TestGoBackN_DroppedData_TimeoutHalvesWindowAndResends(t *testing.T) {
	// GIVEN seq 2 is dropped out of a full initial window
	s := newSim(t, fixedLatency(), NewGoBackNSender(), &GoBackNReceiver{})
	s.DropNextSenderSeq(2)
	for _, chunk := range []string{"p0", "p1", "p2", "p3"} {
		s.ScheduleAppSend(0, []byte(chunk))
	}

	// WHEN the run completes
	s.RunUntilComplete()

	// THEN the whole stream still arrived in order
	want := []string{"p0", "p1", "p2", "p3"}
	if got := delivered(s); !reflect.DeepEqual(got, want) {
		t.Errorf("delivered %v, want %v", got, want)
	}

	// THEN the timeout retransmitted the two unacked packets
	if s.SenderPacketCount != 6 {
		t.Errorf("expected 6 sender packets (4 + 2 retransmissions), got %d", s.SenderPacketCount)
	}

	// THEN the window told the story: grew to 6 on the first two ACKs,
	// halved to 3 at the timeout, then recovered to 5
	wantWindows := []float64{4, 5, 6, 3, 4, 5}
	if got := windowMetricValues(s); !reflect.DeepEqual(got, wantWindows) {
		t.Errorf("window metric series %v, want %v", got, wantWindows)
	}
	wantSamples := []uint16{4, 4, 4, 4, 3, 3}
	if !reflect.DeepEqual(s.SenderWindowSizes, wantSamples) {
		t.Errorf("window samples %v, want %v", s.SenderWindowSizes, wantSamples)
	}
	if s.Clock != 2040 {
		t.Errorf("expected final clock 2040, got %d", s.Clock)
	}
}

func TestGoBackN_DroppedAck_CumulativeAckCovers(t *testing.T) {
	// GIVEN the ACK for the first packet is dropped
	s := newSim(t, fixedLatency(), NewGoBackNSender(), &GoBackNReceiver{})
	s.DropNextReceiverAck(1)
	s.ScheduleAppSend(0, []byte("first"))
	s.ScheduleAppSend(0, []byte("second"))

	// WHEN the run completes
	s.RunUntilComplete()

	// THEN the cumulative ACK for the second packet covered both, with no
	// retransmission needed
	want := []string{"first", "second"}
	if got := delivered(s); !reflect.DeepEqual(got, want) {
		t.Errorf("delivered %v, want %v", got, want)
	}
	if s.SenderPacketCount != 2 {
		t.Errorf("expected 2 sender packets, got %d", s.SenderPacketCount)
	}
	if n := countLinkEvents(s, "DROP (deterministic ack) ack=1"); n != 1 {
		t.Errorf("expected exactly 1 deterministic ack drop, got %d", n)
	}
	// A single advancing ACK grows the window once, however much it covers.
	wantWindows := []float64{4, 5}
	if got := windowMetricValues(s); !reflect.DeepEqual(got, wantWindows) {
		t.Errorf("window metric series %v, want %v", got, wantWindows)
	}
	if s.Clock != 1000 {
		t.Errorf("expected final clock 1000, got %d", s.Clock)
	}
}

func TestGoBackNReceiver_RejectsCorruptAndOutOfOrder(t *testing.T) {
	// GIVEN a scripted sender pushing one corrupted and one out-of-order packet
	var acks []uint32
	sender := &scripted{
		onInit: func(ctx sim.SystemContext) {
			bad := sim.NewDataPacket(0, 0, 0, []byte("corrupt"))
			bad.Header.Checksum = ^Checksum([]byte("corrupt"))
			ctx.SendPacket(bad)

			ahead := sim.NewDataPacket(5, 0, 0, []byte("early"))
			ahead.Header.Checksum = Checksum([]byte("early"))
			ctx.SendPacket(ahead)
		},
		onPacket: func(_ sim.SystemContext, pkt sim.Packet) {
			if pkt.Header.IsACK() {
				acks = append(acks, pkt.Header.AckNum)
			}
		},
	}
	s := newSim(t, fixedLatency(), sender, &GoBackNReceiver{})

	// WHEN the run completes
	s.RunUntilComplete()

	// THEN neither payload was delivered and both answers re-ACKed seq 0
	if len(s.DeliveredData) != 0 {
		t.Errorf("expected no deliveries, got %v", delivered(s))
	}
	if !reflect.DeepEqual(acks, []uint32{0, 0}) {
		t.Errorf("expected duplicate ACKs [0 0], got %v", acks)
	}
}
