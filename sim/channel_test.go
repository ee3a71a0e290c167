package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannel_TotalLoss_NothingArrives(t *testing.T) {
	// GIVEN loss rate 1.0 under several seeds
	for _, seed := range []uint64{0, 1, 42, 1234567} {
		arrivals := 0
		sender, _ := echoPair()
		receiver := &scriptedProtocol{onPacket: func(SystemContext, Packet) { arrivals++ }}
		cfg := Config{LossRate: 1.0, MinLatency: 10, MaxLatency: 10, Seed: seed}
		s := newTestSim(t, cfg, sender, receiver)
		s.ScheduleAppSend(0, []byte("a"))
		s.ScheduleAppSend(10, []byte("b"))
		s.ScheduleAppSend(20, []byte("c"))

		s.RunUntilComplete()

		// THEN every packet was dropped, for any seed
		if arrivals != 0 {
			t.Errorf("seed %d: %d packets arrived, want 0", seed, arrivals)
		}
		if got := countLines(linkEventLines(s), "DROP (random loss)"); got != 3 {
			t.Errorf("seed %d: %d loss events, want 3", seed, got)
		}
		// Bookkeeping still counts dropped packets
		if s.SenderPacketCount != 3 {
			t.Errorf("seed %d: SenderPacketCount %d, want 3", seed, s.SenderPacketCount)
		}
	}
}

func TestChannel_NoLoss_EverythingArrives(t *testing.T) {
	sender, receiver := echoPair()
	s := newTestSim(t, quietConfig(), sender, receiver)
	for i := uint64(0); i < 5; i++ {
		s.ScheduleAppSend(i*100, []byte{byte('a' + i)})
	}

	s.RunUntilComplete()

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, deliveredStrings(s))
}

func TestChannel_Corruption_FlipsChecksumOnly(t *testing.T) {
	// GIVEN corrupt rate 1.0 and a packet with a known checksum
	var got Packet
	arrivals := 0
	sender := &scriptedProtocol{onAppData: func(ctx SystemContext, data []byte) {
		pkt := NewDataPacket(3, 0, FlagPSH, data)
		pkt.Header.Checksum = 0x1234
		ctx.SendPacket(pkt)
	}}
	receiver := &scriptedProtocol{onPacket: func(_ SystemContext, pkt Packet) {
		got = pkt
		arrivals++
	}}
	cfg := Config{CorruptRate: 1.0, MinLatency: 10, MaxLatency: 10}
	s := newTestSim(t, cfg, sender, receiver)
	s.ScheduleAppSend(0, []byte("payload"))

	s.RunUntilComplete()

	// THEN the packet still arrived, checksum inverted, everything else intact
	if arrivals != 1 {
		t.Fatalf("arrivals: got %d, want 1", arrivals)
	}
	if got.Header.Checksum != ^uint16(0x1234) {
		t.Errorf("checksum: got %04X, want %04X", got.Header.Checksum, ^uint16(0x1234))
	}
	if string(got.Payload) != "payload" {
		t.Errorf("payload altered by corruption: %q", got.Payload)
	}
	if got.Header.SeqNum != 3 || got.Header.Flags != FlagPSH {
		t.Errorf("header fields altered: seq=%d flags=%02X", got.Header.SeqNum, got.Header.Flags)
	}

	lines := linkEventLines(s)
	assert.Equal(t, 1, countLines(lines, "] CORRUPT "), "corrupt event recorded")
	assert.Equal(t, 1, countLines(lines, "] SEND "), "corrupted packet still sent")
}

func TestChannel_FixedLatency_ExactArrivalTime(t *testing.T) {
	var arrivedAt uint64
	sender, _ := echoPair()
	receiver := &scriptedProtocol{onPacket: func(ctx SystemContext, _ Packet) { arrivedAt = ctx.Now() }}
	cfg := Config{MinLatency: 30, MaxLatency: 30}
	s := newTestSim(t, cfg, sender, receiver)
	s.ScheduleAppSend(100, []byte("x"))

	s.RunUntilComplete()

	if arrivedAt != 130 {
		t.Errorf("arrival time: got %d, want 130", arrivedAt)
	}
}

func TestChannel_LatencyRange_WithinBounds(t *testing.T) {
	sender, receiver := echoPair()
	cfg := Config{MinLatency: 10, MaxLatency: 50, Seed: 7}
	s := newTestSim(t, cfg, sender, receiver)
	for i := uint64(0); i < 20; i++ {
		s.ScheduleAppSend(i*100, []byte("x"))
	}

	s.RunUntilComplete()

	if len(s.Journal) != 20 {
		t.Fatalf("journal entries: got %d, want 20", len(s.Journal))
	}
	for i, e := range s.Journal {
		if e.Latency < 10 || e.Latency > 50 {
			t.Errorf("journal[%d]: latency %dms outside [10, 50]", i, e.Latency)
		}
	}
}

func TestChannel_DropNextSenderSeq_MatchesOnce(t *testing.T) {
	// GIVEN an override for seq 5 and two packets carrying that seq
	arrivals := 0
	sender := &scriptedProtocol{onAppData: func(ctx SystemContext, data []byte) {
		ctx.SendPacket(NewDataPacket(5, 0, 0, data))
	}}
	receiver := &scriptedProtocol{onPacket: func(SystemContext, Packet) { arrivals++ }}
	s := newTestSim(t, quietConfig(), sender, receiver)
	s.DropNextSenderSeq(5)
	s.ScheduleAppSend(0, []byte("first"))
	s.ScheduleAppSend(100, []byte("second"))

	s.RunUntilComplete()

	// THEN only the first matching packet was dropped
	if arrivals != 1 {
		t.Errorf("arrivals: got %d, want 1", arrivals)
	}
	lines := linkEventLines(s)
	assert.Equal(t, 1, countLines(lines, "DROP (deterministic seq) seq=5"))
	assert.Equal(t, 1, countLines(lines, "] SEND "))
}

func TestChannel_DropNextReceiverAck_RequiresAckFlag(t *testing.T) {
	// GIVEN an override for ack 1 and three receiver packets: a data
	// packet carrying ack_num 1, then two true ACKs for 1
	senderArrivals := 0
	sender := &scriptedProtocol{onPacket: func(SystemContext, Packet) { senderArrivals++ }}
	receiver := &scriptedProtocol{onInit: func(ctx SystemContext) {
		ctx.SendPacket(NewDataPacket(0, 1, 0, []byte("not an ack")))
		ctx.SendPacket(NewAckPacket(0, 1, 0))
		ctx.SendPacket(NewAckPacket(0, 1, 0))
	}}
	s := newTestSim(t, quietConfig(), sender, receiver)
	s.DropNextReceiverAck(1)

	s.RunUntilComplete()

	// THEN only the first flagged ACK was dropped
	if senderArrivals != 2 {
		t.Errorf("sender arrivals: got %d, want 2", senderArrivals)
	}
	assert.Equal(t, 1, countLines(linkEventLines(s), "DROP (deterministic ack) ack=1"))
}

func TestChannel_SenderBookkeeping_BeforeDropChecks(t *testing.T) {
	// GIVEN total loss and window-advertising sender packets
	sender := &scriptedProtocol{onInit: func(ctx SystemContext) {
		for i := 0; i < 3; i++ {
			ctx.SendPacket(NewPacket(NewHeader(uint32(i), 0, 0, 4), []byte("w")))
		}
	}}
	cfg := Config{LossRate: 1.0, MinLatency: 10, MaxLatency: 10}
	s := newTestSim(t, cfg, sender, &scriptedProtocol{})

	s.RunUntilComplete()

	// THEN counts and window samples include the dropped packets
	if s.SenderPacketCount != 3 {
		t.Errorf("SenderPacketCount: got %d, want 3", s.SenderPacketCount)
	}
	assert.Equal(t, []uint16{4, 4, 4}, s.SenderWindowSizes)
	assert.Empty(t, s.DeliveredData)
}

func TestChannel_ZeroWindow_NotSampled(t *testing.T) {
	sender, receiver := echoPair() // data packets advertise no window
	s := newTestSim(t, quietConfig(), sender, receiver)
	s.ScheduleAppSend(0, []byte("x"))

	s.RunUntilComplete()

	if len(s.SenderWindowSizes) != 0 {
		t.Errorf("window samples for zero windows: got %v, want none", s.SenderWindowSizes)
	}
}

func TestChannel_ReceiverPackets_NotCountedAsSender(t *testing.T) {
	receiver := &scriptedProtocol{onInit: func(ctx SystemContext) {
		ctx.SendPacket(NewAckPacket(0, 0, 0))
	}}
	s := newTestSim(t, quietConfig(), &scriptedProtocol{}, receiver)

	s.RunUntilComplete()

	if s.SenderPacketCount != 0 {
		t.Errorf("SenderPacketCount counted receiver traffic: got %d, want 0", s.SenderPacketCount)
	}
}

func TestChannel_LinkEventFormats(t *testing.T) {
	// The link-event lines are part of the report format graders parse;
	// pin the exact rendering
	sender, receiver := echoPair()
	s := newTestSim(t, quietConfig(), sender, receiver)
	s.ScheduleAppSend(0, []byte("hi"))

	s.RunUntilComplete()

	want := []string{
		"[Sender->Receiver] SEND seq=0 ack=0 (latency=10ms)",
		"[Receiver] DELIVERED 2 bytes to application",
	}
	assert.Equal(t, want, linkEventLines(s))
}

func TestChannel_Journal_RecordsOutcomes(t *testing.T) {
	// GIVEN one override drop and one clean send
	sender := &scriptedProtocol{onAppData: func(ctx SystemContext, data []byte) {
		ctx.SendPacket(NewDataPacket(0, 0, 0, data))
	}}
	s := newTestSim(t, quietConfig(), sender, &scriptedProtocol{})
	s.DropNextSenderSeq(0)
	s.ScheduleAppSend(0, []byte("dropped"))
	s.ScheduleAppSend(100, []byte("clean"))

	s.RunUntilComplete()

	if len(s.Journal) != 2 {
		t.Fatalf("journal entries: got %d, want 2", len(s.Journal))
	}
	first, second := s.Journal[0], s.Journal[1]
	assert.Equal(t, OutcomeDroppedOverride, first.Outcome)
	assert.False(t, first.Outcome.Delivered())
	assert.Equal(t, uint64(0), first.Latency)

	assert.Equal(t, OutcomeSent, second.Outcome)
	assert.True(t, second.Outcome.Delivered())
	assert.Equal(t, uint64(10), second.Latency)
	assert.Equal(t, Sender, second.From)
	assert.Equal(t, Receiver, second.To)
}
