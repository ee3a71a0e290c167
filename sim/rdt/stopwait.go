package rdt

import (
	"fmt"

	"github.com/rdtlab/rdtlab/sim"
)

const (
	stopWaitTimer     uint32 = 1
	stopWaitTimeoutMS uint64 = 1000
)

// StopWaitSender implements alternating-bit stop-and-wait: one packet in
// flight, sequence numbers alternating 0/1, retransmission on a 1000 ms
// timeout, and the Internet checksum over the payload so the receiver can
// detect channel corruption.
type StopWaitSender struct {
	nextSeq    uint32
	waitingAck bool
	pending    [][]byte
	lastPacket *sim.Packet
}

func (s *StopWaitSender) Init(ctx sim.SystemContext) {
	ctx.Log("stop-and-wait sender ready")
}

func (s *StopWaitSender) OnAppData(ctx sim.SystemContext, data []byte) {
	s.pending = append(s.pending, append([]byte(nil), data...))
	s.trySend(ctx)
}

func (s *StopWaitSender) OnPacket(ctx sim.SystemContext, pkt sim.Packet) {
	if !pkt.Header.IsACK() {
		return
	}
	s.handleAck(ctx, pkt.Header.AckNum)
}

func (s *StopWaitSender) OnTimer(ctx sim.SystemContext, timerID uint32) {
	if timerID != stopWaitTimer || !s.waitingAck || s.lastPacket == nil {
		return
	}
	ctx.Log(fmt.Sprintf("timeout, retransmitting seq %d", s.lastPacket.Header.SeqNum))
	ctx.SendPacket(*s.lastPacket)
	ctx.StartTimer(stopWaitTimeoutMS, stopWaitTimer)
}

func (s *StopWaitSender) trySend(ctx sim.SystemContext) {
	if s.waitingAck || len(s.pending) == 0 {
		return
	}
	payload := s.pending[0]
	s.pending = s.pending[1:]

	pkt := sim.NewDataPacket(s.nextSeq, 0, 0, payload)
	pkt.Header.Checksum = Checksum(pkt.Payload)
	ctx.Log(fmt.Sprintf("send seq=%d (%d bytes)", s.nextSeq, pkt.Len()))
	ctx.SendPacket(pkt)
	ctx.StartTimer(stopWaitTimeoutMS, stopWaitTimer)
	s.lastPacket = &pkt
	s.waitingAck = true
}

func (s *StopWaitSender) handleAck(ctx sim.SystemContext, ack uint32) {
	if !s.waitingAck || ack != s.nextSeq {
		return
	}
	ctx.Log(fmt.Sprintf("received ACK for seq %d", ack))
	ctx.CancelTimer(stopWaitTimer)
	s.waitingAck = false
	s.nextSeq ^= 1
	s.trySend(ctx)
}

// StopWaitReceiver acknowledges every valid in-order packet and re-ACKs
// the last good sequence on corruption or duplication, so a lost ACK is
// repaired by the sender's retransmission.
type StopWaitReceiver struct {
	sim.BaseProtocol
	expectedSeq uint32
	lastAcked   uint32
}

func (r *StopWaitReceiver) Init(ctx sim.SystemContext) {
	ctx.Log("stop-and-wait receiver ready")
	// Before anything arrives, re-ACKs must name the "previous" sequence,
	// which for the alternating bit is the complement of the first one.
	r.lastAcked = r.expectedSeq ^ 1
}

func (r *StopWaitReceiver) OnPacket(ctx sim.SystemContext, pkt sim.Packet) {
	want := Checksum(pkt.Payload)
	if want != pkt.Header.Checksum {
		ctx.Log(fmt.Sprintf("checksum mismatch for seq %d (expected %04X, got %04X)",
			pkt.Header.SeqNum, want, pkt.Header.Checksum))
		r.sendAck(ctx, r.lastAcked)
		return
	}
	if pkt.Header.SeqNum == r.expectedSeq {
		ctx.Log(fmt.Sprintf("received seq %d (%d bytes)", pkt.Header.SeqNum, pkt.Len()))
		ctx.DeliverData(pkt.Payload)
		r.sendAck(ctx, pkt.Header.SeqNum)
		r.expectedSeq ^= 1
	} else {
		ctx.Log(fmt.Sprintf("unexpected seq %d (expect %d), re-ACK %d",
			pkt.Header.SeqNum, r.expectedSeq, r.lastAcked))
		r.sendAck(ctx, r.lastAcked)
	}
}

func (r *StopWaitReceiver) sendAck(ctx sim.SystemContext, seq uint32) {
	ctx.Log(fmt.Sprintf("send ACK for seq %d", seq))
	ctx.SendPacket(sim.NewAckPacket(seq, seq, 0))
	r.lastAcked = seq
}
