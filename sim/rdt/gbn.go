package rdt

import (
	"fmt"

	"github.com/rdtlab/rdtlab/sim"
)

const (
	gbnTimer     uint32 = 1
	gbnTimeoutMS uint64 = 1000

	gbnInitialWindow uint16 = 4
	gbnMaxWindow     uint16 = 32
)

// GoBackNSender keeps a window of unacknowledged packets in flight and
// retransmits the whole window on timeout. Acknowledgements are
// cumulative: an ACK carrying n acknowledges every sequence below n.
//
// The window adapts: +1 on every ACK that advances the base, halved on
// timeout. The current size is advertised in each outgoing header and
// recorded as the "window" metric, so a run's report shows the window
// collapsing when the channel misbehaves.
type GoBackNSender struct {
	base     uint32
	nextSeq  uint32
	window   uint16
	pending  [][]byte
	inflight []sim.Packet
}

// NewGoBackNSender returns a sender starting with the initial window.
func NewGoBackNSender() *GoBackNSender {
	return &GoBackNSender{window: gbnInitialWindow}
}

func (g *GoBackNSender) Init(ctx sim.SystemContext) {
	ctx.Log(fmt.Sprintf("go-back-n sender ready (window=%d)", g.window))
	ctx.RecordMetric("window", float64(g.window))
}

func (g *GoBackNSender) OnAppData(ctx sim.SystemContext, data []byte) {
	g.pending = append(g.pending, append([]byte(nil), data...))
	g.fill(ctx)
}

func (g *GoBackNSender) OnPacket(ctx sim.SystemContext, pkt sim.Packet) {
	if !pkt.Header.IsACK() {
		return
	}
	ack := pkt.Header.AckNum // next sequence the receiver expects
	if ack <= g.base || ack > g.nextSeq {
		return
	}
	ctx.Log(fmt.Sprintf("cumulative ACK through seq %d", ack-1))
	g.inflight = g.inflight[ack-g.base:]
	g.base = ack

	ctx.CancelTimer(gbnTimer)
	if g.outstanding() > 0 {
		ctx.StartTimer(gbnTimeoutMS, gbnTimer)
	}

	if g.window < gbnMaxWindow {
		g.window++
		ctx.RecordMetric("window", float64(g.window))
	}
	g.fill(ctx)
}

func (g *GoBackNSender) OnTimer(ctx sim.SystemContext, timerID uint32) {
	if timerID != gbnTimer || g.outstanding() == 0 {
		return
	}
	if g.window > 1 {
		g.window /= 2
		ctx.RecordMetric("window", float64(g.window))
	}
	ctx.Log(fmt.Sprintf("timeout, retransmitting %d packets from seq %d", len(g.inflight), g.base))
	for i := range g.inflight {
		g.inflight[i].Header.WindowSize = g.window
		ctx.SendPacket(g.inflight[i])
	}
	ctx.StartTimer(gbnTimeoutMS, gbnTimer)
}

func (g *GoBackNSender) outstanding() uint32 {
	return g.nextSeq - g.base
}

func (g *GoBackNSender) fill(ctx sim.SystemContext) {
	for len(g.pending) > 0 && g.outstanding() < uint32(g.window) {
		payload := g.pending[0]
		g.pending = g.pending[1:]

		pkt := sim.NewDataPacket(g.nextSeq, 0, 0, payload)
		pkt.Header.WindowSize = g.window
		pkt.Header.Checksum = Checksum(payload)
		ctx.Log(fmt.Sprintf("send seq=%d (%d bytes, window=%d)", g.nextSeq, len(payload), g.window))
		ctx.SendPacket(pkt)
		g.inflight = append(g.inflight, pkt)
		if g.base == g.nextSeq {
			ctx.StartTimer(gbnTimeoutMS, gbnTimer)
		}
		g.nextSeq++
	}
}

// GoBackNReceiver delivers in-order packets and answers every data packet
// with a cumulative ACK naming the next expected sequence. Out-of-order
// and corrupted packets are discarded; the duplicate ACK tells the sender
// where to resume.
type GoBackNReceiver struct {
	sim.BaseProtocol
	expected uint32
}

func (r *GoBackNReceiver) Init(ctx sim.SystemContext) {
	ctx.Log("go-back-n receiver ready")
}

func (r *GoBackNReceiver) OnPacket(ctx sim.SystemContext, pkt sim.Packet) {
	if pkt.Header.IsACK() {
		return
	}
	if Checksum(pkt.Payload) != pkt.Header.Checksum {
		ctx.Log(fmt.Sprintf("checksum mismatch for seq %d, re-ACK %d", pkt.Header.SeqNum, r.expected))
		r.sendAck(ctx)
		return
	}
	if pkt.Header.SeqNum == r.expected {
		ctx.Log(fmt.Sprintf("received seq %d (%d bytes)", pkt.Header.SeqNum, pkt.Len()))
		ctx.DeliverData(pkt.Payload)
		r.expected++
	} else {
		ctx.Log(fmt.Sprintf("out-of-order seq %d (expect %d)", pkt.Header.SeqNum, r.expected))
	}
	r.sendAck(ctx)
}

func (r *GoBackNReceiver) sendAck(ctx sim.SystemContext) {
	ctx.SendPacket(sim.NewAckPacket(0, r.expected, 0))
}
