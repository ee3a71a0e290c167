package rdt

import (
	"fmt"

	"github.com/rdtlab/rdtlab/sim"
)

// NaiveSender transmits each application chunk exactly once, with no
// checksum, no timer, and no retransmission. It only survives a perfect
// channel, which is precisely what makes it useful as a baseline.
type NaiveSender struct {
	sim.BaseProtocol
	nextSeq uint32
}

func (n *NaiveSender) OnAppData(ctx sim.SystemContext, data []byte) {
	ctx.Log(fmt.Sprintf("naive send seq=%d (%d bytes)", n.nextSeq, len(data)))
	ctx.SendPacket(sim.NewDataPacket(n.nextSeq, 0, 0, data))
	n.nextSeq++
}

// NaiveReceiver delivers every arriving payload without acknowledging.
type NaiveReceiver struct {
	sim.BaseProtocol
}

func (n *NaiveReceiver) OnPacket(ctx sim.SystemContext, pkt sim.Packet) {
	if pkt.Len() == 0 {
		return
	}
	ctx.DeliverData(pkt.Payload)
}
