package sim

// PacketOutcome records what the channel decided for one packet.
type PacketOutcome string

const (
	// OutcomeSent means the packet was scheduled to arrive at the peer.
	OutcomeSent PacketOutcome = "sent"
	// OutcomeCorrupted means the packet arrives with a flipped checksum.
	OutcomeCorrupted PacketOutcome = "corrupted"
	// OutcomeDroppedLoss means the random loss draw dropped the packet.
	OutcomeDroppedLoss PacketOutcome = "dropped_loss"
	// OutcomeDroppedOverride means a deterministic override dropped it.
	OutcomeDroppedOverride PacketOutcome = "dropped_override"
)

// Delivered reports whether the packet reached the peer endpoint.
func (o PacketOutcome) Delivered() bool {
	return o == OutcomeSent || o == OutcomeCorrupted
}

// JournalEntry is one channel decision, recorded in transmission order.
// The journal is the machine-readable companion of the link-event log;
// pcap export and tests consume it.
type JournalEntry struct {
	Time    uint64        `json:"time" yaml:"time"`
	From    Endpoint      `json:"from" yaml:"from"`
	To      Endpoint      `json:"to" yaml:"to"`
	Packet  Packet        `json:"packet" yaml:"packet"`
	Outcome PacketOutcome `json:"outcome" yaml:"outcome"`
	// Latency is the sampled one-way delay in ms; zero for dropped packets.
	Latency uint64 `json:"latency" yaml:"latency"`
}

func (s *Simulator) recordJournal(from, to Endpoint, pkt Packet, outcome PacketOutcome, latency uint64) {
	s.Journal = append(s.Journal, JournalEntry{
		Time:    s.Clock,
		From:    from,
		To:      to,
		Packet:  pkt,
		Outcome: outcome,
		Latency: latency,
	})
}
