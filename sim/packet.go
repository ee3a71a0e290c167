package sim

import "strings"

// Header flag bits. Stored directly in Header.Flags; data offset and
// reserved bits are not modeled.
const (
	FlagFIN uint8 = 0x01
	FlagSYN uint8 = 0x02
	FlagRST uint8 = 0x04
	FlagPSH uint8 = 0x08
	FlagACK uint8 = 0x10
	FlagURG uint8 = 0x20
)

// Header carries the TCP-style header fields a protocol fills in.
// SrcPort and DstPort are unused in the 1-to-1 link but kept for realism.
type Header struct {
	SrcPort    uint16 `json:"src_port" yaml:"src_port"`
	DstPort    uint16 `json:"dst_port" yaml:"dst_port"`
	SeqNum     uint32 `json:"seq_num" yaml:"seq_num"`
	AckNum     uint32 `json:"ack_num" yaml:"ack_num"`
	Flags      uint8  `json:"flags" yaml:"flags"`
	WindowSize uint16 `json:"window_size" yaml:"window_size"`
	Checksum   uint16 `json:"checksum" yaml:"checksum"`
	UrgentPtr  uint16 `json:"urgent_ptr" yaml:"urgent_ptr"`
}

// NewHeader builds a header with the common fields set and the rest zeroed.
func NewHeader(seq, ack uint32, flags uint8, window uint16) Header {
	return Header{
		SeqNum:     seq,
		AckNum:     ack,
		Flags:      flags,
		WindowSize: window,
	}
}

// IsSYN reports whether the SYN bit is set.
func (h Header) IsSYN() bool { return h.Flags&FlagSYN != 0 }

// IsACK reports whether the ACK bit is set.
func (h Header) IsACK() bool { return h.Flags&FlagACK != 0 }

// IsFIN reports whether the FIN bit is set.
func (h Header) IsFIN() bool { return h.Flags&FlagFIN != 0 }

// IsRST reports whether the RST bit is set.
func (h Header) IsRST() bool { return h.Flags&FlagRST != 0 }

// FlagString renders the set flag bits as a compact string like "ACK|PSH".
// Returns "-" when no flags are set.
func FlagString(flags uint8) string {
	names := []struct {
		bit  uint8
		name string
	}{
		{FlagFIN, "FIN"},
		{FlagSYN, "SYN"},
		{FlagRST, "RST"},
		{FlagPSH, "PSH"},
		{FlagACK, "ACK"},
		{FlagURG, "URG"},
	}
	parts := make([]string, 0, 2)
	for _, n := range names {
		if flags&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// Packet is a header plus payload bytes. Packets are immutable by
// convention: the engine copies one into each arrival event and protocols
// build fresh ones rather than mutating what they received.
type Packet struct {
	Header  Header `json:"header" yaml:"header"`
	Payload []byte `json:"payload" yaml:"payload"`
}

// NewPacket pairs a prepared header with a payload.
func NewPacket(header Header, payload []byte) Packet {
	return Packet{Header: header, Payload: payload}
}

// NewDataPacket builds a payload-carrying packet with a zero window.
func NewDataPacket(seq, ack uint32, flags uint8, payload []byte) Packet {
	return Packet{Header: NewHeader(seq, ack, flags, 0), Payload: payload}
}

// NewAckPacket builds a pure ACK with no payload.
func NewAckPacket(seq, ack uint32, window uint16) Packet {
	return Packet{Header: NewHeader(seq, ack, FlagACK, window)}
}

// Len returns the payload length. Header size is not modeled.
func (p Packet) Len() int {
	return len(p.Payload)
}
