package sim

// Endpoint identifies one of the two simulated parties.
// Exactly two values exist for the lifetime of a simulator.
type Endpoint uint8

const (
	// Sender originates application data and retransmissions.
	Sender Endpoint = iota
	// Receiver delivers data to the application and emits acknowledgements.
	Receiver
)

// Peer returns the other endpoint. Peer is a total involution:
// Sender.Peer() == Receiver and Receiver.Peer() == Sender.
func (e Endpoint) Peer() Endpoint {
	if e == Sender {
		return Receiver
	}
	return Sender
}

func (e Endpoint) String() string {
	if e == Sender {
		return "Sender"
	}
	return "Receiver"
}
