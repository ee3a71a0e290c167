package sim

// Event is one scheduled occurrence in the simulation. Events are never
// mutated after creation: the queue orders them by (Timestamp, EventID)
// and the simulator consumes them exactly once.
type Event interface {
	// Timestamp returns the virtual time (ms) the event is scheduled for.
	Timestamp() uint64
	// EventID returns the insertion sequence number used to break ties
	// between events scheduled for the same time.
	EventID() uint64
	// Execute dispatches the event against the simulator.
	Execute(sim *Simulator)
}

// BaseEvent provides the common timestamp and insertion id fields.
type BaseEvent struct {
	time    uint64
	eventID uint64
}

func newBaseEvent(time, eventID uint64) BaseEvent {
	return BaseEvent{time: time, eventID: eventID}
}

func (e *BaseEvent) Timestamp() uint64 {
	return e.time
}

func (e *BaseEvent) EventID() uint64 {
	return e.eventID
}

// PacketArrivalEvent represents a packet emerging from the channel at the
// destination endpoint after its sampled latency has elapsed.
type PacketArrivalEvent struct {
	BaseEvent
	To     Endpoint
	Packet Packet
}

// NewPacketArrivalEvent creates a packet arrival for endpoint to.
func NewPacketArrivalEvent(time, eventID uint64, to Endpoint, pkt Packet) *PacketArrivalEvent {
	return &PacketArrivalEvent{
		BaseEvent: newBaseEvent(time, eventID),
		To:        to,
		Packet:    pkt,
	}
}

// Execute hands the packet to the destination protocol's OnPacket callback.
func (e *PacketArrivalEvent) Execute(sim *Simulator) {
	sim.handlePacketArrival(e)
}

// TimerExpiryEvent represents a timer deadline. The carried generation is
// compared against the timer table at dispatch time; a stale generation
// means the timer was cancelled after this expiry was scheduled.
type TimerExpiryEvent struct {
	BaseEvent
	Node       Endpoint
	TimerID    uint32
	Generation uint64
}

// NewTimerExpiryEvent creates a timer expiry for the given endpoint and id.
func NewTimerExpiryEvent(time, eventID uint64, node Endpoint, timerID uint32, generation uint64) *TimerExpiryEvent {
	return &TimerExpiryEvent{
		BaseEvent:  newBaseEvent(time, eventID),
		Node:       node,
		TimerID:    timerID,
		Generation: generation,
	}
}

// Execute fires OnTimer if the timer is still current, otherwise discards.
func (e *TimerExpiryEvent) Execute(sim *Simulator) {
	sim.handleTimerExpiry(e)
}

// AppSendEvent represents the application handing data to the transport.
// App sends are always dispatched to the Sender endpoint.
type AppSendEvent struct {
	BaseEvent
	Data []byte
}

// NewAppSendEvent creates an application send carrying data.
func NewAppSendEvent(time, eventID uint64, data []byte) *AppSendEvent {
	return &AppSendEvent{
		BaseEvent: newBaseEvent(time, eventID),
		Data:      data,
	}
}

// Execute hands the data to the Sender's OnAppData callback.
func (e *AppSendEvent) Execute(sim *Simulator) {
	sim.handleAppSend(e)
}
