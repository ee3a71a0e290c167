package sim

// Protocol is the contract a transport implementation must satisfy.
// The engine owns exactly two instances, one per endpoint, and invokes the
// callbacks single-threaded. Every callback receives a fresh SystemContext;
// implementations MUST route all effects through it and MUST NOT retain it
// past the callback's return.
type Protocol interface {
	// Init runs once before any other callback, Sender first, then Receiver.
	Init(ctx SystemContext)
	// OnPacket handles a packet arriving from the peer endpoint.
	OnPacket(ctx SystemContext, pkt Packet)
	// OnTimer handles the expiry of a timer previously started with timerID.
	// Cancelled timers never reach this callback.
	OnTimer(ctx SystemContext, timerID uint32)
	// OnAppData hands application-layer bytes to the sending side.
	// Only the Sender endpoint ever receives this callback.
	OnAppData(ctx SystemContext, data []byte)
}

// SystemContext is the scoped capability the engine grants a protocol for
// the duration of a single callback. Calls are buffered and take effect
// only after the callback returns; a protocol can never observe a
// partially applied effect of its own or its peer's prior callback.
type SystemContext interface {
	// SendPacket queues a packet for transmission through the channel.
	SendPacket(pkt Packet)
	// StartTimer schedules OnTimer(timerID) delayMS virtual milliseconds
	// from now. Starting an already-running id queues a second expiry;
	// cancel first for restart semantics.
	StartTimer(delayMS uint64, timerID uint32)
	// CancelTimer invalidates every pending expiry for timerID on this
	// endpoint. Cancelling an unknown id is a no-op.
	CancelTimer(timerID uint32)
	// DeliverData passes received payload bytes up to the application.
	DeliverData(data []byte)
	// Log records a line attributed to this endpoint.
	Log(message string)
	// Now returns the virtual time of the event being dispatched. It does
	// not advance during the callback.
	Now() uint64
	// RecordMetric appends a sample to the named time series. Calling it
	// is optional; protocols that never record metrics are fine.
	RecordMetric(name string, value float64)
}

// BaseProtocol provides no-op implementations of every callback.
// Embed it to implement only the callbacks a protocol cares about.
type BaseProtocol struct{}

func (BaseProtocol) Init(SystemContext)              {}
func (BaseProtocol) OnPacket(SystemContext, Packet)  {}
func (BaseProtocol) OnTimer(SystemContext, uint32)   {}
func (BaseProtocol) OnAppData(SystemContext, []byte) {}
