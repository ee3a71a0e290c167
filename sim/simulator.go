package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/rdtlab/rdtlab/sim/trace"
)

// Simulator is the core object that holds simulation time, system state,
// and the event loop. It drives exactly two protocol instances over one
// bidirectional link and collects the bookkeeping a grader needs.
//
// A Simulator must be driven by a single caller; Step must never be called
// reentrantly from inside a protocol callback.
type Simulator struct {
	Clock  uint64
	Events *EventQueue

	// Bookkeeping for grading and trace export.
	DeliveredData     [][]byte
	SenderPacketCount uint32
	SenderWindowSizes []uint16
	Metrics           map[string][]trace.MetricSample
	LinkEvents        []trace.LinkEvent
	Journal           []JournalEntry

	config   Config
	rng      *rand.Rand
	sender   Protocol
	receiver Protocol

	timers              timerTable
	dropSenderSeqOnce   []uint32
	dropReceiverAckOnce []uint32

	nextEventID uint64
	initialized bool
}

// NewSimulator validates the config and wires the two protocol instances.
// The channel RNG is seeded from config.Seed; two simulators built from the
// same config and fed the same actions behave identically.
func NewSimulator(config Config, sender, receiver Protocol) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if sender == nil || receiver == nil {
		return nil, fmt.Errorf("both protocol instances are required")
	}
	return &Simulator{
		Events:        NewEventQueue(),
		DeliveredData: make([][]byte, 0),
		Metrics:       make(map[string][]trace.MetricSample),
		LinkEvents:    make([]trace.LinkEvent, 0),
		config:        config,
		rng:           rand.New(rand.NewSource(int64(config.Seed))),
		sender:        sender,
		receiver:      receiver,
		timers:        make(timerTable),
	}, nil
}

// Config returns the immutable channel configuration.
func (s *Simulator) Config() Config {
	return s.config
}

// RemainingEvents returns the number of events still queued.
func (s *Simulator) RemainingEvents() int {
	return s.Events.Len()
}

// PeekNextEventTime returns the timestamp of the next event, if any.
func (s *Simulator) PeekNextEventTime() (uint64, bool) {
	return s.Events.PeekTime()
}

// MetricSeries returns the (time, value) samples recorded under name,
// or nil if the metric was never recorded.
func (s *Simulator) MetricSeries(name string) []trace.MetricSample {
	return s.Metrics[name]
}

// DropNextSenderSeq registers a deterministic fault: the first packet sent
// by the Sender whose sequence number equals seq is dropped. Each
// registration matches at most once; later packets with the same seq face
// only the probabilistic channel model.
func (s *Simulator) DropNextSenderSeq(seq uint32) {
	s.dropSenderSeqOnce = append(s.dropSenderSeqOnce, seq)
}

// DropNextReceiverAck registers a deterministic fault: the first ACK sent
// by the Receiver whose ack number equals ack is dropped. Single-use, like
// DropNextSenderSeq.
func (s *Simulator) DropNextReceiverAck(ack uint32) {
	s.dropReceiverAckOnce = append(s.dropReceiverAckOnce, ack)
}

// ScheduleAppSend queues application data for the Sender at the given
// virtual time. May be called before or during a run.
func (s *Simulator) ScheduleAppSend(time uint64, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.pushEvent(NewAppSendEvent(time, s.newEventID(), buf))
}

// Init runs both protocols' Init callbacks, Sender first, then Receiver.
// Each callback gets its own scoped context and commit. Init is idempotent:
// repeated calls after the first are no-ops, so drivers that Init manually
// can still finish with RunUntilComplete.
func (s *Simulator) Init() {
	if s.initialized {
		return
	}
	s.initialized = true
	logrus.Debugf("initializing protocols at t=%dms", s.Clock)
	s.dispatch(Sender, func(ctx SystemContext) { s.sender.Init(ctx) })
	s.dispatch(Receiver, func(ctx SystemContext) { s.receiver.Init(ctx) })
}

// Step processes the next event. It returns true when an event was
// processed and false when the queue is drained. Discarded timer expiries
// still count as processed.
func (s *Simulator) Step() bool {
	ev := s.Events.PopNext()
	if ev == nil {
		return false
	}
	s.Clock = ev.Timestamp()
	logrus.Debugf("[t=%05dms] executing %T", s.Clock, ev)
	ev.Execute(s)
	return true
}

// RunUntilComplete initializes once and steps until the queue drains.
// It performs no time-bounding itself; callers needing a timeout must
// watch Clock between steps and abort.
func (s *Simulator) RunUntilComplete() {
	s.Init()
	for s.Step() {
	}
}

// Report builds an immutable snapshot of everything accumulated so far.
func (s *Simulator) Report() *trace.Report {
	metrics := make(map[string][]trace.MetricSample, len(s.Metrics))
	for name, samples := range s.Metrics {
		metrics[name] = append([]trace.MetricSample(nil), samples...)
	}
	delivered := make([][]byte, len(s.DeliveredData))
	for i, data := range s.DeliveredData {
		delivered[i] = append([]byte(nil), data...)
	}
	return &trace.Report{
		Config: trace.Config{
			LossRate:    s.config.LossRate,
			CorruptRate: s.config.CorruptRate,
			MinLatency:  s.config.MinLatency,
			MaxLatency:  s.config.MaxLatency,
			Seed:        s.config.Seed,
		},
		DurationMS:        s.Clock,
		DeliveredData:     delivered,
		SenderPacketCount: s.SenderPacketCount,
		SenderWindowSizes: append([]uint16(nil), s.SenderWindowSizes...),
		Metrics:           metrics,
		LinkEvents:        append([]trace.LinkEvent(nil), s.LinkEvents...),
	}
}

// newEventID returns the next insertion sequence number.
func (s *Simulator) newEventID() uint64 {
	s.nextEventID++
	return s.nextEventID
}

func (s *Simulator) pushEvent(e Event) {
	s.Events.Schedule(e)
}

func (s *Simulator) protocol(node Endpoint) Protocol {
	if node == Sender {
		return s.sender
	}
	return s.receiver
}

// dispatch runs one protocol callback behind a fresh scoped context and
// commits the buffered actions afterwards. The context's clock is frozen
// at the current virtual time for the whole callback.
func (s *Simulator) dispatch(node Endpoint, call func(SystemContext)) {
	buf := &actionBuffer{}
	call(&scopedContext{buffer: buf, now: s.Clock})
	s.commit(node, buf)
}

func (s *Simulator) handlePacketArrival(e *PacketArrivalEvent) {
	s.dispatch(e.To, func(ctx SystemContext) { s.protocol(e.To).OnPacket(ctx, e.Packet) })
}

func (s *Simulator) handleTimerExpiry(e *TimerExpiryEvent) {
	current, known := s.timers.lookup(e.Node, e.TimerID)
	if !known {
		// No record of this timer. It may be left over from another
		// simulator instance; skip it for safety.
		logrus.Debugf("skipping orphaned timer %d for %s", e.TimerID, e.Node)
		return
	}
	if current != e.Generation {
		logrus.Debugf("skipping cancelled timer %d for %s (generation %d, current %d)",
			e.TimerID, e.Node, e.Generation, current)
		return
	}
	s.dispatch(e.Node, func(ctx SystemContext) { s.protocol(e.Node).OnTimer(ctx, e.TimerID) })
}

func (s *Simulator) handleAppSend(e *AppSendEvent) {
	s.dispatch(Sender, func(ctx SystemContext) { s.sender.OnAppData(ctx, e.Data) })
}

// commit applies one callback's buffered actions in a fixed order:
// metrics, logs, delivered data, timer cancellations, timer starts,
// outgoing packets. Cancellations run strictly before starts, so a
// cancel-then-restart of the same timer id within one callback schedules
// the new expiry under a fresh generation.
func (s *Simulator) commit(source Endpoint, buf *actionBuffer) {
	for _, m := range buf.metrics {
		s.Metrics[m.name] = append(s.Metrics[m.name], trace.MetricSample{Time: s.Clock, Value: m.value})
	}

	for _, line := range buf.logs {
		logrus.Infof("[%s] %s", source, line)
	}

	for _, data := range buf.deliveredData {
		logrus.Infof("[%s] delivered %d bytes to application", source, len(data))
		s.recordLinkEvent("[%s] DELIVERED %d bytes to application", source, len(data))
		s.DeliveredData = append(s.DeliveredData, data)
	}

	for _, timerID := range buf.timerCancels {
		s.timers.bump(source, timerID)
	}

	for _, start := range buf.timerStarts {
		generation := s.timers.current(source, start.timerID)
		s.pushEvent(NewTimerExpiryEvent(s.Clock+start.delayMS, s.newEventID(), source, start.timerID, generation))
	}

	for _, pkt := range buf.outgoingPackets {
		s.transmit(source, pkt)
	}
}

func (s *Simulator) recordLinkEvent(format string, args ...interface{}) {
	s.LinkEvents = append(s.LinkEvents, trace.LinkEvent{
		Time:        s.Clock,
		Description: fmt.Sprintf(format, args...),
	})
}
