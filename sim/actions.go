package sim

// timerStart is one buffered StartTimer call.
type timerStart struct {
	delayMS uint64
	timerID uint32
}

// metricSample is one buffered RecordMetric call.
type metricSample struct {
	name  string
	value float64
}

// actionBuffer accumulates every effect a protocol callback requests.
// Nothing in it touches the simulator until commit, so a callback is
// side-effect-free while it runs.
type actionBuffer struct {
	outgoingPackets []Packet
	timerStarts     []timerStart
	timerCancels    []uint32
	logs            []string
	deliveredData   [][]byte
	metrics         []metricSample
}

// scopedContext implements SystemContext for exactly one callback.
// The captured time never changes mid-callback, no matter how long the
// callback runs in wall-clock terms.
type scopedContext struct {
	buffer *actionBuffer
	now    uint64
}

var _ SystemContext = (*scopedContext)(nil)

func (c *scopedContext) SendPacket(pkt Packet) {
	c.buffer.outgoingPackets = append(c.buffer.outgoingPackets, pkt)
}

func (c *scopedContext) StartTimer(delayMS uint64, timerID uint32) {
	c.buffer.timerStarts = append(c.buffer.timerStarts, timerStart{delayMS: delayMS, timerID: timerID})
}

func (c *scopedContext) CancelTimer(timerID uint32) {
	c.buffer.timerCancels = append(c.buffer.timerCancels, timerID)
}

func (c *scopedContext) DeliverData(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	c.buffer.deliveredData = append(c.buffer.deliveredData, buf)
}

func (c *scopedContext) Log(message string) {
	c.buffer.logs = append(c.buffer.logs, message)
}

func (c *scopedContext) Now() uint64 {
	return c.now
}

func (c *scopedContext) RecordMetric(name string, value float64) {
	c.buffer.metrics = append(c.buffer.metrics, metricSample{name: name, value: value})
}
