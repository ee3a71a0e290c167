package sim

// timerKey identifies one logical timer: ids are scoped per endpoint, so
// Sender and Receiver can both use timer id 0 without interfering.
type timerKey struct {
	node    Endpoint
	timerID uint32
}

// timerTable maps each timer key to its current generation. Entries are
// created on first use and never removed; cancellation only increments the
// counter, which invalidates every expiry event scheduled under an older
// generation without touching the event queue.
type timerTable map[timerKey]uint64

// current returns the generation for key, inserting 0 if absent.
// Called by timer starts, so a started timer's key is always known.
func (t timerTable) current(node Endpoint, timerID uint32) uint64 {
	key := timerKey{node: node, timerID: timerID}
	gen, ok := t[key]
	if !ok {
		t[key] = 0
	}
	return gen
}

// bump increments the generation for key, inserting 0 first if absent.
func (t timerTable) bump(node Endpoint, timerID uint32) {
	t[timerKey{node: node, timerID: timerID}]++
}

// lookup returns the generation for key and whether the key has ever been
// seen. Expiry events for unknown keys are orphaned (for example, events
// replayed against a fresh simulator) and must be discarded.
func (t timerTable) lookup(node Endpoint, timerID uint32) (uint64, bool) {
	gen, ok := t[timerKey{node: node, timerID: timerID}]
	return gen, ok
}
