package core

// handleSync implements the sync port handler (SPEC_FULL.md §4.5). If the
// node was waiting for a sync (its head segment is blocked on WaitForSync),
// the clock phase is realigned so the first tick of the released segment
// happens exactly one tick period from now (scenario S6). Either way, the
// buffer is scanned for the oldest still-waiting segment and at most one is
// released (scenario S5, invariant 5).
func (n *Node) handleSync() {
	if n.buffer.waitingForSync.Load() {
		n.clock.ResetPhase()
	}
	released := n.buffer.clearOldestWaiting()
	var v1 uint32
	if released {
		v1 = 1
	}
	RecordTiming(EvtSync, uint8(n.active.SegmentKey.Load()), v1, 0)
}
