package core

// loadSegment copies seg into the active segment, converting absolute
// targets to deltas against the CURRENT position ledger (SPEC_FULL.md §3
// invariant 5: at load time, not enqueue time). It is only ever called when
// the active segment is idle (ActiveSegment.Idle()).
func (n *Node) loadSegment(seg MotionSegment) {
	active := &n.active
	for i := 0; i < int(n.config.Axes); i++ {
		delta := seg.Target[i]
		if seg.Absolute {
			delta -= n.position[i].Load()
		}
		st := &active.Steppers[i]
		if delta <= 0 {
			st.Direction = -1
			st.TargetSteps = uint32(-delta)
		} else {
			st.Direction = 1
			st.TargetSteps = uint32(delta)
		}
		st.StepsRemaining = st.TargetSteps
		st.BresenhamAccumulator = 0
		n.setDirection(i, st.Direction)
	}

	active.SegmentKey.Store(uint32(seg.SegmentKey))
	active.Threshold = seg.SegmentTime / 2
	active.TotalTime = seg.SegmentTime

	// Arming store: must be the last write of this load. Until TimeRemaining
	// is non-zero the step generator performs no stepping for this segment.
	active.TimeRemaining.Store(seg.SegmentTime)
}

// tryLoad attempts to pull the next ready segment from the buffer and arm
// it. It is called by the step generator whenever the active segment is
// idle. A LoadBlocked result leaves the active segment idle for another
// tick; LoadEmpty likewise. Drivers are enabled on a successful load
// (SPEC_FULL.md §4.3 step 5).
func (n *Node) tryLoad() LoadResult {
	seg, result := n.buffer.tryLoadNext()
	if result != LoadOK {
		return result
	}
	n.loadSegment(seg)
	n.enableDrivers(true)
	return LoadOK
}
