package core

// tick is the step generator: one firing of the fixed-period timer
// described in SPEC_FULL.md §4.4. On a TinyGo target it runs as the actual
// interrupt handler; on the host/simulator build it runs as the callback a
// virtual Clock invokes once per tick period (SPEC_FULL.md §9: "the same
// aggregate is driven by a virtual clock thread").
//
// It is wrapped in the platform critical-section primitive because it is
// the one context that must never observe a half-applied concurrent write
// from the foreground side; on TinyGo this genuinely excludes foreground
// code for its duration, on the host build it is a no-op. The cross-context
// fields it touches are atomics, except a queued slot's WaitForSync flag,
// which the sync handler may clear concurrently without synchronisation.
func (n *Node) tick() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	active := &n.active
	if remaining := active.TimeRemaining.Load(); remaining > 0 {
		remaining--
		active.TimeRemaining.Store(remaining)

		var stepMask uint8
		for i := 0; i < int(n.config.Axes); i++ {
			st := &active.Steppers[i]
			st.BresenhamAccumulator += int32(st.TargetSteps)
			if st.BresenhamAccumulator > int32(active.Threshold) {
				st.BresenhamAccumulator -= int32(active.TotalTime)
				stepMask |= 1 << i
				if st.StepsRemaining > 0 {
					st.StepsRemaining--
				}
				n.position[i].Add(st.Direction)
			}
		}
		if stepMask != 0 {
			n.pulseSteps(stepMask)
			n.totalSteps.Add(uint64(popcount(stepMask)))
			RecordTiming(EvtTick, uint8(active.SegmentKey.Load()), uint32(stepMask), remaining)
		}
	}

	if active.TimeRemaining.Load() == 0 {
		if n.tryLoad() == LoadOK {
			RecordTiming(EvtLoad, uint8(active.SegmentKey.Load()), 0, 0)
		}
	}
}

func popcount(mask uint8) int {
	n := 0
	for mask != 0 {
		n += int(mask & 1)
		mask >>= 1
	}
	return n
}
