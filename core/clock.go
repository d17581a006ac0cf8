package core

// Clock drives the step generator at a fixed period. SPEC_FULL.md §9:
// "the ISR context receives an exclusive mutable reference via a
// platform-provided critical-section primitive... in languages without
// interrupts (user-space simulator), the same aggregate is driven by a
// virtual clock thread." Start registers the tick function; Stop detaches
// it. A Clock implementation owns the decision of how ticks are produced —
// a real hardware timer interrupt, a wall-clock goroutine, or a
// manually-advanced fake for deterministic tests.
type Clock interface {
	// Start begins calling tick once per period until Stop is called.
	Start(tick func())
	// Stop detaches the tick callback. It does not abort a tick in
	// progress.
	Stop()
	// ResetPhase realigns the clock so the next tick fires exactly one full
	// period from now, discarding any partial period already elapsed. This
	// is the Go equivalent of the sync handler's "TCNT = 0" hardware-counter
	// reset (SPEC_FULL.md §4.5, scenario S6).
	ResetPhase()
	// Counter returns ticks elapsed since the last ResetPhase (or since the
	// clock was created; Start does not reset it),
	// the software analogue of the CTC counter register the sync handler
	// inspects.
	Counter() uint32
}

