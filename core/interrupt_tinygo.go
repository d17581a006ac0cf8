//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts disables interrupts for the duration of
// writeStatusReply's read of the active segment's key and timeRemaining,
// so a hardware timer firing mid-read can never hand back a status reply
// describing two different segments.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state saved by disableInterrupts.
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
