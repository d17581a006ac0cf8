//go:build !tinygo

package core

// State is a placeholder for interrupt state on regular Go
type State uintptr

// disableInterrupts is a no-op on the host build: writeStatusReply's
// critical section around the active segment's key/timeRemaining read races
// the step generator's own goroutine (core/clock_go.go's RealtimeClock),
// but both fields are sync/atomic, so the snapshot is merely "recent", not
// torn, without an actual critical section.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go (for testing)
func restoreInterrupts(state State) {
	// No-op
}
