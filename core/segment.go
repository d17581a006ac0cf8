package core

import "sync/atomic"

// MaxAxes is the largest axis count any node configuration supports.
const MaxAxes = 3

// MotionSegment is one queued move as received from the host. Target values
// are already in internal microsteps (shifted left by SmoothingBits) by the
// time they reach the buffer; see Node.handleStepRequest.
type MotionSegment struct {
	Target      [MaxAxes]int32 // per-axis target; delta or absolute, see Absolute
	SegmentTime uint32         // execution duration in ticks, 24-bit range
	SegmentKey  uint8          // host-chosen opaque identifier
	Absolute    bool           // true: Target is an absolute destination
	WaitForSync bool           // true: segment must not run until cleared by a sync
}

// StepperState is the step-generator-owned per-axis state of the active
// segment. Nothing outside the step generator ever reads or writes it, so
// it needs no synchronization.
type StepperState struct {
	TargetSteps          uint32 // magnitude of this axis's delta for the active segment
	StepsRemaining       uint32 // advisory countdown; not consulted for termination
	BresenhamAccumulator int32  // signed; crosses Threshold to emit a step
	Direction            int32  // +1 or -1
}

// ActiveSegment is the process-wide segment currently being executed by the
// step generator. It is distinct from the buffer slot it was loaded from.
//
// TimeRemaining and SegmentKey are read by the foreground status-reply path
// concurrently with step-generator writes, so they are atomic — the Go
// equivalent of the release-store/acquire-load pairing SPEC_FULL.md §9 calls
// for on the ring-buffer indices, applied here to the same cross-context
// hazard. Threshold, TotalTime and Steppers are touched only from the step
// generator's own context (load and tick always run there) and need no
// synchronization.
type ActiveSegment struct {
	Steppers      [MaxAxes]StepperState
	Threshold     uint32
	TotalTime     uint32
	TimeRemaining atomic.Uint32
	SegmentKey    atomic.Uint32 // holds a uint8 value
}

// Idle reports whether the active segment has nothing left to execute.
func (a *ActiveSegment) Idle() bool {
	return a.TimeRemaining.Load() == 0
}
