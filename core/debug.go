package core

// DebugWriter is a function type for writing debug/telemetry messages. It is
// the sole logging mechanism in this package — no third-party logging
// library is used anywhere in the retrieved corpus, so plain injectable
// writers are the house style (SPEC_FULL.md §2a).
type DebugWriter func(string)

// TimingEvent captures a motion-critical event for post-mortem analysis.
type TimingEvent struct {
	EventType  uint8
	SegmentKey uint8
	Value1     uint32
	Value2     uint32
}

// Event type codes.
const (
	EvtEnqueue = 1 // stepRequest accepted into the motion buffer
	EvtLoad    = 2 // segment loaded into the active segment
	EvtTick    = 3 // step generator fired and emitted at least one pulse
	EvtSync    = 4 // sync packet processed
	EvtBlocked = 5 // load attempt found the head segment WaitForSync
)

// TimingRingSize is the number of events retained for post-mortem dumping.
const TimingRingSize = 32

var (
	// debugPrintln is the global debug sink; no-op until SetDebugWriter is
	// called by target- or host-specific setup code.
	debugPrintln DebugWriter = func(string) {}
	debugEnabled bool

	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true

	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function, allowing
// a target to redirect debug text to UART, USB, a websocket client, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables synchronous debug output. Disabled by
// default so it never perturbs step-generator timing.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled reports whether debug output is enabled.
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the background goroutine that drains DebugAsync
// messages. Call once after SetDebugWriter, from host/target setup, never
// from the step generator itself.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes synchronously if debug output is enabled.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues msg for async output, dropping it if the channel is
// full rather than blocking the caller.
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordTiming captures a timing event in the ring buffer. Always
// non-blocking, safe to call from the step generator.
func RecordTiming(eventType, segmentKey uint8, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType:  eventType,
		SegmentKey: segmentKey,
		Value1:     value1,
		Value2:     value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// DumpTimingRing writes the ring buffer, oldest first, through the current
// debug writer. Intended for post-mortem inspection after a stall, not for
// routine polling.
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[TIMING] === Timing Ring Dump ===")
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		idx := (start + i) % TimingRingSize
		evt := &timingRing[idx]
		if evt.EventType == 0 {
			continue
		}
		var name string
		switch evt.EventType {
		case EvtEnqueue:
			name = "ENQUEUE"
		case EvtLoad:
			name = "LOAD"
		case EvtTick:
			name = "TICK"
		case EvtSync:
			name = "SYNC"
		case EvtBlocked:
			name = "BLOCKED"
		default:
			name = "UNKNOWN"
		}
		debugPrintln("[TIMING] " + name +
			" key=" + itoa(int(evt.SegmentKey)) +
			" v1=" + itoa(int(evt.Value1)) +
			" v2=" + itoa(int(evt.Value2)))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing resets the ring buffer, for test isolation.
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
