package core

import "testing"

func newTestNode(axes uint8, capacity int) (*Node, *RecordingGPIO, *FakeClock) {
	gpio := NewRecordingGPIO()
	clock := NewFakeClock()
	cfg := NodeConfig{Axes: axes, BufferCapacity: capacity}
	for i := 0; i < int(axes); i++ {
		cfg.StepPin[i] = GPIOPin(10 + i*3)
		cfg.DirPin[i] = GPIOPin(11 + i*3)
		cfg.EnablePin[i] = GPIOPin(12 + i*3)
	}
	n := NewNode(cfg, gpio, clock)
	n.Start()
	return n, gpio, clock
}

// S1 — single-axis straight: enqueue a +1000 step move over 10000 ticks and
// expect exactly 1000 pulses and a final ledger position of 1000. The target
// goes straight into the buffer, so it is already in internal microsteps.
func TestSingleAxisStraight(t *testing.T) {
	n, gpio, clock := newTestNode(1, 8)

	result := n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{1000}, SegmentTime: 10000, SegmentKey: 7})
	if result != EnqueueOK {
		t.Fatalf("enqueue: got %v, want EnqueueOK", result)
	}

	// The node starts idle, so the first tick only arms the segment (no
	// step); the following 10000 ticks execute it.
	clock.Advance(10001)

	if got := gpio.PulseCount(n.config.StepPin[0]); got != 1000 {
		t.Errorf("pulse count: got %d, want 1000", got)
	}
	if got := n.position[0].Load(); got != 1000 {
		t.Errorf("position: got %d, want 1000", got)
	}
	if got := n.active.TimeRemaining.Load(); got != 0 {
		t.Errorf("timeRemaining: got %d, want 0", got)
	}
	if got := uint8(n.active.SegmentKey.Load()); got != 7 {
		t.Errorf("segmentKey: got %d, want 7", got)
	}
}

// S2 — 3-axis coordinated line: each axis's pulse count must equal its
// target exactly after the segment's 600 ticks.
func TestThreeAxisCoordinatedLine(t *testing.T) {
	n, gpio, clock := newTestNode(3, 8)

	result := n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{300, 200, 100}, SegmentTime: 600, SegmentKey: 1})
	if result != EnqueueOK {
		t.Fatalf("enqueue: got %v, want EnqueueOK", result)
	}

	clock.Advance(601) // one tick to arm from idle, then the full segment

	want := [3]int{300, 200, 100}
	for i, w := range want {
		if got := gpio.PulseCount(n.config.StepPin[i]); got != w {
			t.Errorf("axis %d pulse count: got %d, want %d", i, got, w)
		}
	}
}

// S3 — absolute after incremental: at ledger position 500, an absolute
// target of 800 (both in internal microsteps) must emit exactly 300 positive
// pulses and land on 800.
func TestAbsoluteAfterIncremental(t *testing.T) {
	n, gpio, clock := newTestNode(1, 8)
	n.position[0].Store(500)

	result := n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{800}, SegmentTime: 300, SegmentKey: 2, Absolute: true})
	if result != EnqueueOK {
		t.Fatalf("enqueue: got %v", result)
	}

	clock.Advance(301)

	if got := gpio.PulseCount(n.config.StepPin[0]); got != 300 {
		t.Errorf("pulse count: got %d, want 300", got)
	}
	if got := n.position[0].Load(); got != 800 {
		t.Errorf("position: got %d, want 800", got)
	}
}

// S4 — buffer full: the Nth enqueue into a buffer with usable capacity N-1
// must report full and leave writePosition unchanged.
func TestBufferFull(t *testing.T) {
	n, _, _ := newTestNode(1, 4) // usable capacity 3

	for i := 0; i < 3; i++ {
		if result := n.buffer.enqueue(MotionSegment{SegmentTime: 10, SegmentKey: uint8(i)}); result != EnqueueOK {
			t.Fatalf("enqueue %d: got %v, want EnqueueOK", i, result)
		}
	}

	before := n.buffer.writePosition.Load()
	result := n.buffer.enqueue(MotionSegment{SegmentTime: 10, SegmentKey: 99})
	if result != EnqueueFull {
		t.Fatalf("4th enqueue: got %v, want EnqueueFull", result)
	}
	if after := n.buffer.writePosition.Load(); after != before {
		t.Errorf("writePosition changed on full enqueue: %d -> %d", before, after)
	}
}

// S5 — sync gating: a waitForSync segment emits no pulses until a sync
// arrives, then begins executing.
func TestSyncGating(t *testing.T) {
	n, gpio, clock := newTestNode(1, 8)

	result := n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{100}, SegmentTime: 100, SegmentKey: 3, WaitForSync: true})
	if result != EnqueueOK {
		t.Fatalf("enqueue: got %v", result)
	}

	clock.Advance(100)
	if got := gpio.PulseCount(n.config.StepPin[0]); got != 0 {
		t.Fatalf("pulses before sync: got %d, want 0", got)
	}
	if !n.buffer.waitingForSync.Load() {
		t.Fatalf("waitingForSync: want true")
	}

	n.handleSync()

	clock.Advance(101) // one tick to load the now-released segment, then execute it
	if got := gpio.PulseCount(n.config.StepPin[0]); got != 100 {
		t.Errorf("pulses after sync: got %d, want 100", got)
	}
}

// S6 — sync realigns clock: while waiting, the clock phase must reset so
// the next tick begins a fresh period.
func TestSyncRealignsClock(t *testing.T) {
	n, _, clock := newTestNode(1, 8)

	n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{10}, SegmentTime: 10, WaitForSync: true})
	clock.Advance(5)

	if clock.Counter() != 5 {
		t.Fatalf("counter before sync: got %d, want 5", clock.Counter())
	}

	n.handleSync()

	if clock.Counter() != 0 {
		t.Errorf("counter after sync: got %d, want 0", clock.Counter())
	}
}

// Invariant 5 / sync monotonicity: a sync clears at most one buffered
// waitForSync segment, and it is the oldest one.
func TestSyncClearsOldestOnly(t *testing.T) {
	n, _, _ := newTestNode(1, 8)

	n.buffer.enqueue(MotionSegment{SegmentTime: 1, SegmentKey: 1, WaitForSync: true})
	n.buffer.enqueue(MotionSegment{SegmentTime: 1, SegmentKey: 2, WaitForSync: true})
	n.buffer.enqueue(MotionSegment{SegmentTime: 1, SegmentKey: 3, WaitForSync: true})

	if released := n.buffer.clearOldestWaiting(); !released {
		t.Fatalf("first clearOldestWaiting: want true")
	}

	slot1 := (int(n.buffer.readPosition.Load()) + 1) % n.buffer.cap()
	if n.buffer.slots[slot1].WaitForSync {
		t.Errorf("oldest segment still has WaitForSync set")
	}
	slot2 := (slot1 + 1) % n.buffer.cap()
	if !n.buffer.slots[slot2].WaitForSync {
		t.Errorf("second segment should still have WaitForSync set")
	}
}

// Round-trip property 6: enqueue then load yields the same segment back
// (absolute targets aside, which convert against current position).
func TestEnqueueLoadRoundTrip(t *testing.T) {
	n, _, _ := newTestNode(1, 8)

	seg := MotionSegment{Target: [MaxAxes]int32{42}, SegmentTime: 1234, SegmentKey: 9}
	if result := n.buffer.enqueue(seg); result != EnqueueOK {
		t.Fatalf("enqueue: got %v", result)
	}

	loaded, result := n.buffer.tryLoadNext()
	if result != LoadOK {
		t.Fatalf("tryLoadNext: got %v, want LoadOK", result)
	}
	if loaded != seg {
		t.Errorf("loaded segment %+v != enqueued %+v", loaded, seg)
	}
}

func TestEnableDriversReEnablesOnLoad(t *testing.T) {
	n, gpio, clock := newTestNode(1, 8)

	n.enableDrivers(false)
	if enabled, _ := gpio.GetPin(n.config.EnablePin[0]); enabled {
		t.Fatalf("drivers should start disabled")
	}

	n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{1}, SegmentTime: 2})
	clock.Advance(1)

	if enabled, _ := gpio.GetPin(n.config.EnablePin[0]); !enabled {
		t.Errorf("drivers should be enabled after a successful load")
	}
}

// Invariant 2: for all 0 <= K <= T <= 2^24, a segment with targetSteps=K,
// segmentTime=T emits exactly K step pulses over T ticks. Swept across the
// boundary cases (K=0, K=T, K=T-1) and near the 24-bit segmentTime ceiling.
func TestBresenhamStepCountProperty(t *testing.T) {
	cases := []struct {
		name string
		k, t uint32
	}{
		{"K=0,T=1", 0, 1},
		{"K=0,T=1000", 0, 1000},
		{"K=1,T=1", 1, 1},
		{"K=T,500,500", 500, 500},
		{"K=T-1,499,500", 499, 500},
		{"K=1000,T=10000", 1000, 10000},
		{"K=300,T=600", 300, 600},
		{"K=0,near 2^24", 0, (1 << 24) - 1},
		{"K=T-1,near 2^24", (1 << 24) - 2, (1 << 24) - 1},
		{"K=T,near 2^24", (1 << 24) - 1, (1 << 24) - 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, gpio, clock := newTestNode(1, 8)

			result := n.buffer.enqueue(MotionSegment{Target: [MaxAxes]int32{int32(c.k)}, SegmentTime: c.t})
			if result != EnqueueOK {
				t.Fatalf("enqueue: got %v, want EnqueueOK", result)
			}

			clock.Advance(int(c.t) + 1) // one tick to arm, then the full segment

			if got := gpio.PulseCount(n.config.StepPin[0]); got != int(c.k) {
				t.Errorf("pulse count: got %d, want %d", got, c.k)
			}
			if remaining := n.active.TimeRemaining.Load(); remaining != 0 {
				t.Errorf("timeRemaining: got %d, want 0", remaining)
			}
		})
	}
}

// Invariant 3: after a sequence of segments with no faults, position[i]
// equals the signed sum of direction*steps_emitted over the whole run, and
// (when every segment in the run is absolute) equals the final target too.
func TestPositionConservationAcrossSegmentChain(t *testing.T) {
	t.Run("mixed incremental and absolute", func(t *testing.T) {
		n, gpio, clock := newTestNode(1, 8)

		segs := []MotionSegment{
			{Target: [MaxAxes]int32{300}, SegmentTime: 300, SegmentKey: 1},                 // +300, full speed
			{Target: [MaxAxes]int32{-120}, SegmentTime: 200, SegmentKey: 2},                 // -120
			{Target: [MaxAxes]int32{500}, SegmentTime: 400, SegmentKey: 3, Absolute: true}, // position 180 -> 500, delta +320
		}
		for _, s := range segs {
			if result := n.buffer.enqueue(s); result != EnqueueOK {
				t.Fatalf("enqueue key %d: got %v, want EnqueueOK", s.SegmentKey, result)
			}
		}

		// one arming tick, then every segment's ticks run back-to-back: the
		// tick that drains one segment to zero also arms the next.
		clock.Advance(1 + 300 + 200 + 400)

		wantPosition := int32(300) + int32(-120) + int32(320)
		if got := n.position[0].Load(); got != wantPosition {
			t.Errorf("position: got %d, want %d (sum of direction*steps_emitted)", got, wantPosition)
		}

		wantPulses := 300 + 120 + 320
		if got := gpio.PulseCount(n.config.StepPin[0]); got != wantPulses {
			t.Errorf("pulse count: got %d, want %d", got, wantPulses)
		}
	})

	t.Run("all absolute chain lands on final target", func(t *testing.T) {
		n, _, clock := newTestNode(1, 8)

		segs := []MotionSegment{
			{Target: [MaxAxes]int32{1000}, SegmentTime: 1000, Absolute: true}, // 0 -> 1000
			{Target: [MaxAxes]int32{400}, SegmentTime: 600, Absolute: true},   // 1000 -> 400
			{Target: [MaxAxes]int32{900}, SegmentTime: 500, Absolute: true},   // 400 -> 900
		}
		for _, s := range segs {
			if result := n.buffer.enqueue(s); result != EnqueueOK {
				t.Fatalf("enqueue: got %v, want EnqueueOK", result)
			}
		}

		clock.Advance(1 + 1000 + 600 + 500)

		if got := n.position[0].Load(); got != 900 {
			t.Errorf("position: got %d, want 900 (final absolute target)", got)
		}
	})
}
