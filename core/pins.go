package core

// stepPulseMinWidthNs is the driver chip's minimum step-pulse width
// (SPEC_FULL.md §6: "minimum 1 µs step-pulse width"). The step generator
// itself does not sleep for this on a real target — pulse width there comes
// from instruction timing, not a delay loop. RecordingGPIO counts pulses but
// does not record their width.
const stepPulseMinWidthNs = 1000

// enableDrivers asserts or clears the enable line for every configured
// axis, honoring InvertEnable. A no-op call (already in the requested state)
// still re-asserts the pins; this matches SPEC_FULL.md §4.3 step 5, where a
// successful load always re-enables drivers even if they were never
// disabled.
func (n *Node) enableDrivers(enable bool) {
	n.driversEnabled.Store(enable)
	level := enable
	if n.config.InvertEnable {
		level = !level
	}
	for i := 0; i < int(n.config.Axes); i++ {
		_ = n.gpio.SetPin(n.config.EnablePin[i], level)
	}
}

// setDirection drives axis i's direction pin from the sign stored in the
// active segment's StepperState.
func (n *Node) setDirection(axis int, direction int32) {
	forward := direction >= 0
	if n.config.InvertDir {
		forward = !forward
	}
	_ = n.gpio.SetPin(n.config.DirPin[axis], forward)
}

// pulseSteps asserts the step pin for every axis set in mask, then clears
// them. SPEC_FULL.md §4.4.1.c: "Pulse step pins for all axes in stepMask
// simultaneously: set high, hold >= 1 microsecond, set low." The fake GPIO
// used in tests records the pulse; a hardware GPIODriver is expected to
// provide a pulse width at least stepPulseMinWidthNs by its own timing.
func (n *Node) pulseSteps(mask uint8) {
	if mask == 0 {
		return
	}
	for i := 0; i < int(n.config.Axes); i++ {
		if mask&(1<<i) != 0 {
			_ = n.gpio.SetPin(n.config.StepPin[i], true)
		}
	}
	for i := 0; i < int(n.config.Axes); i++ {
		if mask&(1<<i) != 0 {
			_ = n.gpio.SetPin(n.config.StepPin[i], false)
		}
	}
}
