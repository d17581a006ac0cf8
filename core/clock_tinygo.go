//go:build tinygo

package core

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// RP2040/RP2350 TIMER peripheral registers used to drive a self-rearming
// alarm at a fixed period, the hardware equivalent of the original
// firmware's TIMER1 CTC-mode interrupt (SPEC_FULL.md §4.4). Registers are
// accessed as raw volatile.Register32 values through unsafe.Pointer.
const (
	timerBase      = 0x40054000
	timerTIMERAWL  = timerBase + 0x0C // free-running 1MHz counter, low word
	timerALARM0    = timerBase + 0x10
	timerINTR      = timerBase + 0x34 // raw interrupt status
	timerINTE      = timerBase + 0x38 // interrupt enable
	alarm0IRQ      = 0
)

var (
	hwTimerRAWL  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	hwAlarm0     = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM0)))
	hwTimerINTR  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	hwTimerINTE  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

// HardwareClock drives the step generator from the RP2040 timer's ALARM0,
// rearmed from inside the handler so it fires every periodUs microseconds
// indefinitely — the same fixed-period behavior as an AVR TIMER1 in CTC
// mode, expressed with a 32-bit target's free-running counter instead of a
// reload register.
type HardwareClock struct {
	periodUs uint32
	tick     func()
	counter  uint32
	irq      interrupt.Interrupt
}

// NewHardwareClock returns a clock that fires every periodUs microseconds.
func NewHardwareClock(periodUs uint32) *HardwareClock {
	return &HardwareClock{periodUs: periodUs}
}

var activeHardwareClock *HardwareClock

func (c *HardwareClock) Start(tick func()) {
	c.tick = tick
	activeHardwareClock = c
	c.irq = interrupt.New(alarm0IRQ, hardwareClockHandler)
	c.irq.SetPriority(0)
	c.irq.Enable()
	c.arm()
}

func (c *HardwareClock) Stop() {
	hwTimerINTE.Set(0)
	c.irq.Disable()
	activeHardwareClock = nil
}

func (c *HardwareClock) ResetPhase() {
	c.counter = 0
	c.arm()
}

func (c *HardwareClock) Counter() uint32 {
	return c.counter
}

func (c *HardwareClock) arm() {
	hwAlarm0.Set(hwTimerRAWL.Get() + c.periodUs)
	hwTimerINTE.Set(1 << alarm0IRQ)
}

// hardwareClockHandler is the actual interrupt entry point. It rearms the
// alarm for the next period before invoking tick, so jitter in the handler
// body never accumulates phase drift across ticks.
func hardwareClockHandler(intr interrupt.Interrupt) {
	hwTimerINTR.Set(1 << alarm0IRQ) // acknowledge
	c := activeHardwareClock
	if c == nil {
		return
	}
	c.counter++
	c.arm()
	if c.tick != nil {
		c.tick()
	}
}
