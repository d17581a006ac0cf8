package core

import "sync"

// RecordingGPIO is a GPIODriver with no backing hardware: it remembers the
// last value written to each pin and counts each pin's low-to-high
// transitions. It is the "recorder in tests" the NewNode doc comment
// mentions, and doubles as the driver cmd/nodesim uses to
// run a node with no real stepper hardware attached.
type RecordingGPIO struct {
	mu    sync.Mutex
	pins  map[GPIOPin]bool
	pulses map[GPIOPin]int
}

// NewRecordingGPIO returns an empty recorder.
func NewRecordingGPIO() *RecordingGPIO {
	return &RecordingGPIO{pins: make(map[GPIOPin]bool), pulses: make(map[GPIOPin]int)}
}

func (r *RecordingGPIO) ConfigureOutput(pin GPIOPin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[pin] = false
	return nil
}

func (r *RecordingGPIO) ConfigureInputPullUp(pin GPIOPin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[pin] = true
	return nil
}

func (r *RecordingGPIO) ConfigureInputPullDown(pin GPIOPin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[pin] = false
	return nil
}

func (r *RecordingGPIO) SetPin(pin GPIOPin, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.pins[pin]
	r.pins[pin] = value
	if !prev && value {
		r.pulses[pin]++
	}
	return nil
}

func (r *RecordingGPIO) GetPin(pin GPIOPin) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pins[pin], nil
}

func (r *RecordingGPIO) ReadPin(pin GPIOPin) bool {
	v, _ := r.GetPin(pin)
	return v
}

// PulseCount returns the number of low-to-high transitions seen on pin,
// i.e. the number of step pulses emitted if pin is a step pin.
func (r *RecordingGPIO) PulseCount(pin GPIOPin) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pulses[pin]
}
