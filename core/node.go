package core

import "sync/atomic"

// NodeConfig parameterises one node at construction time: axis count,
// buffer sizing, microstep smoothing, and GPIO pin assignment. All buffers
// implied by a NodeConfig are sized once in NewNode and never grow; the step
// generator allocates nothing afterward (SPEC_FULL.md §1 Non-goals). The
// debug helpers in debug.go do allocate when used.
type NodeConfig struct {
	// Axes is the number of steppers this node drives: 1 or 3.
	Axes uint8

	// BufferCapacity is the motion buffer's slot count (usable capacity is
	// BufferCapacity-1). Zero selects the reference sizing from the
	// original firmware: 48 for a 1-axis node, 32 for a 3-axis node.
	BufferCapacity int

	// SmoothingBits is the left-shift between host-visible steps and
	// internal microsteps. Typically 2.
	SmoothingBits uint8

	// StepPin, DirPin and EnablePin are indexed by axis (0..Axes-1).
	StepPin   [MaxAxes]GPIOPin
	DirPin    [MaxAxes]GPIOPin
	EnablePin [MaxAxes]GPIOPin

	// InvertDir and InvertEnable flip the logical sense of the direction and
	// enable outputs, matching the stepper driver wiring in use.
	InvertDir    bool
	InvertEnable bool

	// Descriptor is the opaque, host-supplied identity string carried for
	// introspection only (SPEC_FULL.md §6 non-volatile state). The core
	// never parses or acts on it.
	Descriptor string

	// ExternalService, if set, is consulted for the getVRef/setVRef/PWM
	// ports (SPEC_FULL.md §4.5: "external-collaborator services; not part
	// of the core"). If nil, those ports are silently ignored like any
	// other unrecognized port (SPEC_FULL.md §9).
	ExternalService func(port uint8, payload []byte) (reply []byte, handled bool)
}

// defaultBufferCapacity returns the reference motion buffer sizing for a
// node with the given axis count (SPEC_FULL.md §3).
func defaultBufferCapacity(axes uint8) int {
	if axes == 1 {
		return 48
	}
	return 32
}

// Node is the per-instance aggregate owning one node's motion buffer, active
// segment, position ledger, and port dispatch table (SPEC_FULL.md §2a). A
// Node is the single owned "Controller" aggregate SPEC_FULL.md §9 asks for:
// the step generator (ISR context) and the service handlers (foreground
// context) both operate on this same struct, synchronized only through the
// atomic fields and critical-section primitives their respective paths use.
type Node struct {
	config NodeConfig
	gpio   GPIODriver
	clock  Clock

	buffer *motionBuffer
	active ActiveSegment

	// position is ISR-owned; the foreground reads it only for getPosition
	// and status replies, hence atomic (SPEC_FULL.md §5).
	position [MaxAxes]atomic.Int32

	driversEnabled atomic.Bool
	totalSteps     atomic.Uint64

	dispatch map[uint8]portHandler
}

// NewNode constructs a node ready to receive packets and run its step
// generator once Start is called. gpio and clock are injected capabilities
// (SPEC_FULL.md §9: "abstract as a Gpio capability... map onto real
// registers on target, onto a recorder in tests").
func NewNode(cfg NodeConfig, gpio GPIODriver, clock Clock) *Node {
	if cfg.Axes == 0 {
		cfg.Axes = 1
	}
	if cfg.BufferCapacity == 0 {
		cfg.BufferCapacity = defaultBufferCapacity(cfg.Axes)
	}
	if cfg.SmoothingBits == 0 {
		cfg.SmoothingBits = 2
	}

	n := &Node{
		config: cfg,
		gpio:   gpio,
		clock:  clock,
		buffer: newMotionBuffer(cfg.BufferCapacity),
	}

	for i := 0; i < int(cfg.Axes); i++ {
		_ = gpio.ConfigureOutput(cfg.StepPin[i])
		_ = gpio.ConfigureOutput(cfg.DirPin[i])
		_ = gpio.ConfigureOutput(cfg.EnablePin[i])
	}
	n.enableDrivers(false)

	n.dispatch = n.buildDispatch()
	return n
}

// Config returns the node's construction-time configuration.
func (n *Node) Config() NodeConfig {
	return n.config
}

// Start registers the step generator with the node's clock so that it fires
// once per clock period; the period is set when the Clock is constructed.
// See clock.go for the host/TinyGo split.
func (n *Node) Start() {
	n.clock.Start(n.tick)
}

// Stop detaches the step generator from the clock. No segment in progress
// is aborted; it simply stops advancing (SPEC_FULL.md §5 cancellation).
func (n *Node) Stop() {
	n.clock.Stop()
}

// Position returns the current host-visible position for axis i (internal
// microsteps shifted right by SmoothingBits), matching the getPosition
// service and SPEC_FULL.md §6's position reply units.
func (n *Node) Position(axis int) int32 {
	return n.position[axis].Load() >> n.config.SmoothingBits
}

// TotalSteps returns the number of step pulses emitted since construction,
// for debug/telemetry use only.
func (n *Node) TotalSteps() uint64 {
	return n.totalSteps.Load()
}
