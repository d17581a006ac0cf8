package core

// Descriptor is the capability summary a node exposes for host
// introspection (SPEC_FULL.md §6 non-volatile state): axis count, buffer
// sizing, microstep smoothing, and the fixed port map. It is a light
// stand-in for the teacher's negotiated MCU dictionary, reduced to the
// handful of facts a fixed-port wire contract still needs a host to know
// before it can talk to a node at all.
type Descriptor struct {
	Axes           uint8             `json:"axes"`
	BufferCapacity int               `json:"buffer_capacity"`
	SmoothingBits  uint8             `json:"smoothing_bits"`
	Descriptor     string            `json:"descriptor"`
	Ports          map[string]uint8  `json:"ports"`
}

// Describe builds the Descriptor for this node from its current
// configuration. Unlike the teacher's dictionary, it is computed on demand
// from constants and NodeConfig rather than retrieved in chunks over the
// wire. No port serves it; only in-process callers can read it.
func (n *Node) Describe() Descriptor {
	cfg := n.Config()
	return Descriptor{
		Axes:           cfg.Axes,
		BufferCapacity: cfg.BufferCapacity,
		SmoothingBits:  cfg.SmoothingBits,
		Descriptor:     cfg.Descriptor,
		Ports: map[string]uint8{
			"sync":          PortSync,
			"vRef":          PortVRef,
			"enableDrivers": PortEnableDrivers,
			"stepRequest":   PortStepRequest,
			"getPosition":   PortGetPosition,
			"getStatus":     PortGetStatus,
			"pwm":           PortPWM,
		},
	}
}
