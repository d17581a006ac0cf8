// Package client is the host-side counterpart of core.Node: it issues
// stepRequest/getPosition/getStatus/sync calls over a link-layer transport
// and decodes their fixed-format replies. It plays the role the teacher's
// host/mcu.MCU plays for a Klipper MCU, reduced to this protocol's fixed
// port numbers — there is no dictionary to retrieve before a call can be
// made.
package client

import (
	"fmt"
	"time"

	"github.com/amken3d/gestalt-node/core"
	"github.com/amken3d/gestalt-node/host/monitor"
	"github.com/amken3d/gestalt-node/host/serial"
	"github.com/amken3d/gestalt-node/link"
	"github.com/amken3d/gestalt-node/protocol"
)

// Transport is anything a Client can exchange frames over: a live serial
// port or an in-process link.Bus address, interchangeably (SPEC_FULL.md
// §2b).
type Transport interface {
	WriteFrame(f link.Frame) error
	ReadFrame() (link.Frame, error)
}

// serialTransport adapts a serial.Port to Transport.
type serialTransport struct {
	port serial.Port
}

func (t *serialTransport) WriteFrame(f link.Frame) error { return link.WriteFrame(t.port, f) }
func (t *serialTransport) ReadFrame() (link.Frame, error) { return link.ReadFrame(t.port) }

// busTransport adapts a link.Bus to Transport, for host code talking to an
// in-process simulated node (cmd/nodesim) instead of real RS-485 hardware.
type busTransport struct {
	bus     *link.Bus
	address uint8
	replies chan link.Frame
}

func (t *busTransport) WriteFrame(f link.Frame) error {
	for _, raw := range t.bus.Transmit(link.Encode(f)) {
		if decoded, ok := link.Decode(raw); ok {
			t.replies <- decoded
		}
	}
	return nil
}

func (t *busTransport) ReadFrame() (link.Frame, error) {
	select {
	case f := <-t.replies:
		return f, nil
	case <-time.After(2 * time.Second):
		return link.Frame{}, fmt.Errorf("client: timed out waiting for reply")
	}
}

// StatusReply mirrors core's fixed 7-byte status layout (SPEC_FULL.md §4.6).
type StatusReply struct {
	StatusCode      uint8
	ActiveKey       uint8
	TimeRemaining   uint32
	ReadPosition    uint8
	WritePosition   uint8
}

// Client talks to exactly one node at a fixed bus address.
type Client struct {
	transport Transport
	address   uint8
	axes      int
}

// Dial opens a native serial connection to a node.
func Dial(device string, address uint8, axes int) (*Client, error) {
	port, err := serial.Open(serial.DefaultConfig(device))
	if err != nil {
		return nil, fmt.Errorf("client: open %s: %w", device, err)
	}
	return &Client{transport: &serialTransport{port: port}, address: address, axes: axes}, nil
}

// DialBus attaches to a node already attached to an in-process bus, for
// host/simulator integration tests and cmd/nodesim.
func DialBus(bus *link.Bus, address uint8, axes int) *Client {
	return &Client{
		transport: &busTransport{bus: bus, address: address, replies: make(chan link.Frame, 4)},
		address:   address,
		axes:      axes,
	}
}

// Snapshot implements host/monitor.Source: one getStatus call plus one
// getPosition call, folded into the shape the telemetry server broadcasts.
func (c *Client) Snapshot() (monitor.Snapshot, error) {
	status, err := c.GetStatus()
	if err != nil {
		return monitor.Snapshot{}, err
	}
	pos, err := c.GetPosition(c.axes)
	if err != nil {
		return monitor.Snapshot{}, err
	}
	return monitor.Snapshot{
		SegmentKey:    status.ActiveKey,
		TimeRemaining: status.TimeRemaining,
		Position:      pos,
		ReadPosition:  status.ReadPosition,
		WritePosition: status.WritePosition,
	}, nil
}

func (c *Client) call(port uint8, payload []byte) (link.Frame, error) {
	if err := c.transport.WriteFrame(link.Frame{
		Start:   link.StartUnicast,
		Address: c.address,
		Port:    port,
		Payload: payload,
	}); err != nil {
		return link.Frame{}, err
	}
	return c.transport.ReadFrame()
}

// EnableDrivers sends the enableDrivers port request.
func (c *Client) EnableDrivers(enable bool) error {
	var b byte
	if enable {
		b = 1
	}
	_, err := c.call(core.PortEnableDrivers, []byte{b})
	return err
}

// StepRequest enqueues one motion segment and returns the decoded status
// reply (SPEC_FULL.md §4.2/§4.6). targets is host-visible units, already
// shifted by the node's SmoothingBits on the node side.
func (c *Client) StepRequest(targets []int32, segmentTime uint32, segmentKey uint8, absolute, waitForSync bool) (StatusReply, error) {
	payload := make([]byte, 3*len(targets)+3+1+1+1)
	off := 0
	for _, t := range targets {
		protocol.WriteInt24(payload, off, t)
		off += 3
	}
	protocol.WriteUint24(payload, off, segmentTime)
	off += 3
	payload[off] = segmentKey
	off++
	payload[off] = boolByte(absolute)
	off++
	payload[off] = boolByte(waitForSync)

	f, err := c.call(core.PortStepRequest, payload)
	if err != nil {
		return StatusReply{}, err
	}
	return decodeStatus(f.Payload)
}

// GetPosition returns the current host-visible position for each axis.
func (c *Client) GetPosition(axes int) ([]int32, error) {
	f, err := c.call(core.PortGetPosition, nil)
	if err != nil {
		return nil, err
	}
	if len(f.Payload) < 3*axes {
		return nil, fmt.Errorf("client: short getPosition reply (%d bytes)", len(f.Payload))
	}
	out := make([]int32, axes)
	for i := 0; i < axes; i++ {
		out[i] = protocol.ReadInt24(f.Payload, i*3)
	}
	return out, nil
}

// GetStatus returns the node's current status reply.
func (c *Client) GetStatus() (StatusReply, error) {
	f, err := c.call(core.PortGetStatus, nil)
	if err != nil {
		return StatusReply{}, err
	}
	return decodeStatus(f.Payload)
}

// Sync sends the broadcast sync event. Unlike other calls, a sync is
// addressed to every node on the bus and expects no reply.
func (c *Client) Sync() error {
	return c.transport.WriteFrame(link.Frame{
		Start:   link.StartBroadcast,
		Address: c.address,
		Port:    core.PortSync,
	})
}

func decodeStatus(payload []byte) (StatusReply, error) {
	if len(payload) < 7 {
		return StatusReply{}, fmt.Errorf("client: short status reply (%d bytes)", len(payload))
	}
	return StatusReply{
		StatusCode:    payload[0],
		ActiveKey:     payload[1],
		TimeRemaining: protocol.ReadUint24(payload, 2),
		ReadPosition:  payload[5],
		WritePosition: payload[6],
	}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
