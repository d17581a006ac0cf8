package core

import "github.com/amken3d/gestalt-node/protocol"

// Port map (SPEC_FULL.md §6). These numbers are fixed for wire
// compatibility with existing host software and must never be
// renumbered.
const (
	PortSync          uint8 = 8
	PortVRef          uint8 = 11 // getVRef and setVRef share a port; external collaborator
	PortEnableDrivers uint8 = 12
	PortStepRequest   uint8 = 13
	PortGetPosition   uint8 = 14
	PortGetStatus     uint8 = 15
	PortPWM           uint8 = 16 // external collaborator
)

// StatusOK and StatusFull are the two values the statusCode byte of a
// status reply can carry: 1 for a normal getStatus or accepted stepRequest,
// 0 when a stepRequest found the buffer full (SPEC_FULL.md §7).
const (
	StatusFull uint8 = 0
	StatusOK   uint8 = 1
)

type portHandler func(n *Node, port uint8, payload []byte, reply *protocol.ScratchOutput)

// buildDispatch returns the fixed port->handler table described in
// SPEC_FULL.md §9: "table of port -> handler; unknown ports are silently
// ignored." The table is built once in NewNode and never mutated, which is
// the departure from the teacher's runtime-registered CommandRegistry this
// repository's DESIGN.md documents: these port numbers are a wire contract
// fixed at compile time, not a negotiated dictionary.
func (n *Node) buildDispatch() map[uint8]portHandler {
	d := map[uint8]portHandler{
		PortEnableDrivers: (*Node).handleEnableDrivers,
		PortStepRequest:   (*Node).handleStepRequest,
		PortGetPosition:   (*Node).handleGetPosition,
		PortGetStatus:     (*Node).handleGetStatus,
		PortSync:          (*Node).handleSyncPort,
		PortVRef:          (*Node).handleExternalService,
		PortPWM:           (*Node).handleExternalService,
	}
	return d
}

// HandlePacket is the entry point a link-layer collaborator calls for every
// inbound packet addressed to this node (SPEC_FULL.md §6: "a dispatcher
// that invokes userPacketRouter(destinationPort)"). reply accumulates
// whatever bytes the handler wants to send back; it is left empty if the
// handler has nothing to say (e.g. sync) or the port is unrecognized.
func (n *Node) HandlePacket(port uint8, payload []byte, reply *protocol.ScratchOutput) {
	handler, ok := n.dispatch[port]
	if !ok {
		return // unknown ports are silently ignored
	}
	handler(n, port, payload, reply)
}

func (n *Node) handleEnableDrivers(_ uint8, payload []byte, _ *protocol.ScratchOutput) {
	if len(payload) < 1 {
		return
	}
	n.enableDrivers(payload[0] != 0)
}

// handleStepRequest decodes a stepRequest payload (N x int24 targets, then
// uint24 segmentTime, uint8 segmentKey, uint8 absolute, uint8 waitForSync)
// and enqueues it, applying the SmoothingBits left shift at enqueue time
// per SPEC_FULL.md §4.5. The reply is a status reply whose statusCode is
// the enqueue result.
func (n *Node) handleStepRequest(_ uint8, payload []byte, reply *protocol.ScratchOutput) {
	axes := int(n.config.Axes)
	var seg MotionSegment
	off := 0
	for i := 0; i < axes; i++ {
		seg.Target[i] = protocol.ReadInt24(payload, off) << n.config.SmoothingBits
		off += 3
	}
	seg.SegmentTime = protocol.ReadUint24(payload, off)
	off += 3
	seg.SegmentKey = payload[off]
	off++
	seg.Absolute = payload[off] != 0
	off++
	seg.WaitForSync = payload[off] != 0

	result := n.buffer.enqueue(seg)
	if result == EnqueueOK {
		RecordTiming(EvtEnqueue, seg.SegmentKey, uint32(n.buffer.occupied()), 0)
	}
	n.writeStatusReply(reply, uint8(result))
}

func (n *Node) handleGetPosition(_ uint8, _ []byte, reply *protocol.ScratchOutput) {
	buf := make([]byte, 3*int(n.config.Axes))
	for i := 0; i < int(n.config.Axes); i++ {
		protocol.WriteInt24(buf, i*3, n.Position(i))
	}
	reply.Output(buf)
}

func (n *Node) handleGetStatus(_ uint8, _ []byte, reply *protocol.ScratchOutput) {
	n.writeStatusReply(reply, StatusOK)
}

// writeStatusReply formats the fixed 7-byte status layout (SPEC_FULL.md
// §4.6): [statusCode, activeSegmentKey, timeRemaining_lo/mid/hi,
// readPosition, writePosition]. The active segment's key and timeRemaining
// are read together so a concurrent step-generator load cannot make them
// describe two different segments; the buffer indices are read after the
// critical section. On TinyGo the critical section genuinely
// excludes the step generator for the read, on the host build the fields
// are already atomics so the snapshot is merely "recent", never torn.
func (n *Node) writeStatusReply(reply *protocol.ScratchOutput, statusCode uint8) {
	state := disableInterrupts()
	key := uint8(n.active.SegmentKey.Load())
	remaining := n.active.TimeRemaining.Load()
	restoreInterrupts(state)

	buf := make([]byte, 7)
	buf[0] = statusCode
	buf[1] = key
	protocol.WriteUint24(buf, 2, remaining)
	buf[5] = byte(n.buffer.readPosition.Load())
	buf[6] = byte(n.buffer.writePosition.Load())
	reply.Output(buf)
}

func (n *Node) handleSyncPort(_ uint8, _ []byte, _ *protocol.ScratchOutput) {
	n.handleSync()
}

func (n *Node) handleExternalService(port uint8, payload []byte, reply *protocol.ScratchOutput) {
	if n.config.ExternalService == nil {
		return
	}
	if out, handled := n.config.ExternalService(port, payload); handled {
		reply.Output(out)
	}
}
