package link

import (
	"testing"

	"github.com/amken3d/gestalt-node/core"
	"github.com/amken3d/gestalt-node/protocol"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Start: StartUnicast, Address: 3, Port: 13, Payload: []byte{1, 2, 3, 4}}
	encoded := Encode(f)

	decoded, ok := Decode(encoded)
	if !ok {
		t.Fatalf("Decode: want ok")
	}
	if decoded.Start != f.Start || decoded.Address != f.Address || decoded.Port != f.Port {
		t.Errorf("decoded header mismatch: %+v != %+v", decoded, f)
	}
	if string(decoded.Payload) != string(f.Payload) {
		t.Errorf("decoded payload mismatch: %v != %v", decoded.Payload, f.Payload)
	}
}

func TestDecodeRejectsCorruptFrame(t *testing.T) {
	f := Frame{Start: StartUnicast, Address: 1, Port: 1, Payload: []byte{9}}
	encoded := Encode(f)
	encoded[len(encoded)-1] ^= 0xFF // corrupt the checksum

	if _, ok := Decode(encoded); ok {
		t.Errorf("Decode: want !ok for corrupted checksum")
	}
}

func newSyncableNode(t *testing.T) (*core.Node, *core.FakeClock) {
	t.Helper()
	gpio := core.NewRecordingGPIO()
	clock := core.NewFakeClock()
	n := core.NewNode(core.NodeConfig{Axes: 1, BufferCapacity: 8}, gpio, clock)
	n.Start()
	return n, clock
}

// S7 — multi-node bus sync: a single broadcast sync releases exactly one
// waiting segment on every attached node, and every node's clock phase
// resets in the same tick.
func TestBusBroadcastSyncReleasesAllNodes(t *testing.T) {
	bus := NewBus()

	nodeA, clockA := newSyncableNode(t)
	nodeB, clockB := newSyncableNode(t)
	bus.Attach(1, NewRouter(nodeA, 1))
	bus.Attach(2, NewRouter(nodeB, 2))

	var reply protocol.ScratchOutput

	// Enqueue a waitForSync segment directly on each node's stepRequest port.
	payload := make([]byte, 3+3+1+1+1)
	protocol.WriteInt24(payload, 0, 50)
	protocol.WriteUint24(payload, 3, 200) // 50 host steps = 200 microsteps, at most one per tick
	payload[6] = 1  // segmentKey
	payload[7] = 0  // absolute
	payload[8] = 1  // waitForSync
	nodeA.HandlePacket(core.PortStepRequest, payload, &reply)
	reply.Reset()
	nodeB.HandlePacket(core.PortStepRequest, payload, &reply)

	clockA.Advance(10)
	clockB.Advance(10)

	syncFrame := Encode(Frame{Start: StartBroadcast, Port: core.PortSync})
	bus.Transmit(syncFrame)

	if clockA.Counter() != 0 {
		t.Errorf("node A counter after sync: got %d, want 0", clockA.Counter())
	}
	if clockB.Counter() != 0 {
		t.Errorf("node B counter after sync: got %d, want 0", clockB.Counter())
	}

	clockA.Advance(201)
	clockB.Advance(201)

	if got := nodeA.Position(0); got != 50 {
		t.Errorf("node A position: got %d, want 50", got)
	}
	if got := nodeB.Position(0); got != 50 {
		t.Errorf("node B position: got %d, want 50", got)
	}
}

// S8 — codec round-trip at the frame boundary: routing a stepRequest
// through link.Encode/Bus/Decode/Router must produce the identical status
// reply as calling HandlePacket directly with the same payload.
func TestFrameBoundaryTransparentToCore(t *testing.T) {
	payload := make([]byte, 3+3+1+1+1)
	protocol.WriteInt24(payload, 0, 777)
	protocol.WriteUint24(payload, 3, 1000)
	payload[6] = 5
	payload[7] = 0
	payload[8] = 0

	direct, _ := newSyncableNode(t)
	var directReply protocol.ScratchOutput
	direct.HandlePacket(core.PortStepRequest, payload, &directReply)

	viaLink, _ := newSyncableNode(t)
	router := NewRouter(viaLink, 9)
	bus := NewBus()
	bus.Attach(9, router)
	replies := bus.Transmit(Encode(Frame{Start: StartUnicast, Address: 9, Port: core.PortStepRequest, Payload: payload}))

	if len(replies) != 1 {
		t.Fatalf("bus replies: got %d, want 1", len(replies))
	}
	decoded, ok := Decode(replies[0])
	if !ok {
		t.Fatalf("Decode reply: want ok")
	}
	if string(decoded.Payload) != string(directReply.Result()) {
		t.Errorf("reply payload mismatch: %v != %v", decoded.Payload, directReply.Result())
	}
}
