package link

import (
	"github.com/amken3d/gestalt-node/core"
	"github.com/amken3d/gestalt-node/protocol"
)

// Router adapts a core.Node into a Receiver, translating decoded frames
// into HandlePacket calls and any accumulated reply bytes back into an
// encoded frame. It is the thin piece of "external collaborator" glue
// SPEC_FULL.md §6 describes between the link layer and the core: the core
// never imports this package.
type Router struct {
	Node    *core.Node
	Address uint8
}

// NewRouter returns a Router for node at the given bus address.
func NewRouter(node *core.Node, address uint8) *Router {
	return &Router{Node: node, Address: address}
}

// Receive implements Receiver. A frame not addressed to this router's
// node (and not a broadcast) never reaches here, since Bus filters by
// address before calling Receive.
func (r *Router) Receive(f Frame) []byte {
	var reply protocol.ScratchOutput
	r.Node.HandlePacket(f.Port, f.Payload, &reply)

	out := reply.Result()
	if len(out) == 0 {
		return nil
	}
	return Encode(Frame{
		Start:   StartUnicast,
		Address: r.Address,
		Port:    f.Port,
		Payload: out,
	})
}
