// Package protocol implements the wire-level packet codec and byte-buffer
// plumbing shared by a motion-control node and its host: fixed-offset
// integer encoding (codec.go) plus the scratch output buffer (buffers.go)
// that replies are built in.
package protocol

// Version identifies this protocol revision for diagnostic purposes only;
// it is never negotiated on the wire (SPEC_FULL.md §6 ports are fixed at
// compile time, not negotiated).
const Version = "1.0.0"

// MessageMax bounds the scratch output buffer used to build a reply before
// handing it to the link layer for framing and transmission.
const MessageMax = 512
