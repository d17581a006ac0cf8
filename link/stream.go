package link

import (
	"fmt"
	"io"
)

// WriteFrame encodes f and writes it to w in one call, for transports like
// host/serial.Port where each write is a discrete chunk.
func WriteFrame(w io.Writer, f Frame) error {
	_, err := w.Write(Encode(f))
	return err
}

// ReadFrame reads exactly one frame from r. Unlike Decode, which operates on
// an already-delimited buffer (as Bus.Transmit does), ReadFrame has to
// discover the frame boundary itself from a byte stream: it reads the fixed
// header first, pulls the length out of it, then reads exactly that many
// more bytes. This is the stream-framing counterpart Bus doesn't need,
// since every Bus.Transmit call already receives one complete frame.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, fmt.Errorf("link: read header: %w", err)
	}
	length := int(header[3])
	if length < headerLen+crcLen {
		return Frame{}, fmt.Errorf("link: invalid frame length %d", length)
	}
	buf := make([]byte, length)
	copy(buf, header)
	if _, err := io.ReadFull(r, buf[headerLen:]); err != nil {
		return Frame{}, fmt.Errorf("link: read body: %w", err)
	}
	f, ok := Decode(buf)
	if !ok {
		return Frame{}, fmt.Errorf("link: checksum mismatch")
	}
	return f, nil
}
