package protocol

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 255, 256, 0x1234, 0xFFFF}
	for _, v := range cases {
		buf := make([]byte, 4)
		WriteUint16(buf, 1, v)
		got := ReadUint16(buf, 1)
		if got != v {
			t.Errorf("WriteUint16/ReadUint16(%d): got %d", v, got)
		}
	}
}

func TestUint24RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 255, 0x00FFFF, 0x7FFFFF, 0xFFFFFF}
	for _, v := range cases {
		buf := make([]byte, 5)
		WriteUint24(buf, 1, v)
		got := ReadUint24(buf, 1)
		if got != v {
			t.Errorf("WriteUint24/ReadUint24(%d): got %d", v, got)
		}
	}
}

func TestInt24RoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 1000, -1000, 1<<23 - 1, -(1 << 23)}
	for _, v := range cases {
		buf := make([]byte, 5)
		WriteInt24(buf, 1, v)
		got := ReadInt24(buf, 1)
		if got != v {
			t.Errorf("WriteInt24/ReadInt24(%d): got %d", v, got)
		}
	}
}

func TestInt24SignExtension(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF}
	got := ReadInt24(buf, 0)
	if got != -1 {
		t.Errorf("ReadInt24(0xFFFFFF) = %d, want -1", got)
	}

	buf2 := []byte{0x00, 0x00, 0x80}
	got2 := ReadInt24(buf2, 0)
	if got2 != -(1 << 23) {
		t.Errorf("ReadInt24(0x800000) = %d, want %d", got2, -(1 << 23))
	}
}

func TestWriteInt24Offset(t *testing.T) {
	buf := make([]byte, 10)
	WriteInt24(buf, 3, -500)
	WriteInt24(buf, 6, 500)
	if got := ReadInt24(buf, 3); got != -500 {
		t.Errorf("offset 3: got %d, want -500", got)
	}
	if got := ReadInt24(buf, 6); got != 500 {
		t.Errorf("offset 6: got %d, want 500", got)
	}
}
