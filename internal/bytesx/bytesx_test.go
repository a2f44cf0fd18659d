package bytesx

import (
	"bytes"
	"testing"
)

func Test_GenRandomBytes(t *testing.T) {
	b, err := GenRandomBytes(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(b))
	}
	other, err := GenRandomBytes(16)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(b, other) {
		t.Fatal("two random draws should not collide")
	}
}

func TestReadWriteUint32(t *testing.T) {
	buf := &bytes.Buffer{}
	WriteUint32(buf, 0xdeadbeef)
	got, err := ReadUint32(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xdeadbeef {
		t.Fatalf("got %x, want %x", got, 0xdeadbeef)
	}
}

func TestReadUint32ShortBuffer(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x01, 0x02})
	if _, err := ReadUint32(buf); err == nil {
		t.Fatal("expected an error reading from a short buffer")
	}
}

func TestReadWriteUint16(t *testing.T) {
	buf := &bytes.Buffer{}
	WriteUint16(buf, 0xbeef)
	got, err := ReadUint16(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xbeef {
		t.Fatalf("got %x, want %x", got, 0xbeef)
	}
}

func TestReadUint16ShortBuffer(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x01})
	if _, err := ReadUint16(buf); err == nil {
		t.Fatal("expected an error reading from a short buffer")
	}
}
