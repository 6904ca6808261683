package chunk

import (
	"bytes"
	"testing"
)

func TestBinaryChunkValuesSorted(t *testing.T) {
	c := NewBinaryChunk([][]byte{{0x03}, {0x01}, {0x02}})
	values := c.Values()
	want := [][]byte{{0x01}, {0x02}, {0x03}}
	for i, v := range values {
		if !bytes.Equal(v, want[i]) {
			t.Fatalf("values[%d] = %x, want %x", i, v, want[i])
		}
	}
}

func TestBinaryChunkStubSingleValue(t *testing.T) {
	c := NewBinaryChunk([][]byte{{0xde, 0xad, 0xbe, 0xef, 0x01}})
	stub, err := c.Stub()
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if stub != "0xdeadbeef_to_0xdeadbeef" {
		t.Fatalf("stub = %q", stub)
	}
}

func TestBinaryChunkStubRange(t *testing.T) {
	c := NewBinaryChunk([][]byte{
		{0x00, 0x00, 0x00, 0x01, 0x00},
		{0xff, 0xff, 0xff, 0xff, 0x00},
	})
	stub, err := c.Stub()
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if stub != "0x00000001_to_0xffffffff" {
		t.Fatalf("stub = %q", stub)
	}
}

func TestBinaryChunkEmptyIsError(t *testing.T) {
	c := NewBinaryChunk(nil)
	if _, err := c.MinValue(); err == nil {
		t.Fatal("expected error for empty chunk")
	}
}

func TestFormatBinaryItemShortValue(t *testing.T) {
	if _, err := FormatBinaryItem([]byte{0x01}); err == nil {
		t.Fatal("expected error formatting a value shorter than 4 bytes")
	}
}
