package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeHeaderLayout(t *testing.T) {
	f := PCM16(16000, 1)
	header := EncodeHeader(f)

	if len(header) != 44 {
		t.Fatalf("expected 44-byte header for extra-free format, got %d", len(header))
	}
	if string(header[0:4]) != "RIFF" {
		t.Fatalf("expected RIFF tag, got %q", header[0:4])
	}
	if binary.LittleEndian.Uint32(header[4:8]) != 0 {
		t.Fatalf("RIFF size must be a zero placeholder")
	}
	if string(header[8:12]) != "WAVE" {
		t.Fatalf("expected WAVE tag, got %q", header[8:12])
	}
	if string(header[12:16]) != "fmt " {
		t.Fatalf("expected fmt tag, got %q", header[12:16])
	}
	if got := binary.LittleEndian.Uint32(header[16:20]); got != 16 {
		t.Fatalf("expected fmt chunk size 16, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(header[20:22]); got != FormatTagPCM {
		t.Fatalf("expected PCM tag, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(header[24:28]); got != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", got)
	}
	if string(header[36:40]) != "data" {
		t.Fatalf("expected data tag, got %q", header[36:40])
	}
	if binary.LittleEndian.Uint32(header[40:44]) != 0 {
		t.Fatalf("data size must be a zero placeholder")
	}
}

func TestEncodeHeaderCarriesExtraBytes(t *testing.T) {
	f := PCM16(8000, 1)
	f.Extra = []byte{0xDE, 0xAD, 0xBE, 0xEF}
	header := EncodeHeader(f)

	if len(header) != 48 {
		t.Fatalf("expected 48-byte header with 4 extra bytes, got %d", len(header))
	}
	if got := binary.LittleEndian.Uint32(header[16:20]); got != 20 {
		t.Fatalf("expected fmt chunk size 20, got %d", got)
	}
	if !bytes.Equal(header[36:40], f.Extra) {
		t.Fatalf("extra format bytes not carried verbatim: %x", header[36:40])
	}
}

func TestEncodeHeaderDeterministic(t *testing.T) {
	f := PCM16(44100, 2)
	first := EncodeHeader(f)
	second := EncodeHeader(f)
	if !bytes.Equal(first, second) {
		t.Fatalf("header synthesis must be byte-identical for identical input")
	}
}

func TestPreferredBufferSize(t *testing.T) {
	f := PCM16(16000, 1) // block align 2
	if got := f.PreferredBufferSize(100); got != 3200 {
		t.Fatalf("expected 3200-byte capacity, got %d", got)
	}
	if got := PCM16(8000, 1).PreferredBufferSize(600); got != 9600 {
		t.Fatalf("expected 9600-byte capacity, got %d", got)
	}
}
