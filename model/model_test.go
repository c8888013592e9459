package model

import (
	"bytes"
	"testing"
)

func TestLayoutFlattening(t *testing.T) {
	kb, err := NewKeyboard("flat", 1, 2, []byte{0x01}, 32,
		[][]string{{"ESC", "F1"}, {"A", "NAN", "B"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if kb.KeyCount() != 5 {
		t.Fatalf("key count %d, expected 5", kb.KeyCount())
	}

	checks := map[string]int{"ESC": 0, "F1": 1, "A": 2, "B": 4}
	for label, expected := range checks {
		index, isPresent := kb.IndexForKey(label)
		if !isPresent || index != expected {
			t.Fatalf("IndexForKey(%s) = %d,%v, expected %d", label, index, isPresent, expected)
		}
	}
	if _, isPresent := kb.IndexForKey("NAN"); isPresent {
		t.Fatal("placeholder label resolved to an index")
	}
	if _, isPresent := kb.IndexForKey("MISSING"); isPresent {
		t.Fatal("unknown label resolved to an index")
	}
}

func TestEncodeStaticSingleColor(t *testing.T) {
	// Three keys, one of them a placeholder, one byte header, padded
	// to thirteen bytes
	kb, err := NewKeyboard("enc", 1, 2, []byte{0x01}, 13,
		[][]string{{"A", "B", "NAN"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	frame := NewFrame(3)
	frame.Fill(RgbColor{R: 0x10, G: 0x20, B: 0x30})

	payload, encErr := kb.EncodeFrame(frame)
	if encErr != nil {
		t.Fatalf("encode failed: %v", encErr)
	}

	expected := []byte{0x01, 0x10, 0x20, 0x30, 0x10, 0x20, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(payload, expected) {
		t.Fatalf("payload %x, expected %x", payload, expected)
	}
	if len(payload) != kb.PacketLength() {
		t.Fatalf("payload length %d, expected packet length %d", len(payload), kb.PacketLength())
	}
}

func TestEncodePlaceholderAlwaysBlack(t *testing.T) {
	kb, err := NewKeyboard("nan", 1, 2, []byte{0xAA, 0xBB}, 11,
		[][]string{{"A", "NAN", "B"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	frame := NewFrame(3)
	frame.Fill(RgbColor{R: 0xFF, G: 0xFF, B: 0xFF})

	payload, encErr := kb.EncodeFrame(frame)
	if encErr != nil {
		t.Fatalf("encode failed: %v", encErr)
	}
	for offset := 5; offset < 8; offset++ {
		if payload[offset] != 0 {
			t.Fatalf("placeholder byte at %d is %#x, expected zero", offset, payload[offset])
		}
	}
}

func TestEncodeFrameSizeMismatch(t *testing.T) {
	kb, err := NewKeyboard("size", 1, 2, []byte{}, 6, [][]string{{"A", "B"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if _, encErr := kb.EncodeFrame(NewFrame(3)); encErr == nil {
		t.Fatal("mismatched frame size accepted")
	}
}

func TestEncodePayloadExceedsPacket(t *testing.T) {
	kb, err := NewKeyboard("tight", 1, 2, []byte{0x01}, 6, [][]string{{"A", "B"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	// 1 byte header + 6 color bytes > 6 byte packet
	if _, encErr := kb.EncodeFrame(NewFrame(2)); encErr == nil {
		t.Fatal("oversized payload accepted")
	}
}

func TestKeycodeMap(t *testing.T) {
	kb, err := NewKeyboard("codes", 1, 2, []byte{}, 6, [][]string{{"A", "B"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if kb.HasKeycodeMap() {
		t.Fatal("keycode map reported before installation")
	}
	if _, isPresent := kb.IndexForKeycode(30); isPresent {
		t.Fatal("keycode resolved without a map")
	}

	kb.SetKeycodeMap([]int{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 0, 1})

	if !kb.HasKeycodeMap() {
		t.Fatal("keycode map not reported after installation")
	}
	if index, isPresent := kb.IndexForKeycode(30); !isPresent || index != 0 {
		t.Fatalf("keycode 30 resolved to %d,%v, expected 0", index, isPresent)
	}
	if _, isPresent := kb.IndexForKeycode(5); isPresent {
		t.Fatal("unmapped keycode resolved")
	}
	if _, isPresent := kb.IndexForKeycode(500); isPresent {
		t.Fatal("out of range keycode resolved")
	}
}

func TestDuplicateLabelsKeepFirstIndex(t *testing.T) {
	kb, err := NewKeyboard("dup", 1, 2, []byte{}, 12, [][]string{{"FN", "A", "FN", "B"}})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if index, _ := kb.IndexForKey("FN"); index != 0 {
		t.Fatalf("duplicate label resolved to %d, expected first occurrence 0", index)
	}
}
