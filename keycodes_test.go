package sinodragon

import (
	"testing"

	"github.com/EvanSunde/sinodragon/model"
)

func TestBuildKeycodeMap(t *testing.T) {
	kb, err := model.NewKeyboard("codes", 1, 2, []byte{}, 64,
		[][]string{{"ESC", "A", "NAN", "SPACE"}})
	if err != nil {
		t.Fatalf("unable to build keyboard: %v", err)
	}

	keycodeMap := BuildKeycodeMap(kb)
	if keycodeMap == nil {
		t.Fatal("no keycodes resolved")
	}
	kb.SetKeycodeMap(keycodeMap)

	// KEY_ESC is 1, KEY_A is 30, KEY_SPACE is 57
	checks := map[int]int{1: 0, 30: 1, 57: 3}
	for code, expected := range checks {
		index, isPresent := kb.IndexForKeycode(code)
		if !isPresent || index != expected {
			t.Fatalf("keycode %d resolved to %d,%v expected %d", code, index, isPresent, expected)
		}
	}

	// KEY_B is 48 and is not on this board
	if _, isPresent := kb.IndexForKeycode(48); isPresent {
		t.Fatal("absent key resolved")
	}
}

func TestBuildKeycodeMapEmptyForUnknownLabels(t *testing.T) {
	kb, err := model.NewKeyboard("weird", 1, 2, []byte{}, 64,
		[][]string{{"GLYPH1", "GLYPH2"}})
	if err != nil {
		t.Fatalf("unable to build keyboard: %v", err)
	}
	if keycodeMap := BuildKeycodeMap(kb); keycodeMap != nil {
		t.Fatalf("keycodes resolved for unknown labels: %v", keycodeMap)
	}
}

func TestModifierBits(t *testing.T) {
	cases := map[uint16]int{
		keyLeftCtrl:   ModCtrl,
		keyRightCtrl:  ModCtrl,
		keyLeftShift:  ModShift,
		keyRightShift: ModShift,
		keyLeftAlt:    ModAlt,
		keyRightAlt:   ModAlt,
		keyLeftMeta:   ModSuper,
		keyRightMeta:  ModSuper,
		30:            0, // KEY_A
	}
	for code, expected := range cases {
		if bit := modifierBit(code); bit != expected {
			t.Fatalf("modifierBit(%d) = %d, expected %d", code, bit, expected)
		}
	}
}
