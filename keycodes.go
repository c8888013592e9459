package sinodragon

// This module carries the Linux evdev keycode table for the key labels
// used by layout files, and derives the keycode to key index map the
// key activity watcher translates through.  Labels follow the layout
// file convention, upper case with the printable punctuation spelled
// out.

import (
	"github.com/EvanSunde/sinodragon/model"
)

// Modifier bits tracked by the shortcut watcher
const (
	ModCtrl  = 1
	ModShift = 2
	ModAlt   = 4
	ModSuper = 8
)

// Modifier keycodes, left and right variants fold onto the same bit
const (
	keyLeftCtrl   = 29
	keyRightCtrl  = 97
	keyLeftShift  = 42
	keyRightShift = 54
	keyLeftAlt    = 56
	keyRightAlt   = 100
	keyLeftMeta   = 125
	keyRightMeta  = 126
)

// modifierBit folds a keycode onto its modifier bit, zero for non
// modifier keys
func modifierBit(code uint16) int {
	switch code {
	case keyLeftCtrl, keyRightCtrl:
		return ModCtrl
	case keyLeftShift, keyRightShift:
		return ModShift
	case keyLeftAlt, keyRightAlt:
		return ModAlt
	case keyLeftMeta, keyRightMeta:
		return ModSuper
	}
	return 0
}

// labelToKeycode maps layout labels onto Linux input event codes
var labelToKeycode = map[string]int{
	"ESC": 1,
	"1":   2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,
	"MINUS": 12, "EQUAL": 13, "BACKSPACE": 14,
	"TAB": 15,
	"Q":   16, "W": 17, "E": 18, "R": 19, "T": 20, "Y": 21, "U": 22, "I": 23, "O": 24, "P": 25,
	"LBRACKET": 26, "RBRACKET": 27, "ENTER": 28,
	"LCTRL": keyLeftCtrl,
	"A":     30, "S": 31, "D": 32, "F": 33, "G": 34, "H": 35, "J": 36, "K": 37, "L": 38,
	"SEMICOLON": 39, "APOSTROPHE": 40, "GRAVE": 41,
	"LSHIFT": keyLeftShift, "BACKSLASH": 43,
	"Z": 44, "X": 45, "C": 46, "V": 47, "B": 48, "N": 49, "M": 50,
	"COMMA": 51, "DOT": 52, "SLASH": 53, "RSHIFT": keyRightShift,
	"KPASTERISK": 55,
	"LALT":       keyLeftAlt, "SPACE": 57, "CAPSLOCK": 58,
	"F1": 59, "F2": 60, "F3": 61, "F4": 62, "F5": 63,
	"F6": 64, "F7": 65, "F8": 66, "F9": 67, "F10": 68,
	"NUMLOCK": 69, "SCROLLLOCK": 70,
	"KP7": 71, "KP8": 72, "KP9": 73, "KPMINUS": 74,
	"KP4": 75, "KP5": 76, "KP6": 77, "KPPLUS": 78,
	"KP1": 79, "KP2": 80, "KP3": 81, "KP0": 82, "KPDOT": 83,
	"F11": 87, "F12": 88,
	"KPENTER": 96, "RCTRL": keyRightCtrl, "KPSLASH": 98,
	"SYSRQ": 99, "RALT": keyRightAlt,
	"HOME": 102, "UP": 103, "PGUP": 104,
	"LEFT": 105, "RIGHT": 106,
	"END": 107, "DOWN": 108, "PGDN": 109,
	"INSERT": 110, "DELETE": 111,
	"PAUSE": 119,
	"LMETA": keyLeftMeta, "RMETA": keyRightMeta,
	"MENU": 127,
	"PRTSC": 99,
	"FN":    0x1d0,
}

// BuildKeycodeMap derives the keycode to key index vector for a
// keyboard from its labels.  Labels without a known keycode simply stay
// untranslated.  Returns nil when nothing resolved, which keeps the key
// activity watcher disabled.
func BuildKeycodeMap(kb *model.Keyboard) (keycodeToIndex []int) {
	maxCode := 0
	resolved := map[int]int{}
	for label, code := range labelToKeycode {
		index, isPresent := kb.IndexForKey(label)
		if !isPresent {
			continue
		}
		if _, dup := resolved[code]; dup {
			continue
		}
		resolved[code] = index
		if code > maxCode {
			maxCode = code
		}
	}
	if len(resolved) == 0 {
		return nil
	}

	keycodeToIndex = make([]int, maxCode+1)
	for i := range keycodeToIndex {
		keycodeToIndex[i] = -1
	}
	for code, index := range resolved {
		keycodeToIndex[code] = index
	}
	return keycodeToIndex
}
