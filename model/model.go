package model

// This module defines the implementation neutral description of a
// per-key RGB keyboard, the device geometry, the identifiers needed to
// open it, and the encoding of logical color frames into the vendor
// HID report format

import (
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// PlaceholderLabel marks a layout cell that occupies a key index but has
// no physical LED behind it.  Such cells are always encoded as black and
// are never returned from label lookups.
const PlaceholderLabel = "NAN"

// RgbColor is a single 8 bit per channel sRGB triple
type RgbColor struct {
	R, G, B uint8
}

// Keyboard captures everything the render path needs to know about one
// device.  It is immutable after construction apart from the optional
// keycode map and HID usage filter, which are installed once during
// configuration.
type Keyboard struct {
	name      string
	vendorID  uint16
	productID uint16

	packetHeader []byte
	packetLength int

	layout     [][]string
	keyLabels  []string
	keyToIndex map[string]int

	// Optional OS keycode translation, indexed by evdev keycode.  A
	// value of -1 means the keycode has no key on this keyboard.
	keycodeToIndex []int

	// Optional HID usage filter used to disambiguate multi interface
	// devices.  Zero values mean unspecified.
	usagePage uint16
	usage     uint16
	hasUsage  bool
}

// NewKeyboard flattens the supplied layout rows into the row-major key
// index space and indexes the first occurrence of every label
func NewKeyboard(name string, vendorID uint16, productID uint16,
	packetHeader []byte, packetLength int, layout [][]string) (kb *Keyboard, err errors.Error) {

	if len(layout) == 0 {
		return nil, errors.New("keyboard layout is empty").With("keyboard", name).With("stack", stack.Trace().TrimRuntime())
	}
	if packetLength <= 0 {
		return nil, errors.New("packet length must be positive").With("keyboard", name).With("stack", stack.Trace().TrimRuntime())
	}

	kb = &Keyboard{
		name:         name,
		vendorID:     vendorID,
		productID:    productID,
		packetHeader: append([]byte{}, packetHeader...),
		packetLength: packetLength,
		keyToIndex:   map[string]int{},
	}

	index := 0
	for _, row := range layout {
		flat := append([]string{}, row...)
		kb.layout = append(kb.layout, flat)
		for _, label := range row {
			if label != PlaceholderLabel {
				if _, dup := kb.keyToIndex[label]; !dup {
					kb.keyToIndex[label] = index
				}
			}
			kb.keyLabels = append(kb.keyLabels, label)
			index++
		}
	}

	return kb, nil
}

// SetInterfaceUsage installs the HID usage page and usage used to select
// the correct interface on devices that expose several
func (kb *Keyboard) SetInterfaceUsage(usagePage uint16, usage uint16) {
	kb.usagePage = usagePage
	kb.usage = usage
	kb.hasUsage = true
}

// InterfaceUsage returns the usage page and usage filter, if one was set
func (kb *Keyboard) InterfaceUsage() (usagePage uint16, usage uint16, isPresent bool) {
	return kb.usagePage, kb.usage, kb.hasUsage
}

// SetKeycodeMap installs the evdev keycode translation.  The slice is
// indexed by keycode and each entry holds a key index, or -1 when the
// keycode maps to nothing on this keyboard.
func (kb *Keyboard) SetKeycodeMap(keycodeToIndex []int) {
	kb.keycodeToIndex = append([]int{}, keycodeToIndex...)
}

// HasKeycodeMap reports whether a keycode translation was installed,
// which gates the key activity watcher
func (kb *Keyboard) HasKeycodeMap() bool {
	return len(kb.keycodeToIndex) != 0
}

func (kb *Keyboard) Name() string         { return kb.name }
func (kb *Keyboard) VendorID() uint16     { return kb.vendorID }
func (kb *Keyboard) ProductID() uint16    { return kb.productID }
func (kb *Keyboard) PacketHeader() []byte { return kb.packetHeader }
func (kb *Keyboard) PacketLength() int    { return kb.packetLength }
func (kb *Keyboard) Layout() [][]string   { return kb.layout }
func (kb *Keyboard) KeyLabels() []string  { return kb.keyLabels }

// KeyCount returns N, the size of the key index space including
// placeholder cells
func (kb *Keyboard) KeyCount() int { return len(kb.keyLabels) }

// IndexForKey resolves a label to its key index.  Placeholder cells are
// never resolved.
func (kb *Keyboard) IndexForKey(label string) (index int, isPresent bool) {
	index, isPresent = kb.keyToIndex[label]
	return index, isPresent
}

// IndexForKeycode resolves an OS keycode to a key index using the
// installed keycode map
func (kb *Keyboard) IndexForKeycode(keycode int) (index int, isPresent bool) {
	if keycode < 0 || keycode >= len(kb.keycodeToIndex) {
		return 0, false
	}
	index = kb.keycodeToIndex[keycode]
	if index < 0 {
		return 0, false
	}
	return index, true
}

// EncodeFrame turns a logical color frame into the vendor HID report,
// the packet header followed by an R,G,B triple per key index with
// placeholder cells forced to black, zero padded to the packet length
func (kb *Keyboard) EncodeFrame(frame *Frame) (payload []byte, err errors.Error) {
	if frame.Size() != kb.KeyCount() {
		return nil, errors.New("frame size mismatch").
			With("keyboard", kb.name).With("frame", frame.Size()).With("keys", kb.KeyCount()).
			With("stack", stack.Trace().TrimRuntime())
	}

	payload = make([]byte, 0, kb.packetLength)
	payload = append(payload, kb.packetHeader...)

	for idx, label := range kb.keyLabels {
		color := frame.colors[idx]
		if label == PlaceholderLabel {
			color = RgbColor{}
		}
		payload = append(payload, color.R, color.G, color.B)
	}

	if len(payload) > kb.packetLength {
		return nil, errors.New("payload exceeds packet length").
			With("keyboard", kb.name).With("payload", len(payload)).With("packet", kb.packetLength).
			With("stack", stack.Trace().TrimRuntime())
	}
	for len(payload) < kb.packetLength {
		payload = append(payload, 0)
	}

	return payload, nil
}
