package sinodragon

// Shared fixtures for the package tests, a transport that captures
// payloads and a minimal preset the engine tests stack in various
// shapes

import (
	"sync"
	"testing"

	"github.com/EvanSunde/sinodragon/model"
)

type captureTransport struct {
	sync.Mutex
	payloads [][]byte
	refuse   bool
}

func (transport *captureTransport) ID() string { return "capture" }

func (transport *captureTransport) Connect(kb *model.Keyboard) bool { return true }

func (transport *captureTransport) SendFrame(kb *model.Keyboard, payload []byte) bool {
	transport.Lock()
	defer transport.Unlock()
	if transport.refuse {
		return false
	}
	transport.payloads = append(transport.payloads, append([]byte{}, payload...))
	return true
}

func (transport *captureTransport) sendCount() int {
	transport.Lock()
	defer transport.Unlock()
	return len(transport.payloads)
}

func (transport *captureTransport) lastPayload() []byte {
	transport.Lock()
	defer transport.Unlock()
	if len(transport.payloads) == 0 {
		return nil
	}
	return append([]byte{}, transport.payloads[len(transport.payloads)-1]...)
}

// fillPreset paints one color everywhere
type fillPreset struct {
	id       string
	color    model.RgbColor
	animated bool
}

func (p *fillPreset) ID() string { return p.id }

func (p *fillPreset) Configure(params map[string]string) {
	if value, isPresent := params["color"]; isPresent && len(value) == 7 && value[0] == '#' {
		var parsed [3]uint8
		for i := 0; i < 3; i++ {
			parsed[i] = hexByte(value[1+i*2], value[2+i*2])
		}
		p.color = model.RgbColor{R: parsed[0], G: parsed[1], B: parsed[2]}
	}
}

func hexByte(hi byte, lo byte) uint8 {
	digit := func(ch byte) uint8 {
		switch {
		case ch >= '0' && ch <= '9':
			return ch - '0'
		case ch >= 'a' && ch <= 'f':
			return ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			return ch - 'A' + 10
		}
		return 0
	}
	return digit(hi)<<4 | digit(lo)
}

func (p *fillPreset) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	frame.Fill(p.color)
}

func (p *fillPreset) Animated() bool { return p.animated }

func testKeyboard(t *testing.T, labels []string, header []byte, packetLength int) (kb *model.Keyboard) {
	t.Helper()
	kb, err := model.NewKeyboard("test", 0x1234, 0x5678, header, packetLength, [][]string{labels})
	if err != nil {
		t.Fatalf("unable to build keyboard: %v", err)
	}
	return kb
}
