package sinodragon

import (
	"testing"
)

func TestNewTransportRegistry(t *testing.T) {
	for _, id := range []string{"logging", "hidapi", "opc", "ws"} {
		transport, err := NewTransport(id, TransportOptions{})
		if err != nil {
			t.Fatalf("transport %s failed to build: %v", id, err)
		}
		if transport.ID() != id {
			t.Fatalf("transport reports %s, requested %s", transport.ID(), id)
		}
	}

	if _, err := NewTransport("carrier-pigeon", TransportOptions{}); err == nil {
		t.Fatal("unknown transport accepted")
	}
}

func TestLoggingTransportAlwaysSucceeds(t *testing.T) {
	transport := NewLoggingTransport()
	kb := testKeyboard(t, []string{"A", "B"}, []byte{0x01}, 8)

	if !transport.Connect(kb) {
		t.Fatal("logging transport refused to connect")
	}
	payload := []byte{0x01, 0x10, 0x20, 0x30, 0x00, 0x00, 0x00, 0x00}
	if !transport.SendFrame(kb, payload) {
		t.Fatal("logging transport refused a frame")
	}
}

func TestWsTransportRequiresURL(t *testing.T) {
	transport := NewWsTransport("")
	kb := testKeyboard(t, []string{"A"}, []byte{}, 3)
	if transport.Connect(kb) {
		t.Fatal("ws transport connected without a url")
	}
}
