package sinodragon

// This module defines the sink abstraction for encoded HID frames
// together with the logging variant used when running without hardware.
// The render loop calls SendFrame from a single goroutine, transports
// do not need to cope with concurrent senders.

import (
	"fmt"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	logxi "github.com/mgutz/logxi/v1"

	"github.com/EvanSunde/sinodragon/model"
)

type Transport interface {
	// ID returns the identifier the configuration selects this
	// transport by
	ID() string

	// Connect is called once before the render loop starts
	Connect(kb *model.Keyboard) bool

	// SendFrame ships one encoded report.  A false result is logged by
	// the caller and retried on the next tick, it never stops the loop.
	SendFrame(kb *model.Keyboard, payload []byte) bool
}

// TransportOptions carries the endpoint settings the non HID transports
// need, lifted from the configuration file
type TransportOptions struct {
	OpcServer string
	WsURL     string
}

// NewTransport resolves a transport identifier from the configuration
func NewTransport(id string, opts TransportOptions) (transport Transport, err errors.Error) {
	switch id {
	case "logging":
		return NewLoggingTransport(), nil
	case "hidapi":
		return NewHidTransport(), nil
	case "opc":
		return NewOpcTransport(opts.OpcServer), nil
	case "ws":
		return NewWsTransport(opts.WsURL), nil
	}
	return nil, errors.New("unsupported transport").With("transport", id).With("stack", stack.Trace().TrimRuntime())
}

// LoggingTransport accepts every frame and prints a hex dump, 16 bytes
// to a row
type LoggingTransport struct {
	logger logxi.Logger
}

func NewLoggingTransport() (transport *LoggingTransport) {
	return &LoggingTransport{logger: logxi.New("transport.logging")}
}

func (transport *LoggingTransport) ID() string { return "logging" }

func (transport *LoggingTransport) Connect(kb *model.Keyboard) bool {
	transport.logger.Info("connected", "keyboard", kb.Name())
	return true
}

func (transport *LoggingTransport) SendFrame(kb *model.Keyboard, payload []byte) bool {
	transport.logger.Info("sending frame", "keyboard", kb.Name(), "bytes", len(payload))
	for row := 0; row < len(payload); row += 16 {
		end := row + 16
		if end > len(payload) {
			end = len(payload)
		}
		line := make([]string, 0, 16)
		for _, b := range payload[row:end] {
			line = append(line, fmt.Sprintf("0x%02x", b))
		}
		transport.logger.Info(strings.Join(line, " "))
	}
	return true
}
