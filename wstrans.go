package sinodragon

// This module streams encoded frames over a websocket as binary
// messages, which feeds a browser based keyboard simulator during
// layout and preset development.  A failed write drops the connection
// and the next frame redials, throttled so a dead server is not
// hammered at the render rate.

import (
	"time"

	"github.com/gorilla/websocket"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/EvanSunde/sinodragon/model"
)

const wsRedialDelay = time.Second

type WsTransport struct {
	url    string
	conn   *websocket.Conn
	logger logxi.Logger

	lastDial time.Time
}

func NewWsTransport(url string) (transport *WsTransport) {
	return &WsTransport{url: url, logger: logxi.New("transport.ws")}
}

func (transport *WsTransport) ID() string { return "ws" }

func (transport *WsTransport) Connect(kb *model.Keyboard) bool {
	if transport.url == "" {
		transport.logger.Error("ws_url must be configured for the ws transport")
		return false
	}
	if !transport.dial() {
		return false
	}
	transport.logger.Info("connected", "keyboard", kb.Name(), "url", transport.url)
	return true
}

func (transport *WsTransport) SendFrame(kb *model.Keyboard, payload []byte) bool {
	if transport.conn == nil {
		if time.Since(transport.lastDial) < wsRedialDelay {
			return false
		}
		if !transport.dial() {
			return false
		}
	}

	if errGo := transport.conn.WriteMessage(websocket.BinaryMessage, payload); errGo != nil {
		transport.logger.Warn("write failed", "url", transport.url, "error", errGo.Error())
		transport.conn.Close()
		transport.conn = nil
		return false
	}
	return true
}

// Close shuts the connection down cleanly
func (transport *WsTransport) Close() {
	if transport.conn != nil {
		transport.conn.Close()
		transport.conn = nil
	}
}

func (transport *WsTransport) dial() bool {
	transport.lastDial = time.Now()
	conn, _, errGo := websocket.DefaultDialer.Dial(transport.url, nil)
	if errGo != nil {
		transport.logger.Warn("dial failed", "url", transport.url, "error", errGo.Error())
		return false
	}
	transport.conn = conn
	return true
}
