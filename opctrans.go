package sinodragon

// This module ships frames to an Open Pixel Control server, the same
// wire protocol fadecandy boards and most LED simulators speak.  It is
// handy for previewing a layout without the keyboard attached.

import (
	"bytes"

	"github.com/cnf/structhash"
	"github.com/kellydunn/go-opc"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/EvanSunde/sinodragon/model"
)

type OpcTransport struct {
	server string
	client *opc.Client
	logger logxi.Logger

	// lastHash suppresses resends of unchanged frames, static presets
	// would otherwise repaint the simulator on every refresh
	lastHash []byte
}

type opcFrame struct {
	Payload []byte `hash:"1"`
}

func NewOpcTransport(server string) (transport *OpcTransport) {
	if server == "" {
		server = "127.0.0.1:7890"
	}
	return &OpcTransport{server: server, logger: logxi.New("transport.opc")}
}

func (transport *OpcTransport) ID() string { return "opc" }

func (transport *OpcTransport) Connect(kb *model.Keyboard) bool {
	client := opc.NewClient()
	if errGo := client.Connect("tcp", transport.server); errGo != nil {
		transport.logger.Error("unable to connect", "server", transport.server, "error", errGo.Error())
		return false
	}
	transport.client = client
	transport.logger.Info("connected", "keyboard", kb.Name(), "server", transport.server)
	return true
}

func (transport *OpcTransport) SendFrame(kb *model.Keyboard, payload []byte) bool {
	if transport.client == nil {
		transport.logger.Error("send before connect", "keyboard", kb.Name())
		return false
	}

	hash := structhash.Md5(opcFrame{Payload: payload}, 1)
	if bytes.Equal(hash, transport.lastHash) {
		return true
	}

	// Strip the vendor header, OPC wants bare RGB triples on channel 0
	pixels := payload[len(kb.PacketHeader()):]
	keyCount := kb.KeyCount()

	m := opc.NewMessage(0)
	m.SetLength(uint16(keyCount * 3))
	for k := 0; k < keyCount; k++ {
		m.SetPixelColor(k, pixels[k*3], pixels[k*3+1], pixels[k*3+2])
	}

	if errGo := transport.client.Send(m); errGo != nil {
		transport.logger.Warn("send failed", "server", transport.server, "error", errGo.Error())
		return false
	}
	transport.lastHash = hash
	return true
}
