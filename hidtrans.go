package sinodragon

// This module implements the real device transport on top of the
// hidapi bindings.  Frames are written as HID feature reports to the
// vendor interface of the keyboard.

import (
	"github.com/sstallion/go-hid"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/EvanSunde/sinodragon/model"
)

// Vendor keyboards commonly expose their lighting control on a vendor
// defined usage page alongside the boot keyboard interfaces
const (
	fallbackUsagePage = 0xFF00
	fallbackUsage     = 0x0001
)

type HidTransport struct {
	device *hid.Device
	logger logxi.Logger
}

func NewHidTransport() (transport *HidTransport) {
	return &HidTransport{logger: logxi.New("transport.hidapi")}
}

func (transport *HidTransport) ID() string { return "hidapi" }

// Connect enumerates the interfaces exposed for the model's VID and PID
// and opens the best match.  When the model names a usage page and
// usage that pair is preferred, otherwise the conventional vendor page
// is preferred with the first interface as a last resort.
func (transport *HidTransport) Connect(kb *model.Keyboard) bool {
	if errGo := hid.Init(); errGo != nil {
		transport.logger.Error("hid init failed", "error", errGo.Error())
		return false
	}

	candidates := []hid.DeviceInfo{}
	hid.Enumerate(kb.VendorID(), kb.ProductID(), func(info *hid.DeviceInfo) error {
		candidates = append(candidates, *info)
		return nil
	})
	if len(candidates) == 0 {
		transport.logger.Error("no matching device", "keyboard", kb.Name(),
			"vendor", kb.VendorID(), "product", kb.ProductID())
		return false
	}

	chosen := candidates[0]
	found := false
	if usagePage, usage, isPresent := kb.InterfaceUsage(); isPresent {
		for _, info := range candidates {
			if info.UsagePage == usagePage && info.Usage == usage {
				chosen = info
				found = true
				break
			}
		}
		if !found {
			transport.logger.Warn("configured usage not found, trying the vendor page",
				"keyboard", kb.Name(), "usage_page", usagePage, "usage", usage)
		}
	}
	if !found {
		for _, info := range candidates {
			if info.UsagePage == fallbackUsagePage && info.Usage == fallbackUsage {
				chosen = info
				break
			}
		}
	}

	device, errGo := hid.OpenPath(chosen.Path)
	if errGo != nil {
		transport.logger.Error("unable to open device", "keyboard", kb.Name(),
			"path", chosen.Path, "error", errGo.Error())
		return false
	}
	transport.device = device
	transport.logger.Info("connected", "keyboard", kb.Name(), "path", chosen.Path)
	return true
}

func (transport *HidTransport) SendFrame(kb *model.Keyboard, payload []byte) bool {
	if transport.device == nil {
		transport.logger.Error("send before connect", "keyboard", kb.Name())
		return false
	}
	if _, errGo := transport.device.SendFeatureReport(payload); errGo != nil {
		transport.logger.Warn("feature report failed", "keyboard", kb.Name(), "error", errGo.Error())
		return false
	}
	return true
}

// Close releases the device handle and the hidapi context
func (transport *HidTransport) Close() {
	if transport.device != nil {
		transport.device.Close()
		transport.device = nil
	}
	hid.Exit()
}
