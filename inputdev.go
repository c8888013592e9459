package sinodragon

// Raw Linux input plumbing shared by the shortcut and key activity
// watchers.  Keyboard event nodes are found through the stable
// /dev/input/by-path names, opened non blocking, and drained on each
// poll sweep.  Records are the 64-bit input_event layout, 16 bytes of
// timestamp followed by type, code and value.

import (
	"encoding/binary"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	inputEventSize = 24
	inputDeviceDir = "/dev/input/by-path"
)

type inputDevice struct {
	fd   int
	path string

	// pending holds the tail of a partial record between reads
	pending []byte
}

// openKeyboardDevices opens every keyboard event node.  Nodes that fail
// to open, typically for lack of permission, are skipped.
func openKeyboardDevices() (devices []*inputDevice) {
	entries, errGo := filepath.Glob(filepath.Join(inputDeviceDir, "*"))
	if errGo != nil {
		return nil
	}
	for _, entry := range entries {
		if !strings.Contains(filepath.Base(entry), "-kbd") {
			continue
		}
		fd, errGo := unix.Open(entry, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if errGo != nil {
			continue
		}
		devices = append(devices, &inputDevice{fd: fd, path: entry})
	}
	return devices
}

// drain reads every pending event and hands each to the callback.
// Returns once the device would block.
func (device *inputDevice) drain(cb func(etype uint16, code uint16, value int32)) {
	chunk := make([]byte, inputEventSize*16)
	for {
		n, errGo := unix.Read(device.fd, chunk)
		if n <= 0 || errGo != nil {
			return
		}
		device.pending = append(device.pending, chunk[:n]...)
		for len(device.pending) >= inputEventSize {
			record := device.pending[:inputEventSize]
			device.pending = device.pending[inputEventSize:]
			etype := binary.LittleEndian.Uint16(record[16:18])
			code := binary.LittleEndian.Uint16(record[18:20])
			value := int32(binary.LittleEndian.Uint32(record[20:24]))
			cb(etype, code, value)
		}
	}
}

func (device *inputDevice) close() {
	if device.fd >= 0 {
		unix.Close(device.fd)
		device.fd = -1
	}
}
