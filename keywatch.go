package sinodragon

// This module implements the key activity watcher feeding the reactive
// presets.  Raw key presses are translated through the keyboard model's
// keycode map and published onto the activity bus, releases and
// autorepeat are ignored.

import (
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/EvanSunde/sinodragon/activity"
	"github.com/EvanSunde/sinodragon/model"
)

const activityPollInterval = 10 * time.Millisecond

type ActivityWatcher struct {
	kb  *model.Keyboard
	bus *activity.Bus

	devices []*inputDevice

	stopC    chan struct{}
	doneC    chan struct{}
	stopOnce sync.Once

	logger logxi.Logger
}

func NewActivityWatcher(kb *model.Keyboard, bus *activity.Bus) (watcher *ActivityWatcher) {
	return &ActivityWatcher{
		kb:     kb,
		bus:    bus,
		stopC:  make(chan struct{}),
		doneC:  make(chan struct{}),
		logger: logxi.New("watcher.activity"),
	}
}

func (watcher *ActivityWatcher) Start() {
	watcher.devices = openKeyboardDevices()
	watcher.bus.SetKeyCount(watcher.kb.KeyCount())
	if len(watcher.devices) == 0 {
		watcher.logger.Warn("no keyboard input devices found", "dir", inputDeviceDir)
	}
	go watcher.runLoop()
}

// Stop is idempotent, it joins the worker then closes the devices
func (watcher *ActivityWatcher) Stop() {
	watcher.stopOnce.Do(func() { close(watcher.stopC) })
	<-watcher.doneC
	for _, device := range watcher.devices {
		device.close()
	}
	watcher.devices = nil
}

func (watcher *ActivityWatcher) runLoop() {
	defer close(watcher.doneC)

	for {
		select {
		case <-watcher.stopC:
			return
		case <-time.After(activityPollInterval):
		}

		for _, device := range watcher.devices {
			device.drain(func(etype uint16, code uint16, value int32) {
				// Presses only, value 1, releases are 0 and repeats 2
				if etype != evKey || value != 1 {
					return
				}
				if index, isPresent := watcher.kb.IndexForKeycode(int(code)); isPresent {
					watcher.bus.Record(index, 1.0)
				}
			})
		}
	}
}
