package sinodragon

// This module implements the shortcut overlay watcher.  It reads raw
// keyboard events, tracks the held modifier set, and while a modifier
// combination with a configured cheat sheet is held it swaps the engine
// over to an exclusive draw list showing only the overlay preset with
// the combo's keys lit.  On release the background profile is
// recomputed from the active window class rather than restored from a
// snapshot, so toggles made while engaged are never resurrected.

import (
	"sync"
	"sync/atomic"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/EvanSunde/sinodragon/model"
)

const shortcutPollInterval = 20 * time.Millisecond

type ShortcutWatcher struct {
	kb   *model.Keyboard
	cfg  *HyprConfig
	ctrl *Controller

	overlayIndex int

	// compiled maps shortcut profile name to modifier mask to key
	// indices, resolved once at construction
	compiled map[string]map[int][]int

	mods atomic.Int32

	stateMu            sync.Mutex
	activeClass        string
	activeShortcutName string
	engaged            bool
	appliedColor       string

	devices []*inputDevice

	stopC    chan struct{}
	doneC    chan struct{}
	stopOnce sync.Once

	logger logxi.Logger
}

func NewShortcutWatcher(kb *model.Keyboard, cfg *HyprConfig, ctrl *Controller) (watcher *ShortcutWatcher) {
	watcher = &ShortcutWatcher{
		kb:           kb,
		cfg:          cfg,
		ctrl:         ctrl,
		overlayIndex: cfg.OverlayPreset,
		compiled:     map[string]map[int][]int{},
		stopC:        make(chan struct{}),
		doneC:        make(chan struct{}),
		logger:       logxi.New("watcher.shortcut"),
	}

	for name, profile := range cfg.Shortcuts {
		combos := map[int][]int{}
		for modmask, labels := range profile.Combos {
			indices := make([]int, 0, len(labels))
			for _, label := range labels {
				if index, isPresent := kb.IndexForKey(label); isPresent {
					indices = append(indices, index)
				}
			}
			combos[modmask] = indices
		}
		watcher.compiled[name] = combos
	}

	watcher.activeShortcutName = cfg.DefaultShortcut
	return watcher
}

// Start launches the poll loop.  A negative overlay index disables the
// watcher entirely.
func (watcher *ShortcutWatcher) Start() {
	if watcher.overlayIndex < 0 {
		close(watcher.doneC)
		return
	}
	watcher.devices = openKeyboardDevices()
	go watcher.runLoop()
}

// Stop is idempotent and joins the worker before closing the devices
func (watcher *ShortcutWatcher) Stop() {
	watcher.stopOnce.Do(func() { close(watcher.stopC) })
	<-watcher.doneC
	for _, device := range watcher.devices {
		device.close()
	}
	watcher.devices = nil
}

// SetActiveClass is the focus watcher's callback.  It retargets the
// active shortcut profile and reapplies the current modifier state so
// an engaged overlay switches cheat sheets immediately.
func (watcher *ShortcutWatcher) SetActiveClass(class string) {
	watcher.stateMu.Lock()
	watcher.activeClass = class
	watcher.activeShortcutName = watcher.cfg.ShortcutFor(class)
	engaged := watcher.engaged
	watcher.stateMu.Unlock()

	if engaged {
		watcher.applyOverlayColor()
	}
	watcher.applyMods(int(watcher.mods.Load()))
}

func (watcher *ShortcutWatcher) runLoop() {
	defer close(watcher.doneC)

	masks := make([]int, len(watcher.devices))
	watcher.applyMods(0)

	for {
		select {
		case <-watcher.stopC:
			return
		case <-time.After(shortcutPollInterval):
		}

		combined := 0
		for i, device := range watcher.devices {
			device.drain(func(etype uint16, code uint16, value int32) {
				if etype != evKey {
					return
				}
				bit := modifierBit(code)
				if bit == 0 {
					return
				}
				if value != 0 {
					masks[i] |= bit
				} else {
					masks[i] &^= bit
				}
			})
			combined |= masks[i]
		}

		if combined != int(watcher.mods.Load()) {
			watcher.mods.Store(int32(combined))
			watcher.applyMods(combined)
		}
	}
}

// comboFor resolves the key indices lit for a modifier mask under the
// active shortcut profile
func (watcher *ShortcutWatcher) comboFor(modmask int) (indices []int) {
	watcher.stateMu.Lock()
	name := watcher.activeShortcutName
	watcher.stateMu.Unlock()

	combos, isPresent := watcher.compiled[name]
	if !isPresent {
		return nil
	}
	return combos[modmask]
}

// applyOverlayColor pushes the active profile's highlight color into
// the overlay preset, skipping the call when nothing changed
func (watcher *ShortcutWatcher) applyOverlayColor() {
	watcher.stateMu.Lock()
	name := watcher.activeShortcutName
	watcher.stateMu.Unlock()

	profile, isPresent := watcher.cfg.Shortcuts[name]
	if !isPresent || profile.Color == "" {
		return
	}

	watcher.stateMu.Lock()
	changed := watcher.appliedColor != profile.Color
	watcher.appliedColor = profile.Color
	watcher.stateMu.Unlock()

	if changed {
		watcher.ctrl.ApplyPresetParameter(watcher.overlayIndex, "color", profile.Color)
	}
}

// applyMods drives the engage and disengage transitions for the current
// modifier mask
func (watcher *ShortcutWatcher) applyMods(modmask int) {
	indices := watcher.comboFor(modmask)

	if modmask != 0 && len(indices) != 0 {
		watcher.stateMu.Lock()
		engaging := !watcher.engaged
		watcher.engaged = true
		watcher.stateMu.Unlock()

		if engaging {
			// Exclusive mode, only the overlay preset contributes
			watcher.logger.Debug("overlay engaged", "mods", modmask)
			watcher.ctrl.SetDrawList([]int{watcher.overlayIndex})
		}
		watcher.applyOverlayColor()

		mask := make([]bool, watcher.kb.KeyCount())
		for _, index := range indices {
			if index < len(mask) {
				mask[index] = true
			}
		}
		watcher.ctrl.ApplyPresetMask(watcher.overlayIndex, mask)
		watcher.ctrl.RefreshRender()
		return
	}

	// Disengage, the background profile is recomputed from the source
	// of truth rather than restored from a snapshot
	watcher.stateMu.Lock()
	wasEngaged := watcher.engaged
	watcher.engaged = false
	class := watcher.activeClass
	watcher.stateMu.Unlock()

	watcher.ctrl.ApplyPresetMask(watcher.overlayIndex, make([]bool, watcher.kb.KeyCount()))
	if wasEngaged {
		watcher.logger.Debug("overlay disengaged", "class", class)
		if masks, order, isPresent := watcher.cfg.ProfileFor(class); isPresent {
			watcher.ctrl.ApplyPresetMasks(masks)
			watcher.ctrl.SetDrawList(order)
		} else {
			watcher.ctrl.SetDrawList(nil)
		}
	}
	watcher.ctrl.RefreshRender()
}

// Engaged reports whether the overlay currently owns the composition
func (watcher *ShortcutWatcher) Engaged() bool {
	watcher.stateMu.Lock()
	defer watcher.stateMu.Unlock()
	return watcher.engaged
}
