package sinodragon

// This module implements a watcher for the compositor event socket.
// It tracks the class of the focused window and applies the matching
// lighting profile, the masks and painter's order, to the controller.
// The socket is reconnected forever with bounded delays so a compositor
// restart never takes the daemon down.

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"
)

const activeWindowPrefix = "activewindow>>"

// HyprConfig is the compiled configuration shared by the focus and
// shortcut watchers.  Profile and shortcut data arrive fully resolved
// from the config loader, label lookups happen at load time.
type HyprConfig struct {
	Enabled      bool
	EventsSocket string

	DefaultProfile   string
	ClassToProfile   map[string]string
	ProfileMasks     map[string][][]bool
	ProfileDrawOrder map[string][]int

	// Shortcut overlay settings, OverlayPreset below zero disables the
	// shortcut watcher
	OverlayPreset   int
	DefaultShortcut string
	ClassToShortcut map[string]string
	Shortcuts       map[string]ShortcutProfile
}

// ShortcutProfile is one cheat sheet, a highlight color plus the key
// labels lit for each modifier combination
type ShortcutProfile struct {
	Color  string
	Combos map[int][]string
}

// ProfileFor resolves the profile applied for a window class, falling
// back to the default profile.  The second result is false when the
// resolved profile has no complete mask and draw order data.
func (cfg *HyprConfig) ProfileFor(class string) (masks [][]bool, order []int, isPresent bool) {
	name, mapped := cfg.ClassToProfile[class]
	if !mapped {
		name = cfg.DefaultProfile
	}
	masks, hasMasks := cfg.ProfileMasks[name]
	order, hasOrder := cfg.ProfileDrawOrder[name]
	if !hasMasks || !hasOrder {
		return nil, nil, false
	}
	return masks, order, true
}

// ShortcutFor resolves the shortcut profile name for a window class
func (cfg *HyprConfig) ShortcutFor(class string) (name string) {
	if name, isPresent := cfg.ClassToShortcut[class]; isPresent {
		return name
	}
	return cfg.DefaultShortcut
}

// EventsSocketPath resolves the socket path, the configured override
// first, then the runtime directory convention with a /tmp fallback
func (cfg *HyprConfig) EventsSocketPath() (path string) {
	if cfg.EventsSocket != "" {
		return cfg.EventsSocket
	}
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return ""
	}
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return fmt.Sprintf("%s/hypr/%s/.socket2.sock", runtime, sig)
	}
	return fmt.Sprintf("/tmp/hypr/%s/.socket2.sock", sig)
}

type FocusWatcher struct {
	cfg  *HyprConfig
	ctrl *Controller

	// onClass is delivered for every focus change before the profile is
	// applied, the shortcut watcher hangs off this
	onClass func(class string)

	lastClass string

	stopC    chan struct{}
	doneC    chan struct{}
	stopOnce sync.Once

	logger logxi.Logger
}

func NewFocusWatcher(cfg *HyprConfig, ctrl *Controller) (watcher *FocusWatcher) {
	return &FocusWatcher{
		cfg:    cfg,
		ctrl:   ctrl,
		stopC:  make(chan struct{}),
		doneC:  make(chan struct{}),
		logger: logxi.New("watcher.focus"),
	}
}

// SetActiveClassCallback registers the focus change listener.  Must be
// called before Start.
func (watcher *FocusWatcher) SetActiveClassCallback(cb func(class string)) {
	watcher.onClass = cb
}

func (watcher *FocusWatcher) Start() {
	go watcher.runLoop(watcher.cfg.EventsSocketPath())
}

// Stop is idempotent, it flags the worker down and waits for it
func (watcher *FocusWatcher) Stop() {
	watcher.stopOnce.Do(func() { close(watcher.stopC) })
	<-watcher.doneC
}

func (watcher *FocusWatcher) stopped() bool {
	select {
	case <-watcher.stopC:
		return true
	default:
		return false
	}
}

func (watcher *FocusWatcher) runLoop(socketPath string) {
	defer close(watcher.doneC)

	for !watcher.stopped() {
		conn, errGo := net.Dial("unix", socketPath)
		if errGo != nil {
			select {
			case <-watcher.stopC:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		watcher.readEvents(conn)
		conn.Close()

		select {
		case <-watcher.stopC:
			return
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// readEvents consumes the line stream until the connection fails or the
// watcher is stopped.  A short read deadline keeps the stop flag
// responsive while the stream is quiet.
func (watcher *FocusWatcher) readEvents(conn net.Conn) {
	buffer := []byte{}
	chunk := make([]byte, 1024)

	for !watcher.stopped() {
		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, errGo := conn.Read(chunk)
		if errGo != nil {
			if netErr, ok := errGo.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return
		}
		buffer = append(buffer, chunk[:n]...)

		for {
			nl := bytes.IndexByte(buffer, '\n')
			if nl < 0 {
				break
			}
			line := string(buffer[:nl])
			buffer = buffer[nl+1:]
			watcher.handleLine(line)
		}
	}
}

// handleLine interprets one event line.  Only active window changes are
// interesting, the class is the payload up to the first comma.
func (watcher *FocusWatcher) handleLine(line string) {
	if !strings.HasPrefix(line, activeWindowPrefix) {
		return
	}
	payload := line[len(activeWindowPrefix):]
	class := payload
	if comma := strings.IndexByte(payload, ','); comma >= 0 {
		class = payload[:comma]
	}
	if class == watcher.lastClass {
		return
	}
	watcher.lastClass = class
	watcher.logger.Debug("active window changed", "class", class)

	if watcher.onClass != nil {
		watcher.onClass(class)
	}

	masks, order, isPresent := watcher.cfg.ProfileFor(class)
	if !isPresent {
		return
	}
	watcher.ctrl.ApplyPresetMasks(masks)
	watcher.ctrl.SetDrawList(order)
	watcher.ctrl.RefreshRender()
}

// LastClass reports the most recently observed window class
func (watcher *FocusWatcher) LastClass() string { return watcher.lastClass }
