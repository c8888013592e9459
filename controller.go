package sinodragon

// This module implements the controller that owns the render loop and
// the mutex every other goroutine goes through to mutate the effect
// engine.  The watchers and the interactive prompt never touch the
// engine directly, they call the mutation API here which takes the
// engine mutex, forwards, and resynchronizes the render loop with the
// animated or static nature of the new composition.

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	logxi "github.com/mgutz/logxi/v1"
)

type Controller struct {
	engine *EffectEngine

	// engineMu guards the engine and the preset parameter maps.  It is
	// held for at most one frame composition, which bounds watcher
	// latency by one frame interval.
	engineMu sync.Mutex

	presetParams []map[string]string

	frameIntervalMs atomic.Int64

	loopMu    sync.Mutex
	loopStopC chan struct{}
	loopDoneC chan struct{}
	start     time.Time

	// In and Out carry the interactive prompt, defaulting to the
	// process stdio
	In  io.Reader
	Out io.Writer

	logger logxi.Logger
}

func NewController(engine *EffectEngine, presetParams []map[string]string, frameInterval time.Duration) (ctrl *Controller) {
	ctrl = &Controller{
		engine:       engine,
		presetParams: presetParams,
		In:           os.Stdin,
		Out:          os.Stdout,
		logger:       logxi.New("controller"),
	}
	interval := frameInterval.Milliseconds()
	if interval < 1 {
		interval = 1
	}
	ctrl.frameIntervalMs.Store(interval)
	return ctrl
}

// SetFrameInterval adjusts the render loop pacing live, floored at one
// millisecond
func (ctrl *Controller) SetFrameInterval(ms int64) {
	if ms < 1 {
		ms = 1
	}
	ctrl.frameIntervalMs.Store(ms)
}

func (ctrl *Controller) FrameInterval() time.Duration {
	return time.Duration(ctrl.frameIntervalMs.Load()) * time.Millisecond
}

// renderOnce composes and pushes a single frame under the engine mutex
func (ctrl *Controller) renderOnce(timeSeconds float64) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	ctrl.engine.RenderFrame(timeSeconds)
	if ok, err := ctrl.engine.PushFrame(); err != nil {
		ctrl.logger.Warn("frame encode failed", "error", err.Error())
	} else if !ok {
		ctrl.logger.Warn("frame send failed")
	}
}

// startRenderLoop launches the render goroutine if it is not already
// running.  The loop reads the monotonic clock every iteration and
// renders the elapsed time since the loop started.
func (ctrl *Controller) startRenderLoop() {
	ctrl.loopMu.Lock()
	defer ctrl.loopMu.Unlock()
	if ctrl.loopStopC != nil {
		return
	}

	stopC := make(chan struct{})
	doneC := make(chan struct{})
	ctrl.loopStopC = stopC
	ctrl.loopDoneC = doneC
	ctrl.start = time.Now()

	go func() {
		defer close(doneC)
		for {
			elapsed := time.Since(ctrl.start).Seconds()
			ctrl.renderOnce(elapsed)

			interval := ctrl.frameIntervalMs.Load()
			if interval < 1 {
				interval = 1
			}
			select {
			case <-stopC:
				return
			case <-time.After(time.Duration(interval) * time.Millisecond):
			}
		}
	}()
}

// stopRenderLoop halts the render goroutine and waits for it to exit.
// Safe to call when the loop is not running.
func (ctrl *Controller) stopRenderLoop() {
	ctrl.loopMu.Lock()
	stopC := ctrl.loopStopC
	doneC := ctrl.loopDoneC
	ctrl.loopStopC = nil
	ctrl.loopDoneC = nil
	ctrl.loopMu.Unlock()

	if stopC == nil {
		return
	}
	close(stopC)
	<-doneC
}

// LoopRunning reports whether the render goroutine is active
func (ctrl *Controller) LoopRunning() bool {
	ctrl.loopMu.Lock()
	defer ctrl.loopMu.Unlock()
	return ctrl.loopStopC != nil
}

func (ctrl *Controller) engineHasAnimated() bool {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	return ctrl.engine.HasAnimatedEnabled()
}

// Sync reconciles the render loop with the composition.  While any
// animated preset contributes the loop must run, otherwise it is
// stopped and, when asked, one static frame is rendered to flush the
// new state to the device.
func (ctrl *Controller) Sync(refreshStaticFrame bool) {
	if ctrl.engineHasAnimated() {
		if !ctrl.LoopRunning() {
			ctrl.renderOnce(0)
			ctrl.startRenderLoop()
		}
		return
	}
	ctrl.stopRenderLoop()
	if refreshStaticFrame {
		ctrl.renderOnce(0)
	}
}

// SetDrawList installs the painter's order playlist
func (ctrl *Controller) SetDrawList(indices []int) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	ctrl.engine.SetDrawList(indices)
}

// ApplyPresetMasks replaces the whole mask set
func (ctrl *Controller) ApplyPresetMasks(masks [][]bool) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	ctrl.engine.SetPresetMasks(masks)
}

// ApplyPresetMask replaces a single preset's mask
func (ctrl *Controller) ApplyPresetMask(index int, mask []bool) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	if err := ctrl.engine.SetPresetMask(index, mask); err != nil {
		ctrl.logger.Warn("mask rejected", "error", err.Error())
	}
}

// ApplyPresetParameter updates the stored parameter map for a preset
// and reconfigures it
func (ctrl *Controller) ApplyPresetParameter(index int, key string, value string) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	ctrl.setParameterLocked(index, key, value)
}

// RefreshRender re-renders after a batch of watcher mutations
func (ctrl *Controller) RefreshRender() {
	ctrl.Sync(true)
}

func (ctrl *Controller) setParameterLocked(index int, key string, value string) (ok bool) {
	p, isPresent := ctrl.engine.PresetAt(index)
	if !isPresent {
		return false
	}
	for len(ctrl.presetParams) < ctrl.engine.PresetCount() {
		ctrl.presetParams = append(ctrl.presetParams, map[string]string{})
	}
	if ctrl.presetParams[index] == nil {
		ctrl.presetParams[index] = map[string]string{}
	}
	ctrl.presetParams[index][key] = value
	p.Configure(ctrl.presetParams[index])
	return true
}

func (ctrl *Controller) togglePreset(index int) (ok bool) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	enabled, isPresent := ctrl.engine.PresetEnabled(index)
	if !isPresent {
		return false
	}
	ctrl.engine.SetPresetEnabled(index, !enabled)
	return true
}

func (ctrl *Controller) setPresetParameter(index int, key string, value string) (ok bool) {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()
	return ctrl.setParameterLocked(index, key, value)
}

func (ctrl *Controller) printBanner() {
	kb := ctrl.engine.kb
	fmt.Fprintf(ctrl.Out, "Keyboard: %s (%d:%d)\n", kb.Name(), kb.VendorID(), kb.ProductID())
}

func (ctrl *Controller) printHelp() {
	fmt.Fprint(ctrl.Out, "Commands:\n"+
		"  help                     - show this help\n"+
		"  list                     - list presets\n"+
		"  toggle <index>          - toggle preset on/off\n"+
		"  set <index> <key> <val> - set preset parameter\n"+
		"  frame <ms>              - set frame interval for animated presets\n"+
		"  quit                     - exit\n")
}

func (ctrl *Controller) printPresets() {
	ctrl.engineMu.Lock()
	defer ctrl.engineMu.Unlock()

	fmt.Fprintln(ctrl.Out, "Presets:")
	for i := 0; i < ctrl.engine.PresetCount(); i++ {
		p, _ := ctrl.engine.PresetAt(i)
		enabled, _ := ctrl.engine.PresetEnabled(i)
		state := "off"
		if enabled {
			state = "on"
		}
		line := fmt.Sprintf("  [%d] %s (%s", i, p.ID(), state)
		if p.Animated() {
			line += ", animated"
		}
		line += ")"

		if i < len(ctrl.presetParams) && len(ctrl.presetParams[i]) != 0 {
			keys := make([]string, 0, len(ctrl.presetParams[i]))
			for key := range ctrl.presetParams[i] {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, key := range keys {
				pairs = append(pairs, key+"="+ctrl.presetParams[i][key])
			}
			line += " params={" + strings.Join(pairs, ", ") + "}"
		}
		fmt.Fprintln(ctrl.Out, line)
	}
}

// Run drives the interactive prompt until quit or EOF, then stops the
// render loop
func (ctrl *Controller) Run() {
	ctrl.printBanner()
	ctrl.printHelp()
	ctrl.printPresets()

	ctrl.Sync(true)

	scanner := bufio.NewScanner(ctrl.In)
	for {
		fmt.Fprint(ctrl.Out, "> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			ctrl.printHelp()
		case "list":
			ctrl.printPresets()
		case "toggle":
			index, ok := parseIndex(fields, 1)
			if !ok || !ctrl.togglePreset(index) {
				fmt.Fprintln(ctrl.Out, "Invalid preset index")
				continue
			}
			ctrl.Sync(true)
			fmt.Fprintf(ctrl.Out, "Toggled preset %d\n", index)
		case "set":
			index, ok := parseIndex(fields, 1)
			if !ok || len(fields) < 4 || !ctrl.setPresetParameter(index, fields[2], fields[3]) {
				fmt.Fprintln(ctrl.Out, "Invalid set command")
				continue
			}
			ctrl.Sync(true)
			fmt.Fprintf(ctrl.Out, "Updated preset %d parameter %s\n", index, fields[2])
		case "frame":
			interval, ok := parseIndex(fields, 1)
			if !ok || interval <= 0 {
				fmt.Fprintln(ctrl.Out, "Invalid frame interval")
				continue
			}
			ctrl.SetFrameInterval(int64(interval))
			fmt.Fprintf(ctrl.Out, "Frame interval set to %d ms\n", interval)
		case "quit", "exit":
			ctrl.stopRenderLoop()
			fmt.Fprintln(ctrl.Out, "Exiting configurator")
			return
		default:
			fmt.Fprintln(ctrl.Out, "Unknown command")
		}
	}

	ctrl.stopRenderLoop()
	fmt.Fprintln(ctrl.Out, "Exiting configurator")
}

func parseIndex(fields []string, pos int) (index int, ok bool) {
	if pos >= len(fields) {
		return 0, false
	}
	parsed, errGo := strconv.Atoi(fields[pos])
	if errGo != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}
