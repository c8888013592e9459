package sinodragon

// This module implements the effect engine, the stack of masked
// lighting presets that is composed in painter's order into one output
// frame per tick and pushed through the device transport.  The engine
// carries no locking of its own, the controller serializes all access
// behind its engine mutex.

import (
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/EvanSunde/sinodragon/activity"
	"github.com/EvanSunde/sinodragon/model"
	"github.com/EvanSunde/sinodragon/preset"
)

type EffectEngine struct {
	kb        *model.Keyboard
	transport Transport
	bus       *activity.Bus

	presets  []preset.Preset
	ids      []string
	animated []bool
	enabled  []bool
	masks    [][]bool

	// drawList, when non empty, supersedes the enabled flags and gives
	// the exact painter's order
	drawList []int

	frame   *model.Frame
	scratch *model.Frame
}

func NewEffectEngine(kb *model.Keyboard, transport Transport) (engine *EffectEngine) {
	return &EffectEngine{
		kb:        kb,
		transport: transport,
		frame:     model.NewFrame(kb.KeyCount()),
		scratch:   model.NewFrame(kb.KeyCount()),
	}
}

// BindActivity hands the keystroke bus to every reactive preset in the
// stack.  Called again after SetPresets replaces the stack.
func (engine *EffectEngine) BindActivity(bus *activity.Bus) {
	engine.bus = bus
	for _, p := range engine.presets {
		if binder, ok := p.(preset.ActivityBinder); ok {
			binder.BindActivity(bus)
		}
	}
}

// SetPresets replaces the preset stack.  The draw list is reset, the
// enabled flags default to first-on rest-off, and every mask defaults
// to all keys.  Supplied masks override the defaults per preset when
// their length matches the key count.
func (engine *EffectEngine) SetPresets(presets []preset.Preset, masks [][]bool) {
	engine.presets = presets
	engine.ids = make([]string, len(presets))
	engine.animated = make([]bool, len(presets))
	for i, p := range presets {
		engine.ids[i] = p.ID()
		engine.animated[i] = p.Animated()
	}

	engine.drawList = nil
	engine.enabled = make([]bool, len(presets))
	if len(engine.enabled) != 0 {
		engine.enabled[0] = true
	}

	keyCount := engine.kb.KeyCount()
	engine.masks = make([][]bool, len(presets))
	for i := range engine.masks {
		mask := make([]bool, keyCount)
		for k := range mask {
			mask[k] = true
		}
		engine.masks[i] = mask
	}
	for i, mask := range masks {
		if i < len(engine.masks) && len(mask) == keyCount {
			engine.masks[i] = append([]bool{}, mask...)
		}
	}

	engine.frame.Resize(keyCount)
	if engine.bus != nil {
		engine.BindActivity(engine.bus)
	}
}

func (engine *EffectEngine) PresetCount() int { return len(engine.presets) }

func (engine *EffectEngine) PresetID(index int) (id string, isPresent bool) {
	if index < 0 || index >= len(engine.ids) {
		return "", false
	}
	return engine.ids[index], true
}

// PresetAt exposes a preset for reconfiguration
func (engine *EffectEngine) PresetAt(index int) (p preset.Preset, isPresent bool) {
	if index < 0 || index >= len(engine.presets) {
		return nil, false
	}
	return engine.presets[index], true
}

// SetDrawList clones the painter's order playlist.  Out of range
// indices are dropped silently.  An empty list restores the fallback
// composition driven by the enabled flags.
func (engine *EffectEngine) SetDrawList(indices []int) {
	drawList := make([]int, 0, len(indices))
	for _, index := range indices {
		if index >= 0 && index < len(engine.presets) {
			drawList = append(drawList, index)
		}
	}
	engine.drawList = drawList
}

func (engine *EffectEngine) DrawList() (indices []int) {
	return append([]int{}, engine.drawList...)
}

func (engine *EffectEngine) SetPresetEnabled(index int, enabled bool) (ok bool) {
	if index < 0 || index >= len(engine.enabled) {
		return false
	}
	engine.enabled[index] = enabled
	return true
}

func (engine *EffectEngine) PresetEnabled(index int) (enabled bool, isPresent bool) {
	if index < 0 || index >= len(engine.enabled) {
		return false, false
	}
	return engine.enabled[index], true
}

func (engine *EffectEngine) SetPresetMask(index int, mask []bool) (err errors.Error) {
	if index < 0 || index >= len(engine.masks) {
		return errors.New("preset index out of range").With("index", index).
			With("presets", len(engine.masks)).With("stack", stack.Trace().TrimRuntime())
	}
	if len(mask) != engine.kb.KeyCount() {
		return errors.New("mask length does not match key count").With("index", index).
			With("mask", len(mask)).With("keys", engine.kb.KeyCount()).With("stack", stack.Trace().TrimRuntime())
	}
	engine.masks[index] = append([]bool{}, mask...)
	return nil
}

// SetPresetMasks replaces the whole mask set.  A count mismatch is a
// no-op, individual length mismatches skip that element only.
func (engine *EffectEngine) SetPresetMasks(masks [][]bool) {
	if len(masks) != len(engine.masks) {
		return
	}
	keyCount := engine.kb.KeyCount()
	for i, mask := range masks {
		if len(mask) == keyCount {
			engine.masks[i] = append([]bool{}, mask...)
		}
	}
}

func (engine *EffectEngine) PresetMask(index int) (mask []bool, isPresent bool) {
	if index < 0 || index >= len(engine.masks) {
		return nil, false
	}
	return append([]bool{}, engine.masks[index]...), true
}

// activeOrder resolves the effective painter's order, the draw list
// when one is set, otherwise every enabled preset in ascending index
// order
func (engine *EffectEngine) activeOrder() (order []int) {
	if len(engine.drawList) != 0 {
		return engine.drawList
	}
	for i := range engine.presets {
		if engine.enabled[i] {
			order = append(order, i)
		}
	}
	return order
}

// HasAnimatedEnabled reports whether any preset contributing to the
// current composition is animated, which decides whether the render
// loop needs to run
func (engine *EffectEngine) HasAnimatedEnabled() bool {
	for _, index := range engine.activeOrder() {
		if engine.animated[index] {
			return true
		}
	}
	return false
}

// RenderFrame composes one output frame for the supplied time.  Every
// contributing preset paints the full geometry into a scratch frame and
// its mask decides which keys it actually writes, later painters
// replacing earlier ones.
func (engine *EffectEngine) RenderFrame(timeSeconds float64) {
	keyCount := engine.kb.KeyCount()
	if engine.frame.Size() != keyCount {
		engine.frame.Resize(keyCount)
	}
	engine.frame.Fill(model.RgbColor{})

	for _, index := range engine.activeOrder() {
		engine.scratch.Resize(keyCount)
		engine.presets[index].Render(engine.kb, timeSeconds, engine.scratch)

		mask := engine.masks[index]
		for k := 0; k < keyCount; k++ {
			if mask[k] {
				color, _ := engine.scratch.Color(k)
				engine.frame.SetColor(k, color)
			}
		}
	}
}

// Frame exposes the most recently composed frame
func (engine *EffectEngine) Frame() *model.Frame { return engine.frame }

// PushFrame encodes the current frame and hands it to the transport.
// Encoding failures and transport refusals are both reported as false,
// the render loop logs and carries on.
func (engine *EffectEngine) PushFrame() (ok bool, err errors.Error) {
	payload, err := engine.kb.EncodeFrame(engine.frame)
	if err != nil {
		return false, err
	}
	return engine.transport.SendFrame(engine.kb, payload), nil
}
