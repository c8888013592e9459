package sinodragon

import (
	"bytes"
	"testing"

	"github.com/EvanSunde/sinodragon/model"
	"github.com/EvanSunde/sinodragon/preset"
)

func enginePayload(t *testing.T, engine *EffectEngine, transport *captureTransport, timeSeconds float64) []byte {
	t.Helper()
	engine.RenderFrame(timeSeconds)
	if ok, err := engine.PushFrame(); err != nil || !ok {
		t.Fatalf("push failed: ok=%v err=%v", ok, err)
	}
	return transport.lastPayload()
}

func TestMaskedOverlayReplace(t *testing.T) {
	// Two keys, no header, A paints red everywhere, B blue everywhere.
	// B's mask only admits key 0, so key 0 ends blue and key 1 stays
	// red.
	transport := &captureTransport{}
	kb := testKeyboard(t, []string{"A", "B"}, []byte{}, 6)
	engine := NewEffectEngine(kb, transport)

	engine.SetPresets([]preset.Preset{
		&fillPreset{id: "a", color: model.RgbColor{R: 255}},
		&fillPreset{id: "b", color: model.RgbColor{B: 255}},
	}, nil)
	engine.SetDrawList([]int{0, 1})
	if err := engine.SetPresetMask(1, []bool{true, false}); err != nil {
		t.Fatalf("mask rejected: %v", err)
	}

	payload := enginePayload(t, engine, transport, 0)
	expected := []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
	if !bytes.Equal(payload, expected) {
		t.Fatalf("payload %x, expected %x", payload, expected)
	}
}

func TestMaskRoundTrip(t *testing.T) {
	kb := testKeyboard(t, []string{"A", "B", "C"}, []byte{}, 9)
	engine := NewEffectEngine(kb, &captureTransport{})
	engine.SetPresets([]preset.Preset{&fillPreset{id: "a"}}, nil)

	mask := []bool{true, false, true}
	if err := engine.SetPresetMask(0, mask); err != nil {
		t.Fatalf("mask rejected: %v", err)
	}
	got, isPresent := engine.PresetMask(0)
	if !isPresent {
		t.Fatal("mask missing")
	}
	for i := range mask {
		if got[i] != mask[i] {
			t.Fatalf("mask[%d] = %v, expected %v", i, got[i], mask[i])
		}
	}

	// The returned mask is a copy, mutating it must not reach the
	// engine
	got[0] = false
	again, _ := engine.PresetMask(0)
	if !again[0] {
		t.Fatal("mask snapshot aliases engine storage")
	}
}

func TestMaskLengthRejected(t *testing.T) {
	kb := testKeyboard(t, []string{"A", "B"}, []byte{}, 6)
	engine := NewEffectEngine(kb, &captureTransport{})
	engine.SetPresets([]preset.Preset{&fillPreset{id: "a"}}, nil)

	if err := engine.SetPresetMask(0, []bool{true}); err == nil {
		t.Fatal("short mask accepted")
	}
	if err := engine.SetPresetMask(3, []bool{true, true}); err == nil {
		t.Fatal("out of range index accepted")
	}
}

func TestSetPresetMasksCountMismatchIsNoop(t *testing.T) {
	kb := testKeyboard(t, []string{"A", "B"}, []byte{}, 6)
	engine := NewEffectEngine(kb, &captureTransport{})
	engine.SetPresets([]preset.Preset{&fillPreset{id: "a"}, &fillPreset{id: "b"}}, nil)

	engine.SetPresetMasks([][]bool{{false, false}})
	mask, _ := engine.PresetMask(0)
	if !mask[0] || !mask[1] {
		t.Fatal("count mismatch mutated masks")
	}

	// Per element length mismatches skip that element only
	engine.SetPresetMasks([][]bool{{false, false}, {true}})
	mask0, _ := engine.PresetMask(0)
	mask1, _ := engine.PresetMask(1)
	if mask0[0] || mask0[1] {
		t.Fatal("well formed element was not applied")
	}
	if !mask1[0] || !mask1[1] {
		t.Fatal("malformed element was applied")
	}
}

func TestDrawListFallbackMatchesFreshEngine(t *testing.T) {
	build := func(transport Transport) *EffectEngine {
		kb := testKeyboard(t, []string{"A", "B"}, []byte{}, 6)
		engine := NewEffectEngine(kb, transport)
		engine.SetPresets([]preset.Preset{
			&fillPreset{id: "a", color: model.RgbColor{R: 16}},
			&fillPreset{id: "b", color: model.RgbColor{G: 32}},
		}, nil)
		return engine
	}

	fresh := &captureTransport{}
	reference := enginePayload(t, build(fresh), fresh, 0)

	mutated := &captureTransport{}
	engine := build(mutated)
	engine.SetDrawList([]int{1, 0})
	engine.SetDrawList([]int{})
	restored := enginePayload(t, engine, mutated, 0)

	if !bytes.Equal(reference, restored) {
		t.Fatalf("fallback composition %x differs from fresh engine %x", restored, reference)
	}
}

func TestDrawListDropsOutOfRange(t *testing.T) {
	kb := testKeyboard(t, []string{"A"}, []byte{}, 3)
	engine := NewEffectEngine(kb, &captureTransport{})
	engine.SetPresets([]preset.Preset{&fillPreset{id: "a"}, &fillPreset{id: "b"}}, nil)

	engine.SetDrawList([]int{1, 7, -1, 0})
	got := engine.DrawList()
	if len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Fatalf("draw list %v, expected [1 0]", got)
	}
}

func TestDrawListDuplicatesPaintTwice(t *testing.T) {
	// A duplicated entry is rendered again in order, documented
	// behavior with no dedup.  The later pass wins where masks admit.
	transport := &captureTransport{}
	kb := testKeyboard(t, []string{"A"}, []byte{}, 3)
	engine := NewEffectEngine(kb, transport)

	counter := &countingPreset{color: model.RgbColor{R: 1}}
	engine.SetPresets([]preset.Preset{counter}, nil)
	engine.SetDrawList([]int{0, 0, 0})

	enginePayload(t, engine, transport, 0)
	if counter.renders != 3 {
		t.Fatalf("preset rendered %d times, expected 3", counter.renders)
	}
}

func TestHasAnimatedEnabled(t *testing.T) {
	kb := testKeyboard(t, []string{"A"}, []byte{}, 3)
	engine := NewEffectEngine(kb, &captureTransport{})
	engine.SetPresets([]preset.Preset{
		&fillPreset{id: "static"},
		&fillPreset{id: "wave", animated: true},
	}, nil)

	// Default enabled set is first-on rest-off and the first preset is
	// static
	if engine.HasAnimatedEnabled() {
		t.Fatal("static only composition reported animated")
	}

	engine.SetPresetEnabled(1, true)
	if !engine.HasAnimatedEnabled() {
		t.Fatal("animated contributor not reported")
	}

	// A draw list naming only the static preset supersedes the enabled
	// flags
	engine.SetDrawList([]int{0})
	if engine.HasAnimatedEnabled() {
		t.Fatal("draw list excluded the animated preset but it was still reported")
	}

	engine.SetDrawList([]int{1})
	if !engine.HasAnimatedEnabled() {
		t.Fatal("animated draw list entry not reported")
	}
}

func TestAllMasksFalseEncodesBlack(t *testing.T) {
	transport := &captureTransport{}
	kb := testKeyboard(t, []string{"A", "B"}, []byte{0x7F}, 7)
	engine := NewEffectEngine(kb, transport)
	engine.SetPresets([]preset.Preset{&fillPreset{id: "a", color: model.RgbColor{R: 255, G: 255, B: 255}}}, nil)
	engine.SetPresetMask(0, []bool{false, false})

	payload := enginePayload(t, engine, transport, 0)
	expected := []byte{0x7F, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(payload, expected) {
		t.Fatalf("payload %x, expected header plus zeros %x", payload, expected)
	}
}

func TestSetPresetEnabledBounds(t *testing.T) {
	kb := testKeyboard(t, []string{"A"}, []byte{}, 3)
	engine := NewEffectEngine(kb, &captureTransport{})
	engine.SetPresets([]preset.Preset{&fillPreset{id: "a"}}, nil)

	if engine.SetPresetEnabled(5, true) {
		t.Fatal("out of range enable accepted")
	}
	if !engine.SetPresetEnabled(0, false) {
		t.Fatal("in range enable rejected")
	}
}

type countingPreset struct {
	color   model.RgbColor
	renders int
}

func (p *countingPreset) ID() string { return "counting" }

func (p *countingPreset) Configure(params map[string]string) {}

func (p *countingPreset) Animated() bool { return false }

func (p *countingPreset) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	p.renders++
	frame.Fill(p.color)
}
