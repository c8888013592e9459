package preset

import (
	"math"

	"github.com/EvanSunde/sinodragon/model"
)

// RainbowWave sweeps the hue circle along the key index order, the
// classic moving rainbow
type RainbowWave struct {
	speed      float64
	scale      float64
	saturation float64
	value      float64

	tint    model.RgbColor
	tintMix float64
	useTint bool
}

func NewRainbowWave() (p *RainbowWave) {
	return &RainbowWave{
		speed:      0.1,
		scale:      0.02,
		saturation: 1.0,
		value:      1.0,
		tintMix:    0.5,
	}
}

func (p *RainbowWave) ID() string { return "rainbow_wave" }

func (p *RainbowWave) Configure(params map[string]string) {
	parseFloat(params, "speed", &p.speed, 0)
	parseFloat(params, "scale", &p.scale, 0)
	parseFloat(params, "saturation", &p.saturation, 0)
	parseFloat(params, "value", &p.value, 0)
	if value, isPresent := params["tint"]; isPresent {
		if color, ok := parseColor(value); ok {
			p.tint = color
			p.useTint = true
		}
	}
	if _, isPresent := params["tint_mix"]; isPresent {
		p.useTint = true
		parseFloat(params, "tint_mix", &p.tintMix, 0)
		p.tintMix = clamp01(p.tintMix)
	}
}

func (p *RainbowWave) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	for idx := 0; idx < kb.KeyCount(); idx++ {
		phase := math.Mod((float64(idx)*p.scale+timeSeconds*p.speed)*360.0, 360.0)
		if phase < 0 {
			phase += 360.0
		}
		color := hsv(phase, p.saturation, p.value)
		if p.useTint {
			color = blend(color, p.tint, p.tintMix)
		}
		frame.SetColor(idx, color)
	}
}

func (p *RainbowWave) Animated() bool { return true }
