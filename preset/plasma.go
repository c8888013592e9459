package preset

import (
	"math"

	"github.com/EvanSunde/sinodragon/model"
)

// LiquidPlasma layers several travelling sine fields over the layout
// plane and maps the interference pattern onto the hue circle
type LiquidPlasma struct {
	speed      float64
	scale      float64
	saturation float64
	value      float64

	tint    model.RgbColor
	tintMix float64
	useTint bool

	coords keyCoords
}

func NewLiquidPlasma() (p *LiquidPlasma) {
	return &LiquidPlasma{
		speed:      0.2,
		scale:      2.0,
		saturation: 1.0,
		value:      1.0,
		tintMix:    0.5,
	}
}

func (p *LiquidPlasma) ID() string { return "liquid_plasma" }

func (p *LiquidPlasma) Configure(params map[string]string) {
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

func (p *LiquidPlasma) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	if !p.coords.ready(kb) {
		p.coords.build(kb)
	}

	t := timeSeconds * p.speed * 2.0 * math.Pi
	for idx := 0; idx < kb.KeyCount(); idx++ {
		x := p.coords.xs[idx] * p.scale
		y := p.coords.ys[idx] * p.scale

		v := math.Sin(3.0*x + t)
		v += math.Sin(4.0*(y+0.25) + t*1.37)
		v += math.Sin(5.0*(x+y) + t*0.73)
		v += math.Sin(6.0*math.Sqrt(x*x+y*y+1e-6) + t*1.61)
		v = clamp01((v + 4.0) * 0.125)

		color := hsv(360.0*v, p.saturation, p.value)
		if p.useTint {
			color = blend(color, p.tint, p.tintMix)
		}
		frame.SetColor(idx, color)
	}
}

func (p *LiquidPlasma) Animated() bool { return true }
