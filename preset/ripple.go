package preset

import (
	"math"

	"github.com/EvanSunde/sinodragon/activity"
	"github.com/EvanSunde/sinodragon/model"
)

// ReactiveRipple paints expanding rings around recent key presses read
// from the activity bus, additively over a base color
type ReactiveRipple struct {
	waveSpeed      float64
	decayTime      float64
	thickness      float64
	historyWindow  float64
	intensityScale float64

	rippleColor model.RgbColor
	baseColor   model.RgbColor

	bus    *activity.Bus
	coords keyCoords
}

func NewReactiveRipple() (p *ReactiveRipple) {
	return &ReactiveRipple{
		waveSpeed:      0.6,
		decayTime:      0.8,
		thickness:      0.12,
		historyWindow:  2.0,
		intensityScale: 1.0,
		rippleColor:    model.RgbColor{R: 255, G: 255, B: 255},
	}
}

func (p *ReactiveRipple) ID() string { return "reactive_ripple" }

func (p *ReactiveRipple) Configure(params map[string]string) {
	parseFloat(params, "wave_speed", &p.waveSpeed, 0.1)
	parseFloat(params, "decay_time", &p.decayTime, 0.05)
	parseFloat(params, "thickness", &p.thickness, 0.01)
	parseFloat(params, "history", &p.historyWindow, 0.1)
	parseFloat(params, "intensity", &p.intensityScale, 0)
	if value, isPresent := params["color"]; isPresent {
		if color, ok := parseColor(value); ok {
			p.rippleColor = color
		}
	}
	if value, isPresent := params["base_color"]; isPresent {
		if color, ok := parseColor(value); ok {
			p.baseColor = color
		}
	}
}

func (p *ReactiveRipple) BindActivity(bus *activity.Bus) { p.bus = bus }

func (p *ReactiveRipple) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	frame.Fill(p.baseColor)

	if p.bus == nil {
		return
	}
	if !p.coords.ready(kb) {
		p.coords.build(kb)
	}

	events := p.bus.Recent(p.historyWindow)
	if len(events) == 0 {
		return
	}

	total := kb.KeyCount()
	contributions := make([]float64, total)
	now := p.bus.Now()
	for _, ev := range events {
		if ev.KeyIndex >= total {
			continue
		}
		ex := p.coords.xs[ev.KeyIndex]
		ey := p.coords.ys[ev.KeyIndex]
		age := now - ev.TimeSeconds
		if age < 0 {
			age = 0
		}
		radius := p.waveSpeed * age
		if radius <= 0 {
			continue
		}
		decayFactor := math.Exp(-age / p.decayTime)
		for k := 0; k < total; k++ {
			dx := p.coords.xs[k] - ex
			dy := p.coords.ys[k] - ey
			diff := math.Abs(math.Sqrt(dx*dx+dy*dy) - radius)
			if diff > p.thickness {
				continue
			}
			contributions[k] += (1.0 - diff/p.thickness) * decayFactor * ev.Intensity * p.intensityScale
		}
	}

	for k := 0; k < total; k++ {
		add := contributions[k]
		if add <= 0 {
			continue
		}
		color, _ := frame.Color(k)
		color.R = addChannel(color.R, p.rippleColor.R, add)
		color.G = addChannel(color.G, p.rippleColor.G, add)
		color.B = addChannel(color.B, p.rippleColor.B, add)
		frame.SetColor(k, color)
	}
}

func (p *ReactiveRipple) Animated() bool { return true }

func addChannel(base uint8, ripple uint8, amount float64) uint8 {
	value := math.Round(float64(base) + float64(ripple)*amount)
	if value > 255 {
		return 255
	}
	if value < 0 {
		return 0
	}
	return uint8(value)
}
