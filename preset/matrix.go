package preset

import (
	"math"
	"math/rand"

	"github.com/EvanSunde/sinodragon/model"
)

// StarMatrix twinkles a sparse set of keys, each star on its own phase
// so the field shimmers rather than pulsing in unison
type StarMatrix struct {
	density      float64
	twinkleSpeed float64
	color        model.RgbColor

	phases []float64
	stars  []bool
}

func NewStarMatrix() (p *StarMatrix) {
	return &StarMatrix{
		density:      0.18,
		twinkleSpeed: 1.2,
		color:        model.RgbColor{R: 0xC8, G: 0xD8, B: 0xFF},
	}
}

func (p *StarMatrix) ID() string { return "star_matrix" }

func (p *StarMatrix) Configure(params map[string]string) {
	previous := p.density
	parseFloat(params, "density", &p.density, 0)
	p.density = clamp01(p.density)
	parseFloat(params, "twinkle_speed", &p.twinkleSpeed, 0.01)
	if value, isPresent := params["color"]; isPresent {
		if color, ok := parseColor(value); ok {
			p.color = color
		}
	}
	if p.density != previous {
		p.stars = nil
	}
}

func (p *StarMatrix) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	total := kb.KeyCount()
	if len(p.stars) != total {
		p.seed(total)
	}

	for idx := 0; idx < total; idx++ {
		if !p.stars[idx] {
			continue
		}
		glow := 0.5 + 0.5*math.Sin(timeSeconds*p.twinkleSpeed*2*math.Pi+p.phases[idx])
		frame.SetColor(idx, model.RgbColor{
			R: uint8(float64(p.color.R) * glow),
			G: uint8(float64(p.color.G) * glow),
			B: uint8(float64(p.color.B) * glow),
		})
	}
}

func (p *StarMatrix) Animated() bool { return true }

func (p *StarMatrix) seed(total int) {
	rng := rand.New(rand.NewSource(int64(total) + 0x57A2))
	p.stars = make([]bool, total)
	p.phases = make([]float64, total)
	for idx := 0; idx < total; idx++ {
		p.stars[idx] = rng.Float64() < p.density
		p.phases[idx] = rng.Float64() * 2 * math.Pi
	}
}
