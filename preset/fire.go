package preset

import (
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/EvanSunde/sinodragon/model"
)

// DoomFire runs the classic fire propagation over a heat grid shaped
// like the layout, sparks rising from the bottom row.  The heat to
// color palette is a Lab space gradient through the configured stops.
type DoomFire struct {
	speed          float64
	cooling        float64
	sparkChance    float64
	sparkIntensity float64
	stepInterval   float64

	stops   []model.RgbColor
	palette [256]model.RgbColor

	rows, cols int
	heat       []float64
	keyToCell  []int
	gridBuilt  bool
	lastTime   float64
	pending    float64

	rng *rand.Rand
}

func NewDoomFire() (p *DoomFire) {
	p = &DoomFire{
		speed:          1.0,
		cooling:        0.35,
		sparkChance:    0.4,
		sparkIntensity: 1.0,
		stepInterval:   0.045,
		stops: []model.RgbColor{
			{},
			{R: 0x80, G: 0x10, B: 0x00},
			{R: 0xFF, G: 0x60, B: 0x00},
			{R: 0xFF, G: 0xE0, B: 0x60},
		},
		rng: rand.New(rand.NewSource(0x51)),
	}
	p.buildPalette()
	return p
}

func (p *DoomFire) ID() string { return "doom_fire" }

func (p *DoomFire) Configure(params map[string]string) {
	parseFloat(params, "speed", &p.speed, 0.01)
	parseFloat(params, "cooling", &p.cooling, 0)
	parseFloat(params, "spark_chance", &p.sparkChance, 0)
	parseFloat(params, "spark_intensity", &p.sparkIntensity, 0)
	parseFloat(params, "step_interval", &p.stepInterval, 0.001)

	if value, isPresent := params["palette"]; isPresent {
		stops := []model.RgbColor{}
		for _, token := range strings.Split(value, ",") {
			if color, ok := parseColor(strings.TrimSpace(token)); ok {
				stops = append(stops, color)
			}
		}
		if len(stops) >= 2 {
			p.stops = stops
			p.buildPalette()
		}
	}
}

func (p *DoomFire) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	if !p.gridBuilt || len(p.keyToCell) != kb.KeyCount() {
		p.buildGrid(kb)
	}
	if !p.gridBuilt {
		return
	}

	if p.lastTime == 0 {
		p.lastTime = timeSeconds
	}
	delta := timeSeconds - p.lastTime
	if delta < 0 {
		delta = 0
	}
	p.lastTime = timeSeconds

	p.pending += delta * p.speed
	for p.pending >= p.stepInterval {
		p.pending -= p.stepInterval
		p.step()
	}

	for key := 0; key < kb.KeyCount(); key++ {
		cell := p.keyToCell[key]
		if cell < 0 {
			continue
		}
		heat := clamp01(p.heat[cell])
		frame.SetColor(key, p.palette[int(heat*255)])
	}
}

func (p *DoomFire) Animated() bool { return true }

func (p *DoomFire) buildGrid(kb *model.Keyboard) {
	layout := kb.Layout()
	p.rows = len(layout)
	p.cols = 0
	for _, row := range layout {
		if len(row) > p.cols {
			p.cols = len(row)
		}
	}
	if p.rows == 0 || p.cols == 0 {
		p.gridBuilt = false
		return
	}

	p.heat = make([]float64, p.rows*p.cols)
	p.keyToCell = make([]int, kb.KeyCount())
	idx := 0
	for r, row := range layout {
		for c := range row {
			p.keyToCell[idx] = r*p.cols + c
			idx++
		}
	}
	p.gridBuilt = true
}

// step seeds sparks along the bottom row and drifts heat upward with
// random cooling
func (p *DoomFire) step() {
	bottom := (p.rows - 1) * p.cols
	for c := 0; c < p.cols; c++ {
		if p.rng.Float64() < p.sparkChance {
			p.heat[bottom+c] = p.sparkIntensity
		}
	}
	for r := 0; r < p.rows-1; r++ {
		for c := 0; c < p.cols; c++ {
			src := (r+1)*p.cols + c
			drift := c + p.rng.Intn(3) - 1
			if drift < 0 {
				drift = 0
			}
			if drift >= p.cols {
				drift = p.cols - 1
			}
			value := p.heat[src] - p.rng.Float64()*p.cooling
			if value < 0 {
				value = 0
			}
			p.heat[r*p.cols+drift] = value
		}
	}
}

func (p *DoomFire) buildPalette() {
	segments := len(p.stops) - 1
	for i := range p.palette {
		pos := float64(i) / 255.0 * float64(segments)
		seg := int(pos)
		if seg >= segments {
			seg = segments - 1
		}
		a := p.stops[seg]
		b := p.stops[seg+1]
		ca := colorful.Color{R: float64(a.R) / 255.0, G: float64(a.G) / 255.0, B: float64(a.B) / 255.0}
		cb := colorful.Color{R: float64(b.R) / 255.0, G: float64(b.G) / 255.0, B: float64(b.B) / 255.0}
		r, g, bb := ca.BlendLab(cb, pos-float64(seg)).RGB255()
		p.palette[i] = model.RgbColor{R: r, G: g, B: bb}
	}
}
