package preset

import (
	"github.com/EvanSunde/sinodragon/model"
)

// StaticColor floods every key with a single configured color.  It is
// the default preset and the one the shortcut overlay paints with.
type StaticColor struct {
	color model.RgbColor
}

func NewStaticColor() (p *StaticColor) {
	return &StaticColor{color: model.RgbColor{R: 255, G: 255, B: 255}}
}

func (p *StaticColor) ID() string { return "static_color" }

func (p *StaticColor) Configure(params map[string]string) {
	if value, isPresent := params["color"]; isPresent {
		if color, ok := parseColor(value); ok {
			p.color = color
		}
	}
}

func (p *StaticColor) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	frame.Fill(p.color)
}

func (p *StaticColor) Animated() bool { return false }
