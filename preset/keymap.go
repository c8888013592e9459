package preset

import (
	"strings"

	"github.com/EvanSunde/sinodragon/model"
)

// KeyMap paints a background color and then individual keys configured
// as key.<LABEL>=#RRGGBB parameters, useful for fixed highlight schemes
type KeyMap struct {
	background  model.RgbColor
	labelColors map[string]model.RgbColor
}

func NewKeyMap() (p *KeyMap) {
	return &KeyMap{labelColors: map[string]model.RgbColor{}}
}

func (p *KeyMap) ID() string { return "key_map" }

func (p *KeyMap) Configure(params map[string]string) {
	if value, isPresent := params["background"]; isPresent {
		if color, ok := parseColor(value); ok {
			p.background = color
		}
	}
	labelColors := map[string]model.RgbColor{}
	for key, value := range params {
		if !strings.HasPrefix(key, "key.") || len(key) == len("key.") {
			continue
		}
		if color, ok := parseColor(value); ok {
			labelColors[key[len("key."):]] = color
		}
	}
	if len(labelColors) != 0 {
		p.labelColors = labelColors
	}
}

func (p *KeyMap) Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame) {
	frame.Fill(p.background)
	for label, color := range p.labelColors {
		if index, isPresent := kb.IndexForKey(label); isPresent {
			frame.SetColor(index, color)
		}
	}
}

func (p *KeyMap) Animated() bool { return false }
