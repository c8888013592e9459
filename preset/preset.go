/*
Package preset contains the lighting presets that can be stacked by the
effect engine.  Each preset is one named source of per-key color with a
textual parameter map, painting a whole frame for a point in time.  The
engine composes presets through per-preset masks so presets are free to
paint the entire geometry.
*/
package preset

import (
	"sort"
	"strconv"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/EvanSunde/sinodragon/activity"
	"github.com/EvanSunde/sinodragon/model"
)

// Preset is the capability every lighting preset satisfies
type Preset interface {
	// ID returns the stable identifier used by the registry and UI
	ID() string

	// Configure accepts textual parameters.  Invalid values are
	// ignored, keeping whatever was previously configured.
	Configure(params map[string]string)

	// Render paints into the supplied frame, which holds one entry per
	// key and starts zero filled, for the supplied time in seconds
	Render(kb *model.Keyboard, timeSeconds float64, frame *model.Frame)

	// Animated hints to the scheduler that this preset needs a render
	// on every tick rather than only on state changes
	Animated() bool
}

// ActivityBinder is implemented by reactive presets that consume the
// keystroke activity bus
type ActivityBinder interface {
	BindActivity(bus *activity.Bus)
}

// Factory creates a fresh preset instance
type Factory func() Preset

// Registry maps preset identifiers to their factories
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() (registry *Registry) {
	return &Registry{factories: map[string]Factory{}}
}

func (registry *Registry) Register(id string, factory Factory) {
	registry.factories[id] = factory
}

func (registry *Registry) Create(id string) (preset Preset, err errors.Error) {
	factory, isPresent := registry.factories[id]
	if !isPresent {
		return nil, errors.New("unknown preset").With("id", id).With("stack", stack.Trace().TrimRuntime())
	}
	return factory(), nil
}

func (registry *Registry) IDs() (ids []string) {
	for id := range registry.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultRegistry returns a registry populated with every preset this
// package ships
func DefaultRegistry() (registry *Registry) {
	registry = NewRegistry()
	registry.Register("static_color", func() Preset { return NewStaticColor() })
	registry.Register("rainbow_wave", func() Preset { return NewRainbowWave() })
	registry.Register("liquid_plasma", func() Preset { return NewLiquidPlasma() })
	registry.Register("key_map", func() Preset { return NewKeyMap() })
	registry.Register("reactive_ripple", func() Preset { return NewReactiveRipple() })
	registry.Register("doom_fire", func() Preset { return NewDoomFire() })
	registry.Register("star_matrix", func() Preset { return NewStarMatrix() })
	return registry
}

// parseColor reads a #RRGGBB string.  The second result is false when
// the value could not be parsed, in which case callers keep their
// previous color.
func parseColor(value string) (color model.RgbColor, ok bool) {
	parsed, errGo := colorful.Hex(value)
	if errGo != nil {
		return model.RgbColor{}, false
	}
	r, g, b := parsed.RGB255()
	return model.RgbColor{R: r, G: g, B: b}, true
}

// parseFloat updates target only when the value parses, raising values
// below the supplied floor to the floor
func parseFloat(params map[string]string, key string, target *float64, floor float64) {
	value, isPresent := params[key]
	if !isPresent {
		return
	}
	parsed, errGo := strconv.ParseFloat(value, 64)
	if errGo != nil {
		return
	}
	if parsed < floor {
		parsed = floor
	}
	*target = parsed
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// blend mixes two colors in RGB space, t of 0 keeping a and 1 giving b
func blend(a model.RgbColor, b model.RgbColor, t float64) model.RgbColor {
	ca := colorful.Color{R: float64(a.R) / 255.0, G: float64(a.G) / 255.0, B: float64(a.B) / 255.0}
	cb := colorful.Color{R: float64(b.R) / 255.0, G: float64(b.G) / 255.0, B: float64(b.B) / 255.0}
	r, g, bb := ca.BlendRgb(cb, clamp01(t)).RGB255()
	return model.RgbColor{R: r, G: g, B: bb}
}

// hsv converts hue (degrees), saturation and value to an 8 bit triple
func hsv(h float64, s float64, v float64) model.RgbColor {
	r, g, b := colorful.Hsv(h, clamp01(s), clamp01(v)).RGB255()
	return model.RgbColor{R: r, G: g, B: b}
}
