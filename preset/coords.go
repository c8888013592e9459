package preset

import (
	"github.com/EvanSunde/sinodragon/model"
)

// keyCoords holds normalized [0,1] plane coordinates for every key
// index, derived from the layout's row and column positions.  Presets
// that treat the keyboard as a 2D field build this lazily on first
// render and rebuild it if the key count changes.
type keyCoords struct {
	xs, ys []float64
}

func (coords *keyCoords) build(kb *model.Keyboard) {
	layout := kb.Layout()
	rows := float64(len(layout))
	maxCols := 1.0
	for _, row := range layout {
		if cols := float64(len(row)); cols > maxCols {
			maxCols = cols
		}
	}

	coords.xs = make([]float64, kb.KeyCount())
	coords.ys = make([]float64, kb.KeyCount())

	idx := 0
	for r, row := range layout {
		for c := range row {
			if maxCols > 1 {
				coords.xs[idx] = float64(c) / (maxCols - 1)
			}
			if rows > 1 {
				coords.ys[idx] = float64(r) / (rows - 1)
			}
			idx++
		}
	}
}

func (coords *keyCoords) ready(kb *model.Keyboard) bool {
	return len(coords.xs) == kb.KeyCount()
}
