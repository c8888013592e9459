package model

import (
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// Frame is one per-key color vector.  Access is index checked, an out of
// range index is reported as an error rather than a panic so that
// watcher goroutines can never take the process down.
type Frame struct {
	colors []RgbColor
}

// NewFrame returns a zero filled frame of the requested size
func NewFrame(size int) (frame *Frame) {
	return &Frame{colors: make([]RgbColor, size)}
}

func (frame *Frame) Size() int { return len(frame.colors) }

// Resize replaces the frame contents with size zero entries
func (frame *Frame) Resize(size int) {
	frame.colors = make([]RgbColor, size)
}

// Fill sets every entry to the supplied color
func (frame *Frame) Fill(color RgbColor) {
	for i := range frame.colors {
		frame.colors[i] = color
	}
}

func (frame *Frame) SetColor(index int, color RgbColor) (err errors.Error) {
	if index < 0 || index >= len(frame.colors) {
		return errors.New("frame index out of range").With("index", index).
			With("size", len(frame.colors)).With("stack", stack.Trace().TrimRuntime())
	}
	frame.colors[index] = color
	return nil
}

func (frame *Frame) Color(index int) (color RgbColor, err errors.Error) {
	if index < 0 || index >= len(frame.colors) {
		return RgbColor{}, errors.New("frame index out of range").With("index", index).
			With("size", len(frame.colors)).With("stack", stack.Trace().TrimRuntime())
	}
	return frame.colors[index], nil
}
