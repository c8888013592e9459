package model

import "testing"

func TestFrameBoundsChecked(t *testing.T) {
	frame := NewFrame(2)

	if err := frame.SetColor(2, RgbColor{R: 1}); err == nil {
		t.Fatal("out of range set accepted")
	}
	if err := frame.SetColor(-1, RgbColor{R: 1}); err == nil {
		t.Fatal("negative index accepted")
	}
	if _, err := frame.Color(2); err == nil {
		t.Fatal("out of range read accepted")
	}

	if err := frame.SetColor(1, RgbColor{G: 7}); err != nil {
		t.Fatalf("in range set rejected: %v", err)
	}
	color, err := frame.Color(1)
	if err != nil || color.G != 7 {
		t.Fatalf("readback %v,%v", color, err)
	}
}

func TestFrameResizeZeroes(t *testing.T) {
	frame := NewFrame(2)
	frame.Fill(RgbColor{R: 9, G: 9, B: 9})

	frame.Resize(3)
	if frame.Size() != 3 {
		t.Fatalf("size %d, expected 3", frame.Size())
	}
	for i := 0; i < 3; i++ {
		color, _ := frame.Color(i)
		if color != (RgbColor{}) {
			t.Fatalf("entry %d is %v after resize, expected zero", i, color)
		}
	}
}
