// Package demo draws the animated showcase frame: a sweeping line, an
// outlined translucent triangle and a fan of colored triangles that opens
// and closes.
package demo

import (
	"softviewport/internal/geom"
	"softviewport/internal/scene"
)

var (
	White         = []byte{255, 255, 255, 255}
	WhiteLowAlpha = []byte{255, 255, 255, 25}
	Red           = []byte{255, 0, 0, 255}
	Yellow        = []byte{255, 255, 0, 255}
	Green         = []byte{0, 255, 0, 255}
	Cyan          = []byte{0, 255, 255, 255}
	Blue          = []byte{0, 0, 255, 255}
)

var fan = [][]byte{Red, Yellow, Green, Cyan, Blue}

// Animation holds the phase in [-1, 1], bouncing between the ends.
type Animation struct {
	phase        float64
	step         float64
	incrementing bool
}

func New() *Animation {
	return &Animation{phase: -1, step: 0.05, incrementing: true}
}

// Phase returns the current phase.
func (a *Animation) Phase() float64 { return a.phase }

// Advance moves the phase one step, reversing at either end.
func (a *Animation) Advance() {
	if a.incrementing {
		a.phase += a.step
	} else {
		a.phase -= a.step
	}
	if a.phase >= 1 {
		a.incrementing = false
	} else if a.phase <= -1 {
		a.incrementing = true
	}
}

// Draw draws the frame for the current phase.
func (a *Animation) Draw(d scene.Drawer) {
	left, right := a.phase+1, 0.0
	if a.phase > 0 {
		left, right = 1, a.phase
	}
	ry := right / 2

	d.DrawLine(geom.Position{-1, 0.25, 0.1}, geom.Position{-1 + left, 0.25 - left/4, 0.25}, White)

	d.FillTriangle(geom.Position{0, -0.25, 0}, geom.Position{-0.25, 0.25, 0}, geom.Position{0.25, 0.25, 0}, WhiteLowAlpha)
	d.DrawTriangle(geom.Position{0, -0.25, 0.01}, geom.Position{-0.25, 0.25, 0.01}, geom.Position{0.25, 0.25, 0.01}, White)

	center := geom.Position{0, 0, -0.1}
	for i, c := range fan {
		y0 := -0.5 + 0.2*float64(i)
		d.FillTriangle(center, geom.Position{right, y0 * ry, -0.2}, geom.Position{right, (y0 + 0.2) * ry, -0.2}, c)
	}
}

// Viewport is what Frame needs to present and reset a frame.
type Viewport interface {
	scene.Drawer
	Render() error
	ResetBuffer()
}

// Frame advances the animation, draws and renders it, then resets the
// buffer for the next frame.
func (a *Animation) Frame(v Viewport) error {
	a.Advance()
	a.Draw(v)
	err := v.Render()
	v.ResetBuffer()
	return err
}
