// Package rendertest provides an in-memory backend for tests.
package rendertest

import (
	"fmt"

	"softviewport/pixel"
	"softviewport/render"
)

// Recorder counts calls and keeps a copy of the last rendered frame.
// Setting RenderErr or ClearErr makes the matching call fail with it.
type Recorder struct {
	RenderCalls int
	ClearCalls  int
	ResizeCalls int
	Width       int
	Height      int
	Last        []pixel.Pixel

	RenderErr error
	ClearErr  error
}

// NewRecorder returns a recorder for a width x height surface.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Render(buf []pixel.Pixel) error {
	r.RenderCalls++
	if r.RenderErr != nil {
		return r.RenderErr
	}
	if r.Width > 0 && len(buf) != r.Width*r.Height {
		return fmt.Errorf("%w: got %d pixels, want %dx%d", render.ErrRendering, len(buf), r.Width, r.Height)
	}
	r.Last = append(r.Last[:0], buf...)
	return nil
}

func (r *Recorder) Clear() error {
	r.ClearCalls++
	return r.ClearErr
}

func (r *Recorder) Resize(width, height int) {
	r.ResizeCalls++
	r.Width, r.Height = width, height
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

func (r *Recorder) Renderer() (render.Renderer, error) { return r, nil }

// RenderOnly implements render.Renderer but not render.Resizer.
type RenderOnly struct {
	Calls int
}

func (r *RenderOnly) Render([]pixel.Pixel) error {
	r.Calls++
	return nil
}

func (r *RenderOnly) Clear() error { return nil }
