// Package render defines the boundary between the rasterizer and whatever
// presents its frames: a window, an image sequence, a network stream.
package render

import (
	"errors"

	"softviewport/pixel"
)

var (
	// ErrAdapterNotFound reports that no backend could be created for a surface.
	ErrAdapterNotFound = errors.New("render: no adapter was found to manage the rendering")

	// ErrRendering reports that a backend failed to present or clear a frame.
	ErrRendering = errors.New("render: error occurred while rendering")
)

// Renderer presents finished frames.
//
// Render receives exactly width*height pixels in row-major order and must
// not retain or modify the slice after returning. Clear presents a blank
// frame without needing a buffer.
type Renderer interface {
	Render(buf []pixel.Pixel) error
	Clear() error
}

// Resizer is notified when the presentation surface changes size.
type Resizer interface {
	Resize(width, height int)
}

// Surface is something a Viewport can be built on: it knows its size and
// can hand out a renderer for itself.
type Surface interface {
	Size() (width, height int)
	Renderer() (Renderer, error)
}
