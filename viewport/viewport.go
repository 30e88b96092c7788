// Package viewport draws points, lines and triangles given in normalized
// coordinates into a depth-tested pixel buffer and hands finished frames to
// a renderer.
//
// Positions are (x, y, z) triples in [-1, 1]. x runs west to east, y north
// to south and z far to near: of several draws landing on the same pixel
// the one with the highest z wins, ties going to the latest. Anything
// outside the cube is dropped silently. The viewport performs no
// projection; callers pass already-projected coordinates.
//
// A Viewport is not safe for concurrent use.
package viewport

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"softviewport/internal/geom"
	"softviewport/internal/raster"
	"softviewport/pixel"
	"softviewport/render"
)

// Position is a normalized (x, y, z) coordinate.
type Position = geom.Position

// Viewport owns the frame buffer for one presentation surface.
type Viewport struct {
	width    int
	height   int
	depth    int
	buffer   *pixel.Buffer
	renderer render.Renderer
	log      zerolog.Logger
}

// Option configures a Viewport during creation.
type Option func(*Viewport)

// WithLogger sets the logger used for lifecycle events. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Viewport) {
		v.log = l
	}
}

// New builds a Viewport of width x height pixels with depth layers along z,
// presenting through r. It panics if any size is not positive or r is nil.
func New(width, height, depth int, r render.Renderer, opts ...Option) *Viewport {
	if width <= 0 || height <= 0 || depth <= 0 {
		panic(fmt.Sprintf("viewport: sizes must be positive, got %dx%dx%d", width, height, depth))
	}
	if r == nil {
		panic("viewport: nil renderer")
	}

	v := &Viewport{
		width:    width,
		height:   height,
		depth:    depth,
		renderer: r,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.buffer = pixel.NewBuffer(width, height, depth)
	v.log.Debug().Int("width", width).Int("height", height).Int("depth", depth).
		Int("buffer_size", len(v.buffer.Pix)).Msg("buffer allocated")
	return v
}

// FromSurface builds a Viewport sized to s and presenting through the
// renderer s provides. It fails with render.ErrAdapterNotFound if s cannot
// supply one.
func FromSurface(s render.Surface, depth int, opts ...Option) (*Viewport, error) {
	if s == nil {
		return nil, fmt.Errorf("viewport: nil surface: %w", render.ErrAdapterNotFound)
	}
	r, err := s.Renderer()
	if err != nil {
		if errors.Is(err, render.ErrAdapterNotFound) {
			return nil, fmt.Errorf("viewport: %w", err)
		}
		return nil, fmt.Errorf("viewport: %w: %w", render.ErrAdapterNotFound, err)
	}
	if r == nil {
		return nil, fmt.Errorf("viewport: surface returned no renderer: %w", render.ErrAdapterNotFound)
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("viewport: surface reports size %dx%d: %w", w, h, render.ErrAdapterNotFound)
	}
	return New(w, h, depth, r, opts...), nil
}

// Width returns the width of the buffer in pixels.
func (v *Viewport) Width() int { return v.width }

// Height returns the height of the buffer in pixels.
func (v *Viewport) Height() int { return v.height }

// Depth returns the number of layers along z.
func (v *Viewport) Depth() int { return v.depth }

// At returns the pixel currently held at (col, row).
func (v *Viewport) At(col, row int) (pixel.Pixel, bool) {
	return v.buffer.At(col, row)
}

// Snapshot copies the buffer into an image.
func (v *Viewport) Snapshot() *image.NRGBA {
	return pixel.ToNRGBA(v.buffer.Pix, v.width, v.height)
}

// DrawPoint draws the pixel at position. color is raw RGBA; it panics
// unless color has exactly four bytes.
func (v *Viewport) DrawPoint(position Position, color []byte) {
	raster.Point(v.buffer, position, pixel.MustColor(color))
}

// DrawLine draws the line from start to end, every pixel at its own
// interpolated depth.
func (v *Viewport) DrawLine(start, end Position, color []byte) {
	raster.Line(v.buffer, start, end, pixel.MustColor(color))
}

// DrawTriangle draws the outline of the triangle abc.
func (v *Viewport) DrawTriangle(a, b, c Position, color []byte) {
	raster.Triangle(v.buffer, a, b, c, pixel.MustColor(color))
}

// FillTriangle draws the triangle abc filled. The fill always covers the
// outline DrawTriangle would produce for the same vertices.
func (v *Viewport) FillTriangle(a, b, c Position, color []byte) {
	raster.FillTriangle(v.buffer, a, b, c, pixel.MustColor(color))
}

// ResetBuffer clears everything drawn so far. The renderer is not told.
func (v *Viewport) ResetBuffer() {
	v.buffer.Reset(v.width, v.height)
}

// Resize changes the buffer size, clearing its content, and notifies the
// renderer if it implements render.Resizer. Depth is kept.
func (v *Viewport) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("viewport: sizes must be positive, got %dx%d", width, height))
	}
	v.width = width
	v.height = height
	v.ResetBuffer()
	if rz, ok := v.renderer.(render.Resizer); ok {
		rz.Resize(width, height)
	}
	v.log.Info().Int("width", width).Int("height", height).Msg("viewport resized")
}

// Render hands the buffer to the renderer. The buffer is left as is; call
// ResetBuffer to start a new frame.
func (v *Viewport) Render() error {
	return v.rendering("render", v.renderer.Render(v.buffer.Pix))
}

// ClearFrame presents a blank frame without touching the buffer, so the
// current drawing can be rendered again later.
func (v *Viewport) ClearFrame() error {
	return v.rendering("clear", v.renderer.Clear())
}

func (v *Viewport) rendering(op string, err error) error {
	if err == nil {
		return nil
	}
	v.log.Warn().Err(err).Str("op", op).Msg("renderer failed")
	if errors.Is(err, render.ErrRendering) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", render.ErrRendering, op, err)
}
