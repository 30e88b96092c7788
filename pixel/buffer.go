// Package pixel holds the depth-tested frame buffer shared by the
// rasterizer and the presentation backends.
package pixel

import (
	"fmt"
	"image"
)

// Pixel is one screen cell: the winning color and its depth layer.
type Pixel struct {
	Color [4]uint8 // R, G, B, A
	Depth uint
}

// Default is the "nothing drawn yet" pixel: transparent black at the lowest depth.
var Default = Pixel{}

// Buffer is the rendering target as a flat row-major slice, origin top-left.
type Buffer struct {
	Width  int
	Height int
	Depth  int
	Pix    []Pixel // len = Width*Height
}

// NewBuffer allocates a width x height buffer of default pixels accepting
// layers in [0, depth).
func NewBuffer(width, height, depth int) *Buffer {
	b := &Buffer{Depth: depth}
	b.Reset(width, height)
	return b
}

// Reset reallocates the buffer to width x height and clears every cell.
func (b *Buffer) Reset(width, height int) {
	b.Width = width
	b.Height = height
	b.Pix = make([]Pixel, width*height)
}

// Push writes color at (col, row) if the cell is inside the buffer and layer
// is at least as deep as the current occupant. Equal depth overwrites.
// Writes outside the buffer or behind the current pixel are dropped and
// Push reports false.
func (b *Buffer) Push(col, row, layer int, color [4]uint8) bool {
	if col < 0 || col >= b.Width || row < 0 || row >= b.Height {
		return false
	}
	if layer < 0 || layer >= b.Depth {
		return false
	}
	i := row*b.Width + col
	if i >= len(b.Pix) || uint(layer) < b.Pix[i].Depth {
		return false
	}
	b.Pix[i] = Pixel{Color: color, Depth: uint(layer)}
	return true
}

// At returns the pixel at (col, row).
func (b *Buffer) At(col, row int) (Pixel, bool) {
	if col < 0 || col >= b.Width || row < 0 || row >= b.Height {
		return Pixel{}, false
	}
	return b.Pix[row*b.Width+col], true
}

// MustColor converts a raw RGBA byte slice into a color, panicking unless
// it has exactly four components.
func MustColor(c []byte) [4]uint8 {
	if len(c) != 4 {
		panic(fmt.Sprintf("pixel: color must have 4 components (R, G, B, A), got %d", len(c)))
	}
	return [4]uint8{c[0], c[1], c[2], c[3]}
}

// RGBA flattens pixels into interleaved RGBA bytes, writing into dst when
// it is large enough.
func RGBA(dst []byte, pix []Pixel) []byte {
	n := len(pix) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, p := range pix {
		copy(dst[i*4:i*4+4], p.Color[:])
	}
	return dst
}

// ToNRGBA copies pixels into a new width x height image. Alpha is kept as
// drawn, never composited.
func ToNRGBA(pix []Pixel, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	RGBA(img.Pix, pix)
	return img
}
