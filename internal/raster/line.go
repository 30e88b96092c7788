// Package raster turns points, lines and triangles in normalized space into
// depth-tested writes on a pixel.Buffer.
//
// A primitive with a NaN or infinite component, or one that maps farther
// than geom.Reach cells from the buffer, draws nothing.
package raster

import (
	"softviewport/internal/geom"
	"softviewport/pixel"
)

// Point draws a single cell.
func Point(fb *pixel.Buffer, p geom.Position, color [4]uint8) {
	v, ok := voxel(fb, p)
	if !ok {
		return
	}
	fb.Push(v.Col(), v.Row(), v.Layer(), color)
}

// Line draws every lattice cell between start and end, each at the layer
// the walk reaches there.
func Line(fb *pixel.Buffer, start, end geom.Position, color [4]uint8) {
	a, okA := voxel(fb, start)
	b, okB := voxel(fb, end)
	if !okA || !okB {
		return
	}
	pushLine(fb, a, b, color)
}

// pushLine only visits the cells of the walk inside the buffer.
func pushLine(fb *pixel.Buffer, start, end geom.Voxel, color [4]uint8) {
	for v := range geom.LineWithin(start, end, bounds(fb)) {
		fb.Push(v.Col(), v.Row(), v.Layer(), color)
	}
}

func bounds(fb *pixel.Buffer) geom.Voxel {
	return geom.Voxel{fb.Width, fb.Height, fb.Depth}
}

func voxel(fb *pixel.Buffer, p geom.Position) (geom.Voxel, bool) {
	if !geom.Mappable(p, fb.Width, fb.Height, fb.Depth) {
		return geom.Voxel{}, false
	}
	return geom.ToPixel(p, fb.Width, fb.Height, fb.Depth), true
}

func voxels(fb *pixel.Buffer, a, b, c geom.Position) (va, vb, vc geom.Voxel, ok bool) {
	var okA, okB, okC bool
	va, okA = voxel(fb, a)
	vb, okB = voxel(fb, b)
	vc, okC = voxel(fb, c)
	return va, vb, vc, okA && okB && okC
}
