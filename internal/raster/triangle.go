package raster

import (
	"fmt"
	"iter"

	"softviewport/internal/geom"
	"softviewport/pixel"
)

// Triangle draws the outline a->b, b->c, c->a.
func Triangle(fb *pixel.Buffer, a, b, c geom.Position, color [4]uint8) {
	va, vb, vc, ok := voxels(fb, a, b, c)
	if !ok {
		return
	}
	outline(fb, va, vb, vc, color)
}

// FillTriangle fills the triangle abc by splitting it into flat-bottomed and
// flat-topped halves and scanning each row between its slanted edges.
// Collinear or coincident vertices degrade to a line or a point.
func FillTriangle(fb *pixel.Buffer, a, b, c geom.Position, color [4]uint8) {
	va, vb, vc, ok := voxels(fb, a, b, c)
	if !ok {
		return
	}

	top, mid, bot := geom.SortByRow(va, vb, vc)
	switch {
	case mid.Row() == bot.Row():
		fillFlat(fb, top, mid, bot, color)
	case mid.Row() == top.Row():
		fillFlat(fb, bot, top, mid, color)
	default:
		split := geom.SplitPoint(top, mid, bot)
		fillFlat(fb, top, mid, split, color)
		fillFlat(fb, bot, mid, split, color)
	}

	// Row walks place one boundary per row; edges steeper in x than in y
	// leave cells the outline would set.
	outline(fb, va, vb, vc, color)
}

func outline(fb *pixel.Buffer, a, b, c geom.Voxel, color [4]uint8) {
	pushLine(fb, a, b, color)
	pushLine(fb, b, c, color)
	pushLine(fb, c, a, color)
}

// fillFlat scans a triangle whose sides share a row, walking peak->sideA
// and peak->sideB in lockstep and spanning each row between them. Each
// edge carries its own interpolated layer into the span. Only rows of the
// buffer are scanned.
func fillFlat(fb *pixel.Buffer, peak, sideA, sideB geom.Voxel, color [4]uint8) {
	if sideA.Row() != sideB.Row() {
		panic(fmt.Sprintf("raster: flat triangle sides on rows %d and %d", sideA.Row(), sideB.Row()))
	}

	left, stop := iter.Pull(geom.RowWalk(peak, sideA, 0, fb.Height))
	defer stop()
	for right := range geom.RowWalk(peak, sideB, 0, fb.Height) {
		l, ok := left()
		if !ok {
			return
		}
		pushLine(fb, l, right, color)
	}
}
