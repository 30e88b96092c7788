package geom

import "math"

// Position is a normalized coordinate, each component expected in [-1, 1].
// Axes run west->east, north->south and far->near.
type Position [3]float64

// Voxel is the pixel-space form of a Position: column, row and layer.
// Components are signed so that walks may step outside the buffer before
// being bounds checked.
type Voxel [3]int

func (v Voxel) Col() int   { return v[0] }
func (v Voxel) Row() int   { return v[1] }
func (v Voxel) Layer() int { return v[2] }

// In reports whether v lies inside [0, size[k]) on every axis.
func (v Voxel) In(size Voxel) bool {
	return v[0] >= 0 && v[0] < size[0] &&
		v[1] >= 0 && v[1] < size[1] &&
		v[2] >= 0 && v[2] < size[2]
}

// Reach bounds the magnitude of voxel components the walks accept. Beyond
// it their step arithmetic could overflow.
const Reach = 1 << 29

// Mappable reports whether every component of p is finite and maps to
// within Reach cells of the origin.
func Mappable(p Position, width, height, depth int) bool {
	for k, n := range [3]int{width, height, depth} {
		x := (p[k] + 1) * 0.5 * float64(n)
		if !(x > -Reach && x < Reach) {
			return false
		}
	}
	return true
}

// ToPixel maps p into a width x height x depth lattice. Components are
// truncated toward negative infinity; 1.0 maps one past the last valid
// index and is left for the caller to reject.
func ToPixel(p Position, width, height, depth int) Voxel {
	return Voxel{
		scale(p[0], width),
		scale(p[1], height),
		scale(p[2], depth),
	}
}

func scale(c float64, n int) int {
	return int(math.Floor((c + 1) * 0.5 * float64(n)))
}

// BufferIndex returns the row-major index of (col, row).
func BufferIndex(col, row, width int) int {
	return row*width + col
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
