package geom

import (
	"iter"
	"math"
	"slices"
)

// Line walks the digital 3D line from start to end (Bresenham). Both
// endpoints are yielded, the dominant axis advances by exactly one per
// step and no other axis moves by more than one, so the walk has no gaps.
func Line(start, end Voxel) iter.Seq[Voxel] {
	return walk(start, end, nil)
}

// LineWithin yields the cells of Line(start, end) that lie inside the
// lattice [0, size[0]) x [0, size[1]) x [0, size[2]), in walk order. Steps
// outside the box along the dominant axis are skipped rather than walked,
// so the cost is bounded by the box, not by the length of the line.
func LineWithin(start, end, size Voxel) iter.Seq[Voxel] {
	return walk(start, end, &size)
}

func walk(start, end Voxel, size *Voxel) iter.Seq[Voxel] {
	return func(yield func(Voxel) bool) {
		var d, s Voxel
		for k := range 3 {
			d[k] = abs(end[k] - start[k])
			s[k] = sign(end[k] - start[k])
		}

		major := 0
		if d[1] > d[major] {
			major = 1
		}
		if d[2] > d[major] {
			major = 2
		}
		minorA, minorB := (major+1)%3, (major+2)%3

		lo, hi := 0, d[major]
		if size != nil {
			lo, hi = stepRange(lo, hi, s[major], start[major], size[major])
			if lo > hi {
				return
			}
		}

		// minor axis offset after k steps
		offset := func(dm, k int) int {
			if d[major] == 0 {
				return 0
			}
			return (2*dm*k + d[major]) / (2 * d[major])
		}

		cur := start
		mA, mB := offset(d[minorA], lo), offset(d[minorB], lo)
		cur[major] += s[major] * lo
		cur[minorA] += s[minorA] * mA
		cur[minorB] += s[minorB] * mB
		errA := 2*d[minorA]*(lo+1) - d[major] - 2*d[major]*mA
		errB := 2*d[minorB]*(lo+1) - d[major] - 2*d[major]*mB

		emit := func(v Voxel) bool {
			if size != nil && !v.In(*size) {
				return true
			}
			return yield(v)
		}

		if !emit(cur) {
			return
		}
		for range hi - lo {
			cur[major] += s[major]
			if errA >= 0 {
				cur[minorA] += s[minorA]
				errA -= 2 * d[major]
			}
			if errB >= 0 {
				cur[minorB] += s[minorB]
				errB -= 2 * d[major]
			}
			errA += 2 * d[minorA]
			errB += 2 * d[minorB]
			if !emit(cur) {
				return
			}
		}
	}
}

// stepRange narrows [lo, hi] to the steps k at which c+s*k lies in [0, n).
// An empty result has lo > hi.
func stepRange(lo, hi, s, c, n int) (int, int) {
	switch {
	case s > 0:
		return max(lo, -c), min(hi, n-1-c)
	case s < 0:
		return max(lo, c-n+1), min(hi, c)
	}
	if c < 0 || c >= n {
		return 1, 0
	}
	return lo, hi
}

// RowWalk steps from start to end one row at a time, yielding the column
// and layer of the edge on every row in [top, bottom). Unlike Line the
// column may jump by more than one per row; it is the boundary walk of a
// scan-line fill. Rows outside the window are skipped without being
// walked. A walk with no vertical extent yields end only, if its row is
// in the window.
func RowWalk(start, end Voxel, top, bottom int) iter.Seq[Voxel] {
	return func(yield func(Voxel) bool) {
		n := abs(end[1] - start[1])
		if n == 0 {
			if end[1] >= top && end[1] < bottom {
				yield(end)
			}
			return
		}
		step := sign(end[1] - start[1])
		dc := end[0] - start[0]
		dl := end[2] - start[2]
		lo, hi := stepRange(0, n, step, start[1]-top, bottom-top)
		for i := lo; i <= hi; i++ {
			v := Voxel{
				start[0] + roundDiv(dc*i, n),
				start[1] + step*i,
				start[2] + roundDiv(dl*i, n),
			}
			if !yield(v) {
				return
			}
		}
	}
}

// roundDiv divides a by the positive b, rounding half away from zero.
func roundDiv(a, b int) int {
	if a < 0 {
		return -((-a + b/2) / b)
	}
	return (a + b/2) / b
}

// SortByRow orders three voxels by row, smallest first. Ties keep their
// argument order.
func SortByRow(a, b, c Voxel) (top, mid, bot Voxel) {
	vs := []Voxel{a, b, c}
	slices.SortStableFunc(vs, func(p, q Voxel) int { return p[1] - q[1] })
	return vs[0], vs[1], vs[2]
}

// SplitPoint returns the point on the edge top->bot that lies on mid's row.
// Column and layer are interpolated linearly and rounded to the lattice.
// top and bot must be on different rows.
func SplitPoint(top, mid, bot Voxel) Voxel {
	t := float64(mid[1]-top[1]) / float64(bot[1]-top[1])
	return Voxel{
		top[0] + int(math.Round(t*float64(bot[0]-top[0]))),
		mid[1],
		top[2] + int(math.Round(t*float64(bot[2]-top[2]))),
	}
}
