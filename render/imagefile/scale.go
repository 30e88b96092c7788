package imagefile

import (
	"image"

	"golang.org/x/image/draw"
)

// Filter selects the interpolation used by Upscale.
type Filter string

const (
	Nearest    Filter = "nearest"
	CatmullRom Filter = "catmullrom"
)

var filters = map[Filter]draw.Interpolator{
	Nearest:    draw.NearestNeighbor,
	CatmullRom: draw.CatmullRom,
}

// Upscale enlarges img by factor. Smooth filters run on premultiplied
// alpha so transparent background does not bleed dark fringes into edges.
func Upscale(img *image.NRGBA, factor int, f Filter) *image.NRGBA {
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor)

	interp, ok := filters[f]
	if !ok || f == Nearest {
		dst := image.NewNRGBA(rect)
		draw.NearestNeighbor.Scale(dst, rect, img, b, draw.Src, nil)
		return dst
	}

	// Premultiply alpha
	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	scaled := image.NewRGBA(rect)
	interp.Scale(scaled, rect, premul, b, draw.Src, nil)

	// Unpremultiply alpha
	result := image.NewNRGBA(rect)
	for i := 0; i < len(scaled.Pix); i += 4 {
		a := float64(scaled.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			result.Pix[i] = clamp8(float64(scaled.Pix[i]) * inv)
			result.Pix[i+1] = clamp8(float64(scaled.Pix[i+1]) * inv)
			result.Pix[i+2] = clamp8(float64(scaled.Pix[i+2]) * inv)
		}
		result.Pix[i+3] = scaled.Pix[i+3]
	}
	return result
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
