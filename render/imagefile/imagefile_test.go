package imagefile

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"softviewport/pixel"
	"softviewport/render"
)

var decoders = map[Format]func(io.Reader) (image.Image, error){
	WebP: nativewebp.Decode,
	PNG:  png.Decode,
	TGA:  tga.Decode,
	BMP:  bmp.Decode,
	TIFF: tiff.Decode,
}

func frame(w, h int) []pixel.Pixel {
	buf := make([]pixel.Pixel, w*h)
	buf[0] = pixel.Pixel{Color: [4]uint8{255, 0, 0, 255}}
	buf[w*h-1] = pixel.Pixel{Color: [4]uint8{0, 0, 255, 255}}
	return buf
}

func decode(t *testing.T, path string, f Format) image.Image {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	img, err := decoders[f](file)
	require.NoError(t, err)
	return img
}

func rgba(c color.Color) [4]uint32 {
	r, g, b, a := c.RGBA()
	return [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
}

func TestRenderEveryFormat(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			dir := t.TempDir()
			w, err := New(6, 4, Options{Dir: dir, Format: f})
			require.NoError(t, err)

			require.NoError(t, w.Render(frame(6, 4)))
			assert.Equal(t, 1, w.Frames())
			assert.Equal(t, filepath.Join(dir, "frame-00000."+string(f)), w.LastPath())

			img := decode(t, w.LastPath(), f)
			assert.Equal(t, image.Rect(0, 0, 6, 4), img.Bounds())
			assert.Equal(t, [4]uint32{255, 0, 0, 255}, rgba(img.At(0, 0)))
			assert.Equal(t, [4]uint32{0, 0, 255, 255}, rgba(img.At(5, 3)))
		})
	}
}

func TestFramesAreNumbered(t *testing.T) {
	dir := t.TempDir()
	w, err := New(2, 2, Options{Dir: dir, Format: PNG, Prefix: "shot"})
	require.NoError(t, err)

	require.NoError(t, w.Render(frame(2, 2)))
	require.NoError(t, w.Clear())
	require.NoError(t, w.Render(frame(2, 2)))
	assert.Equal(t, 3, w.Frames())

	for _, name := range []string{"shot-00000.png", "shot-00001.png", "shot-00002.png"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	blank := decode(t, filepath.Join(dir, "shot-00001.png"), PNG)
	assert.Equal(t, [4]uint32{0, 0, 0, 0}, rgba(blank.At(0, 0)))
}

func TestNamedOutputIsOverwritten(t *testing.T) {
	dir := t.TempDir()
	w, err := New(2, 2, Options{Dir: dir, Format: PNG, Name: "scene"})
	require.NoError(t, err)

	require.NoError(t, w.Render(frame(2, 2)))
	require.NoError(t, w.Clear())
	assert.Equal(t, filepath.Join(dir, "scene.png"), w.LastPath())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	img := decode(t, w.LastPath(), PNG)
	assert.Equal(t, [4]uint32{0, 0, 0, 0}, rgba(img.At(0, 0)))
}

func TestRenderRejectsWrongLength(t *testing.T) {
	w, err := New(4, 4, Options{Dir: t.TempDir()})
	require.NoError(t, err)

	err = w.Render(make([]pixel.Pixel, 15))
	assert.ErrorIs(t, err, render.ErrRendering)
	assert.Zero(t, w.Frames())
}

func TestResize(t *testing.T) {
	dir := t.TempDir()
	w, err := New(4, 4, Options{Dir: dir, Format: PNG})
	require.NoError(t, err)

	w.Resize(3, 5)
	width, height := w.Size()
	assert.Equal(t, 3, width)
	assert.Equal(t, 5, height)

	assert.ErrorIs(t, w.Render(frame(4, 4)), render.ErrRendering)
	require.NoError(t, w.Render(frame(3, 5)))
	assert.Equal(t, image.Rect(0, 0, 3, 5), decode(t, w.LastPath(), PNG).Bounds())
}

func TestScale(t *testing.T) {
	for _, f := range []Filter{Nearest, CatmullRom} {
		t.Run(string(f), func(t *testing.T) {
			w, err := New(4, 2, Options{Dir: t.TempDir(), Format: PNG, Scale: 3, Filter: f})
			require.NoError(t, err)

			buf := make([]pixel.Pixel, 8)
			for i := range buf {
				buf[i].Color = [4]uint8{10, 200, 30, 255}
			}
			require.NoError(t, w.Render(buf))

			img := decode(t, w.LastPath(), PNG)
			assert.Equal(t, image.Rect(0, 0, 12, 6), img.Bounds())
			assert.Equal(t, [4]uint32{10, 200, 30, 255}, rgba(img.At(6, 3)))
		})
	}
}

func TestUpscaleKeepsTransparentEdgesClean(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	dst := Upscale(src, 4, CatmullRom)
	require.Equal(t, image.Rect(0, 0, 16, 16), dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] > 16 {
			assert.GreaterOrEqual(t, dst.Pix[i], uint8(240), "no dark fringe at offset %d", i)
		}
	}
}

func TestNewRejectsUnknownFormatAndFilter(t *testing.T) {
	_, err := New(4, 4, Options{Dir: t.TempDir(), Format: "gif"})
	assert.ErrorIs(t, err, render.ErrAdapterNotFound)

	_, err = New(4, 4, Options{Dir: t.TempDir(), Filter: "lanczos"})
	assert.ErrorIs(t, err, render.ErrAdapterNotFound)
}

func TestNewRejectsUnusableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := New(4, 4, Options{Dir: filepath.Join(file, "sub")})
	assert.ErrorIs(t, err, render.ErrAdapterNotFound)
}

func TestWriterIsSurface(t *testing.T) {
	w, err := New(5, 7, Options{Dir: t.TempDir()})
	require.NoError(t, err)

	var s render.Surface = w
	r, err := s.Renderer()
	require.NoError(t, err)
	assert.Same(t, w, r)
}
