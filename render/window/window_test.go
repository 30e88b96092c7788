package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softviewport/pixel"
	"softviewport/render"
)

func TestRenderKeepsLatestFrame(t *testing.T) {
	w := New(2, 2)
	buf := make([]pixel.Pixel, 4)
	buf[3].Color = [4]uint8{7, 8, 9, 10}

	require.NoError(t, w.Render(buf))
	assert.Equal(t, uint64(1), w.Frames())
	assert.Equal(t, []byte{7, 8, 9, 10}, w.Image().Pix[12:16])

	require.NoError(t, w.Clear())
	assert.Equal(t, uint64(2), w.Frames())
	assert.Equal(t, make([]byte, 16), w.Image().Pix)
}

func TestRenderRejectsWrongLength(t *testing.T) {
	w := New(2, 2)
	assert.ErrorIs(t, w.Render(make([]pixel.Pixel, 3)), render.ErrRendering)
	assert.Zero(t, w.Frames())
}

func TestResize(t *testing.T) {
	w := New(2, 2)
	w.Resize(4, 3)

	width, height := w.Size()
	assert.Equal(t, 4, width)
	assert.Equal(t, 3, height)
	assert.Len(t, w.Image().Pix, 48)
	require.NoError(t, w.Render(make([]pixel.Pixel, 12)))

	g := &game{w: w}
	width, height = g.Layout(1000, 1000)
	assert.Equal(t, 4, width)
	assert.Equal(t, 3, height)
}

func TestLayoutScalesFrameToWindow(t *testing.T) {
	w := New(8, 6, WithScale(3))
	g := &game{w: w}
	for _, outside := range [][2]int{{24, 18}, {1, 1}, {1920, 1080}, {7, 500}} {
		width, height := g.Layout(outside[0], outside[1])
		assert.Equal(t, 8, width, "outside %v", outside)
		assert.Equal(t, 6, height, "outside %v", outside)
	}
	assert.Len(t, w.Image().Pix, 8*6*4, "buffer untouched by window size")
}

func TestOptions(t *testing.T) {
	w := New(1, 1, WithTitle("demo"), WithScale(3), WithTPS(30), WithScale(0), WithTPS(-1))
	assert.Equal(t, "demo", w.title)
	assert.Equal(t, 3, w.scale)
	assert.Equal(t, 30, w.tps)
}

func TestSurface(t *testing.T) {
	w := New(3, 5)
	var s render.Surface = w
	r, err := s.Renderer()
	require.NoError(t, err)
	assert.Same(t, w, r)
}

func TestImageIsACopy(t *testing.T) {
	w := New(1, 1)
	require.NoError(t, w.Render([]pixel.Pixel{{Color: [4]uint8{1, 1, 1, 1}}}))
	img := w.Image()
	img.Pix[0] = 99
	assert.Equal(t, uint8(1), w.Image().Pix[0])
}
