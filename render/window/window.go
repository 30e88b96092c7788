// Package window presents frames in a desktop window driven by Ebitengine.
package window

import (
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"softviewport/pixel"
	"softviewport/render"
)

// Window implements render.Renderer, render.Resizer and render.Surface.
// Render and Clear may be called from any goroutine; the latest frame is
// shown on the next redraw.
type Window struct {
	mu      sync.Mutex
	width   int
	height  int
	pix     []byte
	frames  uint64
	resized bool

	title string
	scale int
	tps   int
	log   zerolog.Logger
}

type Option func(*Window)

func WithTitle(title string) Option {
	return func(w *Window) { w.title = title }
}

// WithScale sets the integer zoom between buffer pixels and screen pixels.
func WithScale(scale int) Option {
	return func(w *Window) {
		if scale > 0 {
			w.scale = scale
		}
	}
}

// WithTPS sets how many times per second the step function runs.
func WithTPS(tps int) Option {
	return func(w *Window) {
		if tps > 0 {
			w.tps = tps
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(w *Window) { w.log = l }
}

func New(width, height int, opts ...Option) *Window {
	w := &Window{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
		title:  "viewport",
		scale:  1,
		tps:    60,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *Window) Renderer() (render.Renderer, error) { return w, nil }

func (w *Window) Render(buf []pixel.Pixel) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(buf) != w.width*w.height {
		return fmt.Errorf("%w: got %d pixels, want %dx%d", render.ErrRendering, len(buf), w.width, w.height)
	}
	w.pix = pixel.RGBA(w.pix, buf)
	w.frames++
	return nil
}

func (w *Window) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.pix)
	w.frames++
	return nil
}

func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
	w.pix = make([]byte, width*height*4)
	w.resized = true
}

// Frames returns how many frames were presented.
func (w *Window) Frames() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Image copies the frame currently on display.
func (w *Window) Image() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, w.width, w.height))
	copy(img.Pix, w.pix)
	return img
}

// Run opens the window and calls step once per tick until step fails,
// Escape is pressed or the window is closed. It blocks and must be called
// from the main goroutine.
//
// The user may resize the window. That only scales the presented frame;
// the buffer keeps its size until Resize is called.
func (w *Window) Run(step func() error) error {
	width, height := w.Size()
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(width*w.scale, height*w.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(w.tps)
	w.log.Info().Str("title", w.title).Int("width", width).Int("height", height).
		Int("scale", w.scale).Msg("window open")
	return ebiten.RunGame(&game{w: w, step: step})
}

type game struct {
	w    *Window
	step func() error
	img  *ebiten.Image
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}

	g.w.mu.Lock()
	resized, width, height := g.w.resized, g.w.width, g.w.height
	g.w.resized = false
	g.w.mu.Unlock()
	if resized {
		ebiten.SetWindowSize(width*g.w.scale, height*g.w.scale)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.w.mu.Lock()
	defer g.w.mu.Unlock()
	if g.img == nil || g.img.Bounds().Dx() != g.w.width || g.img.Bounds().Dy() != g.w.height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(g.w.width, g.w.height)
	}
	g.img.WritePixels(g.w.pix)
	screen.DrawImage(g.img, nil)
}

// Layout pins the logical screen to the buffer size whatever the outside
// size, so ebiten scales the frame to fit the window.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w.Size()
}
