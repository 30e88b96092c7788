// Package imagefile is a headless backend that writes every presented frame
// to disk as an image.
package imagefile

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"softviewport/pixel"
	"softviewport/render"
)

// Format selects the image encoding.
type Format string

const (
	WebP Format = "webp"
	PNG  Format = "png"
	TGA  Format = "tga"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists every supported encoding.
var Formats = []Format{WebP, PNG, TGA, BMP, TIFF}

// Options controls where and how frames are written.
type Options struct {
	Dir    string
	Format Format // default WebP

	// Name, when set, is the file stem every frame overwrites. Otherwise
	// frames are numbered Prefix-00000, Prefix-00001, ...
	Name   string
	Prefix string // default "frame"

	// Scale enlarges the output by an integer factor using Filter.
	Scale  int
	Filter Filter
}

// Writer implements render.Renderer, render.Resizer and render.Surface.
type Writer struct {
	opts   Options
	width  int
	height int
	frames int
	last   string
}

// New prepares a writer for width x height frames, creating opts.Dir.
// An unknown format or an unusable directory is reported as
// render.ErrAdapterNotFound.
func New(width, height int, opts Options) (*Writer, error) {
	if opts.Format == "" {
		opts.Format = WebP
	}
	if !supported(opts.Format) {
		return nil, fmt.Errorf("imagefile: unknown format %q: %w", opts.Format, render.ErrAdapterNotFound)
	}
	if opts.Prefix == "" {
		opts.Prefix = "frame"
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Filter == "" {
		opts.Filter = Nearest
	}
	if _, ok := filters[opts.Filter]; !ok {
		return nil, fmt.Errorf("imagefile: unknown filter %q: %w", opts.Filter, render.ErrAdapterNotFound)
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("imagefile: mkdir %s: %w: %w", opts.Dir, render.ErrAdapterNotFound, err)
		}
	}
	return &Writer{opts: opts, width: width, height: height}, nil
}

func supported(f Format) bool {
	for _, s := range Formats {
		if s == f {
			return true
		}
	}
	return false
}

func (w *Writer) Size() (int, int) { return w.width, w.height }

func (w *Writer) Renderer() (render.Renderer, error) { return w, nil }

// Frames returns how many frames have been written.
func (w *Writer) Frames() int { return w.frames }

// LastPath returns the file written by the latest Render or Clear.
func (w *Writer) LastPath() string { return w.last }

func (w *Writer) Render(buf []pixel.Pixel) error {
	if len(buf) != w.width*w.height {
		return fmt.Errorf("%w: got %d pixels, want %dx%d", render.ErrRendering, len(buf), w.width, w.height)
	}
	return w.write(pixel.ToNRGBA(buf, w.width, w.height))
}

func (w *Writer) Clear() error {
	return w.write(image.NewNRGBA(image.Rect(0, 0, w.width, w.height)))
}

func (w *Writer) Resize(width, height int) {
	w.width = width
	w.height = height
}

func (w *Writer) write(img *image.NRGBA) error {
	if w.opts.Scale > 1 {
		img = Upscale(img, w.opts.Scale, w.opts.Filter)
	}

	stem := w.opts.Name
	if stem == "" {
		stem = fmt.Sprintf("%s-%05d", w.opts.Prefix, w.frames)
	}
	path := filepath.Join(w.opts.Dir, stem+"."+string(w.opts.Format))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", render.ErrRendering, path, err)
	}
	if err := Encode(f, img, w.opts.Format); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", render.ErrRendering, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", render.ErrRendering, path, err)
	}

	w.frames++
	w.last = path
	return nil
}

// Encode writes img to out in the given format.
func Encode(out io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case WebP:
		err = nativewebp.Encode(out, img, nil)
	case PNG:
		err = png.Encode(out, img)
	case TGA:
		err = tga.Encode(out, img)
	case BMP:
		err = bmp.Encode(out, img)
	case TIFF:
		err = tiff.Encode(out, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("imagefile: unknown format %q", f)
	}
	if err != nil {
		return fmt.Errorf("imagefile: %s encode: %w", f, err)
	}
	return nil
}
