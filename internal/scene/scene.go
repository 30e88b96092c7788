// Package scene loads lists of draw commands from YAML or JSON files and
// replays them onto a viewport.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"softviewport/internal/geom"
)

// ErrInvalid marks a scene that fails validation. Nothing is drawn from an
// invalid scene.
var ErrInvalid = errors.New("scene: invalid")

// MaxSize caps each scene dimension.
const MaxSize = 16384

// Ops maps each draw operation to the number of points it takes.
var Ops = map[string]int{
	"point":         1,
	"line":          2,
	"triangle":      3,
	"fill_triangle": 3,
}

// Command is one draw call. Points are normalized (x, y, z) triples and
// Color is RGBA with every channel in 0..255.
type Command struct {
	Op     string      `json:"op" yaml:"op"`
	Points [][]float64 `json:"points" yaml:"points"`
	Color  []int       `json:"color" yaml:"color"`
}

// Scene is a named frame description.
type Scene struct {
	Name     string    `json:"name" yaml:"name"`
	Width    int       `json:"width" yaml:"width"`
	Height   int       `json:"height" yaml:"height"`
	Depth    int       `json:"depth" yaml:"depth"`
	Commands []Command `json:"commands" yaml:"commands"`
}

// Drawer is the part of a viewport a scene draws through.
type Drawer interface {
	DrawPoint(p geom.Position, color []byte)
	DrawLine(start, end geom.Position, color []byte)
	DrawTriangle(a, b, c geom.Position, color []byte)
	FillTriangle(a, b, c geom.Position, color []byte)
}

// Load reads a scene file. The format follows the extension: .yaml and .yml
// are YAML, everything else JSON. A scene without a name takes the file
// stem.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}

	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes data as YAML when ext is ".yaml" or ".yml" and as JSON
// otherwise, then validates it.
func Parse(data []byte, ext string) (*Scene, error) {
	var s Scene
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks sizes and every command.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Depth <= 0 {
		return fmt.Errorf("%w: sizes must be positive, got %dx%dx%d", ErrInvalid, s.Width, s.Height, s.Depth)
	}
	if s.Width > MaxSize || s.Height > MaxSize || s.Depth > MaxSize {
		return fmt.Errorf("%w: sizes must be at most %d, got %dx%dx%d", ErrInvalid, MaxSize, s.Width, s.Height, s.Depth)
	}
	for i, c := range s.Commands {
		if err := c.validate(); err != nil {
			return fmt.Errorf("%w: command %d: %s", ErrInvalid, i, err)
		}
	}
	return nil
}

func (c Command) validate() error {
	n, ok := Ops[c.Op]
	if !ok {
		return fmt.Errorf("unknown op %q", c.Op)
	}
	if len(c.Points) != n {
		return fmt.Errorf("%s takes %d points, got %d", c.Op, n, len(c.Points))
	}
	for j, p := range c.Points {
		if len(p) != 3 {
			return fmt.Errorf("point %d has %d coordinates, want 3", j, len(p))
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point %d is not finite", j)
			}
		}
	}
	if len(c.Color) != 4 {
		return fmt.Errorf("color has %d channels, want 4", len(c.Color))
	}
	for _, v := range c.Color {
		if v < 0 || v > 255 {
			return fmt.Errorf("color channel %d out of range", v)
		}
	}
	return nil
}

// Apply validates the scene and replays its commands onto d in order.
func (s *Scene) Apply(d Drawer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, c := range s.Commands {
		color := []byte{byte(c.Color[0]), byte(c.Color[1]), byte(c.Color[2]), byte(c.Color[3])}
		p := make([]geom.Position, len(c.Points))
		for i, pt := range c.Points {
			p[i] = geom.Position{pt[0], pt[1], pt[2]}
		}

		switch c.Op {
		case "point":
			d.DrawPoint(p[0], color)
		case "line":
			d.DrawLine(p[0], p[1], color)
		case "triangle":
			d.DrawTriangle(p[0], p[1], p[2], color)
		case "fill_triangle":
			d.FillTriangle(p[0], p[1], p[2], color)
		}
	}
	return nil
}
