package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"softviewport/internal/scene"
	"softviewport/render/imagefile"
	"softviewport/viewport"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir string
	Format    imagefile.Format
	Scale     int
	Filter    imagefile.Filter
	Workers   int
	Progress  time.Duration // default 2s
	Log       zerolog.Logger
}

// Result holds the outcome of rendering one scene file.
type Result struct {
	Source  string
	Name    string
	Width   int
	Height  int
	Depth   int
	Image   string
	Success bool
	Error   string
}

// Find lists the scene files in dir, sorted by name.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == ManifestName {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Run renders all scenes using a worker pool.
func Run(cfg Config, paths []string) []Result {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}

	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					cfg.Log.Info().Int64("done", p).Int("total", total).
						Float64("rate", float64(p)/elapsed).Msg("progress")
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processScene(cfg, paths[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func processScene(cfg Config, path string) Result {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := Result{Source: path, Name: stem}

	s, err := scene.Load(path)
	if err != nil {
		res.Error = err.Error()
		cfg.Log.Warn().Err(err).Str("scene", path).Msg("scene skipped")
		return res
	}
	res.Name, res.Width, res.Height, res.Depth = s.Name, s.Width, s.Height, s.Depth

	out, err := imagefile.New(s.Width, s.Height, imagefile.Options{
		Dir:    cfg.OutputDir,
		Format: cfg.Format,
		Name:   stem,
		Scale:  cfg.Scale,
		Filter: cfg.Filter,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	v := viewport.New(s.Width, s.Height, s.Depth, out, viewport.WithLogger(cfg.Log))
	if err := s.Apply(v); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := v.Render(); err != nil {
		res.Error = err.Error()
		cfg.Log.Warn().Err(err).Str("scene", path).Msg("render failed")
		return res
	}

	res.Image = filepath.Base(out.LastPath())
	res.Success = true
	cfg.Log.Debug().Str("scene", s.Name).Str("image", res.Image).Msg("rendered")
	return res
}
