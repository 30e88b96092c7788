package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"softviewport/internal/batch"
	"softviewport/internal/config"
	"softviewport/internal/demo"
	"softviewport/internal/logging"
	"softviewport/render/imagefile"
	"softviewport/viewport"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	testN := flag.Int("test", 0, "Render only first N scenes for testing")
	demoN := flag.Int("demo", 0, "Render N frames of the demo animation instead of scenes")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	sceneDir := flag.String("scenes", "", "Directory of scene files (default: scenes)")
	outputDir := flag.String("output", "", "Output directory (default: <scenes>/renders)")
	format := flag.String("format", "", "Image format: webp, png, tga, bmp, tiff (default: webp)")
	scale := flag.Int("scale", 0, "Integer upscale factor (default: 1)")
	logLevel := flag.String("log-level", "", "Log level (default: info)")
	pretty := flag.Bool("pretty", false, "Human readable log output")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		SceneDir:  *sceneDir,
		OutputDir: *outputDir,
		Format:    *format,
		Scale:     *scale,
		Workers:   *workers,
		LogLevel:  *logLevel,
	})

	logger, err := logging.Setup(os.Stderr, cfg.LogLevel, *pretty || cfg.LogPretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *demoN > 0 {
		if err := renderDemo(cfg, *demoN); err != nil {
			log.Fatal().Err(err).Msg("demo failed")
		}
		return
	}

	paths, err := batch.Find(cfg.SceneDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(paths) {
		paths = paths[:*testN]
	}

	if len(paths) == 0 {
		fmt.Println("No scenes to render.")
		os.Exit(0)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Scene rasterizer → %s%s\n", cfg.Format, mode)
	fmt.Printf("Scenes: %d, Workers: %d\n", len(paths), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    imagefile.Format(cfg.Format),
		Scale:     cfg.Scale,
		Filter:    imagefile.Filter(cfg.Filter),
		Workers:   cfg.Workers,
		Log:       logger,
	}, paths)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success := 0
	var failures []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failures = append(failures, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(paths))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		limit := min(20, len(failures))
		for _, e := range failures[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, batch.ManifestName)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}

func renderDemo(cfg config.Config, frames int) error {
	out, err := imagefile.New(cfg.Width, cfg.Height, imagefile.Options{
		Dir:    cfg.OutputDir,
		Format: imagefile.Format(cfg.Format),
		Prefix: "demo",
		Scale:  cfg.Scale,
		Filter: imagefile.Filter(cfg.Filter),
	})
	if err != nil {
		return err
	}

	v, err := viewport.FromSurface(out, cfg.Depth, viewport.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	a := demo.New()
	for range frames {
		if err := a.Frame(v); err != nil {
			return err
		}
	}
	log.Info().Int("frames", out.Frames()).Str("dir", cfg.OutputDir).Msg("demo rendered")
	return nil
}
