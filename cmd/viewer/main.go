package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"softviewport/internal/config"
	"softviewport/internal/demo"
	"softviewport/internal/logging"
	"softviewport/internal/scene"
	"softviewport/render"
	"softviewport/render/stream"
	"softviewport/render/window"
	"softviewport/viewport"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	backend := flag.String("backend", "", "Presentation backend: window | stream (default: window)")
	addr := flag.String("addr", "", "HTTP listen address for the stream backend (default: :8080)")
	scenePath := flag.String("scene", "", "Show a scene file instead of the demo animation")
	logLevel := flag.String("log-level", "", "Log level (default: info)")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{Backend: *backend, Listen: *addr, LogLevel: *logLevel})

	if _, err := logging.Setup(os.Stdout, cfg.LogLevel, true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	frame := demo.New().Frame
	if *scenePath != "" {
		s, err := scene.Load(*scenePath)
		if err != nil {
			log.Fatal().Err(err).Msg("scene load failed")
		}
		cfg.Width, cfg.Height, cfg.Depth = s.Width, s.Height, s.Depth
		frame = func(v demo.Viewport) error {
			if err := s.Apply(v); err != nil {
				return err
			}
			err := v.Render()
			v.ResetBuffer()
			return err
		}
	}

	var err error
	switch cfg.Backend {
	case "window":
		err = runWindow(cfg, frame)
	case "stream":
		err = runStream(cfg, frame)
	default:
		err = fmt.Errorf("backend %q: %w", cfg.Backend, render.ErrAdapterNotFound)
	}
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("viewer stopped")
	}
}

func runWindow(cfg config.Config, frame func(demo.Viewport) error) error {
	w := window.New(cfg.Width, cfg.Height,
		window.WithTitle(cfg.Title),
		window.WithScale(cfg.Scale),
		window.WithTPS(cfg.TPS),
		window.WithLogger(log.Logger),
	)
	v, err := viewport.FromSurface(w, cfg.Depth, viewport.WithLogger(log.Logger))
	if err != nil {
		return err
	}
	return w.Run(func() error { return frame(v) })
}

func runStream(cfg config.Config, frame func(demo.Viewport) error) error {
	s := stream.New(cfg.Width, cfg.Height, stream.WithLogger(log.Logger))
	v, err := viewport.FromSurface(s, cfg.Depth, viewport.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      withCORS(s.Handler()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.Listen).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(max(1, cfg.TPS)))
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := frame(v); err != nil {
					errc <- err
					return
				}
			}
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-ch:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		err = nil
	case err = <-errc:
	}

	close(stop)
	_ = srv.Close()
	_ = s.Close()
	return err
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
