// Depositcam - camera capture widget for container deposit returns.
// Serves the browser widget, runs the capture session and the analyzer chain.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bottlebank/depositcam/internal/config"
	"github.com/bottlebank/depositcam/internal/log"
	"github.com/bottlebank/depositcam/pkg/analysis"
	"github.com/bottlebank/depositcam/pkg/camera"
	"github.com/bottlebank/depositcam/pkg/session"
	"github.com/bottlebank/depositcam/pkg/web"
)

func main() {
	cfg := parseFlags()
	log.Init(cfg.LogLevel)
	logger := log.With("component", "main")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer, err := buildAnalyzer(ctx, cfg)
	if err != nil {
		logger.Error("analyzer setup failed", "error", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	fallback := analysis.NewFallback()
	if cfg.FallbackSeed != 0 {
		fallback = analysis.NewSeededFallback(cfg.FallbackSeed)
	}

	var (
		source camera.Source
		remote *camera.Remote
		webcam *camera.Webcam
	)
	switch cfg.Mode {
	case config.ModeKiosk:
		webcam, err = camera.NewWebcam(cfg.Camera, log.With("component", "camera"))
		if err != nil {
			logger.Error("webcam setup failed", "error", err)
			os.Exit(1)
		}
		source = webcam
	default:
		remote = camera.NewRemote(log.With("component", "camera"))
		source = remote
	}
	defer source.Close()

	sess, err := session.New(source, analyzer, cfg.Rates,
		session.WithLogger(log.With("component", "session")),
		session.WithFallback(fallback),
		session.WithAnalysisTimeout(cfg.AnalysisTimeout),
	)
	if err != nil {
		logger.Error("session setup failed", "error", err)
		os.Exit(1)
	}

	srv := web.NewServer(web.Config{
		Addr:      cfg.Addr,
		StaticDir: cfg.StaticDir,
		Session:   sess,
		Remote:    remote,
		Logger:    log.With("component", "web"),
	})

	if remote != nil {
		remote.OnReady = func() { sess.SetCameraReady(true) }
	}
	if webcam != nil {
		webcam.OnReady = func() { sess.SetCameraReady(true) }
		if err := webcam.Open(); err != nil {
			if errors.Is(err, camera.ErrUnavailable) {
				logger.Warn("webcam unavailable, capture disabled until restart", "error", err)
			} else {
				logger.Error("webcam open failed", "error", err)
				os.Exit(1)
			}
		} else {
			go webcam.Frames(ctx, srv.PublishPreview)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	logger.Info("depositcam listening", "addr", cfg.Addr, "mode", cfg.Mode)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}
	if err := srv.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// buildAnalyzer assembles the analyzer chain from configuration. Gemini
// leads when a key is present; the local heuristic always trails it so a
// provider outage degrades instead of failing the cycle outright.
func buildAnalyzer(ctx context.Context, cfg config.Config) (analysis.Analyzer, error) {
	analyzers := make([]analysis.Analyzer, 0, 2)

	if cfg.GeminiKey != "" {
		gemini, err := analysis.NewGemini(ctx,
			analysis.WithAPIKey(cfg.GeminiKey),
			analysis.WithModel(cfg.GeminiModel),
			analysis.WithLogger(log.With("component", "analysis")),
		)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, gemini)
	} else {
		log.Warn("GEMINI_API_KEY not set, using local analysis only")
	}

	analyzers = append(analyzers, analysis.NewHeuristic(
		analysis.WithLogger(log.With("component", "analysis")),
	))

	return analysis.NewChainWithLogger(log.With("component", "analysis"), analyzers...)
}

// parseFlags parses command line flags and returns configuration.
// Environment variables load first; flags that were set override them.
func parseFlags() config.Config {
	cfg := config.DefaultConfig()
	cfg.LoadEnv()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	staticDir := flag.String("static", cfg.StaticDir, "Widget static file directory (empty disables)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	mode := flag.String("mode", cfg.Mode, "Camera mode: browser or kiosk")
	device := flag.Int("device", cfg.Camera.DeviceID, "Webcam device ID (kiosk mode)")
	seed := flag.Int64("fallback-seed", cfg.FallbackSeed, "Seed for the degraded estimator (0 = fixed estimate)")
	flag.Parse()

	cfg.Addr = *addr
	cfg.StaticDir = *staticDir
	cfg.LogLevel = *logLevel
	cfg.Mode = *mode
	cfg.Camera.DeviceID = *device
	cfg.FallbackSeed = *seed
	return cfg
}
