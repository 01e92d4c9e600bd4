package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/twinkle/internal/adapters/http/api"
	"github.com/okian/twinkle/internal/adapters/http/swagger"
	"github.com/okian/twinkle/internal/adapters/player"
	"github.com/okian/twinkle/internal/adapters/render/memory"
	"github.com/okian/twinkle/internal/adapters/render/terminal"
	app "github.com/okian/twinkle/internal/app"
	"github.com/okian/twinkle/internal/config"
	"github.com/okian/twinkle/pkg/logger"
	"github.com/okian/twinkle/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	w, closeLog, err := openLogWriter(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	if err := logger.Init(logger.WithWriter(w), logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logs: " + err.Error() + "\n")
		}
	}()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, logger.Get()); err != nil {
		logger.Get().Error(ctx, "overlay failed", logger.Error(err))
		os.Stderr.WriteString("overlay failed: " + err.Error() + "\n")
		os.Exit(1) //nolint:gocritic // deferred cleanup is best effort on failure
	}
}

// run plays the overlay until ctx is canceled, run_for elapses or the user
// quits the terminal renderer.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if cfg.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunFor)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink, renderer, closeSink, err := newSink(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	svc := app.New(
		app.WithLogger(log.Named("overlay")),
		app.WithSink(sink),
		app.WithSettings(settingsFromConfig(cfg)),
		app.WithBlurTarget(cfg.BlurTarget),
		app.WithSeed(cfg.Seed),
		app.WithFrameInterval(cfg.FrameInterval()),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start overlay: %w", err)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = newDebugServer(cfg.HTTPAddr, svc)
		go func() {
			log.Info(ctx, "starting debug HTTP server", logger.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "debug HTTP server failed", logger.Error(err))
				cancel()
			}
		}()
	}

	if renderer != nil {
		go func() {
			if err := renderer.Run(ctx); err != nil {
				log.Error(ctx, "renderer failed", logger.Error(err))
			}
			cancel()
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down overlay...")

	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "debug server shutdown failed", logger.Error(err))
		}
	}
	return nil
}

// newSink builds the render surface; renderer is nil for headless runs.
func newSink(cfg *config.Config, log logger.Logger) (player.Sink, *terminal.Renderer, func(), error) {
	if cfg.Renderer == config.RendererHeadless {
		return memory.New(), nil, func() {}, nil
	}
	screen, err := terminal.OpenScreen()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open terminal: %w", err)
	}
	r := terminal.New(screen,
		terminal.WithFrameInterval(cfg.FrameInterval()),
		terminal.WithLogger(log.Named("terminal")),
	)
	return r, r, screen.Fini, nil
}

// openLogWriter picks where logs go. The terminal renderer owns the screen, so
// without a log file its logs are discarded.
func openLogWriter(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
	if cfg.Renderer == config.RendererTerminal {
		return io.Discard, func() error { return nil }, nil
	}
	return os.Stdout, func() error { return nil }, nil
}

func settingsFromConfig(cfg *config.Config) app.Settings {
	return app.Settings{
		StarCount:    cfg.StarCount,
		StarSize:     cfg.StarSize,
		LoopDuration: cfg.LoopDuration,
		BlurAmount:   cfg.BlurAmount,
		AutoStart:    cfg.AutoStart,
	}
}

func newDebugServer(addr string, svc api.Dependencies) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc).Register(mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())
}
