package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ps2kbd/internal/config"
	"ps2kbd/internal/health"
	"ps2kbd/internal/keyboard"
	"ps2kbd/internal/keymap"
	"ps2kbd/internal/logging"
	"ps2kbd/internal/metrics"
	"ps2kbd/internal/port"
	"ps2kbd/internal/scancode"
	"ps2kbd/internal/watcher"
)

// session is everything a driving command needs, built from the config.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	keymap  *keymap.Keymap
	metrics *metrics.KeyboardMetrics

	server  *http.Server
	watcher *watcher.Watcher
	reload  chan *keymap.Keymap
}

// loadConfig loads and validates the config named by -config.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "Configuration file path")
}

func newSession(cfg *config.Config) (*session, error) {
	logger, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logging.SetDefault(logger)

	km, err := keymap.Load(cfg.Keyboard.Keymap)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("load keymap: %w", err)
	}

	rt := &session{
		cfg:     cfg,
		logger:  logger,
		keymap:  km,
		metrics: metrics.NewKeyboardMetrics(metrics.Default()),
	}
	return rt, nil
}

// driverOptions builds driver options from the config.
func (rt *session) driverOptions() (keyboard.Options, error) {
	set, err := scancode.ParseSet(rt.cfg.Keyboard.ScancodeSet)
	if err != nil {
		return keyboard.Options{}, err
	}
	return keyboard.Options{
		Set:           set,
		QueueCapacity: rt.cfg.Keyboard.QueueCapacity,
		Keymap:        rt.keymap,
		Logger:        rt.component("keyboard"),
		Metrics:       rt.metrics,
	}, nil
}

func (rt *session) newDriver(p port.Port, d keyboard.Display) (*keyboard.Driver, error) {
	opts, err := rt.driverOptions()
	if err != nil {
		return nil, err
	}
	return keyboard.New(p, d, opts), nil
}

// startMetrics serves the metrics endpoint when enabled.
func (rt *session) startMetrics() {
	if !rt.cfg.Metrics.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Registry().HTTPHandler())
	checker := rt.healthChecker()
	mux.Handle("/healthz", checker.HealthHandler())
	mux.Handle("/livez", checker.LivenessHandler())
	rt.server = &http.Server{
		Addr:              rt.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		rt.logger.Info("metrics endpoint listening", "addr", rt.cfg.Metrics.Addr)
		if err := rt.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics endpoint failed", "error", err)
		}
	}()
}

// healthChecker checks the capture queue, the keymap file when one is
// configured, and the controller device when this host has one.
func (rt *session) healthChecker() *health.Checker {
	c := health.NewChecker()
	c.RegisterFunc("queue", true, health.QueueCheck(rt.metrics, rt.cfg.Keyboard.QueueCapacity))
	if path := rt.cfg.Keyboard.Keymap; !strings.HasPrefix(path, "builtin:") {
		c.RegisterFunc("keymap", false, health.FileCheck(path))
	}
	c.RegisterFunc("port", false, health.CustomCheck(func() error {
		if ok, reason := port.DevPortAvailable(); !ok {
			return fmt.Errorf("%w: %s", port.ErrNotAvailable, reason)
		}
		return nil
	}))
	return c
}

// watchKeymap reloads the keymap file on change. Builtin layouts are not
// watched.
func (rt *session) watchKeymap() (<-chan *keymap.Keymap, error) {
	path := rt.cfg.Keyboard.Keymap
	if !rt.cfg.Keyboard.WatchKeymap || strings.HasPrefix(path, "builtin:") {
		return nil, nil
	}

	w, err := watcher.New(path, 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("watch keymap: %w", err)
	}
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("watch keymap: %w", err)
	}
	rt.watcher = w
	rt.reload = make(chan *keymap.Keymap, 1)

	log := rt.logger.WithComponent("watcher")
	go func() {
		for {
			select {
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				km, err := keymap.Load(ev.Path)
				if err != nil {
					log.Warn("keymap reload failed", "path", ev.Path, "error", err)
					continue
				}
				log.Info("keymap changed", "path", ev.Path, "size", ev.Size)
				// Only the newest layout matters.
				select {
				case <-rt.reload:
				default:
				}
				rt.reload <- km
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.Warn("keymap watch error", "error", err)
			}
		}
	}()
	return rt.reload, nil
}

func (rt *session) Close() {
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
	if rt.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		rt.server.Shutdown(ctx)
		cancel()
	}
	rt.logger.Close()
}

// component returns a child logger for packages that take a *slog.Logger.
func (rt *session) component(name string) *slog.Logger {
	return rt.logger.WithComponent(name).Logger
}
