package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thatsimonsguy/ambient-hub/internal/button"
	"github.com/thatsimonsguy/ambient-hub/internal/config"
	"github.com/thatsimonsguy/ambient-hub/internal/datadog"
	"github.com/thatsimonsguy/ambient-hub/internal/env"
	"github.com/thatsimonsguy/ambient-hub/internal/gpio"
	"github.com/thatsimonsguy/ambient-hub/internal/hub"
	"github.com/thatsimonsguy/ambient-hub/internal/journal"
	"github.com/thatsimonsguy/ambient-hub/internal/logging"
	"github.com/thatsimonsguy/ambient-hub/internal/modes"
	"github.com/thatsimonsguy/ambient-hub/internal/notifications"
	"github.com/thatsimonsguy/ambient-hub/internal/sink"
	"github.com/thatsimonsguy/ambient-hub/system/shutdown"
)

// shutdownGrace bounds how long a stop waits for in-flight work before
// the display is blanked anyway.
const shutdownGrace = 5 * time.Second

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)
	env.Cfg = &cfg

	log.Info().
		Bool("safe_mode", cfg.SafeMode).
		Str("sink", cfg.SinkBackend).
		Msg("Starting ambient hub")

	gpio.SetSafeMode(cfg.SafeMode)
	if cfg.SafeMode {
		log.Warn().Msg("Safe mode enabled: GPIO writes are disabled system-wide")
	} else if err := gpio.ValidateStartupPins(&cfg); err != nil {
		log.Fatal().Err(err).Msg("Refusing to start due to unsafe pin states")
	}

	if cfg.EnableDatadog {
		datadog.InitMetrics()
	}
	notifications.Init()

	rotation, err := modes.Build(&cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid mode rotation")
	}

	backend, err := buildBackend(&cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize display backend")
	}
	s := sink.New(backend, cfg.GPIO.Buzzer)

	deps := &hub.Deps{}
	if cfg.NtfyTopic != "" {
		deps.Notifier = notifications.Client{}
	}
	if cfg.JournalFile != "" {
		jrnl, err := journal.Open(cfg.JournalFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.JournalFile).Msg("Journal disabled")
		} else {
			defer jrnl.Close()
			deps.Journal = jrnl
		}
	}

	h := hub.New(rotation, s,
		time.Duration(cfg.FetchTimeoutSeconds)*time.Second,
		cfg.FailureThreshold, deps)

	listener := button.NewListener(*cfg.GPIO.Button,
		time.Duration(cfg.ButtonPollMillis)*time.Millisecond,
		time.Duration(cfg.DebounceMillis)*time.Millisecond,
		h.PressAt)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.Run(gctx) })
	g.Go(func() error { return listener.Run(gctx) })

	<-gctx.Done()
	log.Info().Msg("Shutdown signal received")

	waited := make(chan error, 1)
	go func() { waited <- g.Wait() }()
	select {
	case err := <-waited:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Hub stopped with error")
		}
	case <-time.After(shutdownGrace):
		log.Warn().Msg("Grace window elapsed, forcing exit")
	}

	if err := s.Close(); err != nil {
		shutdown.ShutdownWithError(err, "Failed to blank display on shutdown")
	}
	log.Info().Msg("Ambient hub stopped")
}

func buildBackend(cfg *config.Config) (sink.Backend, error) {
	if cfg.SinkBackend == "hue" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return sink.NewHueBackend(ctx, cfg.Hue.BridgeAddr, cfg.Hue.Username, cfg.Hue.LightID)
	}
	return sink.LEDBackend{
		Red:   *cfg.GPIO.LEDRed,
		Green: *cfg.GPIO.LEDGreen,
		Blue:  *cfg.GPIO.LEDBlue,
	}, nil
}
