// Package main implements the firebridge entry point: it serves bridged modules to websocket clients or runs a script in the embedded runtime.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/config"
	"github.com/viant/firebridge/jsruntime"
	"github.com/viant/firebridge/modules"
	"github.com/viant/firebridge/sdk/sdktest"
	"github.com/viant/firebridge/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "firebridge: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, output io.Writer) error {
	flags, err := parseFlags(args, output)
	if err != nil {
		return err
	}
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}
	if flags.Listen != "" {
		cfg.Listen = flags.Listen
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := newLogger(output, flags.LogFormat, level)
	ctx = logger.WithContext(ctx)

	var factory app.Factory = modules.NewFirebase()
	if flags.Emulate {
		logger.Info().Msg("using in-memory database and auth")
		factory = sdktest.NewFactory()
	}
	registry := app.NewRegistry(factory, logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close apps")
		}
	}()
	if err = cfg.Configure(ctx, registry); err != nil {
		return err
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := bridge.NewMetrics(gatherer)
	shared := modules.NewShared(registry, metrics)
	install := func(session *bridge.Session) {
		modules.Install(session, shared)
	}

	if flags.Script != "" {
		source, err := os.ReadFile(flags.Script)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		host := jsruntime.New(install, bridge.WithLogger(logger), bridge.WithMetrics(metrics))
		defer host.Close()
		logger.Info().Str("script", flags.Script).Msg("running script")
		return host.Run(ctx, string(source))
	}
	server := transport.New(install,
		transport.WithPath(cfg.Path),
		transport.WithLogger(logger),
		transport.WithMetrics(metrics, gatherer))
	return server.ListenAndServe(ctx, cfg.Listen)
}

func newLogger(output io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
