// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/opentrusty/tenantnotes/internal/config"
	"github.com/opentrusty/tenantnotes/internal/observability/logger"
	"github.com/opentrusty/tenantnotes/internal/observability/metrics"
	"github.com/opentrusty/tenantnotes/internal/observability/tracing"
	"github.com/opentrusty/tenantnotes/internal/seed"
	"github.com/opentrusty/tenantnotes/internal/store/postgres"
	transportHTTP "github.com/opentrusty/tenantnotes/internal/transport/http"
)

const usage = "usage: server [serve|migrate|seed]"

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = runServer(ctx, cfg)
	case "migrate":
		err = runMigrate(ctx, cfg)
	case "seed":
		err = runSeed(ctx, cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error(command+" failed", logger.Error(err))
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	slog.Info("starting tenantnotes",
		logger.Component("server"),
		slog.String("driver", cfg.Database.Driver),
	)

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Observability.Environment,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	} else {
		defer tracer.Shutdown(context.Background())
	}

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled:     cfg.Observability.OTELEnabled,
		ServiceName: cfg.Observability.ServiceName,
		Interval:    cfg.Observability.MetricInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer meter.Shutdown(context.Background())
	instruments, err := metrics.NewInstruments(meter)
	if err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	svc, err := newServices(cfg, st, instruments)
	if err != nil {
		return err
	}

	// The memory driver starts empty on every run.
	if st.db == nil {
		if err := seed.Run(ctx, svc.seed()); err != nil {
			return fmt.Errorf("failed to seed memory store: %w", err)
		}
	}

	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go rateLimiter.Run(ctx)

	handler := transportHTTP.NewHandler(svc.users, svc.sessions, svc.tenants, svc.notes, svc.audit)
	router := transportHTTP.NewRouter(handler, rateLimiter, transportHTTP.RouterConfig{
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"), slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires DB_DRIVER=%s", config.DriverPostgres)
	}
	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	slog.Info("applying initial schema", logger.Component("migrate"))
	if err := st.db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	slog.Info("migration successful", logger.Component("migrate"))
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config) error {
	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := newServices(cfg, st, metrics.Nop())
	if err != nil {
		return err
	}
	if err := seed.Run(ctx, svc.seed()); err != nil {
		return err
	}
	slog.Info("seed complete", logger.Component("seed"))
	return nil
}
