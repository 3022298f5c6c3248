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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"regdesk/internal/checkin/handler"
	"regdesk/internal/checkin/lock"
	checkinmetrics "regdesk/internal/checkin/metrics"
	"regdesk/internal/checkin/models"
	"regdesk/internal/checkin/ports"
	"regdesk/internal/checkin/printer"
	"regdesk/internal/checkin/render/typst"
	"regdesk/internal/checkin/service"
	"regdesk/internal/checkin/service/coordinator"
	"regdesk/internal/checkin/service/labels"
	"regdesk/internal/checkin/service/resolver"
	larkstore "regdesk/internal/checkin/store/lark"
	"regdesk/internal/checkin/store/memory"
	pgstore "regdesk/internal/checkin/store/postgres"
	"regdesk/internal/platform/background"
	"regdesk/internal/platform/config"
	"regdesk/internal/platform/httpserver"
	"regdesk/internal/platform/logger"
	httpmetrics "regdesk/internal/platform/metrics"
	"regdesk/internal/platform/postgres"
	"regdesk/internal/platform/redis"
	"regdesk/internal/platform/tracing"
	httptransport "regdesk/internal/transport/http"
	kafkapub "regdesk/pkg/platform/audit/publishers/kafka"
	"regdesk/pkg/platform/audit/publishers/logpub"
)

// main wires configuration, infrastructure and the check-in module, then runs
// the HTTP server until SIGINT/SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := checkinmetrics.New(reg)
	checks := map[string]httptransport.HealthCheck{}

	store, closeStore, err := buildStore(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher ports.AuditPublisher = logpub.New(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := kafkapub.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, kafkapub.WithLogger(log))
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer kp.Close()
		if err := kp.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.Topic, "error", err)
		}
		checks["kafka"] = kp.Ping
		publisher = kp
	}

	res, err := resolver.New(store,
		resolver.WithLogger(log),
		resolver.WithMetrics(m),
		resolver.WithStrictMatch(cfg.StrictMatch),
	)
	if err != nil {
		return err
	}
	coord, err := coordinator.New(store,
		coordinator.WithLogger(log),
		coordinator.WithMetrics(m),
		coordinator.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	pipelineOpts := []labels.Option{
		labels.WithLogger(log),
		labels.WithMetrics(m),
		labels.WithAuditPublisher(publisher),
	}
	if p := printer.New(cfg.Printer); p != nil {
		pipelineOpts = append(pipelineOpts, labels.WithPrinter(p))
		log.Info("printing enabled", "printer", cfg.Printer.Name)
	}
	pipe, err := labels.New(typst.New(cfg.Render), cfg.Render.OutputDir, pipelineOpts...)
	if err != nil {
		return err
	}

	runner := background.New(log)
	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithScheduler(runner),
		service.WithAssets(assetsFromConfig(cfg.Assets)),
	}
	if cfg.Lock.Backend == config.LockRedis {
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
		checks["redis"] = rc.Health
		svcOpts = append(svcOpts, service.WithLocker(lock.NewRedis(rc.Client), cfg.Lock.TTL))
	}
	svc, err := service.New(res, coord, pipe, svcOpts...)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  httpmetrics.New(reg),
		Gatherer: reg,
		Checks:   checks,
		Modules:  []httptransport.Registrar{handler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting regdesk", "addr", cfg.Server.Addr, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		log.Error("background runs did not drain", "error", err)
	}
	return nil
}

// buildStore selects the record store backend. The returned cleanup is never nil.
func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]httptransport.HealthCheck) (ports.RecordStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreLark:
		return larkstore.New(cfg.Lark), func() {}, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		checks["postgres"] = pool.Ping
		return store, pool.Close, nil

	case config.StoreMemory:
		store := memory.New()
		if cfg.Store.SeedFile != "" {
			if err := store.LoadSeed(cfg.Store.SeedFile); err != nil {
				return nil, nil, err
			}
			log.Info("loaded seed data", "file", cfg.Store.SeedFile)
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func assetsFromConfig(catalogue config.AssetCatalogue) []models.Asset {
	assets := make([]models.Asset, 0, len(catalogue))
	for _, a := range catalogue {
		assets = append(assets, models.Asset{Ordinal: a.Ordinal, Name: a.Name})
	}
	return assets
}
