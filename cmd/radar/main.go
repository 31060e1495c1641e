// Package main runs the token radar daemon:
// - Ingestion (continuous): chat messages from WebSocket or Kafka
// - Detection (scheduled): trending cycle → cooldown gate → Telegram
// - Retention (scheduled): purge of mentions past the horizon
// - HTTP: /health, /status, /metrics, /trigger
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"token-radar/internal/alerting"
	"token-radar/internal/config"
	"token-radar/internal/cooldown"
	"token-radar/internal/detect"
	"token-radar/internal/domain"
	"token-radar/internal/ingest"
	"token-radar/internal/liquidity"
	"token-radar/internal/notify"
	"token-radar/internal/observability"
	"token-radar/internal/retention"
	"token-radar/internal/storage"
	chstore "token-radar/internal/storage/clickhouse"
	"token-radar/internal/storage/memory"
	"token-radar/internal/storage/migrations"
	pgstore "token-radar/internal/storage/postgres"
	"token-radar/internal/trending"
)

// Daemon wires all components of the radar together.
type Daemon struct {
	cfg      *config.Config
	store    storage.MentionStore
	source   ingest.Source
	runner   *ingest.Runner
	pipeline *alerting.Pipeline
	gate     *cooldown.Gate
	janitor  *retention.Janitor

	mu             sync.Mutex
	startedAt      time.Time
	cycleRuns      int
	alertsSent     int64
	lastCycleAt    time.Time
	lastCycleError string
}

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting token radar")

	ctx, cancel := context.WithCancel(context.Background())

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to open %s store: %v", cfg.StorageBackend, err)
	}
	defer cleanup()

	daemon, err := newDaemon(cfg, store)
	if err != nil {
		logrus.Fatalf("Failed to assemble daemon: %v", err)
	}

	srv := daemon.newHTTPServer()
	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Channel to signal completion
	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logrus.Infof("Received signal %v, initiating graceful shutdown", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig = <-sigCh:
			logrus.Warnf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logrus.Warn("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = daemon.Run(ctx)
	done <- err
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP server forced to shut down: %v", err)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("Daemon error: %v", err)
	}
	logrus.Info("Shutdown complete")
}

// openStore builds the configured mention store, applying migrations
// for the database-backed ones.
func openStore(ctx context.Context, cfg *config.Config) (storage.MentionStore, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memory.NewMentionStore(), func() {}, nil

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return pgstore.NewMentionStore(pool), func() { pool.Close() }, nil

	case config.BackendClickHouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		return chstore.NewMentionStore(conn), func() { conn.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// openSource builds the configured message source.
func openSource(cfg *config.Config) (ingest.Source, error) {
	switch cfg.IngestSource {
	case config.SourceWebSocket:
		return ingest.NewWSSource(cfg.WSEndpoint, nil), nil
	case config.SourceKafka:
		return ingest.NewKafkaSource(ingest.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		})
	}
	return nil, fmt.Errorf("unknown ingest source %q", cfg.IngestSource)
}

func newDaemon(cfg *config.Config, store storage.MentionStore) (*Daemon, error) {
	source, err := openSource(cfg)
	if err != nil {
		return nil, err
	}

	detectors := []detect.Detector{
		detect.NewSolanaDetector(),
		detect.NewEVMDetector(),
	}

	// The oracle doubles as the notifier's token name lookup, so it is
	// built even when the liquidity veto is disabled.
	oracle := liquidity.NewOracle(liquidity.Config{
		MinLiquidityUSD: cfg.MinLiquidityUSD,
		Timeout:         cfg.LiquidityTimeout,
	})

	var checker trending.LiquidityChecker
	if cfg.CheckLiquidity {
		checker = oracle
	}

	engine, err := trending.New(trending.Config{
		Window:               cfg.Window,
		MinMentions:          cfg.MinMentions,
		MinUniqueSources:     cfg.MinUniqueSources,
		CheckLiquidity:       cfg.CheckLiquidity,
		MinLiquidityUSD:      cfg.MinLiquidityUSD,
		LiquidityConcurrency: cfg.LiquidityConcurrency,
	}, store, checker)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.NewTelegram(notify.TelegramConfig{
		Token:  cfg.TelegramToken,
		ChatID: cfg.TelegramChatID,
		DryRun: cfg.DryRun,
	}, oracle)
	if err != nil {
		return nil, err
	}

	gate := cooldown.NewGate(cfg.CooldownWindow)

	return &Daemon{
		cfg:       cfg,
		store:     store,
		source:    source,
		runner:    ingest.NewRunner(source, detectors, store),
		pipeline:  alerting.New(engine, gate, notifier),
		gate:      gate,
		janitor:   retention.NewJanitor(store, cfg.RetentionHorizon, cfg.RetentionSchedule),
		startedAt: time.Now().UTC(),
	}, nil
}

// Run starts ingestion, the detection loop and the retention janitor,
// then blocks until the context ends or a component fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.janitor.Start(); err != nil {
		return fmt.Errorf("start retention janitor: %w", err)
	}
	defer d.janitor.Stop()

	if closer, ok := d.source.(io.Closer); ok {
		defer closer.Close()
	}

	errCh := make(chan error, 2)

	go func() {
		if err := d.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go func() {
		if err := d.runDetectionLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("detection loop: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runDetectionLoop fires one alert cycle per detection interval.
func (d *Daemon) runDetectionLoop(ctx context.Context) error {
	logrus.Infof("Detection loop started: %v window, cycle every %v", d.cfg.Window, d.cfg.DetectionInterval)

	ticker := time.NewTicker(d.cfg.DetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

// runCycle runs one pipeline cycle and folds the outcome into the
// /status counters. A tick that lands while the previous cycle is
// still running is dropped.
func (d *Daemon) runCycle(ctx context.Context) {
	stats, err := d.pipeline.RunCycle(ctx)
	if errors.Is(err, alerting.ErrCycleInProgress) {
		logrus.Debug("Previous detection cycle still running, skipping tick")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.lastCycleError = err.Error()
		logrus.Errorf("Detection cycle failed: %v", err)
	} else {
		d.lastCycleError = ""
		d.alertsSent += int64(stats.Sent)
	}
	d.cycleRuns++
	d.lastCycleAt = time.Now().UTC()
}

// newHTTPServer builds the health/status/metrics surface.
func (d *Daemon) newHTTPServer() *http.Server {
	router := mux.NewRouter()

	router.HandleFunc("/health", d.handleHealth).Methods("GET")
	router.HandleFunc("/status", d.handleStatus).Methods("GET")
	router.Handle("/metrics", observability.Handler()).Methods("GET")

	// Manual cycle trigger (for testing)
	router.HandleFunc("/trigger", d.handleTrigger).Methods("POST")

	return &http.Server{
		Addr:         d.cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// handleHealth probes the store so load balancers notice database
// outages, not just a live process.
func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := d.store.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// handleStatus returns daemon status as JSON.
func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	status := domain.HealthStatus{
		Status:           "running",
		StartedAt:        d.startedAt,
		Uptime:           time.Since(d.startedAt).Round(time.Second).String(),
		StorageBackend:   d.cfg.StorageBackend,
		IngestSource:     d.cfg.IngestSource,
		Window:           d.cfg.Window.String(),
		MinMentions:      d.cfg.MinMentions,
		MinUniqueSources: d.cfg.MinUniqueSources,
		DetectionCycles:  d.cycleRuns,
		LastCycleAt:      d.lastCycleAt,
		LastCycleError:   d.lastCycleError,
		AlertsSent:       d.alertsSent,
	}
	d.mu.Unlock()

	status.ActiveCooldowns = d.gate.Active()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// handleTrigger starts a detection cycle outside the regular cadence.
func (d *Daemon) handleTrigger(w http.ResponseWriter, r *http.Request) {
	go d.runCycle(context.Background())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Detection cycle triggered"}`))
}
