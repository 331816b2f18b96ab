package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wellness-engine/internal/assessment"
	apihttp "wellness-engine/internal/api/http"
	"wellness-engine/internal/common/camunda"
	"wellness-engine/internal/common/config"
	"wellness-engine/internal/common/database"
	"wellness-engine/internal/common/logger"
	"wellness-engine/internal/common/metrics"
	"wellness-engine/internal/common/observability"
	"wellness-engine/internal/scoring"
	"wellness-engine/internal/scoring/reference"
	ew "wellness-engine/internal/workers/assessment/evaluate-wellness"
	"wellness-engine/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assessment server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("referenceSource", cfg.Reference.Source),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := scoring.PolicyFromConfig(cfg.Scoring)
	newRunner := func(tables *reference.Tables, transport string) *assessment.Runner {
		engine := scoring.NewEngine(tables, policy, log, scoring.WithRecorder(metrics.SubscoreRecorder{}))
		return assessment.NewRunner(engine, obs, transport)
	}

	// Serve on formula fallbacks until reference data is in.
	server := apihttp.NewServer(cfg.Server, newRunner(reference.Empty(), metrics.TransportHTTP), log)

	source, cleanup, err := openReferenceSource(ctx, cfg)
	if err != nil {
		zapLog.Fatal("reference source unavailable", zap.Error(err))
	}
	defer cleanup()

	// --- Reference data ---
	tablesCh := make(chan *reference.Tables, 1)
	if source == nil {
		server.MarkReady()
		tablesCh <- reference.Empty()
	} else {
		cache := openReferenceCache(ctx, cfg, log)
		provider := reference.NewProvider(source, cache, log)
		go func() {
			tables, err := provider.LoadWithRetry(ctx, cfg.Reference.LoadRetries, 2*time.Second)
			if err != nil {
				log.Error("reference data failed to load", map[string]interface{}{"error": err})
				close(tablesCh)
				return
			}
			metrics.SetReferenceRows(tables.RowCounts())
			server.SetRunner(newRunner(tables, metrics.TransportHTTP))
			tablesCh <- tables
		}()
	}

	// --- Zeebe worker ---
	if cfg.Camunda.Enabled {
		go startWorker(ctx, cfg, tablesCh, newRunner, log)
	}

	// --- HTTP ---
	httpServer := server.NewHTTPServer()
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	zapLog.Info("Assessment server stopped")
}

// openReferenceSource returns nil when no source is configured.
func openReferenceSource(ctx context.Context, cfg *config.Config) (reference.Source, func(), error) {
	noop := func() {}
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var db *sql.DB
	var err error
	switch cfg.Reference.Source {
	case config.SourceFile:
		return reference.NewFileSource(cfg.Reference.FilePath), noop, nil
	case config.SourcePostgres:
		db, err = database.NewPostgres(openCtx, cfg.Database.Postgres)
	case config.SourceSQLite:
		db, err = database.NewSQLite(openCtx, cfg.Database.SQLite)
	default:
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	return reference.NewSQLSource(db, cfg.Reference.Source), func() { db.Close() }, nil
}

// openReferenceCache returns nil when redis is not configured or unreachable;
// the cache is optional.
func openReferenceCache(ctx context.Context, cfg *config.Config, log logger.Logger) *reference.Cache {
	if !cfg.Database.Redis.Enabled() {
		return nil
	}
	client, err := database.NewRedis(ctx, cfg.Database.Redis)
	if err != nil {
		log.Warn("reference cache disabled", map[string]interface{}{"error": err})
		return nil
	}
	return reference.NewCache(client, reference.DefaultCacheKey, config.GetDuration(cfg.Reference.CacheTTL))
}

func startWorker(
	ctx context.Context,
	cfg *config.Config,
	tablesCh <-chan *reference.Tables,
	newRunner func(*reference.Tables, string) *assessment.Runner,
	log logger.Logger,
) {
	var tables *reference.Tables
	select {
	case t, ok := <-tablesCh:
		if !ok {
			log.Error("zeebe worker not started: reference data unavailable", nil)
			return
		}
		tables = t
	case <-ctx.Done():
		return
	}

	client, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda))
	if err != nil {
		log.Error("zeebe client failed", map[string]interface{}{"error": err})
		return
	}
	defer client.Close()

	reg, err := registry.LoadRegistry(cfg.Camunda.RegistryPath)
	if err == nil {
		err = reg.Validate()
	}
	if err != nil {
		log.Error("activity registry unusable", map[string]interface{}{"error": err})
		return
	}
	activity, found := reg.Find(ew.TaskType)
	if !found {
		log.Error("activity registry has no entry for worker", map[string]interface{}{"taskType": ew.TaskType})
		return
	}

	handler, err := ew.NewHandler(ew.HandlerOptions{
		AppConfig: cfg,
		Runner:    newRunner(tables, metrics.TransportWorker),
		Retry:     client.RetryConfig(),
		Logger:    log,
		Activity:  activity,
	})
	if err != nil {
		log.Error("worker handler setup failed", map[string]interface{}{"error": err})
		return
	}

	w := camunda.NewWorker(client.GetClient(), ew.TaskType, handler.Config().MaxJobsActive, handler, log)
	<-ctx.Done()
	w.Stop()
}
