// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

// Command sync is the entry point for the Crescendo catalog sync engine.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the sync engine and start the ops HTTP server.
//  7. Execute the requested run mode, print the report, shut down.
//
// No business logic lives here. All wiring is explicit constructor injection.
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
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/crescendo-live/crescendo/internal/api"
	"github.com/crescendo-live/crescendo/internal/catalog"
	"github.com/crescendo-live/crescendo/internal/core/artist"
	"github.com/crescendo-live/crescendo/internal/core/event"
	"github.com/crescendo-live/crescendo/internal/core/ledger"
	"github.com/crescendo-live/crescendo/internal/core/venue"
	"github.com/crescendo-live/crescendo/internal/enrich"
	"github.com/crescendo-live/crescendo/internal/platform/config"
	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/migration"
	pgstore "github.com/crescendo-live/crescendo/internal/platform/postgres"
	redisstore "github.com/crescendo-live/crescendo/internal/platform/redis"
	"github.com/crescendo-live/crescendo/internal/sync"
	"github.com/crescendo-live/crescendo/pkg/pagerange"
)

// flags shared by the run subcommands.
var (
	flagWorkers    int
	flagPerPage    int
	flagBatchPause time.Duration
	flagMaxPages   int
	flagStartPage  int
	flagRunID      string
	flagLimit      int
	flagNoServer   bool
)

func main() {
	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Crescendo catalog synchronization engine",
		Long:          "Syncs live-event listings (artists, venues, events) from the upstream catalog API into PostgreSQL.",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "concurrent page workers (1 = sequential)")
	root.PersistentFlags().IntVar(&flagPerPage, "per-page", 0, "upstream page size (max 100)")
	root.PersistentFlags().DurationVar(&flagBatchPause, "batch-pause", 0, "pause between worker batches")
	root.PersistentFlags().IntVar(&flagMaxPages, "max-pages", 0, "cap the number of pages processed (0 = no cap)")
	root.PersistentFlags().BoolVar(&flagNoServer, "no-server", false, "skip starting the ops HTTP server")

	fullCmd := &cobra.Command{
		Use:   "full",
		Short: "Walk every upstream page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), sync.Options{Mode: sync.ModeFull})
		},
	}

	incrementalCmd := &cobra.Command{
		Use:   "incremental",
		Short: "Walk pages changed since the stored watermark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), sync.Options{Mode: sync.ModeIncremental})
		},
	}

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue a full run, skipping checkpointed pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), sync.Options{
				Mode:      sync.ModeResume,
				StartPage: flagStartPage,
				RunID:     flagRunID,
			})
		},
	}
	resumeCmd.Flags().IntVar(&flagStartPage, "start-page", 1, "first page of the resumed run")
	resumeCmd.Flags().StringVar(&flagRunID, "run-id", "", "run id whose checkpoints to honor")

	retryCmd := &cobra.Command{
		Use:   "retry PAGES",
		Short: "Re-fetch an explicit set of pages (e.g. 3,7,10-12)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := pagerange.Parse(args)
			if err != nil {
				return fmt.Errorf("invalid page list: %w", err)
			}
			return runSync(cmd.Context(), sync.Options{Mode: sync.ModeRetry, Pages: pages})
		},
	}

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing artist genres from the enrichment provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), flagLimit)
		},
	}
	backfillCmd.Flags().IntVar(&flagLimit, "limit", 0, "max artists to enrich (0 = all)")

	root.AddCommand(fullCmd, incrementalCmd, resumeCmd, retryCmd, backfillCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("run_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// engine bundles everything a run needs after startup wiring.
type engine struct {
	cfg          *config.Config
	log          *slog.Logger
	orchestrator *sync.Orchestrator
	artists      artist.Repository
	rdb          *goredis.Client
	checkDB      func() error
	checkCache   func() error
	close        func()
}

// buildEngine performs the startup sequence and wires the sync pipeline.
func buildEngine(ctx context.Context) (*engine, error) {
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", "crescendo"))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "crescendo"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startupCancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	closeAll := func() {
		log.Info("closing_postgres_pool")
		pool.Close()
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		closeAll()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	fetcher := catalog.NewClient(catalog.Config{
		BaseURL: cfg.CatalogBaseURL,
		APIKey:  cfg.CatalogAPIKey,
	}, log)

	artists := artist.NewPostgresRepository(pool)
	venues := venue.NewPostgresRepository(pool)
	events := event.NewPostgresRepository(pool)
	ledgerRepo := ledger.NewPostgresRepository(pool)

	resolver := sync.NewResolver(constants.SourceCatalog, ledgerRepo, log)
	writer := sync.NewWriter(constants.SourceCatalog, resolver, artists, venues, events, log)
	checkpoints := sync.NewRedisCheckpoints(rdb, log)
	orchestrator := sync.NewOrchestrator(constants.SourceCatalog, fetcher, writer, checkpoints, artists, venues, events, log)

	return &engine{
		cfg:          cfg,
		log:          log,
		orchestrator: orchestrator,
		artists:      artists,
		rdb:          rdb,
		checkDB: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		checkCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		close: closeAll,
	}, nil
}

// startOpsServer launches the health/status server in the background and
// returns its shutdown function.
func (e *engine) startOpsServer() func() {
	if flagNoServer {
		return func() {}
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: e.checkDB,
		CheckCache:    e.checkCache,
	}, e.log)

	server := api.NewServer(e.cfg, e.log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Status:    api.NewStatusHandler(e.orchestrator.Progress()),
	})

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("ops_server_failed", slog.Any("error", err))
		}
	}()

	return func() {
		if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
			e.log.Error("ops_server_shutdown_failed", slog.Any("error", err))
		}
	}
}

// runSync wires the engine, executes one sync run, and prints its report.
func runSync(ctx context.Context, opts sync.Options) error {
	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	stopServer := eng.startOpsServer()
	defer stopServer()

	opts.Workers = firstNonZero(flagWorkers, eng.cfg.Workers)
	opts.PerPage = firstNonZero(flagPerPage, eng.cfg.PerPage)
	if flagBatchPause > 0 {
		opts.BatchPause = flagBatchPause
	} else {
		opts.BatchPause = eng.cfg.BatchPause
	}
	opts.MaxPages = flagMaxPages

	report, err := eng.orchestrator.Run(ctx, opts)
	if err != nil {
		return err
	}

	printReport(report)
	if !report.Clean() {
		duplicates := report.DuplicateArtists + report.DuplicateVenues + report.DuplicateEvents
		return fmt.Errorf("run %s finished unclean: %d failed pages, %d duplicate natural keys",
			report.RunID, report.PagesFailed, duplicates)
	}
	return nil
}

// runBackfill wires the engine and executes one genre backfill pass.
func runBackfill(ctx context.Context, limit int) error {
	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	if !eng.cfg.EnrichmentConfigured() {
		return errors.New("backfill requires ENRICH_CLIENT_ID and ENRICH_CLIENT_SECRET")
	}

	fetcher := enrich.NewClient(enrich.Config{
		ClientID:     eng.cfg.EnrichClientID,
		ClientSecret: eng.cfg.EnrichClientSecret,
		BaseURL:      eng.cfg.EnrichBaseURL,
		TokenURL:     eng.cfg.EnrichTokenURL,
	}, eng.rdb, eng.log)

	backfill := sync.NewBackfill(constants.SourceEnrichment, eng.artists, fetcher, eng.log)
	report, err := backfill.Run(ctx, limit)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

// printReport writes the run report as indented JSON to stdout, separate
// from the structured log stream.
func printReport(report any) {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		slog.Error("report_encoding_failed", slog.Any("error", err))
		return
	}
	fmt.Fprintln(os.Stdout, string(encoded))
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
