package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/config"
	"github.com/kailas-cloud/docsync/internal/db"
	"github.com/kailas-cloud/docsync/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/docsync/internal/db/redis"
	"github.com/kailas-cloud/docsync/internal/db/sqlite"
	"github.com/kailas-cloud/docsync/internal/metrics"
	"github.com/kailas-cloud/docsync/internal/repository/mapping"
	"github.com/kailas-cloud/docsync/internal/transport/indexer"
	askuc "github.com/kailas-cloud/docsync/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/docsync/internal/usecase/health"
	syncuc "github.com/kailas-cloud/docsync/internal/usecase/sync"
)

// app is the composition root shared by the subcommands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    db.MappingStore
	mappings *mapping.Repo
	gateway  *indexer.Client
	sync     *syncuc.Service
	ask      *askuc.Service
	health   *healthuc.Service
}

// openStore creates the mapping store for the configured driver.
func openStore(ctx context.Context, cfg config.Config) (db.MappingStore, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s, err := postgres.NewStore(ctx, postgres.Config{DSN: cfg.Database.DSN, Table: cfg.Storage.Table})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.NewStore(sqlite.Config{Path: cfg.Database.DSN, Table: cfg.Storage.Table})
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, nil
	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Database.Addrs,
			Password:  cfg.Database.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Database.Driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// newApp connects storage, runs migrations and wires the services.
// The caller must call close.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	// Register metrics explicitly (no init())
	metrics.Register()

	repo := mapping.New(store, metrics.StoreOperationsTotal, logger)
	gw := indexer.New(indexer.Config{
		BaseURL:          cfg.Indexer.BaseURL,
		Timeout:          time.Duration(cfg.Indexer.TimeoutSec) * time.Second,
		MaxResponseBytes: cfg.Indexer.MaxResponseBytes,
		Logger:           logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		mappings: repo,
		gateway:  gw,
		sync:     syncuc.New(gw, repo, logger).WithDocType(cfg.Sync.DocType),
		ask:      askuc.New(gw, logger),
		health:   healthuc.New(store, gw),
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}
