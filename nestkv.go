// Package nestkv is a hierarchical key-value store: dot-notation nested
// path addressing layered over pluggable storage media, with a diff-based
// synchronization primitive.
//
// The facade exposes three adapter instances: Local over a persistent
// medium (file directory by default, Postgres or S3 by configuration),
// Session over a TTL-scoped in-process medium, and Memory over a plain
// in-process map. Every public operation is total: failures degrade to
// the documented fallback or no-op and are logged, never returned.
package nestkv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nestkv/nestkv/internal/infra/config"
	"github.com/nestkv/nestkv/internal/infra/persistence"
	"github.com/nestkv/nestkv/internal/store"
)

// Config is re-exported so callers construct stores without importing
// internal packages.
type Config = config.Config

// Stores bundles the three adapter instances. Construct one per process
// with Open, or use Default for the shared instance. Tests that need
// isolation should construct their own.
type Stores struct {
	Local   *store.SyncAdapter
	Session *store.SyncAdapter
	Memory  *store.MemoryAdapter

	session *persistence.SessionMedium
	pool    *pgxpool.Pool
}

// LoadConfig reads configuration from path (or the default locations when
// path is empty).
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Open constructs the three adapters from cfg. A nil cfg uses defaults; a
// nil logger uses slog.Default.
func Open(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = slog.Default()
	}

	local, pool, err := openLocalMedium(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	session := persistence.NewSessionMedium(cfg.Session.TTL, cfg.Session.CleanupInterval)

	return &Stores{
		Local:   store.NewSyncAdapter(persistence.NewCodec(local), logger.With("store", "local")),
		Session: store.NewSyncAdapter(persistence.NewCodec(session), logger.With("store", "session")),
		Memory:  store.NewMemoryAdapter(persistence.NewMemoryMedium(), logger.With("store", "memory")),
		session: session,
		pool:    pool,
	}, nil
}

// Close releases the resources behind the adapters: the session medium's
// cleanup goroutine and the database pool, when one exists. The memory
// adapter's contents vanish with the process; the persistent medium's
// contents remain per its own retention rules.
func (s *Stores) Close() {
	if s.session != nil {
		s.session.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

var (
	defaultOnce   sync.Once
	defaultStores *Stores
)

// Default returns the process-wide Stores instance, constructing it on
// first use from NESTKV_CONFIG_PATH (or defaults). Construction failure
// degrades to in-memory media for all three adapters, with a diagnostic,
// so Default never fails.
func Default() *Stores {
	defaultOnce.Do(func() {
		logger := slog.Default()

		cfg, err := config.Load(os.Getenv("NESTKV_CONFIG_PATH"))
		if err != nil {
			logger.Warn("config load failed, using defaults", "error", err)
			cfg = config.Defaults()
		}

		defaultStores, err = Open(context.Background(), cfg, logger)
		if err != nil {
			logger.Warn("store open failed, degrading to in-memory media", "error", err)
			defaultStores = openInMemory(cfg, logger)
		}
	})
	return defaultStores
}

func openLocalMedium(ctx context.Context, cfg *Config, logger *slog.Logger) (persistence.StringMedium, *pgxpool.Pool, error) {
	switch cfg.Local.Backend {
	case "file":
		m, err := persistence.NewFileMedium(cfg.Local.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil

	case "postgres":
		if cfg.Local.Postgres.Migrate {
			if err := persistence.Migrate(cfg.Local.Postgres.URL); err != nil {
				return nil, nil, err
			}
		}
		pool, err := persistence.NewPostgresPool(ctx, cfg.Local.Postgres.URL,
			cfg.Local.Postgres.MaxConns, cfg.Local.Postgres.MinConns)
		if err != nil {
			return nil, nil, err
		}
		return persistence.NewPostgresMedium(pool), pool, nil

	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Local.S3.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		return persistence.NewS3Medium(awsCfg, cfg.Local.S3.Bucket, cfg.Local.S3.Prefix, logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown local backend %q", cfg.Local.Backend)
	}
}

// openInMemory builds a Stores whose local adapter sits on a plain
// in-process medium. Used when the configured persistent medium cannot
// be reached; contents do not survive the process.
func openInMemory(cfg *Config, logger *slog.Logger) *Stores {
	session := persistence.NewSessionMedium(cfg.Session.TTL, cfg.Session.CleanupInterval)

	return &Stores{
		Local:   store.NewSyncAdapter(persistence.NewMemoryMedium(), logger.With("store", "local")),
		Session: store.NewSyncAdapter(persistence.NewCodec(session), logger.With("store", "session")),
		Memory:  store.NewMemoryAdapter(persistence.NewMemoryMedium(), logger.With("store", "memory")),
		session: session,
	}
}
