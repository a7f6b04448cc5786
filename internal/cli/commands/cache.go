package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// openCache opens the configured cache backend. The returned closer may be nil.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, io.Closer, error) {
	common := cache.CacheConfig{DefaultTTL: cfg.TTL, Prefix: cfg.Prefix}

	switch cfg.Driver {
	case "", "memory":
		mc := cache.NewMemoryCacheWithConfig(common)
		return mc, mc, nil

	case "none":
		return cache.NewNullCache(), nil, nil

	case "redis":
		rc, err := cache.ParseRedisDSN(cfg.DSN, common)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis dsn: %w", err)
		}
		c, err := cache.NewRedisCacheWithConfig(rc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		return c, c, nil

	case "sqlite3", "postgres", "pgx":
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("cache driver %s requires --cache-dsn", cfg.Driver)
		}
		db, err := sql.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s cache: %w", cfg.Driver, err)
		}

		sc := cache.NewSQLCache(db, cache.SQLConfig{Table: cfg.Table, Dialect: cfg.Driver, CacheConfig: common})
		if err := sc.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sc, sc, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
