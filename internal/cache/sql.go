package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLConfig holds configuration for the SQL-backed cache
type SQLConfig struct {
	// Table is the name of the cache table
	Table string
	// Dialect selects the DDL column types ("postgres" or "sqlite3")
	Dialect string
	// CacheConfig holds common cache configuration
	CacheConfig CacheConfig
}

// DefaultSQLConfig returns a default SQL cache configuration
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		Table:       "restmap_cache",
		Dialect:     "sqlite3",
		CacheConfig: DefaultCacheConfig(),
	}
}

// SQLCache stores cache entries in a relational table through database/sql.
// Any driver whose placeholder syntax accepts $N works (sqlite3, lib/pq, pgx).
type SQLCache struct {
	db     *sql.DB
	config SQLConfig
}

// NewSQLCache creates a SQL cache over an open database handle
func NewSQLCache(db *sql.DB, config SQLConfig) *SQLCache {
	if config.Table == "" {
		config.Table = DefaultSQLConfig().Table
	}
	return &SQLCache{db: db, config: config}
}

// EnsureSchema creates the cache table if it does not exist
func (s *SQLCache) EnsureSchema(ctx context.Context) error {
	valueType := "BLOB"
	if s.config.Dialect == "postgres" || s.config.Dialect == "pgx" {
		valueType = "BYTEA"
	}

	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (cache_key TEXT PRIMARY KEY, value %s NOT NULL, expires_at BIGINT NOT NULL DEFAULT 0)",
		s.config.Table, valueType,
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create cache table: %w", err)
	}
	return nil
}

// Get retrieves a value from the cache
func (s *SQLCache) Get(ctx context.Context, key string) ([]byte, error) {
	fullKey := s.config.CacheConfig.Prefix + key

	var value []byte
	var expiresAt int64
	query := fmt.Sprintf("SELECT value, expires_at FROM %s WHERE cache_key = $1", s.config.Table)
	err := s.db.QueryRowContext(ctx, query, fullKey).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if expiresAt > 0 && time.Now().UnixNano() > expiresAt {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrCacheMiss{Key: key}
	}

	return value, nil
}

// Set stores a value. A zero ttl uses the configured default; a negative ttl never expires.
func (s *SQLCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.config.CacheConfig.DefaultTTL
	}

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (cache_key, value, expires_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at",
		s.config.Table,
	)
	if _, err := s.db.ExecContext(ctx, query, s.config.CacheConfig.Prefix+key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes a value from the cache
func (s *SQLCache) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key = $1", s.config.Table)
	if _, err := s.db.ExecContext(ctx, query, s.config.CacheConfig.Prefix+key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry carrying this cache's prefix
func (s *SQLCache) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key LIKE $1", s.config.Table)
	if _, err := s.db.ExecContext(ctx, query, s.config.CacheConfig.Prefix+"%"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Exists checks if a live key exists in the cache
func (s *SQLCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if IsCacheMiss(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CacheKey derives the key for a resource fetched from fullURL
func (s *SQLCache) CacheKey(resourceName, fullURL string) string {
	return GenerateResourceKey(resourceName, fullURL)
}

// Close closes the underlying database handle
func (s *SQLCache) Close() error {
	return s.db.Close()
}
