package storage

import (
	"context"
	"fmt"

	"paper-archive/config"
)

// OpenKV öffnet das in der Konfiguration gewählte Backend.
// Die zurückgegebene Funktion gibt Verbindungen wieder frei.
func OpenKV(ctx context.Context, cfg *config.Config) (KV, func(), error) {
	noop := func() {}
	switch cfg.FavoritesBackend {
	case config.BackendMemory:
		return NewMemoryKV(), noop, nil
	case config.BackendFile:
		kv, err := NewFileKV(cfg.FavoritesDir)
		return kv, noop, err
	case config.BackendSQLite:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		kv, err := NewGormKV(db)
		return kv, noop, err
	case config.BackendPostgres:
		db, err := OpenPostgres(cfg.DSN())
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		kv, err := NewGormKV(db)
		return kv, noop, err
	case config.BackendRedis:
		kv, err := NewRedisKV(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return kv, func() { _ = kv.Close() }, nil
	case config.BackendS3:
		client, err := NewS3Client(ctx, SettingsFromConfig(cfg))
		if err != nil {
			return nil, noop, fmt.Errorf("s3 client: %w", err)
		}
		return NewS3KV(client, cfg.S3Bucket), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown favorites backend %q", cfg.FavoritesBackend)
	}
}
