package app

import (
	"context"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/config"
)

// Supported storage drivers
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite3"
	StoragePgx    = "pgx"
)

// Supported session drivers
const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// LoadConfig will load and validate app config
func LoadConfig(ctx context.Context) (*config.AppConfig, error) {
	cfg, err := config.LoadAppConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to load app config")
	}
	switch cfg.Storage.Driver.Value() {
	case StorageMemory, StorageSQLite, StoragePgx:
	default:
		return nil, errors.Errorf("Unsupported storage driver: %v", cfg.Storage.Driver.Value())
	}
	switch cfg.Sessions.Driver.Value() {
	case SessionsMemory, SessionsRedis:
	default:
		return nil, errors.Errorf("Unsupported sessions driver: %v", cfg.Sessions.Driver.Value())
	}
	return cfg, nil
}

// SeedRequired returns true if demo data should be loaded on startup.
// Memory storage is empty on every start so it is always seeded
func SeedRequired(cfg *config.AppConfig) bool {
	return cfg.Seed.Enabled.Value() || cfg.Storage.Driver.Value() == StorageMemory
}
