package core

import (
	"context"
	"fmt"
	"os"

	"opsdesk/internal/infra/persistence/memory"
	"opsdesk/internal/infra/persistence/postgres"
	"opsdesk/internal/infra/persistence/sqlite"
	"opsdesk/pkg/domain"
)

// StorageDriver identifies a concrete mirror implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenMirror selects a mirror backend using environment variables. Defaults
// to sqlite when unset.
//
//	OPSDESK_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	OPSDESK_SQLITE_PATH: path to sqlite file (default ./opsdesk.db)
//	OPSDESK_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenMirror(ctx context.Context) (domain.Mirror, error) {
	driver := os.Getenv("OPSDESK_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.New(), nil
	case StorageSQLite:
		return sqlite.New(os.Getenv("OPSDESK_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.New(ctx, os.Getenv("OPSDESK_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
