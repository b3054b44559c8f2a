// Package daltest provides storage backends for tests of packages built on dal.
package daltest

import (
	"context"
	"testing"

	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
)

// ForEachStorage runs the test against memory and sqlite storage.
// Storage is set up and empty
func ForEachStorage(t *testing.T, test func(t *testing.T, storage dal.Storage)) {
	backends := []struct {
		name string
		new  func(t *testing.T) dal.Storage
	}{
		{name: "memory", new: func(t *testing.T) dal.Storage { return dal.NewMemoryStorage() }},
		{name: "sqlite", new: NewSQLiteStorage},
	}
	for _, backend := range backends {
		backend := backend
		t.Run(backend.name, func(t *testing.T) {
			storage := backend.new(t)
			if err := storage.Setup(context.Background()); err != nil {
				t.Fatal(err)
			}
			test(t, storage)
		})
	}
}

// NewSQLiteStorage returns sql storage backed by in-memory sqlite db
// that is closed when the test completes
func NewSQLiteStorage(t *testing.T) dal.Storage {
	db, err := dal.OpenDB("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	storage, err := dal.NewSQLStorage(dal.WithSQLDb(db))
	if err != nil {
		t.Fatal(err)
	}
	return storage
}
