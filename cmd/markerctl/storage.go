package main

import (
	"fmt"

	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/storage"
	filestore "github.com/OCAP2/markerset/internal/storage/file"
	pgstorage "github.com/OCAP2/markerset/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/markerset/internal/storage/sqlite"
)

// openStorage creates and initializes the configured backend.
func (a *app) openStorage() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := createStorageBackend(storageCfg, a.logger)
	if err != nil {
		a.logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		a.logger.Error("Failed to initialize storage backend", "error", err)
		backend.Close()
		return nil, err
	}
	a.logger.Debug("Storage backend initialized", "type", storageCfg.Type)
	return backend, nil
}

func createStorageBackend(storageCfg config.StorageConfig, logger Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "file":
		return filestore.New(storageCfg.File), nil

	case "sqlite":
		backend, err := sqlitestorage.New(storageCfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		return backend, nil

	case "postgres":
		backend, err := pgstorage.New(storageCfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageCfg.Type)
	}
}
