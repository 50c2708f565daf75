// Package postgres stores marker documents in a PostgreSQL table through
// the GORM backend.
package postgres

import (
	"fmt"

	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/database"
	gormstorage "github.com/OCAP2/markerset/internal/storage/gorm"
)

// Backend is the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
}

// New connects to the configured database. The schema is migrated by Init.
func New(cfg config.PostgresConfig) (*Backend, error) {
	db, err := database.OpenPostgres(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres DB: %w", err)
	}
	return &Backend{Backend: gormstorage.New(db)}, nil
}
