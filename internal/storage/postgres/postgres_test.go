package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/storage"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestNew_Unreachable(t *testing.T) {
	_, err := New(config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "markers",
		SSLMode:  "disable",
	})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to connect to Postgres DB")
	}
}
