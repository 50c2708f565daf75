package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OCAP2/markerset/internal/storage"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"markers", true},
		{"world_01.backup", true},
		{"nether-roads", true},
		{"", false},
		{".hidden", false},
		{"../escape", false},
		{"with space", false},
		{"a/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.ValidateName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, storage.ErrInvalidName))
		})
	}
}
