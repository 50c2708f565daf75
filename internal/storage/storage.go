// Package storage defines how marker documents are persisted.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/OCAP2/markerset/pkg/confignode"
)

var (
	// ErrNotFound is returned by Load for a name that was never saved
	ErrNotFound = errors.New("document not found")
	// ErrInvalidName is returned for names that cannot be used as a key
	ErrInvalidName = errors.New("invalid document name")
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Load returns the stored document, or ErrNotFound.
	Load(ctx context.Context, name string) (*confignode.Tree, error)
	// Save replaces the stored document.
	Save(ctx context.Context, name string, tree *confignode.Tree) error
	// List returns the names of all stored documents, sorted.
	List(ctx context.Context) ([]string, error)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName checks that name is usable as a file name and a table key
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}
	return nil
}
