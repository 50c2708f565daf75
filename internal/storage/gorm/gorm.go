// Package gormstorage implements storage.Backend on any gorm dialect. The
// sqlite and postgres backends wrap it and only differ in how the
// connection is opened.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OCAP2/markerset/internal/storage"
	"github.com/OCAP2/markerset/pkg/confignode"
)

// MarkerDocument is one stored document. The body is the document tree
// rendered as JSON.
type MarkerDocument struct {
	ID        uint           `gorm:"primarykey"`
	Name      string         `gorm:"size:128;not null;uniqueIndex"`
	Body      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements gorm's tabler
func (MarkerDocument) TableName() string {
	return "marker_documents"
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	db *gorm.DB
}

// New creates a new GORM storage backend.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// DB exposes the underlying connection
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(&MarkerDocument{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// Load reads a document by name
func (b *Backend) Load(ctx context.Context, name string) (*confignode.Tree, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	var doc MarkerDocument
	err := b.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: '%s'", storage.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document '%s': %w", name, err)
	}

	tree, err := confignode.Unmarshal(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to load document '%s': %w", name, err)
	}
	return tree, nil
}

// Save inserts or replaces a document by name
func (b *Backend) Save(ctx context.Context, name string, tree *confignode.Tree) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	body, err := tree.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode document '%s': %w", name, err)
	}

	doc := MarkerDocument{Name: name, Body: datatypes.JSON(body)}
	err = b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to save document '%s': %w", name, err)
	}
	return nil
}

// List returns every stored document name
func (b *Backend) List(ctx context.Context) ([]string, error) {
	var names []string
	err := b.db.WithContext(ctx).Model(&MarkerDocument{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return names, nil
}
