// Package sqlitestorage stores marker documents in a SQLite database file.
// It wraps the GORM backend and optionally writes periodic snapshots of the
// database via VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/database"
	gormstorage "github.com/OCAP2/markerset/internal/storage/gorm"
)

// Logger receives backup loop errors
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg       config.SQLiteConfig
	log       Logger
	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New opens the database at cfg.Path, in memory when the path is empty.
func New(cfg config.SQLiteConfig, log Logger) (*Backend, error) {
	db, err := database.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	return &Backend{
		Backend:  gormstorage.New(db),
		cfg:      cfg,
		log:      log,
		stopChan: make(chan struct{}),
	}, nil
}

// Init migrates the schema and starts the backup goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.BackupPath != "" && b.cfg.BackupInterval > 0 {
		b.done = make(chan struct{})
		go b.backupLoop()
	}
	return nil
}

// Close stops the backup goroutine, takes a final snapshot and closes the
// database.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopChan)
		if b.done != nil {
			<-b.done
		}
		if b.cfg.BackupPath != "" {
			if berr := database.BackupSQLite(b.DB(), b.cfg.BackupPath); berr != nil {
				b.log.Error("final sqlite backup failed", "error", berr)
			}
		}
		err = b.Backend.Close()
	})
	return err
}

// Backup writes a snapshot to the configured backup path now
func (b *Backend) Backup() error {
	return database.BackupSQLite(b.DB(), b.cfg.BackupPath)
}

func (b *Backend) backupLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.BackupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Backup(); err != nil {
				b.log.Error("sqlite backup failed", "error", err)
			} else {
				b.log.Debug("sqlite backup written", "path", b.cfg.BackupPath, "duration", time.Since(start))
			}
		}
	}
}
