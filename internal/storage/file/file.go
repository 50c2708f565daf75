// Package filestore keeps each marker document in its own YAML file,
// optionally gzip compressed.
package filestore

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/storage"
	"github.com/OCAP2/markerset/pkg/confignode"
)

const (
	ext           = ".yaml"
	compressedExt = ".yaml.gz"
)

// Backend stores documents as <dir>/<name>.yaml or <dir>/<name>.yaml.gz
type Backend struct {
	cfg config.FileConfig
	mu  sync.Mutex
}

// New creates a new file backend
func New(cfg config.FileConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init creates the document directory
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	return nil
}

// Close is a no-op; every write is complete when Save returns.
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) path(name string, compressed bool) string {
	if compressed {
		return filepath.Join(b.cfg.Dir, name+compressedExt)
	}
	return filepath.Join(b.cfg.Dir, name+ext)
}

// Load reads a document. The configured encoding is tried first, so a
// directory can be switched to compression without converting old files.
func (b *Backend) Load(ctx context.Context, name string) (*confignode.Tree, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, compressed := range []bool{b.cfg.Compress, !b.cfg.Compress} {
		tree, err := b.read(b.path(name, compressed), compressed)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load document '%s': %w", name, err)
		}
		return tree, nil
	}
	return nil, fmt.Errorf("%w: '%s'", storage.ErrNotFound, name)
}

func (b *Backend) read(path string, compressed bool) (*confignode.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return confignode.Decode(r)
}

// Save writes the document to a temporary file and renames it into place.
func (b *Backend) Save(ctx context.Context, name string, tree *confignode.Tree) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(b.cfg.Dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp, tree, b.cfg.Compress); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document '%s': %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path(name, b.cfg.Compress)); err != nil {
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	// drop the copy in the other encoding, if any
	_ = os.Remove(b.path(name, !b.cfg.Compress))
	return nil
}

func write(w io.Writer, tree *confignode.Tree, compress bool) error {
	if !compress {
		return tree.Encode(w)
	}
	gzWriter := gzip.NewWriter(w)
	if err := tree.Encode(gzWriter); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

// List returns the names of all documents in the directory
func (b *Backend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.cfg.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read document directory: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		var name string
		switch {
		case strings.HasSuffix(e.Name(), compressedExt):
			name = strings.TrimSuffix(e.Name(), compressedExt)
		case strings.HasSuffix(e.Name(), ext):
			name = strings.TrimSuffix(e.Name(), ext)
		default:
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
