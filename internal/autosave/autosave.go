// Package autosave periodically writes changed marker documents to a
// storage backend.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/markerset/internal/markerset"
	"github.com/OCAP2/markerset/internal/storage"
)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Saver writes every tracked document that has unsaved changes, on a fixed
// interval and once more when stopped.
type Saver struct {
	backend  storage.Backend
	logger   Logger
	interval time.Duration

	mu   sync.Mutex
	docs map[string]*markerset.Document

	// serializes flushes so a document is never written twice at once
	flushMu sync.Mutex

	// OTEL metrics
	tracked metric.Int64ObservableGauge
	saved   metric.Int64Counter
	failed  metric.Int64Counter

	stopChan  chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Saver. Uses the global OTel meter for metrics (no-op if not
// configured).
func New(backend storage.Backend, logger Logger, interval time.Duration) (*Saver, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("autosave interval must be positive, got %s", interval)
	}

	s := &Saver{
		backend:  backend,
		logger:   logger,
		interval: interval,
		docs:     make(map[string]*markerset.Document),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}

	m := meter()
	var err error

	s.tracked, err = m.Int64ObservableGauge(
		"markerset.autosave.tracked",
		metric.WithDescription("Number of documents watched for changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tracked gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			o.ObserveInt64(s.tracked, int64(len(s.docs)))
			return nil
		},
		s.tracked,
	)
	if err != nil {
		return nil, fmt.Errorf("registering tracked callback: %w", err)
	}

	s.saved, err = m.Int64Counter(
		"markerset.autosave.saved",
		metric.WithDescription("Documents written by autosave"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating saved counter: %w", err)
	}

	s.failed, err = m.Int64Counter(
		"markerset.autosave.failed",
		metric.WithDescription("Document writes that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	return s, nil
}

// Track adds a document under its storage name
func (s *Saver) Track(name string, doc *markerset.Document) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = doc
	return nil
}

// Untrack stops watching a document. Pending changes are not written.
func (s *Saver) Untrack(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
}

// Start launches the save loop. Calling it more than once has no effect.
func (s *Saver) Start() {
	s.startOnce.Do(func() {
		go s.loop()
	})
}

// Stop ends the save loop and flushes once more. Safe to call without Start.
func (s *Saver) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.startOnce.Do(func() {
		close(s.done)
	})
	<-s.done
	return s.Flush(ctx)
}

func (s *Saver) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if err := s.Flush(context.Background()); err != nil {
				s.logger.Error("autosave failed", "error", err)
			}
		}
	}
}

func (s *Saver) snapshot() ([]string, map[string]*markerset.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.docs))
	docs := make(map[string]*markerset.Document, len(s.docs))
	for name, doc := range s.docs {
		names = append(names, name)
		docs[name] = doc
	}
	sort.Strings(names)
	return names, docs
}

// Flush writes every tracked document with unsaved changes. A failed write
// leaves the document dirty so the next flush retries it.
func (s *Saver) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	names, docs := s.snapshot()
	var errs []error
	for _, name := range names {
		doc := docs[name]
		if !doc.Dirty() {
			continue
		}

		attrs := metric.WithAttributes(attribute.String("document", name))
		start := time.Now()
		if err := s.backend.Save(ctx, name, doc.Tree()); err != nil {
			doc.MarkDirty()
			s.failed.Add(ctx, 1, attrs)
			s.logger.Error("failed to save document", "document", name, "error", err)
			errs = append(errs, fmt.Errorf("document '%s': %w", name, err))
			continue
		}
		s.saved.Add(ctx, 1, attrs)
		s.logger.Debug("document saved", "document", name, "duration", time.Since(start))
	}
	return errors.Join(errs...)
}
