package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/OCAP2/markerset/internal/markerset"
	"github.com/OCAP2/markerset/internal/storage"
	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
	"github.com/OCAP2/markerset/pkg/marker"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memoryBackend struct {
	mu    sync.Mutex
	docs  map[string]*confignode.Tree
	saves int
	fail  error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{docs: make(map[string]*confignode.Tree)}
}

func (b *memoryBackend) Init() error  { return nil }
func (b *memoryBackend) Close() error { return nil }

func (b *memoryBackend) Load(_ context.Context, name string) (*confignode.Tree, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.docs[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t, nil
}

func (b *memoryBackend) Save(_ context.Context, name string, tree *confignode.Tree) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.docs[name] = tree
	b.saves++
	return nil
}

func (b *memoryBackend) List(context.Context) ([]string, error) { return nil, nil }

func (b *memoryBackend) setFail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = err
}

func (b *memoryBackend) saveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func dirtyDocument(t *testing.T) (*markerset.Document, *marker.POIMarker) {
	t.Helper()
	doc := markerset.NewDocument()
	set, err := doc.CreateSet("towns", core.MapRef{ID: "world"})
	require.NoError(t, err)
	m := marker.NewPOI("spawn", core.MapRef{ID: "world"}, core.Position3D{})
	require.NoError(t, set.Add(m))
	return doc, m
}

func TestNew_RejectsNonPositiveInterval(t *testing.T) {
	_, err := New(newMemoryBackend(), nopLogger{}, 0)
	assert.Error(t, err)
}

func TestTrack_InvalidName(t *testing.T) {
	s, err := New(newMemoryBackend(), nopLogger{}, time.Minute)
	require.NoError(t, err)
	doc, _ := dirtyDocument(t)
	assert.True(t, errors.Is(s.Track("bad name", doc), storage.ErrInvalidName))
}

func TestFlush_SavesOnlyDirtyDocuments(t *testing.T) {
	backend := newMemoryBackend()
	s, err := New(backend, nopLogger{}, time.Minute)
	require.NoError(t, err)

	doc, m := dirtyDocument(t)
	require.NoError(t, s.Track("markers", doc))
	ctx := context.Background()

	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, backend.saveCount())
	assert.False(t, doc.Dirty())

	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, backend.saveCount(), "clean documents are not rewritten")

	m.SetLabel("Spawn")
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 2, backend.saveCount())

	stored, err := backend.Load(ctx, "markers")
	require.NoError(t, err)
	sets := stored.Root().Child("markerSets").List()
	require.Len(t, sets, 1)
	assert.Equal(t, "Spawn", sets[0].Child("markers").List()[0].Child("label").String(""))
}

func TestFlush_FailureKeepsDocumentDirty(t *testing.T) {
	backend := newMemoryBackend()
	backend.setFail(errors.New("disk full"))
	s, err := New(backend, nopLogger{}, time.Minute)
	require.NoError(t, err)

	doc, _ := dirtyDocument(t)
	require.NoError(t, s.Track("markers", doc))

	err = s.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 'markers': disk full")
	assert.True(t, doc.Dirty())

	backend.setFail(nil)
	require.NoError(t, s.Flush(context.Background()))
	assert.False(t, doc.Dirty())
	assert.Equal(t, 1, backend.saveCount())
}

func TestUntrack(t *testing.T) {
	backend := newMemoryBackend()
	s, err := New(backend, nopLogger{}, time.Minute)
	require.NoError(t, err)

	doc, _ := dirtyDocument(t)
	require.NoError(t, s.Track("markers", doc))
	s.Untrack("markers")

	require.NoError(t, s.Flush(context.Background()))
	assert.Zero(t, backend.saveCount())
}

func TestStartStop_SavesPeriodically(t *testing.T) {
	backend := newMemoryBackend()
	s, err := New(backend, nopLogger{}, 10*time.Millisecond)
	require.NoError(t, err)

	doc, m := dirtyDocument(t)
	require.NoError(t, s.Track("markers", doc))
	s.Start()
	s.Start()

	assert.Eventually(t, func() bool { return backend.saveCount() >= 1 }, 2*time.Second, 5*time.Millisecond)

	m.SetLabel("changed before stop")
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, doc.Dirty(), "stop flushes pending changes")
	require.NoError(t, s.Stop(context.Background()), "stop is idempotent")
}

func TestStop_WithoutStart(t *testing.T) {
	backend := newMemoryBackend()
	s, err := New(backend, nopLogger{}, time.Minute)
	require.NoError(t, err)

	doc, _ := dirtyDocument(t)
	require.NoError(t, s.Track("markers", doc))

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, backend.saveCount())
}
