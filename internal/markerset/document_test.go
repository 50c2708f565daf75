package markerset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/markerset/pkg/confignode"
	"github.com/OCAP2/markerset/pkg/core"
	"github.com/OCAP2/markerset/pkg/marker"
)

const twoSets = `
markerSets:
  - id: towns
    map: world
    label: Towns
    markers:
      - {id: spawn, type: poi}
  - id: nether-roads
    map: nether
    markers: []
  - label: no id
  - id: lost
    map: the_end
`

var maps = marker.MapResolverFunc(func(id string) (core.MapRef, bool) {
	switch id {
	case "world", "nether":
		return core.MapRef{ID: id}, true
	}
	return core.MapRef{}, false
})

func TestDocument_Load(t *testing.T) {
	logger := &recordingLogger{}
	doc := NewDocument(WithLogger(logger))

	report := doc.Load(maps, parseNode(t, twoSets), true)

	require.Len(t, report.Sets, 2)
	require.Len(t, report.SkippedSets, 2)
	assert.Equal(t, 2, report.SkippedSets[0].Index)
	assert.Equal(t, "lost", report.SkippedSets[1].ID)
	assert.Equal(t, 2, logger.count("error"))

	sets := doc.Sets()
	require.Len(t, sets, 2)
	assert.Equal(t, "nether-roads", sets[0].ID())
	assert.Equal(t, core.MapRef{ID: "nether"}, sets[0].Map())

	towns, ok := doc.Set("towns")
	require.True(t, ok)
	assert.Equal(t, "Towns", towns.Label())
	assert.Equal(t, 1, towns.Len())
	assert.False(t, doc.Dirty())
}

func TestDocument_SaveRoundTrip(t *testing.T) {
	doc := NewDocument()
	s, err := doc.CreateSet("towns", core.MapRef{ID: "world"})
	require.NoError(t, err)
	require.NoError(t, s.Add(marker.NewPOI("spawn", core.MapRef{ID: "world"}, core.Position3D{Y: 64})))
	assert.True(t, doc.Dirty())

	tree := doc.Tree()
	assert.False(t, doc.Dirty())

	data, err := tree.Marshal()
	require.NoError(t, err)
	back, err := confignode.Unmarshal(data)
	require.NoError(t, err)

	other := NewDocument()
	report := other.Load(maps, back.Root(), true)
	assert.Empty(t, report.SkippedSets)
	assert.Zero(t, report.SkippedMarkers())

	got, ok := other.Set("towns")
	require.True(t, ok)
	spawn, ok := got.Get("spawn")
	require.True(t, ok)
	assert.Equal(t, 64.0, spawn.Position().Y)
}

func TestDocument_CreateSetDuplicate(t *testing.T) {
	doc := NewDocument()
	_, err := doc.CreateSet("a", core.MapRef{})
	require.NoError(t, err)

	_, err = doc.CreateSet("a", core.MapRef{})
	assert.True(t, errors.Is(err, ErrDuplicateSet))

	_, err = doc.CreateSet("", core.MapRef{})
	assert.True(t, errors.Is(err, marker.ErrInvalidArgument))
}

func TestDocument_RemoveSetAndOverwrite(t *testing.T) {
	doc := NewDocument()
	_, err := doc.CreateSet("stale", core.MapRef{})
	require.NoError(t, err)

	report := doc.Load(maps, parseNode(t, twoSets), true)
	assert.Equal(t, []string{"stale"}, report.RemovedSets)

	assert.True(t, doc.RemoveSet("towns"))
	assert.False(t, doc.RemoveSet("towns"))
	assert.True(t, doc.Dirty())
}

func TestDocument_MarkDirty(t *testing.T) {
	doc := NewDocument()
	doc.Save(confignode.New().Root())
	assert.False(t, doc.Dirty())

	doc.MarkDirty()
	assert.True(t, doc.Dirty())
}

func TestDocument_NilResolverKeepsMapIDs(t *testing.T) {
	doc := NewDocument()
	doc.Load(nil, parseNode(t, twoSets), true)

	lost, ok := doc.Set("lost")
	require.True(t, ok)
	assert.Equal(t, core.MapRef{ID: "the_end"}, lost.Map())
}

func TestDocument_LoadWithoutOverwriteReadsNewSets(t *testing.T) {
	doc := NewDocument()
	src := `
markerSets:
  - id: towns
    map: world
    label: Towns
    toggleable: false
    defaultHidden: true
    markers:
      - {id: spawn, type: poi}
`
	report := doc.Load(maps, parseNode(t, src), false)
	require.Empty(t, report.SkippedSets)

	towns, ok := doc.Set("towns")
	require.True(t, ok)
	assert.Equal(t, "Towns", towns.Label())
	assert.False(t, towns.Toggleable())
	assert.True(t, towns.DefaultHidden())
	assert.Equal(t, 1, towns.Len())
	assert.False(t, towns.Dirty(), "a set read from the document has no local changes")
}

func TestDocument_ReloadAppliesMapChange(t *testing.T) {
	doc := NewDocument()
	doc.Load(maps, parseNode(t, "markerSets: [{id: towns, map: world}]"), true)

	doc.Load(maps, parseNode(t, "markerSets: [{id: towns, map: nether}]"), true)

	towns, ok := doc.Set("towns")
	require.True(t, ok)
	assert.Equal(t, core.MapRef{ID: "nether"}, towns.Map())
}

func TestDocument_ReloadKeepsMapOfDirtySet(t *testing.T) {
	doc := NewDocument()
	doc.Load(maps, parseNode(t, "markerSets: [{id: towns, map: world}]"), true)
	towns, _ := doc.Set("towns")
	towns.SetLabel("edited")

	doc.Load(maps, parseNode(t, "markerSets: [{id: towns, map: nether, label: Towns}]"), false)

	assert.Equal(t, core.MapRef{ID: "world"}, towns.Map())
	assert.Equal(t, "edited", towns.Label())
}

func TestDocument_ReloadUnknownMapSkipsExistingSet(t *testing.T) {
	doc := NewDocument()
	doc.Load(maps, parseNode(t, "markerSets: [{id: towns, map: world, label: Towns}]"), true)

	report := doc.Load(maps, parseNode(t, "markerSets: [{id: towns, map: the_end, label: Renamed}]"), true)

	require.Len(t, report.SkippedSets, 1)
	assert.Equal(t, "towns", report.SkippedSets[0].ID)
	assert.Contains(t, report.SkippedSets[0].Err.Error(), "unknown map 'the_end'")
	assert.Empty(t, report.RemovedSets, "a skipped set is not removed")

	towns, ok := doc.Set("towns")
	require.True(t, ok)
	assert.Equal(t, core.MapRef{ID: "world"}, towns.Map())
	assert.Equal(t, "Towns", towns.Label())
}
