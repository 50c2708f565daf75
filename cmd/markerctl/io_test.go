package main

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/markerset/pkg/confignode"
)

func sampleTree(t *testing.T) *confignode.Tree {
	t.Helper()
	tree, err := confignode.Unmarshal([]byte("markerSets:\n  - id: towns\n"))
	require.NoError(t, err)
	return tree
}

func TestWriteDocument_File(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "out", "doc.yaml")
	require.NoError(t, writeDocument(nil, yamlPath, sampleTree(t), false))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- id: towns")

	jsonPath := filepath.Join(dir, "doc.json")
	require.NoError(t, writeDocument(nil, jsonPath, sampleTree(t), false))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"markerSets":[{"id":"towns"}]}`, string(data))
}

func TestWriteDocument_Stdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDocument(&buf, "-", sampleTree(t), true))
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestWriteDocument_ReportsWriteErrors(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	err := writeDocument(nil, "/dev/full", sampleTree(t), false)
	assert.Error(t, err)
}

func TestWriteDocument_BadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := writeDocument(nil, filepath.Join(blocker, "doc.yaml"), sampleTree(t), false)
	assert.Error(t, err)
}

func TestReadDocument_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml.gz")
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("markerSets:\n  - id: towns\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	tree, err := readDocument(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "towns", tree.Root().Child("markerSets").List()[0].Child("id").String(""))

	tree, err = readDocument(strings.NewReader("markerSets: []"), "-")
	require.NoError(t, err)
	assert.Empty(t, tree.Root().Child("markerSets").List())
}
