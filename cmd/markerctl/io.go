package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OCAP2/markerset/pkg/confignode"
)

// readDocument decodes a YAML or JSON document. "-" reads stdin; a .gz
// suffix is decompressed.
func readDocument(stdin io.Reader, path string) (*confignode.Tree, error) {
	if path == "-" {
		return confignode.Decode(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	tree, err := confignode.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// writeDocument renders tree to path, or to w when path is empty or "-".
// JSON is written when asJSON is set or the path ends in .json.
func writeDocument(w io.Writer, path string, tree *confignode.Tree, asJSON bool) error {
	if path == "" || path == "-" {
		return encodeDocument(w, tree, asJSON)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeDocument(f, tree, asJSON || strings.HasSuffix(path, ".json")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeDocument(w io.Writer, tree *confignode.Tree, asJSON bool) error {
	if !asJSON {
		return tree.Encode(w)
	}
	data, err := tree.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
