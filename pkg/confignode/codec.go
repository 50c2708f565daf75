package confignode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Decode reads a YAML (or JSON) document into a Tree, keeping key order.
func Decode(r io.Reader) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	t := New()
	src := &doc
	if src.Kind == yaml.DocumentNode {
		if len(src.Content) == 0 {
			return t, nil
		}
		src = src.Content[0]
	}
	if err := fill(t.root, src); err != nil {
		return nil, err
	}
	return t, nil
}

// Unmarshal is Decode for an in-memory document
func Unmarshal(data []byte) (*Tree, error) {
	return Decode(bytes.NewReader(data))
}

func fill(dst *node, src *yaml.Node) error {
	switch src.Kind {
	case yaml.AliasNode:
		return fill(dst, src.Alias)
	case yaml.MappingNode:
		dst.reset(kindMap)
		dst.attach()
		for i := 0; i+1 < len(src.Content); i += 2 {
			key := src.Content[i].Value
			if err := fill(dst.child(key), src.Content[i+1]); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		dst.reset(kindList)
		dst.attach()
		for _, item := range src.Content {
			if err := fill(dst.Append().(*node), item); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		var v any
		if err := src.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", src.Line, err)
		}
		if v == nil {
			// explicit null keeps the key present
			dst.reset(kindScalar)
			dst.attach()
			return nil
		}
		dst.Set(v)
	default:
		return fmt.Errorf("line %d: unsupported yaml node kind %d", src.Line, src.Kind)
	}
	return nil
}

// Encode writes the tree as YAML
func (t *Tree) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(t.root)); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}

// Marshal returns the YAML encoding of the tree
func (t *Tree) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAML(n *node) *yaml.Node {
	switch n.kind {
	case kindMap:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range n.keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAML(n.children[k]),
			)
		}
		return out
	case kindList:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			out.Content = append(out.Content, toYAML(item))
		}
		return out
	case kindScalar:
		if n.scalar != nil {
			var out yaml.Node
			if err := out.Encode(n.scalar); err == nil {
				return &out
			}
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// MarshalJSON renders the tree as JSON, keeping key order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, t.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the tree with a decoded JSON document.
func (t *Tree) UnmarshalJSON(data []byte) error {
	decoded, err := Unmarshal(data)
	if err != nil {
		return err
	}
	t.root = decoded.root
	return nil
}

func writeJSON(buf *bytes.Buffer, n *node) error {
	switch n.kind {
	case kindMap:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.children[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case kindList:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case kindScalar:
		data, err := json.Marshal(n.scalar)
		if err != nil {
			return fmt.Errorf("%s: %w", n.Path(), err)
		}
		buf.Write(data)
	default:
		buf.WriteString("null")
	}
	return nil
}
