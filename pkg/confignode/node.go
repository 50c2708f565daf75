// Package confignode implements the tree-structured document markers are
// persisted in: nested named nodes holding scalars, lists or child nodes.
//
// Looking up a child that does not exist returns a virtual node. Virtual
// nodes answer reads with the supplied default and become part of the tree
// the first time a value is written to them or to one of their descendants.
package confignode

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Node is the read/write capability markers are decoded from and encoded to.
type Node interface {
	// Child returns the named child, virtual if it is not set.
	Child(name string) Node
	// Virtual is true if neither this node nor any ancestor holds a value.
	Virtual() bool

	String(def string) string
	Int(def int) int
	Float64(def float64) float64
	Float32(def float32) float32
	Bool(def bool) bool

	// Set replaces the value. Setting nil removes the node from its parent.
	Set(v any)
	// List returns the items of a list node in order, nil for anything else.
	List() []Node
	// Append adds a new item to a list node and returns it.
	Append() Node
	// Keys returns the child names of a map node in insertion order.
	Keys() []string
	// Path is the dotted location of the node, for error messages.
	Path() string
}

type kind int

const (
	kindNone kind = iota
	kindScalar
	kindMap
	kindList
)

type node struct {
	parent *node
	key    string
	index  int // position in parent list, -1 for map children

	attached bool
	kind     kind
	scalar   any

	keys     []string
	children map[string]*node
	pending  map[string]*node // virtual children handed out but not yet written
	items    []*node
}

func newRoot() *node {
	return &node{index: -1, attached: true}
}

func (n *node) Child(name string) Node {
	return n.child(name)
}

func (n *node) child(name string) *node {
	if c, ok := n.children[name]; ok {
		return c
	}
	if c, ok := n.pending[name]; ok {
		return c
	}
	c := &node{parent: n, key: name, index: -1}
	if n.pending == nil {
		n.pending = make(map[string]*node)
	}
	n.pending[name] = c
	return c
}

func (n *node) Virtual() bool {
	return !n.attached
}

func (n *node) value() (any, bool) {
	if !n.attached || n.kind != kindScalar || n.scalar == nil {
		return nil, false
	}
	return n.scalar, true
}

func (n *node) String(def string) string {
	v, ok := n.value()
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func (n *node) Int(def int) int {
	v, ok := n.value()
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

func (n *node) Float64(def float64) float64 {
	v, ok := n.value()
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

func (n *node) Float32(def float32) float32 {
	v, ok := n.value()
	if !ok {
		return def
	}
	f, err := cast.ToFloat32E(v)
	if err != nil {
		return def
	}
	return f
}

func (n *node) Bool(def bool) bool {
	v, ok := n.value()
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

func (n *node) Set(v any) {
	if v == nil {
		n.detach()
		return
	}

	switch val := v.(type) {
	case map[string]any:
		n.reset(kindMap)
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.child(k).Set(val[k])
		}
	case []any:
		n.reset(kindList)
		for _, item := range val {
			n.Append().Set(item)
		}
	default:
		n.reset(kindScalar)
		n.scalar = val
	}
	n.attach()
}

func (n *node) List() []Node {
	if !n.attached || n.kind != kindList {
		return nil
	}
	out := make([]Node, len(n.items))
	for i, item := range n.items {
		out[i] = item
	}
	return out
}

func (n *node) Append() Node {
	if n.kind != kindList {
		n.reset(kindList)
	}
	n.attach()
	item := &node{parent: n, index: len(n.items), attached: true}
	n.items = append(n.items, item)
	return item
}

func (n *node) Keys() []string {
	if !n.attached || n.kind != kindMap {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func (n *node) Path() string {
	var parts []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		if cur.index >= 0 {
			parts = append(parts, "["+strconv.Itoa(cur.index)+"]")
		} else {
			parts = append(parts, cur.key)
		}
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		if b.Len() > 0 && !strings.HasPrefix(parts[i], "[") {
			b.WriteByte('.')
		}
		b.WriteString(parts[i])
	}
	return b.String()
}

// reset drops the current value and switches the node to k.
func (n *node) reset(k kind) {
	for _, c := range n.children {
		c.attached = false
		c.parent = nil
	}
	for _, item := range n.items {
		item.attached = false
		item.parent = nil
	}
	n.kind = k
	n.scalar = nil
	n.keys = nil
	n.children = nil
	n.items = nil
}

// attach links the node and its virtual ancestors into the tree.
func (n *node) attach() {
	if n.attached {
		return
	}
	p := n.parent
	if p == nil {
		return
	}
	if p.kind != kindMap {
		p.reset(kindMap)
	}
	p.attach()
	if p.children == nil {
		p.children = make(map[string]*node)
	}
	delete(p.pending, n.key)
	p.children[n.key] = n
	p.keys = append(p.keys, n.key)
	n.attached = true
}

// detach removes the node from its parent. Map children stay reachable
// through the parent as virtual nodes so they can be written again.
func (n *node) detach() {
	n.reset(kindNone)
	p := n.parent
	if !n.attached || p == nil {
		return
	}
	n.attached = false

	if n.index >= 0 {
		items := p.items[:0]
		for _, item := range p.items {
			if item != n {
				item.index = len(items)
				items = append(items, item)
			}
		}
		p.items = items
		n.parent = nil
		return
	}

	delete(p.children, n.key)
	for i, k := range p.keys {
		if k == n.key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	if p.pending == nil {
		p.pending = make(map[string]*node)
	}
	p.pending[n.key] = n
}

// Tree owns the root node of a document.
type Tree struct {
	root *node
}

// New creates an empty document
func New() *Tree {
	return &Tree{root: newRoot()}
}

// Root returns the top level node
func (t *Tree) Root() Node {
	return t.root
}

// Empty reports whether nothing has been written to the document
func (t *Tree) Empty() bool {
	return t.root.kind == kindNone
}
