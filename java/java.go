// Package java is the Java dialect of the lossless semantic tree: a closed set
// of immutable node types, their printer, and a copy-on-write visitor.
//
// Nodes are never modified in place. Every With method returns its receiver
// when the new value is identical to the old one and a shallow copy
// otherwise, so an unchanged subtree keeps its identity through a visit.
package java

import (
	"reflect"

	"github.com/jward/lathe/tree"
)

// J is implemented by every Java node.
type J interface {
	tree.Tree
	Kind() Kind
	Prefix() tree.Space
	WithPrefix(tree.Space) J
	WithMarkers(tree.Markers) J
	// WithID gives the node a new identity. Edits never change IDs on their own.
	WithID(tree.ID) J
	isJ()
}

// Meta holds the fields every node shares. It is embedded in each node type.
type Meta struct {
	id      tree.ID
	prefix  tree.Space
	markers tree.Markers
}

// NewMeta returns metadata with a fresh ID.
func NewMeta(prefix tree.Space) Meta {
	return Meta{id: tree.NewID(), prefix: prefix}
}

// RestoreMeta rebuilds metadata with a known ID, for nodes received from elsewhere.
func RestoreMeta(id tree.ID, prefix tree.Space, markers tree.Markers) Meta {
	return Meta{id: id, prefix: prefix, markers: markers}
}

func (m Meta) ID() tree.ID           { return m.id }
func (m Meta) Prefix() tree.Space    { return m.prefix }
func (m Meta) Markers() tree.Markers { return m.markers }
func (Meta) isJ()                    {}

// with copies n and applies set unless next is identical to cur.
func with[N, F any](n *N, cur, next F, set func(*N, F)) *N {
	if tree.Same(cur, next) {
		return n
	}
	c := *n
	set(&c, next)
	return &c
}

func withSlice[N, F any](n *N, cur, next []F, set func(*N, []F)) *N {
	if tree.SameSlice(cur, next) {
		return n
	}
	c := *n
	set(&c, next)
	return &c
}

func withSpace[N any](n *N, cur, next tree.Space, set func(*N, tree.Space)) *N {
	if cur.Equal(next) {
		return n
	}
	c := *n
	set(&c, next)
	return &c
}

func withMarkers[N any](n *N, cur, next tree.Markers, set func(*N, tree.Markers)) *N {
	if cur.Equal(next) {
		return n
	}
	c := *n
	set(&c, next)
	return &c
}

// isNil also reports a nil pointer held in an interface, as when an absent
// *Else is passed on as a J.
func isNil[T any](t T) bool {
	v := any(t)
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Semi wraps a statement that ends with ';'. before is the space before the semicolon.
func Semi(stmt J, before tree.Space) *tree.RightPadded[J] {
	return &tree.RightPadded[J]{
		Element: stmt,
		After:   before,
		Markers: tree.NewMarkers(tree.Semicolon{ID: tree.NewID()}),
	}
}

// Bare wraps a statement that has no terminator, such as a block or a class.
func Bare(stmt J) *tree.RightPadded[J] {
	return &tree.RightPadded[J]{Element: stmt}
}

// Pad wraps an element with the space that follows it.
func Pad[T any](e T, after tree.Space) *tree.RightPadded[T] {
	return tree.NewRightPadded(e, after)
}
