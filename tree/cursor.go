package tree

import "iter"

// Cursor is one link of the path from a traversal root down to the value
// being visited. Links are immutable; Push returns a new leaf that shares
// its parent spine with every other cursor pushed from the same link.
type Cursor struct {
	parent *Cursor
	value  any
}

// NewCursor starts a path at value.
func NewCursor(value any) *Cursor {
	return &Cursor{value: value}
}

// Push returns a cursor one level deeper. A nil receiver starts a new path.
func (c *Cursor) Push(value any) *Cursor {
	return &Cursor{parent: c, value: value}
}

func (c *Cursor) Parent() *Cursor {
	if c == nil {
		return nil
	}
	return c.parent
}

func (c *Cursor) Value() any {
	if c == nil {
		return nil
	}
	return c.value
}

// Tree returns the cursor's value when it is a node.
func (c *Cursor) Tree() (Tree, bool) {
	t, ok := c.Value().(Tree)
	return t, ok
}

// ParentTree returns the nearest ancestor holding a node, skipping padding
// wrappers and other non-node values.
func (c *Cursor) ParentTree() *Cursor {
	for p := c.Parent(); p != nil; p = p.parent {
		if _, ok := p.value.(Tree); ok {
			return p
		}
	}
	return nil
}

func (c *Cursor) Root() *Cursor {
	if c == nil {
		return nil
	}
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// Depth is the number of links above c.
func (c *Cursor) Depth() int {
	d := -1
	for ; c != nil; c = c.parent {
		d++
	}
	return d
}

// Path yields values from c up to the root.
func (c *Cursor) Path() iter.Seq[any] {
	return func(yield func(any) bool) {
		for p := c; p != nil; p = p.parent {
			if !yield(p.value) {
				return
			}
		}
	}
}

// Fork returns an independent leaf with the same value and parent. Cursors
// pushed from the fork never affect cursors pushed from c.
func (c *Cursor) Fork() *Cursor {
	if c == nil {
		return nil
	}
	return &Cursor{parent: c.parent, value: c.value}
}

// FirstEnclosing walks from c towards the root and returns the first link
// whose value satisfies pred, or nil.
func (c *Cursor) FirstEnclosing(pred func(any) bool) *Cursor {
	for p := c; p != nil; p = p.parent {
		if pred(p.value) {
			return p
		}
	}
	return nil
}

// FirstEnclosingOf returns the nearest value of type T on the path.
func FirstEnclosingOf[T any](c *Cursor) (T, bool) {
	for p := c; p != nil; p = p.parent {
		if v, ok := p.value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// IsScopeInPath reports whether a node with scope's ID is on the path.
func (c *Cursor) IsScopeInPath(scope Tree) bool {
	id := scope.ID()
	for p := c; p != nil; p = p.parent {
		if t, ok := p.value.(Tree); ok && t.ID() == id {
			return true
		}
	}
	return false
}
