package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_ParentChain(t *testing.T) {
	t.Parallel()

	root := &leaf{id: NewID()}
	mid := &leaf{id: NewID()}
	pad := NewRightPadded[Tree](mid, Space{})
	leafNode := &leaf{id: NewID()}

	c := NewCursor(root).Push(pad).Push(mid).Push(leafNode)

	assert.Equal(t, 3, c.Depth())
	assert.Equal(t, Tree(leafNode), c.Value())
	assert.Equal(t, Tree(mid), c.ParentTree().Value())
	assert.Equal(t, Tree(root), c.Root().Value())
	assert.Equal(t, pad, c.Parent().Parent().Value())

	path := slices.Collect(c.Path())
	require.Len(t, path, 4)
	assert.Equal(t, Tree(root), path[3])
}

func TestCursor_FirstEnclosing(t *testing.T) {
	t.Parallel()

	root := &leaf{id: NewID()}
	c := NewCursor(root).Push("padding").Push(&leaf{id: NewID()})

	found := c.FirstEnclosing(func(v any) bool {
		_, ok := v.(string)
		return ok
	})
	require.NotNil(t, found)
	assert.Equal(t, "padding", found.Value())

	assert.Nil(t, c.FirstEnclosing(func(any) bool { return false }))

	s, ok := FirstEnclosingOf[string](c)
	assert.True(t, ok)
	assert.Equal(t, "padding", s)
}

func TestCursor_IsScopeInPath(t *testing.T) {
	t.Parallel()

	scope := &leaf{id: NewID()}
	c := NewCursor(scope).Push(&leaf{id: NewID()})

	// A different node value with the same ID counts as the same scope.
	copyOfScope := &leaf{id: scope.id}
	assert.True(t, c.IsScopeInPath(copyOfScope))
	assert.False(t, c.IsScopeInPath(&leaf{id: NewID()}))
}

func TestCursor_ForkIsIndependent(t *testing.T) {
	t.Parallel()

	base := NewCursor("root").Push("a")
	fork := base.Fork()
	deeper := fork.Push("b")

	assert.Same(t, base.Parent(), fork.Parent())
	assert.Equal(t, 1, base.Depth())
	assert.Equal(t, 2, deeper.Depth())
	assert.Equal(t, "a", base.Value())
}

func TestCursor_NilSafe(t *testing.T) {
	t.Parallel()

	var c *Cursor
	assert.Nil(t, c.Parent())
	assert.Nil(t, c.Value())
	assert.Nil(t, c.Root())
	assert.Equal(t, -1, c.Depth())
	assert.Equal(t, 0, c.Push("x").Depth())
}
