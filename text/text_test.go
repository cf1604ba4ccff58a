package text

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jward/lathe/tree"
)

func TestDocument_WithTextSharesWhenUnchanged(t *testing.T) {
	t.Parallel()

	d := New("notes.txt", "hello")
	assert.Same(t, d, d.WithText("hello"))

	changed := d.WithText("bye")
	assert.NotSame(t, d, changed)
	assert.Equal(t, d.ID(), changed.ID())
	assert.Equal(t, "hello", d.Print())
	assert.Equal(t, "bye", changed.Print())
}

func TestDocument_SourceFile(t *testing.T) {
	t.Parallel()

	var sf tree.SourceFile = New("a.txt", "x")
	assert.Same(t, sf, sf.WithSourcePath("a.txt"))

	moved := sf.WithSourcePath("b.txt")
	assert.Equal(t, "b.txt", moved.SourcePath())
	assert.Equal(t, "a.txt", sf.SourcePath())

	m := tree.NewMarkers(tree.Generated{ID: tree.NewID(), Recipe: "r"})
	marked := sf.WithSourceMarkers(m)
	assert.True(t, tree.Has[tree.Generated](marked.Markers()))
	assert.Same(t, marked, marked.WithSourceMarkers(m))
}

func TestRestore(t *testing.T) {
	t.Parallel()

	id := tree.NewID()
	d := Restore(id, "r.txt", "body", tree.Markers{})
	assert.Equal(t, id, d.ID())
	assert.Equal(t, "body", d.Text())
}
