package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type leaf struct{ id ID }

func (l *leaf) ID() ID           { return l.id }
func (l *leaf) Markers() Markers { return Markers{} }

func TestRightPadded_ShortCircuits(t *testing.T) {
	t.Parallel()

	a := &leaf{id: NewID()}
	p := NewRightPadded[Tree](a, Format(" "))

	assert.Same(t, p, p.WithElement(a))
	assert.Same(t, p, p.WithAfter(Format(" ")))

	b := &leaf{id: NewID()}
	p2 := p.WithElement(b)
	assert.NotSame(t, p, p2)
	assert.Equal(t, Tree(a), p.Element, "original untouched")
	assert.Equal(t, " ", p2.After.String())
}

func TestLeftPadded_Scalar(t *testing.T) {
	t.Parallel()

	p := NewLeftPadded(Format(" "), "+")
	assert.Same(t, p, p.WithElement("+"))
	assert.Equal(t, "-", p.WithElement("-").Element)
}

func TestContainer_WithElements(t *testing.T) {
	t.Parallel()

	a := NewRightPadded[Tree](&leaf{id: NewID()}, Space{})
	b := NewRightPadded[Tree](&leaf{id: NewID()}, Space{})
	c := NewContainer(Space{}, a, b)

	assert.Same(t, c, c.WithElements([]*RightPadded[Tree]{a, b}))
	c2 := c.WithElements([]*RightPadded[Tree]{b})
	assert.Len(t, c2.Elements, 1)
	assert.Len(t, c.Elements, 2)
	assert.Len(t, c.Values(), 2)
}
