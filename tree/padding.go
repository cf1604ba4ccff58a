package tree

// RightPadded wraps an element followed by the space before a delimiter.
type RightPadded[T any] struct {
	Element T
	After   Space
	Markers Markers
}

// NewRightPadded wraps e with the given trailing space.
func NewRightPadded[T any](e T, after Space) *RightPadded[T] {
	return &RightPadded[T]{Element: e, After: after}
}

func (p *RightPadded[T]) WithElement(e T) *RightPadded[T] {
	if Same(p.Element, e) {
		return p
	}
	c := *p
	c.Element = e
	return &c
}

func (p *RightPadded[T]) WithAfter(s Space) *RightPadded[T] {
	if p.After.Equal(s) {
		return p
	}
	c := *p
	c.After = s
	return &c
}

func (p *RightPadded[T]) WithMarkers(m Markers) *RightPadded[T] {
	if p.Markers.Equal(m) {
		return p
	}
	c := *p
	c.Markers = m
	return &c
}

// LeftPadded wraps an element preceded by the space before a delimiter.
type LeftPadded[T any] struct {
	Before  Space
	Element T
	Markers Markers
}

// NewLeftPadded wraps e with the given leading space.
func NewLeftPadded[T any](before Space, e T) *LeftPadded[T] {
	return &LeftPadded[T]{Before: before, Element: e}
}

func (p *LeftPadded[T]) WithElement(e T) *LeftPadded[T] {
	if Same(p.Element, e) {
		return p
	}
	c := *p
	c.Element = e
	return &c
}

func (p *LeftPadded[T]) WithBefore(s Space) *LeftPadded[T] {
	if p.Before.Equal(s) {
		return p
	}
	c := *p
	c.Before = s
	return &c
}

func (p *LeftPadded[T]) WithMarkers(m Markers) *LeftPadded[T] {
	if p.Markers.Equal(m) {
		return p
	}
	c := *p
	c.Markers = m
	return &c
}

// Container is a delimited list: the space before the opening delimiter and
// right-padded elements, each padding holding the space before the next
// separator or the closing delimiter.
type Container[T any] struct {
	Before   Space
	Elements []*RightPadded[T]
	Markers  Markers
}

// NewContainer builds a container from padded elements.
func NewContainer[T any](before Space, elems ...*RightPadded[T]) *Container[T] {
	return &Container[T]{Before: before, Elements: elems}
}

func (c *Container[T]) WithElements(elems []*RightPadded[T]) *Container[T] {
	if SameSlice(c.Elements, elems) {
		return c
	}
	n := *c
	n.Elements = elems
	return &n
}

func (c *Container[T]) WithBefore(s Space) *Container[T] {
	if c.Before.Equal(s) {
		return c
	}
	n := *c
	n.Before = s
	return &n
}

// Values returns the unwrapped elements.
func (c *Container[T]) Values() []T {
	out := make([]T, len(c.Elements))
	for i, e := range c.Elements {
		out[i] = e.Element
	}
	return out
}

// Same reports reference identity for node pointers and value equality for
// comparable scalars.
func Same[T any](a, b T) bool {
	return any(a) == any(b)
}

// SameSlice reports whether two slices hold identical elements in order.
func SameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Same(a[i], b[i]) {
			return false
		}
	}
	return true
}
