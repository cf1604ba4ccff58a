package jtype

import (
	"io"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the canonical form of t. Types that are Equal have the
// same fingerprint: members and methods are written in the same sorted order
// Equal compares them in, and classes already being written are folded to
// their Cyclic placeholder by the same rule.
func Fingerprint(t Type) uint64 {
	h := xxh3.New()
	w := canonWriter{w: h}
	w.write(t)
	return h.Sum64()
}

type canonWriter struct {
	w     io.Writer
	stack []string
}

func (c *canonWriter) str(s string) {
	io.WriteString(c.w, strconv.Itoa(len(s)))
	io.WriteString(c.w, ":")
	io.WriteString(c.w, s)
}

func (c *canonWriter) tag(s string) {
	io.WriteString(c.w, s)
}

func (c *canonWriter) write(t Type) {
	if t == nil {
		c.tag("_")
		return
	}
	t = fold(t, c.stack)
	switch x := t.(type) {
	case Primitive:
		c.tag("P")
		c.str(x.Keyword())
	case *Unknown:
		c.tag("?")
	case *Cyclic:
		c.tag("Y")
		c.str(x.FullyQualifiedName)
	case *Class:
		c.class(x)
	case *Parameterized:
		c.tag("Z")
		c.write(classType(x.Base))
		c.list(x.TypeParameters)
	case *Array:
		c.tag("A")
		c.write(x.Elem)
	case *GenericTypeVariable:
		c.tag("G")
		c.str(x.Name)
		c.str(strconv.Itoa(int(x.Variance)))
		c.list(x.Bounds)
	case *MultiCatch:
		c.tag("U")
		c.list(x.Alternatives)
	case *Method:
		c.method(x)
	case *Variable:
		c.tag("V")
		c.str(x.Name)
		c.str(x.Owner)
		c.str(strconv.FormatUint(uint64(x.Flags), 10))
		c.write(x.Type)
	}
}

func (c *canonWriter) class(x *Class) {
	c.tag("C")
	c.str(x.FullyQualifiedName)
	c.str(strconv.Itoa(int(x.Kind)))
	c.str(strconv.FormatUint(uint64(x.Flags), 10))

	c.stack = append(c.stack, x.FullyQualifiedName)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	c.list(sortedMembers(x.Members))
	c.write(x.Supertype)
	c.list(x.TypeParameters)
	c.list(x.Interfaces)
	ms := sortedMethods(x.Methods)
	c.tag("[")
	for _, m := range ms {
		c.method(m)
	}
	c.tag("]")
}

func (c *canonWriter) method(m *Method) {
	c.tag("M")
	c.str(declaringName(m))
	c.str(m.Name)
	c.str(strconv.FormatUint(uint64(m.Flags), 10))
	c.write(m.ReturnType)
	c.list(m.ParameterTypes)
	c.tag("[")
	for _, n := range m.ParameterNames {
		c.str(n)
	}
	c.tag("]")
	c.list(m.ThrownExceptions)
}

func (c *canonWriter) list(ts []Type) {
	c.tag("[")
	for _, t := range ts {
		c.write(t)
	}
	c.tag("]")
}
