package jtype

import (
	"slices"
	"strings"
)

// Equal reports deep structural equality. Classes compare by name, kind,
// flags, members and methods (both order-independent), supertype, interfaces
// and type parameters. A class met again while it is already being compared
// is treated as a Cyclic placeholder and compared by name only.
func Equal(a, b Type) bool {
	var c comparer
	return c.eq(a, b)
}

type comparer struct {
	left, right []string
}

func (c *comparer) eq(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	a = fold(a, c.left)
	b = fold(b, c.right)

	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x == y
	case *Unknown:
		_, ok := b.(*Unknown)
		return ok
	case *Cyclic:
		y, ok := b.(*Cyclic)
		return ok && x.FullyQualifiedName == y.FullyQualifiedName
	case *Class:
		y, ok := b.(*Class)
		return ok && c.class(x, y)
	case *Parameterized:
		y, ok := b.(*Parameterized)
		return ok && c.eq(classType(x.Base), classType(y.Base)) && c.list(x.TypeParameters, y.TypeParameters)
	case *Array:
		y, ok := b.(*Array)
		return ok && c.eq(x.Elem, y.Elem)
	case *GenericTypeVariable:
		y, ok := b.(*GenericTypeVariable)
		return ok && x.Name == y.Name && x.Variance == y.Variance && c.list(x.Bounds, y.Bounds)
	case *MultiCatch:
		y, ok := b.(*MultiCatch)
		return ok && c.list(x.Alternatives, y.Alternatives)
	case *Method:
		y, ok := b.(*Method)
		return ok && c.method(x, y)
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name && x.Owner == y.Owner && x.Flags == y.Flags && c.eq(x.Type, y.Type)
	}
	return false
}

func (c *comparer) class(x, y *Class) bool {
	if x.FullyQualifiedName != y.FullyQualifiedName || x.Kind != y.Kind || x.Flags != y.Flags {
		return false
	}
	if len(x.Members) != len(y.Members) || len(x.Methods) != len(y.Methods) {
		return false
	}
	c.left = append(c.left, x.FullyQualifiedName)
	c.right = append(c.right, y.FullyQualifiedName)
	defer func() {
		c.left = c.left[:len(c.left)-1]
		c.right = c.right[:len(c.right)-1]
	}()

	xm, ym := sortedMembers(x.Members), sortedMembers(y.Members)
	for i := range xm {
		if !c.eq(xm[i], ym[i]) {
			return false
		}
	}
	if !c.eq(x.Supertype, y.Supertype) ||
		!c.list(x.TypeParameters, y.TypeParameters) ||
		!c.list(x.Interfaces, y.Interfaces) {
		return false
	}
	xs, ys := sortedMethods(x.Methods), sortedMethods(y.Methods)
	for i := range xs {
		if !c.method(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// method compares signatures. Declaring types compare by name so that a
// class and its own methods do not recurse into each other.
func (c *comparer) method(x, y *Method) bool {
	if x == y {
		return true
	}
	return x.Name == y.Name &&
		x.Flags == y.Flags &&
		declaringName(x) == declaringName(y) &&
		slices.Equal(x.ParameterNames, y.ParameterNames) &&
		c.eq(x.ReturnType, y.ReturnType) &&
		c.list(x.ParameterTypes, y.ParameterTypes) &&
		c.list(x.ThrownExceptions, y.ThrownExceptions)
}

func (c *comparer) list(xs, ys []Type) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !c.eq(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// fold replaces a class already on the comparison stack with its Cyclic placeholder.
func fold(t Type, stack []string) Type {
	if c, ok := t.(*Class); ok && slices.Contains(stack, c.FullyQualifiedName) {
		return &Cyclic{FullyQualifiedName: c.FullyQualifiedName}
	}
	return t
}

func classType(c *Class) Type {
	if c == nil {
		return nil
	}
	return c
}

func declaringName(m *Method) string {
	if m.DeclaringType == nil {
		return ""
	}
	return m.DeclaringType.FullyQualifiedName
}

func sortedMembers(vs []*Variable) []Type {
	sorted := slices.Clone(vs)
	slices.SortStableFunc(sorted, func(a, b *Variable) int {
		return strings.Compare(a.Name, b.Name)
	})
	out := make([]Type, len(sorted))
	for i, v := range sorted {
		out[i] = v
	}
	return out
}

func sortedMethods(ms []*Method) []*Method {
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(a, b *Method) int {
		return strings.Compare(methodSortKey(a), methodSortKey(b))
	})
	return sorted
}

func methodSortKey(m *Method) string {
	return m.Name + "(" + joinTypes(m.ParameterTypes, ",") + ")"
}
