// Package jtype describes the static types attached to Java nodes and
// interns class and method types so that structurally identical types share
// one instance.
//
// Types are plain structs. A candidate built by a parser is handed to an
// Interner, which returns the canonical instance; after interning, type
// identity is pointer identity.
package jtype

import (
	"strings"
)

// Type is the closed set of type descriptors.
type Type interface {
	String() string
	isType()
}

// ClassKind distinguishes the declaration forms of a class type.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

var classKindNames = [...]string{"class", "interface", "enum", "record", "annotation"}

func (k ClassKind) String() string {
	if int(k) < len(classKindNames) {
		return classKindNames[k]
	}
	return "unknown"
}

// ClassKindFromKeyword maps a declaration keyword to its kind.
func ClassKindFromKeyword(kw string) (ClassKind, bool) {
	for i, n := range classKindNames {
		if n == kw {
			return ClassKind(i), true
		}
	}
	if kw == "@interface" {
		return KindAnnotation, true
	}
	return KindClass, false
}

// Class is a class, interface, enum, record or annotation type.
type Class struct {
	FullyQualifiedName string
	Kind               ClassKind
	Flags              Flags
	// Supertype is a *Class, *Parameterized or *Cyclic, or nil.
	Supertype      Type
	Interfaces     []Type
	TypeParameters []Type
	Members        []*Variable
	Methods        []*Method

	fingerprint uint64
}

// ShallowClass returns a class known only by name.
func ShallowClass(fqn string) *Class {
	return &Class{FullyQualifiedName: fqn}
}

func (c *Class) String() string { return c.FullyQualifiedName }

// ClassName is the simple name: the part after the last dot.
func (c *Class) ClassName() string {
	if i := strings.LastIndexByte(c.FullyQualifiedName, '.'); i >= 0 {
		return c.FullyQualifiedName[i+1:]
	}
	return c.FullyQualifiedName
}

// PackageName is the part before the last dot.
func (c *Class) PackageName() string {
	if i := strings.LastIndexByte(c.FullyQualifiedName, '.'); i >= 0 {
		return c.FullyQualifiedName[:i]
	}
	return ""
}

// Member returns the field with the given name.
func (c *Class) Member(name string) (*Variable, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// MethodsNamed returns the methods with the given name, overloads included.
func (c *Class) MethodsNamed(name string) []*Method {
	var out []*Method
	for _, m := range c.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (*Class) isType() {}

// Parameterized is a generic class applied to type arguments.
type Parameterized struct {
	Base           *Class
	TypeParameters []Type
}

func (p *Parameterized) String() string {
	return p.Base.String() + "<" + joinTypes(p.TypeParameters, ", ") + ">"
}

func (*Parameterized) isType() {}

// Array is an array of Elem.
type Array struct {
	Elem Type
}

func (a *Array) String() string { return typeString(a.Elem) + "[]" }

func (*Array) isType() {}

// Variance is the bound direction of a type variable.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// GenericTypeVariable is a type variable or wildcard.
type GenericTypeVariable struct {
	Name     string
	Variance Variance
	Bounds   []Type
}

func (g *GenericTypeVariable) String() string {
	switch {
	case len(g.Bounds) == 0:
		return g.Name
	case g.Variance == Contravariant:
		return g.Name + " super " + joinTypes(g.Bounds, " & ")
	default:
		return g.Name + " extends " + joinTypes(g.Bounds, " & ")
	}
}

func (*GenericTypeVariable) isType() {}

// MultiCatch is the union type of a multi-catch parameter.
type MultiCatch struct {
	Alternatives []Type
}

func (m *MultiCatch) String() string { return joinTypes(m.Alternatives, " | ") }

func (*MultiCatch) isType() {}

// Method is a method signature together with its declaring type.
type Method struct {
	DeclaringType    *Class
	Name             string
	Flags            Flags
	ReturnType       Type
	ParameterTypes   []Type
	ParameterNames   []string
	ThrownExceptions []Type
}

func (m *Method) String() string {
	var b strings.Builder
	if m.DeclaringType != nil {
		b.WriteString(m.DeclaringType.FullyQualifiedName)
	}
	b.WriteByte('#')
	b.WriteString(m.Name)
	b.WriteByte('(')
	b.WriteString(joinTypes(m.ParameterTypes, ","))
	b.WriteByte(')')
	b.WriteString(typeString(m.ReturnType))
	return b.String()
}

func (*Method) isType() {}

// Variable is a field, parameter or local variable.
type Variable struct {
	Name  string
	Owner string
	Type  Type
	Flags Flags
}

func (v *Variable) String() string { return v.Name + ":" + typeString(v.Type) }

func (*Variable) isType() {}

// Unknown is the type of a node whose type could not be determined.
type Unknown struct{}

// UnknownType is the shared Unknown instance.
var UnknownType = &Unknown{}

func (*Unknown) String() string { return "<unknown>" }

func (*Unknown) isType() {}

// Cyclic stands in for a class that refers back to itself through its own
// supertype chain or members.
type Cyclic struct {
	FullyQualifiedName string
}

func (c *Cyclic) String() string { return c.FullyQualifiedName }

func (*Cyclic) isType() {}

func typeString(t Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, sep)
}
