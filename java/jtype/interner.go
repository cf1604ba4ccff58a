package jtype

import "sync"

// Interner is a flyweight cache for class and method types. Classes are
// bucketed by fully qualified name and methods by declaring type and name; a
// bucket holds every structurally distinct variant seen so far.
//
// All access is serialised by one mutex: interning happens once per distinct
// type, so contention is low and the one-instance-per-variant guarantee
// holds under concurrent parsing.
type Interner struct {
	mu      sync.Mutex
	classes map[string][]*Class
	methods map[methodKey][]*Method
}

type methodKey struct {
	declaring string
	name      string
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{
		classes: make(map[string][]*Class),
		methods: make(map[methodKey][]*Method),
	}
}

// InternClass returns the canonical instance structurally equal to c,
// registering c when no variant matches. Nested types are interned first.
// The interner takes ownership of c and the types it references.
func (in *Interner) InternClass(c *Class) *Class {
	if c == nil {
		return nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internClass(c, make(map[*Class]bool))
}

// InternMethod returns the canonical instance structurally equal to m.
func (in *Interner) InternMethod(m *Method) *Method {
	if m == nil {
		return nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internMethod(m, make(map[*Class]bool))
}

// Intern interns any type: classes and methods are canonicalised, other
// types have their nested classes and methods canonicalised.
func (in *Interner) Intern(t Type) Type {
	if t == nil {
		return nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.internType(t, make(map[*Class]bool))
}

// Variants returns the registered variants of a fully qualified name.
func (in *Interner) Variants(fqn string) []*Class {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]*Class(nil), in.classes[fqn]...)
}

// Stats reports the number of interned class and method variants.
func (in *Interner) Stats() (classes, methods int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, b := range in.classes {
		classes += len(b)
	}
	for _, b := range in.methods {
		methods += len(b)
	}
	return classes, methods
}

func (in *Interner) internClass(c *Class, visiting map[*Class]bool) *Class {
	if c == nil || visiting[c] || in.isCanonical(c) {
		return c
	}
	visiting[c] = true

	c.Supertype = in.internType(c.Supertype, visiting)
	for i, t := range c.Interfaces {
		c.Interfaces[i] = in.internType(t, visiting)
	}
	for i, t := range c.TypeParameters {
		c.TypeParameters[i] = in.internType(t, visiting)
	}
	for _, m := range c.Members {
		m.Type = in.internType(m.Type, visiting)
	}
	for _, m := range c.Methods {
		m.DeclaringType = c
	}

	fp := Fingerprint(c)
	for _, v := range in.classes[c.FullyQualifiedName] {
		if v.fingerprint == fp && Equal(v, c) {
			return v
		}
	}
	c.fingerprint = fp
	in.classes[c.FullyQualifiedName] = append(in.classes[c.FullyQualifiedName], c)

	for i, m := range c.Methods {
		c.Methods[i] = in.internMethod(m, visiting)
	}
	return c
}

func (in *Interner) isCanonical(c *Class) bool {
	for _, v := range in.classes[c.FullyQualifiedName] {
		if v == c {
			return true
		}
	}
	return false
}

func (in *Interner) internMethod(m *Method, visiting map[*Class]bool) *Method {
	key := methodKey{declaring: declaringName(m), name: m.Name}
	for _, v := range in.methods[key] {
		if v == m {
			return m
		}
	}
	if m.DeclaringType != nil {
		m.DeclaringType = in.internClass(m.DeclaringType, visiting)
	}
	m.ReturnType = in.internType(m.ReturnType, visiting)
	for i, t := range m.ParameterTypes {
		m.ParameterTypes[i] = in.internType(t, visiting)
	}
	for i, t := range m.ThrownExceptions {
		m.ThrownExceptions[i] = in.internType(t, visiting)
	}
	for _, v := range in.methods[key] {
		if Equal(v, m) {
			return v
		}
	}
	in.methods[key] = append(in.methods[key], m)
	return m
}

func (in *Interner) internType(t Type, visiting map[*Class]bool) Type {
	switch x := t.(type) {
	case *Class:
		return in.internClass(x, visiting)
	case *Method:
		return in.internMethod(x, visiting)
	case *Parameterized:
		if x.Base != nil {
			x.Base = in.internClass(x.Base, visiting)
		}
		for i, p := range x.TypeParameters {
			x.TypeParameters[i] = in.internType(p, visiting)
		}
	case *Array:
		x.Elem = in.internType(x.Elem, visiting)
	case *GenericTypeVariable:
		for i, b := range x.Bounds {
			x.Bounds[i] = in.internType(b, visiting)
		}
	case *MultiCatch:
		for i, a := range x.Alternatives {
			x.Alternatives[i] = in.internType(a, visiting)
		}
	case *Variable:
		x.Type = in.internType(x.Type, visiting)
	}
	return t
}
