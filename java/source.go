package java

import (
	"github.com/jward/lathe/tree"
)

var _ tree.SourceFile = (*CompilationUnit)(nil)

func (n *CompilationUnit) SourcePath() string { return n.Path }

func (n *CompilationUnit) Print() string { return Print(n) }

func (n *CompilationUnit) WithSourcePath(path string) tree.SourceFile { return n.WithPath(path) }

func (n *CompilationUnit) WithSourceMarkers(m tree.Markers) tree.SourceFile {
	return n.WithMarkers(m).(*CompilationUnit)
}

// PackageDecl returns the package declaration, or nil for the default package.
func (n *CompilationUnit) PackageDecl() *Package {
	for _, s := range n.Statements {
		if p, ok := s.Element.(*Package); ok {
			return p
		}
	}
	return nil
}

// PackageName returns the dotted package name, or "" for the default package.
func (n *CompilationUnit) PackageName() string {
	if p := n.PackageDecl(); p != nil {
		return QualifiedName(p.Name)
	}
	return ""
}

func (n *CompilationUnit) Imports() []*Import {
	var out []*Import
	for _, s := range n.Statements {
		if i, ok := s.Element.(*Import); ok {
			out = append(out, i)
		}
	}
	return out
}

// Classes returns the top-level type declarations.
func (n *CompilationUnit) Classes() []*ClassDecl {
	var out []*ClassDecl
	for _, s := range n.Statements {
		if c, ok := s.Element.(*ClassDecl); ok {
			out = append(out, c)
		}
	}
	return out
}

// QualifiedName flattens an Identifier or FieldAccess chain to dotted form.
// Anything else yields "".
func QualifiedName(n J) string {
	switch n := n.(type) {
	case *Identifier:
		return n.Name
	case *FieldAccess:
		t := QualifiedName(n.Target)
		if t == "" {
			return ""
		}
		return t + "." + n.Name.Element.Name
	}
	return ""
}

// SimpleName returns the name a declaration introduces, or "" for nodes that
// declare nothing.
func SimpleName(n J) string {
	switch n := n.(type) {
	case *ClassDecl:
		return n.Name.Name
	case *MethodDecl:
		return n.Name.Name
	case *NamedVariable:
		return n.Name.Name
	case *Identifier:
		return n.Name
	}
	return ""
}

// Values returns the unwrapped statements of a block.
func (b *Block) Values() []J {
	out := make([]J, len(b.Statements))
	for i, s := range b.Statements {
		out[i] = s.Element
	}
	return out
}
