package java

import (
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/tree"
)

// The fixture prints as fixtureSource.
const fixtureSource = `class A {
    void m() {
        foo = foo + 1;
        foo();
    }
    void other() {
        int y = 1;
        x = y;
    }
}
`

type fixture struct {
	unit  *CompilationUnit
	class *ClassDecl
	m     *MethodDecl
	other *MethodDecl
}

func ident(prefix, name string) *Identifier {
	return NewIdentifier(tree.Format(prefix), name, nil)
}

func emptyParens() *tree.Container[J] {
	return tree.NewContainer(tree.Space{}, Bare(NewEmpty(tree.Space{})))
}

func stmt(n J) *tree.RightPadded[J] { return Semi(n, tree.Space{}) }

func method(name string, body ...*tree.RightPadded[J]) *MethodDecl {
	return NewMethodDecl(tree.Format("\n    "), nil, ident("", "void"), ident(" ", name), emptyParens(),
		NewBlock(tree.Format(" "), body, tree.Format("\n    ")), nil)
}

func assign(prefix, name string, value J) *Assignment {
	return NewAssignment(tree.Format(prefix), ident("", name), "=", tree.NewLeftPadded[J](tree.Format(" "), value))
}

func newFixture() fixture {
	m := method("m",
		stmt(assign("\n        ", "foo",
			NewBinary(tree.Format(" "), ident("", "foo"), tree.NewLeftPadded(tree.Format(" "), "+"),
				NewLiteral(tree.Format(" "), "1", jtype.Int), nil))),
		stmt(NewMethodInvocation(tree.Format("\n        "), nil, ident("", "foo"), emptyParens(), nil)),
	)
	y := NewNamedVariable(tree.Format(" "), ident("", "y"),
		tree.NewLeftPadded[J](tree.Format(" "), NewLiteral(tree.Format(" "), "1", jtype.Int)), nil)
	other := method("other",
		stmt(NewVariableDecls(tree.Format("\n        "), nil, ident("", "int"),
			[]*tree.RightPadded[*NamedVariable]{Pad(y, tree.Space{})})),
		stmt(assign("\n        ", "x", ident(" ", "y"))),
	)
	class := NewClassDecl(tree.Space{}, nil, NewKeyword(tree.Space{}, "class"), ident(" ", "A"), nil, nil,
		NewBlock(tree.Format(" "), []*tree.RightPadded[J]{Bare(m), Bare(other)}, tree.Format("\n")), nil)
	unit := NewCompilationUnit(tree.Space{}, "A.java", []*tree.RightPadded[J]{Bare(class)}, tree.Format("\n"))
	return fixture{unit: unit, class: class, m: m, other: other}
}

// methodsOf returns the method declarations of the fixture's class after a visit.
func methodsOf(t J) []*MethodDecl {
	u := t.(*CompilationUnit)
	var out []*MethodDecl
	for _, s := range u.Classes()[0].Body.Statements {
		out = append(out, s.Element.(*MethodDecl))
	}
	return out
}
