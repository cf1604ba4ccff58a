package java

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jward/lathe/tree"
)

func TestPrint_Fixture(t *testing.T) {
	t.Parallel()

	f := newFixture()
	assert.Equal(t, fixtureSource, Print(f.unit))
	assert.Equal(t, fixtureSource, f.unit.Print())
}

func TestPrint_Subtree(t *testing.T) {
	t.Parallel()

	f := newFixture()
	assert.Equal(t, "\n    void m() {\n        foo = foo + 1;\n        foo();\n    }", Print(f.m))
}

func TestPrint_Nil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Print(nil))
}

func TestPrint_Containers(t *testing.T) {
	t.Parallel()

	args := tree.NewContainer(tree.Format(" "),
		Pad[J](ident("", "a"), tree.Space{}),
		Pad[J](ident(" ", "b"), tree.Format(" ")),
	)
	call := NewMethodInvocation(tree.Space{}, Pad[J](ident("", "out"), tree.Space{}), ident("", "println"), args, nil)
	assert.Equal(t, "out.println (a, b )", Print(call))

	class := NewClassDecl(tree.Space{}, []J{NewKeyword(tree.Space{}, "public")}, NewKeyword(tree.Format(" "), "class"),
		ident(" ", "B"),
		tree.NewLeftPadded[J](tree.Format(" "), ident(" ", "A")),
		tree.NewContainer(tree.Format(" "), Pad[J](ident(" ", "I"), tree.Space{}), Pad[J](ident(" ", "J"), tree.Space{})),
		NewBlock(tree.Format(" "), nil, tree.Space{}), nil)
	assert.Equal(t, "public class B extends A implements I, J {}", Print(class))
}

func TestPrint_IfElse(t *testing.T) {
	t.Parallel()

	cond := NewParens(tree.Format(" "), Pad[J](ident("", "ok"), tree.Space{}))
	then := Semi(NewReturn(tree.Format(" "), ident(" ", "a")), tree.Space{})
	els := NewElse(tree.Format(" "), Semi(NewReturn(tree.Format(" "), nil), tree.Space{}))
	n := NewIf(tree.Space{}, cond, then, els)

	assert.Equal(t, "if (ok) return a; else return;", Print(n))
}

func TestPrint_IfWithoutElse(t *testing.T) {
	t.Parallel()

	cond := NewParens(tree.Format(" "), Pad[J](ident("", "ok"), tree.Space{}))
	then := Semi(NewReturn(tree.Format(" "), nil), tree.Space{})
	n := NewIf(tree.Space{}, cond, then, nil)

	assert.Equal(t, "if (ok) return;", Print(n))
	var asJ J = n.Else
	assert.Equal(t, "", Print(asJ), "a nil node held in J prints as nothing")
}

func TestPrint_Comments(t *testing.T) {
	t.Parallel()

	prefix := tree.ParseSpace("\n// note\n  /* block */ ")
	n := NewUnknown(prefix, "@Deprecated")
	assert.Equal(t, "\n// note\n  /* block */ @Deprecated", Print(n))
}

func TestPrintWithSearchResults(t *testing.T) {
	t.Parallel()

	id := ident(" ", "foo")
	marked := id.WithMarkers(tree.AddSearchResult(id.Markers(), ""))
	assert.Equal(t, " /*~~>*/foo", PrintWithSearchResults(marked))
	assert.Equal(t, " foo", Print(marked))

	described := id.WithMarkers(tree.AddSearchResult(id.Markers(), "hit"))
	assert.Equal(t, " /*~~(hit)~~>*/foo", PrintWithSearchResults(described))
}
