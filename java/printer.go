package java

import (
	"strings"

	"github.com/jward/lathe/tree"
)

// Print renders n and its subtree. A tree that came straight from the parser
// prints back to its input byte for byte.
func Print(n J) string {
	p := printer{}
	p.node(n)
	return p.b.String()
}

// PrintWithSearchResults is Print with every SearchResult marker rendered as
// a /*~~>*/ comment in front of the marked node, the way search recipes show
// their hits.
func PrintWithSearchResults(n J) string {
	p := printer{search: true}
	p.node(n)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	search bool
}

func (p *printer) str(s string)       { p.b.WriteString(s) }
func (p *printer) space(s tree.Space) { p.b.WriteString(s.String()) }

func (p *printer) node(n J) {
	if isNil(n) {
		return
	}
	p.space(n.Prefix())
	if p.search {
		p.searchMarkers(n.Markers())
	}

	switch n := n.(type) {
	case *CompilationUnit:
		p.statements(n.Statements)
		p.space(n.EOF)
	case *Package:
		p.str("package")
		p.node(n.Name)
	case *Import:
		p.str("import")
		p.node(n.Qualid)
	case *ClassDecl:
		p.nodes(n.Modifiers)
		p.node(n.Keyword)
		p.node(n.Name)
		p.container(n.TypeParameters, "<", ",", ">")
		if n.Extends != nil {
			p.space(n.Extends.Before)
			p.str("extends")
			p.node(n.Extends.Element)
		}
		if n.Implements != nil {
			p.space(n.Implements.Before)
			p.str("implements")
			p.elements(n.Implements.Elements, ",")
		}
		p.node(n.Body)
	case *MethodDecl:
		p.nodes(n.Modifiers)
		p.node(n.ReturnType)
		p.node(n.Name)
		p.container(n.Params, "(", ",", ")")
		p.node(n.Body)
	case *VariableDecls:
		p.nodes(n.Modifiers)
		p.node(n.TypeExpr)
		for i, v := range n.Vars {
			if i > 0 {
				p.str(",")
			}
			p.node(v.Element)
			p.space(v.After)
		}
	case *NamedVariable:
		p.node(n.Name)
		if n.Initializer != nil {
			p.space(n.Initializer.Before)
			p.str("=")
			p.node(n.Initializer.Element)
		}
	case *Block:
		p.str("{")
		p.statements(n.Statements)
		p.space(n.End)
		p.str("}")
	case *Identifier:
		p.str(n.Name)
	case *Literal:
		p.str(n.Source)
	case *FieldAccess:
		p.node(n.Target)
		p.space(n.Name.Before)
		p.str(".")
		p.node(n.Name.Element)
	case *MethodInvocation:
		if n.Select != nil {
			p.node(n.Select.Element)
			p.space(n.Select.After)
			p.str(".")
		}
		p.node(n.Name)
		p.container(n.Args, "(", ",", ")")
	case *Assignment:
		p.node(n.Variable)
		p.space(n.Value.Before)
		p.str(n.Operator)
		p.node(n.Value.Element)
	case *Binary:
		p.node(n.Left)
		p.space(n.Operator.Before)
		p.str(n.Operator.Element)
		p.node(n.Right)
	case *Return:
		p.str("return")
		p.node(n.Expr)
	case *If:
		p.str("if")
		p.node(n.Cond)
		p.statement(n.Then)
		if n.Else != nil {
			p.node(n.Else)
		}
	case *Else:
		p.str("else")
		p.statement(n.Body)
	case *Parens:
		p.str("(")
		p.node(n.Inner.Element)
		p.space(n.Inner.After)
		p.str(")")
	case *Keyword:
		p.str(n.Text)
	case *Empty:
	case *Unknown:
		p.str(n.Source)
	}
}

func (p *printer) nodes(ns []J) {
	for _, n := range ns {
		p.node(n)
	}
}

func (p *printer) statement(s *tree.RightPadded[J]) {
	if s == nil {
		return
	}
	p.node(s.Element)
	p.space(s.After)
	if tree.Has[tree.Semicolon](s.Markers) {
		p.str(";")
	}
}

func (p *printer) statements(ss []*tree.RightPadded[J]) {
	for _, s := range ss {
		p.statement(s)
	}
}

func (p *printer) elements(es []*tree.RightPadded[J], sep string) {
	for i, e := range es {
		if i > 0 {
			p.str(sep)
		}
		p.node(e.Element)
		p.space(e.After)
	}
}

func (p *printer) container(c *tree.Container[J], open, sep, close string) {
	if c == nil {
		return
	}
	p.space(c.Before)
	p.str(open)
	p.elements(c.Elements, sep)
	p.str(close)
}

func (p *printer) searchMarkers(m tree.Markers) {
	for _, r := range tree.FindAll[tree.SearchResult](m) {
		if r.Description == "" {
			p.str("/*~~>*/")
			continue
		}
		p.str("/*~~(" + r.Description + ")~~>*/")
	}
}
