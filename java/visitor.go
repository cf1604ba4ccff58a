package java

import (
	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/tree"
)

// Visitor walks a Java tree and rebuilds only what its hooks change.
//
// Each Visit<Kind> hook, when set, replaces the default handling of that
// kind. A hook usually calls the matching Default<Kind> method to descend and
// then edits the result. Returning the node it was given means no change;
// returning nil deletes the node from the list that holds it. Deleting a
// node that its parent cannot do without is an error.
//
// The cursor passed to a hook points at the node being visited. Its parents
// include the padding wrappers and containers between the node and its
// parent node.
type Visitor[P any] struct {
	// PreVisit runs before dispatch. Returning tree.SkipChildren keeps the
	// returned node without descending into it.
	PreVisit func(n J, c *tree.Cursor, p P) (J, error)
	// PostVisit runs after dispatch on whatever the hook returned.
	PostVisit func(n J, c *tree.Cursor, p P) (J, error)

	VisitCompilationUnit  func(v *Visitor[P], n *CompilationUnit, c *tree.Cursor, p P) (J, error)
	VisitPackage          func(v *Visitor[P], n *Package, c *tree.Cursor, p P) (J, error)
	VisitImport           func(v *Visitor[P], n *Import, c *tree.Cursor, p P) (J, error)
	VisitClassDecl        func(v *Visitor[P], n *ClassDecl, c *tree.Cursor, p P) (J, error)
	VisitMethodDecl       func(v *Visitor[P], n *MethodDecl, c *tree.Cursor, p P) (J, error)
	VisitVariableDecls    func(v *Visitor[P], n *VariableDecls, c *tree.Cursor, p P) (J, error)
	VisitNamedVariable    func(v *Visitor[P], n *NamedVariable, c *tree.Cursor, p P) (J, error)
	VisitBlock            func(v *Visitor[P], n *Block, c *tree.Cursor, p P) (J, error)
	VisitIdentifier       func(v *Visitor[P], n *Identifier, c *tree.Cursor, p P) (J, error)
	VisitLiteral          func(v *Visitor[P], n *Literal, c *tree.Cursor, p P) (J, error)
	VisitFieldAccess      func(v *Visitor[P], n *FieldAccess, c *tree.Cursor, p P) (J, error)
	VisitMethodInvocation func(v *Visitor[P], n *MethodInvocation, c *tree.Cursor, p P) (J, error)
	VisitAssignment       func(v *Visitor[P], n *Assignment, c *tree.Cursor, p P) (J, error)
	VisitBinary           func(v *Visitor[P], n *Binary, c *tree.Cursor, p P) (J, error)
	VisitReturn           func(v *Visitor[P], n *Return, c *tree.Cursor, p P) (J, error)
	VisitIf               func(v *Visitor[P], n *If, c *tree.Cursor, p P) (J, error)
	VisitElse             func(v *Visitor[P], n *Else, c *tree.Cursor, p P) (J, error)
	VisitParens           func(v *Visitor[P], n *Parens, c *tree.Cursor, p P) (J, error)
	VisitKeyword          func(v *Visitor[P], n *Keyword, c *tree.Cursor, p P) (J, error)
	VisitEmpty            func(v *Visitor[P], n *Empty, c *tree.Cursor, p P) (J, error)
	VisitUnknown          func(v *Visitor[P], n *Unknown, c *tree.Cursor, p P) (J, error)
}

// VisitTree adapts the visitor to dialect-neutral callers such as the recipe
// scheduler. Trees of other dialects come back unchanged.
func (v *Visitor[P]) VisitTree(t tree.Tree, p P) (tree.Tree, error) {
	n, ok := t.(J)
	if !ok {
		return t, nil
	}
	out, err := v.Visit(n, nil, p)
	if err != nil || out == nil {
		return nil, err
	}
	return out, nil
}

// Visit visits n below parent, which is nil at the root.
func (v *Visitor[P]) Visit(n J, parent *tree.Cursor, p P) (J, error) {
	if n == nil {
		return nil, nil
	}
	c := parent.Push(n)

	if v.PreVisit != nil {
		out, err := v.PreVisit(n, c, p)
		if errors.Is(err, tree.SkipChildren) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, nil
		}
		if out != n {
			n = out
			c = parent.Push(n)
		}
	}

	out, err := v.dispatch(n, c, p)
	if err != nil || out == nil {
		return nil, err
	}

	if v.PostVisit != nil {
		return v.PostVisit(out, c, p)
	}
	return out, nil
}

func (v *Visitor[P]) dispatch(n J, c *tree.Cursor, p P) (J, error) {
	switch n := n.(type) {
	case *CompilationUnit:
		if v.VisitCompilationUnit != nil {
			return v.VisitCompilationUnit(v, n, c, p)
		}
		return v.DefaultCompilationUnit(n, c, p)
	case *Package:
		if v.VisitPackage != nil {
			return v.VisitPackage(v, n, c, p)
		}
		return v.DefaultPackage(n, c, p)
	case *Import:
		if v.VisitImport != nil {
			return v.VisitImport(v, n, c, p)
		}
		return v.DefaultImport(n, c, p)
	case *ClassDecl:
		if v.VisitClassDecl != nil {
			return v.VisitClassDecl(v, n, c, p)
		}
		return v.DefaultClassDecl(n, c, p)
	case *MethodDecl:
		if v.VisitMethodDecl != nil {
			return v.VisitMethodDecl(v, n, c, p)
		}
		return v.DefaultMethodDecl(n, c, p)
	case *VariableDecls:
		if v.VisitVariableDecls != nil {
			return v.VisitVariableDecls(v, n, c, p)
		}
		return v.DefaultVariableDecls(n, c, p)
	case *NamedVariable:
		if v.VisitNamedVariable != nil {
			return v.VisitNamedVariable(v, n, c, p)
		}
		return v.DefaultNamedVariable(n, c, p)
	case *Block:
		if v.VisitBlock != nil {
			return v.VisitBlock(v, n, c, p)
		}
		return v.DefaultBlock(n, c, p)
	case *Identifier:
		if v.VisitIdentifier != nil {
			return v.VisitIdentifier(v, n, c, p)
		}
		return n, nil
	case *Literal:
		if v.VisitLiteral != nil {
			return v.VisitLiteral(v, n, c, p)
		}
		return n, nil
	case *FieldAccess:
		if v.VisitFieldAccess != nil {
			return v.VisitFieldAccess(v, n, c, p)
		}
		return v.DefaultFieldAccess(n, c, p)
	case *MethodInvocation:
		if v.VisitMethodInvocation != nil {
			return v.VisitMethodInvocation(v, n, c, p)
		}
		return v.DefaultMethodInvocation(n, c, p)
	case *Assignment:
		if v.VisitAssignment != nil {
			return v.VisitAssignment(v, n, c, p)
		}
		return v.DefaultAssignment(n, c, p)
	case *Binary:
		if v.VisitBinary != nil {
			return v.VisitBinary(v, n, c, p)
		}
		return v.DefaultBinary(n, c, p)
	case *Return:
		if v.VisitReturn != nil {
			return v.VisitReturn(v, n, c, p)
		}
		return v.DefaultReturn(n, c, p)
	case *If:
		if v.VisitIf != nil {
			return v.VisitIf(v, n, c, p)
		}
		return v.DefaultIf(n, c, p)
	case *Else:
		if v.VisitElse != nil {
			return v.VisitElse(v, n, c, p)
		}
		return v.DefaultElse(n, c, p)
	case *Parens:
		if v.VisitParens != nil {
			return v.VisitParens(v, n, c, p)
		}
		return v.DefaultParens(n, c, p)
	case *Keyword:
		if v.VisitKeyword != nil {
			return v.VisitKeyword(v, n, c, p)
		}
		return n, nil
	case *Empty:
		if v.VisitEmpty != nil {
			return v.VisitEmpty(v, n, c, p)
		}
		return n, nil
	case *Unknown:
		if v.VisitUnknown != nil {
			return v.VisitUnknown(v, n, c, p)
		}
		return n, nil
	default:
		return nil, errors.AssertionFailedf("java: no visitor case for %T", n)
	}
}

func (v *Visitor[P]) DefaultCompilationUnit(n *CompilationUnit, c *tree.Cursor, p P) (J, error) {
	stmts, err := visitRightPaddedList(v, n.Statements, c, p)
	if err != nil {
		return nil, err
	}
	return n.WithStatements(stmts), nil
}

func (v *Visitor[P]) DefaultPackage(n *Package, c *tree.Cursor, p P) (J, error) {
	name, err := visitRequired(v, n, "name", n.Name, c, p)
	if err != nil {
		return nil, err
	}
	return n.WithName(name), nil
}

func (v *Visitor[P]) DefaultImport(n *Import, c *tree.Cursor, p P) (J, error) {
	q, err := visitRequired(v, n, "qualid", n.Qualid, c, p)
	if err != nil {
		return nil, err
	}
	return n.WithQualid(q), nil
}

func (v *Visitor[P]) DefaultClassDecl(n *ClassDecl, c *tree.Cursor, p P) (J, error) {
	mods, err := visitList(v, n.Modifiers, c, p)
	if err != nil {
		return nil, err
	}
	kw, err := visitRequired(v, n, "keyword", n.Keyword, c, p)
	if err != nil {
		return nil, err
	}
	name, err := visitRequired(v, n, "name", n.Name, c, p)
	if err != nil {
		return nil, err
	}
	tps, err := visitContainer(v, n.TypeParameters, c, p)
	if err != nil {
		return nil, err
	}
	if tps != nil && len(tps.Elements) == 0 {
		return nil, deletedRequired(n, "type parameters")
	}
	ext, err := visitLeftPadded(v, n.Extends, c, p)
	if err != nil {
		return nil, err
	}
	impl, err := visitContainer(v, n.Implements, c, p)
	if err != nil {
		return nil, err
	}
	// A clause that lost its last type is dropped with its keyword. Comments
	// in front of it move to the body.
	var dropped []tree.Space
	if n.Extends != nil && ext == nil {
		dropped = append(dropped, n.Extends.Before)
	}
	if impl != nil && len(impl.Elements) == 0 {
		dropped = append(dropped, impl.Before)
		impl = nil
	}
	body, err := visitRequired(v, n, "body", n.Body, c, p)
	if err != nil {
		return nil, err
	}
	for i := len(dropped) - 1; i >= 0 && body != nil; i-- {
		if prefix := dropped[i].Join(body.Prefix()); !prefix.Equal(body.Prefix()) {
			body = body.WithPrefix(prefix).(*Block)
		}
	}

	if tree.SameSlice(mods, n.Modifiers) && kw == n.Keyword && name == n.Name && tps == n.TypeParameters &&
		ext == n.Extends && impl == n.Implements && body == n.Body {
		return n, nil
	}
	out := *n
	out.Modifiers, out.Keyword, out.Name, out.TypeParameters = mods, kw, name, tps
	out.Extends, out.Implements, out.Body = ext, impl, body
	return &out, nil
}

func (v *Visitor[P]) DefaultMethodDecl(n *MethodDecl, c *tree.Cursor, p P) (J, error) {
	mods, err := visitList(v, n.Modifiers, c, p)
	if err != nil {
		return nil, err
	}
	ret, err := visitRequired(v, n, "return type", n.ReturnType, c, p)
	if err != nil {
		return nil, err
	}
	name, err := visitRequired(v, n, "name", n.Name, c, p)
	if err != nil {
		return nil, err
	}
	params, err := visitContainer(v, n.Params, c, p)
	if err != nil {
		return nil, err
	}
	body, err := visitRequired(v, n, "body", n.Body, c, p)
	if err != nil {
		return nil, err
	}

	if tree.SameSlice(mods, n.Modifiers) && ret == n.ReturnType && name == n.Name &&
		params == n.Params && body == n.Body {
		return n, nil
	}
	out := *n
	out.Modifiers, out.ReturnType, out.Name = mods, ret, name
	out.Params, out.Body = params, body
	return &out, nil
}

func (v *Visitor[P]) DefaultVariableDecls(n *VariableDecls, c *tree.Cursor, p P) (J, error) {
	mods, err := visitList(v, n.Modifiers, c, p)
	if err != nil {
		return nil, err
	}
	typ, err := visitRequired(v, n, "type", n.TypeExpr, c, p)
	if err != nil {
		return nil, err
	}
	vars, err := visitRightPaddedList(v, n.Vars, c, p)
	if err != nil {
		return nil, err
	}
	// Nothing is left to declare.
	if len(vars) == 0 {
		return nil, nil
	}

	if tree.SameSlice(mods, n.Modifiers) && typ == n.TypeExpr && tree.SameSlice(vars, n.Vars) {
		return n, nil
	}
	out := *n
	out.Modifiers, out.TypeExpr, out.Vars = mods, typ, vars
	return &out, nil
}

func (v *Visitor[P]) DefaultNamedVariable(n *NamedVariable, c *tree.Cursor, p P) (J, error) {
	name, err := visitRequired(v, n, "name", n.Name, c, p)
	if err != nil {
		return nil, err
	}
	init, err := visitLeftPadded(v, n.Initializer, c, p)
	if err != nil {
		return nil, err
	}
	if name == n.Name && init == n.Initializer {
		return n, nil
	}
	out := *n
	out.Name, out.Initializer = name, init
	return &out, nil
}

func (v *Visitor[P]) DefaultBlock(n *Block, c *tree.Cursor, p P) (J, error) {
	stmts, err := visitRightPaddedList(v, n.Statements, c, p)
	if err != nil {
		return nil, err
	}
	return n.WithStatements(stmts), nil
}

func (v *Visitor[P]) DefaultFieldAccess(n *FieldAccess, c *tree.Cursor, p P) (J, error) {
	target, err := visitRequired(v, n, "target", n.Target, c, p)
	if err != nil {
		return nil, err
	}
	name, err := visitLeftPadded(v, n.Name, c, p)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return nil, deletedRequired(n, "name")
	}
	if target == n.Target && name == n.Name {
		return n, nil
	}
	out := *n
	out.Target, out.Name = target, name
	return &out, nil
}

func (v *Visitor[P]) DefaultMethodInvocation(n *MethodInvocation, c *tree.Cursor, p P) (J, error) {
	sel, err := visitRightPadded(v, n.Select, c, p)
	if err != nil {
		return nil, err
	}
	name, err := visitRequired(v, n, "name", n.Name, c, p)
	if err != nil {
		return nil, err
	}
	args, err := visitContainer(v, n.Args, c, p)
	if err != nil {
		return nil, err
	}
	if sel == n.Select && name == n.Name && args == n.Args {
		return n, nil
	}
	out := *n
	out.Select, out.Name, out.Args = sel, name, args
	return &out, nil
}

func (v *Visitor[P]) DefaultAssignment(n *Assignment, c *tree.Cursor, p P) (J, error) {
	variable, err := visitRequired(v, n, "variable", n.Variable, c, p)
	if err != nil {
		return nil, err
	}
	value, err := visitLeftPadded(v, n.Value, c, p)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, deletedRequired(n, "value")
	}
	if variable == n.Variable && value == n.Value {
		return n, nil
	}
	out := *n
	out.Variable, out.Value = variable, value
	return &out, nil
}

func (v *Visitor[P]) DefaultBinary(n *Binary, c *tree.Cursor, p P) (J, error) {
	left, err := visitRequired(v, n, "left operand", n.Left, c, p)
	if err != nil {
		return nil, err
	}
	right, err := visitRequired(v, n, "right operand", n.Right, c, p)
	if err != nil {
		return nil, err
	}
	if left == n.Left && right == n.Right {
		return n, nil
	}
	out := *n
	out.Left, out.Right = left, right
	return &out, nil
}

func (v *Visitor[P]) DefaultReturn(n *Return, c *tree.Cursor, p P) (J, error) {
	expr, err := visitAs(v, n.Expr, c, p)
	if err != nil {
		return nil, err
	}
	return n.WithExpr(expr), nil
}

func (v *Visitor[P]) DefaultIf(n *If, c *tree.Cursor, p P) (J, error) {
	cond, err := visitRequired(v, n, "condition", n.Cond, c, p)
	if err != nil {
		return nil, err
	}
	then, err := visitRightPadded(v, n.Then, c, p)
	if err != nil {
		return nil, err
	}
	if then == nil {
		return nil, deletedRequired(n, "then branch")
	}
	els, err := visitAs(v, n.Else, c, p)
	if err != nil {
		return nil, err
	}
	if cond == n.Cond && then == n.Then && els == n.Else {
		return n, nil
	}
	out := *n
	out.Cond, out.Then, out.Else = cond, then, els
	return &out, nil
}

func (v *Visitor[P]) DefaultElse(n *Else, c *tree.Cursor, p P) (J, error) {
	body, err := visitRightPadded(v, n.Body, c, p)
	if err != nil {
		return nil, err
	}
	// An else without a body goes away with it.
	if body == nil {
		return nil, nil
	}
	return n.WithBody(body), nil
}

func (v *Visitor[P]) DefaultParens(n *Parens, c *tree.Cursor, p P) (J, error) {
	inner, err := visitRightPadded(v, n.Inner, c, p)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, deletedRequired(n, "expression")
	}
	return n.WithInner(inner), nil
}

func deletedRequired(parent J, field string) error {
	return errors.Newf("java: %s of %s %s was deleted", field, parent.Kind(), parent.ID())
}

// visitAs visits n and checks that the result can stand where n stood.
// A nil result means n was deleted.
func visitAs[T J, P any](v *Visitor[P], n T, c *tree.Cursor, p P) (T, error) {
	var zero T
	if isNil(n) {
		return n, nil
	}
	out, err := v.Visit(n, c, p)
	if err != nil || out == nil {
		return zero, err
	}
	t, ok := out.(T)
	if !ok {
		return zero, errors.Newf("java: visiting %s %s produced a %s, which cannot replace it",
			n.Kind(), n.ID(), out.Kind())
	}
	return t, nil
}

func visitRequired[T J, P any](v *Visitor[P], parent J, field string, n T, c *tree.Cursor, p P) (T, error) {
	out, err := visitAs(v, n, c, p)
	if err != nil {
		return out, err
	}
	if isNil(out) && !isNil(n) {
		return out, deletedRequired(parent, field)
	}
	return out, nil
}

// visitList visits each element and drops deleted ones. The input slice is
// returned when nothing changed.
func visitList[T J, P any](v *Visitor[P], list []T, c *tree.Cursor, p P) ([]T, error) {
	var out []T
	for i, e := range list {
		n, err := visitAs(v, e, c, p)
		if err != nil {
			return nil, err
		}
		if out == nil && !tree.Same(n, e) {
			out = make([]T, i, len(list))
			copy(out, list[:i])
		}
		if out != nil && !isNil(n) {
			out = append(out, n)
		}
	}
	if out == nil {
		return list, nil
	}
	return out, nil
}

func visitRightPadded[T J, P any](v *Visitor[P], rp *tree.RightPadded[T], c *tree.Cursor, p P) (*tree.RightPadded[T], error) {
	if rp == nil {
		return nil, nil
	}
	e, err := visitAs(v, rp.Element, c.Push(rp), p)
	if err != nil || isNil(e) {
		return nil, err
	}
	return rp.WithElement(e), nil
}

func visitRightPaddedList[T J, P any](v *Visitor[P], list []*tree.RightPadded[T], c *tree.Cursor, p P) ([]*tree.RightPadded[T], error) {
	var out []*tree.RightPadded[T]
	for i, rp := range list {
		n, err := visitRightPadded(v, rp, c, p)
		if err != nil {
			return nil, err
		}
		if out == nil && n != rp {
			out = make([]*tree.RightPadded[T], i, len(list))
			copy(out, list[:i])
		}
		if out != nil && n != nil {
			out = append(out, n)
		}
	}
	if out == nil {
		return list, nil
	}
	return out, nil
}

func visitLeftPadded[T J, P any](v *Visitor[P], lp *tree.LeftPadded[T], c *tree.Cursor, p P) (*tree.LeftPadded[T], error) {
	if lp == nil {
		return nil, nil
	}
	e, err := visitAs(v, lp.Element, c.Push(lp), p)
	if err != nil || isNil(e) {
		return nil, err
	}
	return lp.WithElement(e), nil
}

func visitContainer[T J, P any](v *Visitor[P], ctr *tree.Container[T], c *tree.Cursor, p P) (*tree.Container[T], error) {
	if ctr == nil {
		return nil, nil
	}
	elems, err := visitRightPaddedList(v, ctr.Elements, c.Push(ctr), p)
	if err != nil {
		return nil, err
	}
	return ctr.WithElements(elems), nil
}
