package parser

import (
	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/tree"
)

// errShape means a syntax node has a shape the dialect does not model. The
// mapper then backs up and keeps the node verbatim.
var errShape = errors.New("unsupported shape")

type padded = *tree.RightPadded[java.J]

// mapper converts a tree-sitter tree to java nodes. pos is the offset of the
// first source byte not yet owned by a node; the gap up to the start of the
// next node becomes that node's prefix.
type mapper struct {
	src   []byte
	pos   uint32
	types *attributor
}

func newMapper(src []byte, types *attributor) *mapper {
	return &mapper{src: src, types: types}
}

// space consumes source up to off as formatting.
func (m *mapper) space(off uint32) tree.Space {
	if off <= m.pos {
		return tree.Space{}
	}
	s := tree.ParseSpace(string(m.src[m.pos:off]))
	m.pos = off
	return s
}

func (m *mapper) prefix(n *sitter.Node) tree.Space { return m.space(n.StartByte()) }

func (m *mapper) text(n *sitter.Node) string { return n.Content(m.src) }

// token consumes an anonymous token and returns the space before it.
func (m *mapper) token(n *sitter.Node, want string) (tree.Space, error) {
	if n == nil || n.Type() != want {
		return tree.Space{}, errShape
	}
	s := m.prefix(n)
	m.pos = n.EndByte()
	return s, nil
}

func (m *mapper) unknown(n *sitter.Node) *java.Unknown {
	p := m.prefix(n)
	m.pos = n.EndByte()
	return java.NewUnknown(p, m.text(n))
}

// attempt runs f and falls back to an Unknown for the whole of n.
func attempt[T java.J](m *mapper, n *sitter.Node, f func(*sitter.Node) (T, error)) java.J {
	save := m.pos
	out, err := f(n)
	if err != nil {
		m.pos = save
		return m.unknown(n)
	}
	return out
}

// attemptStatement is attempt for mappers that also own the terminator.
func (m *mapper) attemptStatement(n *sitter.Node, f func(*sitter.Node) (padded, error)) padded {
	save := m.pos
	out, err := f(n)
	if err != nil {
		m.pos = save
		return java.Bare(m.unknown(n))
	}
	return out
}

// kids walks the children of a node, comments excluded. Comments are left
// in the gaps and end up in prefixes.
type kids struct {
	nodes []*sitter.Node
	i     int
}

func children(n *sitter.Node) *kids {
	k := &kids{nodes: make([]*sitter.Node, 0, n.ChildCount())}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); !isComment(c) {
			k.nodes = append(k.nodes, c)
		}
	}
	return k
}

func (k *kids) peek() *sitter.Node {
	if k.i >= len(k.nodes) {
		return nil
	}
	return k.nodes[k.i]
}

func (k *kids) next() *sitter.Node {
	n := k.peek()
	if n != nil {
		k.i++
	}
	return n
}

func (k *kids) is(typ string) bool {
	n := k.peek()
	return n != nil && n.Type() == typ
}

func (k *kids) done() bool { return k.i >= len(k.nodes) }

// =============================================================================
// Compilation unit
// =============================================================================

func (m *mapper) compilationUnit(path string, root *sitter.Node) *java.CompilationUnit {
	m.types.declare(root, m.src)

	var stmts []padded
	k := children(root)
	for n := k.next(); n != nil; n = k.next() {
		switch n.Type() {
		case "package_declaration":
			stmts = append(stmts, m.attemptStatement(n, m.packageDecl))
		case "import_declaration":
			stmts = append(stmts, m.attemptStatement(n, m.importDecl))
		default:
			stmts = append(stmts, m.statement(n))
		}
	}
	eof := m.space(uint32(len(m.src)))
	return java.NewCompilationUnit(tree.Space{}, path, stmts, eof)
}

func (m *mapper) packageDecl(n *sitter.Node) (padded, error) {
	k := children(n)
	prefix := m.prefix(n)
	if _, err := m.token(k.next(), "package"); err != nil {
		return nil, err
	}
	name, err := m.name(k.next())
	if err != nil {
		return nil, err
	}
	semi, err := m.token(k.next(), ";")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.Semi(java.NewPackage(prefix, name), semi), nil
}

func (m *mapper) importDecl(n *sitter.Node) (padded, error) {
	k := children(n)
	prefix := m.prefix(n)
	if _, err := m.token(k.next(), "import"); err != nil {
		return nil, err
	}
	name, err := m.name(k.next())
	if err != nil {
		return nil, err
	}
	if k.is(".") {
		dot, _ := m.token(k.next(), ".")
		star := k.next()
		if star == nil || star.Type() != "asterisk" {
			return nil, errShape
		}
		all := java.NewIdentifier(m.prefix(star), "*", nil)
		m.pos = star.EndByte()
		name = java.NewFieldAccess(tree.Space{}, name, tree.NewLeftPadded(dot, all), nil)
	}
	semi, err := m.token(k.next(), ";")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.Semi(java.NewImport(prefix, name), semi), nil
}

// name maps a possibly qualified name.
func (m *mapper) name(n *sitter.Node) (java.J, error) {
	if n == nil {
		return nil, errShape
	}
	switch n.Type() {
	case "identifier":
		return m.identifier(n, nil), nil
	case "scoped_identifier":
		k := children(n)
		prefix := m.prefix(n)
		target, err := m.name(k.next())
		if err != nil {
			return nil, err
		}
		dot, err := m.token(k.next(), ".")
		if err != nil {
			return nil, err
		}
		last := k.next()
		if last == nil || last.Type() != "identifier" || !k.done() {
			return nil, errShape
		}
		return java.NewFieldAccess(prefix, target, tree.NewLeftPadded(dot, m.identifier(last, nil)), nil), nil
	}
	return nil, errShape
}

func (m *mapper) identifier(n *sitter.Node, t jtype.Type) *java.Identifier {
	p := m.prefix(n)
	m.pos = n.EndByte()
	return java.NewIdentifier(p, m.text(n), t)
}

// =============================================================================
// Declarations
// =============================================================================

func (m *mapper) modifiers(k *kids) []java.J {
	if !k.is("modifiers") {
		return nil
	}
	var out []java.J
	for _, c := range children(k.next()).nodes {
		if c.IsNamed() {
			out = append(out, m.unknown(c))
			continue
		}
		p := m.prefix(c)
		m.pos = c.EndByte()
		out = append(out, java.NewKeyword(p, m.text(c)))
	}
	return out
}

func (m *mapper) classDecl(n *sitter.Node) (*java.ClassDecl, error) {
	k := children(n)
	prefix := m.prefix(n)
	mods := m.modifiers(k)

	kwNode := k.next()
	if kwNode == nil || (kwNode.Type() != "class" && kwNode.Type() != "interface") {
		return nil, errShape
	}
	kwPrefix, _ := m.token(kwNode, kwNode.Type())
	kw := java.NewKeyword(kwPrefix, kwNode.Type())

	nameNode := k.next()
	if nameNode == nil || nameNode.Type() != "identifier" {
		return nil, errShape
	}
	cls := m.types.classAt(n.StartByte())
	name := m.identifier(nameNode, classType(cls))

	var tps *tree.Container[java.J]
	if k.is("type_parameters") {
		var err error
		if tps, err = m.typeParameters(k.next()); err != nil {
			return nil, err
		}
	}

	var ext *tree.LeftPadded[java.J]
	if k.is("superclass") {
		sk := children(k.next())
		before, err := m.token(sk.next(), "extends")
		if err != nil {
			return nil, err
		}
		t := m.typeExpr(sk.next())
		if !sk.done() {
			return nil, errShape
		}
		ext = tree.NewLeftPadded(before, t)
	}

	var impl *tree.Container[java.J]
	if k.is("super_interfaces") {
		ik := children(k.next())
		before, err := m.token(ik.next(), "implements")
		if err != nil {
			return nil, err
		}
		list := ik.next()
		if list == nil || list.Type() != "type_list" || !ik.done() {
			return nil, errShape
		}
		impl = tree.NewContainer[java.J](before)
		lk := children(list)
		for t := lk.next(); t != nil; t = lk.next() {
			elem := m.typeExpr(t)
			var after tree.Space
			if lk.is(",") {
				after, _ = m.token(lk.next(), ",")
			}
			impl.Elements = append(impl.Elements, java.Pad(elem, after))
		}
	}

	bodyNode := k.next()
	if bodyNode == nil || (bodyNode.Type() != "class_body" && bodyNode.Type() != "interface_body") || !k.done() {
		return nil, errShape
	}
	m.types.enterClass(cls)
	body, err := m.block(bodyNode, m.member)
	m.types.leaveClass()
	if err != nil {
		return nil, err
	}

	return java.NewClassDecl(prefix, mods, kw, name, ext, impl, body, cls).WithTypeParameters(tps), nil
}

// typeParameters maps <T, U extends V>. A parameter with a bound or an
// annotation is kept verbatim.
func (m *mapper) typeParameters(n *sitter.Node) (*tree.Container[java.J], error) {
	k := children(n)
	before, err := m.token(k.next(), "<")
	if err != nil {
		return nil, err
	}
	c := tree.NewContainer[java.J](before)
	for p := k.next(); p != nil; p = k.next() {
		if p.Type() != "type_parameter" {
			return nil, errShape
		}
		var elem java.J
		if p.ChildCount() == 1 {
			elem = m.identifier(p.Child(0), nil)
		} else {
			elem = m.unknown(p)
		}
		next := k.next()
		if next == nil || (next.Type() != "," && next.Type() != ">") {
			return nil, errShape
		}
		after, err := m.token(next, next.Type())
		if err != nil {
			return nil, err
		}
		c.Elements = append(c.Elements, java.Pad(elem, after))
		if next.Type() == ">" {
			break
		}
	}
	if len(c.Elements) == 0 || !k.done() {
		return nil, errShape
	}
	return c, nil
}

func (m *mapper) member(n *sitter.Node) padded {
	switch n.Type() {
	case "field_declaration":
		return m.attemptStatement(n, m.variableDecls)
	case "method_declaration":
		return java.Bare(attempt(m, n, m.methodDecl))
	case "class_declaration", "interface_declaration":
		return java.Bare(attempt(m, n, m.classDecl))
	}
	return java.Bare(m.unknown(n))
}

func (m *mapper) methodDecl(n *sitter.Node) (*java.MethodDecl, error) {
	k := children(n)
	prefix := m.prefix(n)
	mods := m.modifiers(k)
	if k.is("type_parameters") {
		return nil, errShape
	}
	ret := m.typeExpr(k.next())

	nameNode := k.next()
	if nameNode == nil || nameNode.Type() != "identifier" {
		return nil, errShape
	}
	name := m.identifier(nameNode, nil)
	arity := 0

	m.types.push()
	defer m.types.pop()

	paramsNode := k.next()
	if paramsNode == nil || paramsNode.Type() != "formal_parameters" {
		return nil, errShape
	}
	params, err := m.parameters(paramsNode, &arity)
	if err != nil {
		return nil, err
	}

	bodyNode := k.next()
	if bodyNode == nil || bodyNode.Type() != "block" || !k.done() {
		return nil, errShape
	}
	body, err := m.block(bodyNode, m.statement)
	if err != nil {
		return nil, err
	}

	mt := m.types.method(nil, name.Name, arity)
	return java.NewMethodDecl(prefix, mods, ret, name, params, body, mt), nil
}

func (m *mapper) parameters(n *sitter.Node, arity *int) (*tree.Container[java.J], error) {
	k := children(n)
	before, err := m.token(k.next(), "(")
	if err != nil {
		return nil, err
	}
	c := tree.NewContainer[java.J](before)
	if k.is(")") {
		rparen := k.next()
		empty := java.NewEmpty(m.prefix(rparen))
		m.pos = rparen.EndByte()
		c.Elements = append(c.Elements, java.Bare(empty))
		return c, nil
	}
	for p := k.next(); p != nil && p.Type() != ")"; p = k.next() {
		var elem java.J
		if p.Type() == "formal_parameter" {
			elem = attempt(m, p, m.parameter)
			*arity++
		} else {
			elem = m.unknown(p)
		}
		next := k.peek()
		if next == nil {
			return nil, errShape
		}
		after, err := m.token(k.next(), next.Type())
		if err != nil || (next.Type() != "," && next.Type() != ")") {
			return nil, errShape
		}
		c.Elements = append(c.Elements, java.Pad(elem, after))
		if next.Type() == ")" {
			break
		}
	}
	if !k.done() {
		return nil, errShape
	}
	return c, nil
}

func (m *mapper) parameter(n *sitter.Node) (*java.VariableDecls, error) {
	k := children(n)
	prefix := m.prefix(n)
	mods := m.modifiers(k)
	typeNode := k.next()
	if typeNode == nil {
		return nil, errShape
	}
	typ := m.types.resolve(typeNode, m.src)
	typeExpr := m.typeExpr(typeNode)
	nameNode := k.next()
	if nameNode == nil || nameNode.Type() != "identifier" || !k.done() {
		return nil, errShape
	}
	varPrefix := m.prefix(nameNode)
	v := java.NewNamedVariable(varPrefix, m.identifier(nameNode, typ), nil, typ)
	m.types.define(v.Name.Name, typ)
	return java.NewVariableDecls(prefix, mods, typeExpr,
		[]*tree.RightPadded[*java.NamedVariable]{java.Pad(v, tree.Space{})}), nil
}

// variableDecls maps a field or local variable declaration including its ';'.
func (m *mapper) variableDecls(n *sitter.Node) (padded, error) {
	k := children(n)
	prefix := m.prefix(n)
	mods := m.modifiers(k)
	typeNode := k.next()
	if typeNode == nil {
		return nil, errShape
	}
	typ := m.types.resolve(typeNode, m.src)
	typeExpr := m.typeExpr(typeNode)

	var vars []*tree.RightPadded[*java.NamedVariable]
	for k.is("variable_declarator") {
		v, err := m.declarator(k.next(), typ)
		if err != nil {
			return nil, err
		}
		var after tree.Space
		if k.is(",") {
			after, _ = m.token(k.next(), ",")
		}
		vars = append(vars, java.Pad(v, after))
	}
	if len(vars) == 0 {
		return nil, errShape
	}
	semi, err := m.token(k.next(), ";")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.Semi(java.NewVariableDecls(prefix, mods, typeExpr, vars), semi), nil
}

func (m *mapper) declarator(n *sitter.Node, typ jtype.Type) (*java.NamedVariable, error) {
	k := children(n)
	prefix := m.prefix(n)
	nameNode := k.next()
	if nameNode == nil || nameNode.Type() != "identifier" {
		return nil, errShape
	}
	name := m.identifier(nameNode, typ)

	var init *tree.LeftPadded[java.J]
	if k.is("=") {
		before, _ := m.token(k.next(), "=")
		value := k.next()
		if value == nil {
			return nil, errShape
		}
		init = tree.NewLeftPadded(before, m.expr(value))
	}
	if !k.done() {
		return nil, errShape
	}
	m.types.define(name.Name, typ)
	return java.NewNamedVariable(prefix, name, init, typ), nil
}

// typeExpr maps a type reference. Simple and primitive types become
// identifiers; anything richer is kept verbatim.
func (m *mapper) typeExpr(n *sitter.Node) java.J {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "type_identifier", "integral_type", "floating_point_type", "boolean_type", "void_type":
		return m.identifier(n, m.types.resolve(n, m.src))
	}
	return m.unknown(n)
}

// =============================================================================
// Statements
// =============================================================================

// block maps a brace-delimited list, mapping each element with stmt.
func (m *mapper) block(n *sitter.Node, stmt func(*sitter.Node) padded) (*java.Block, error) {
	k := children(n)
	prefix := m.prefix(n)
	if _, err := m.token(k.next(), "{"); err != nil {
		return nil, err
	}
	m.types.push()
	defer m.types.pop()

	var stmts []padded
	for c := k.peek(); c != nil && c.Type() != "}"; c = k.peek() {
		stmts = append(stmts, stmt(k.next()))
	}
	end, err := m.token(k.next(), "}")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.NewBlock(prefix, stmts, end), nil
}

func (m *mapper) statement(n *sitter.Node) padded {
	switch n.Type() {
	case "local_variable_declaration":
		return m.attemptStatement(n, m.variableDecls)
	case "expression_statement":
		return m.attemptStatement(n, m.expressionStatement)
	case "return_statement":
		return m.attemptStatement(n, m.returnStatement)
	case "if_statement":
		return java.Bare(attempt(m, n, m.ifStatement))
	case "block":
		return java.Bare(attempt(m, n, func(n *sitter.Node) (*java.Block, error) {
			return m.block(n, m.statement)
		}))
	case "class_declaration", "interface_declaration":
		return java.Bare(attempt(m, n, m.classDecl))
	}
	return java.Bare(m.unknown(n))
}

func (m *mapper) expressionStatement(n *sitter.Node) (padded, error) {
	k := children(n)
	e := m.expr(k.next())
	if _, ok := e.(*java.Unknown); ok || e == nil {
		return nil, errShape
	}
	semi, err := m.token(k.next(), ";")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.Semi(e, semi), nil
}

func (m *mapper) returnStatement(n *sitter.Node) (padded, error) {
	k := children(n)
	prefix := m.prefix(n)
	if _, err := m.token(k.next(), "return"); err != nil {
		return nil, err
	}
	var e java.J
	if !k.is(";") {
		e = m.expr(k.next())
	}
	semi, err := m.token(k.next(), ";")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.Semi(java.NewReturn(prefix, e), semi), nil
}

func (m *mapper) ifStatement(n *sitter.Node) (*java.If, error) {
	k := children(n)
	prefix := m.prefix(n)
	if _, err := m.token(k.next(), "if"); err != nil {
		return nil, err
	}
	condNode := k.next()
	if condNode == nil || condNode.Type() != "parenthesized_expression" {
		return nil, errShape
	}
	cond, err := m.parens(condNode)
	if err != nil {
		return nil, err
	}
	thenNode := k.next()
	if thenNode == nil {
		return nil, errShape
	}
	then := m.statement(thenNode)

	var els *java.Else
	if k.is("else") {
		before, _ := m.token(k.next(), "else")
		bodyNode := k.next()
		if bodyNode == nil {
			return nil, errShape
		}
		els = java.NewElse(before, m.statement(bodyNode))
	}
	if !k.done() {
		return nil, errShape
	}
	return java.NewIf(prefix, cond, then, els), nil
}

// =============================================================================
// Expressions
// =============================================================================

// expr maps an expression, keeping unsupported ones verbatim.
func (m *mapper) expr(n *sitter.Node) java.J {
	if n == nil {
		return nil
	}
	return attempt(m, n, m.strictExpr)
}

func (m *mapper) strictExpr(n *sitter.Node) (java.J, error) {
	switch {
	case n.Type() == "identifier":
		return m.identifier(n, m.types.lookup(m.text(n))), nil
	case n.Type() == "this":
		return m.identifier(n, classType(m.types.currentClass())), nil
	case isLiteral(n):
		p := m.prefix(n)
		m.pos = n.EndByte()
		return java.NewLiteral(p, m.text(n), literal(n, m.src)), nil
	case n.Type() == "field_access":
		return m.fieldAccess(n)
	case n.Type() == "method_invocation":
		return m.methodInvocation(n)
	case n.Type() == "assignment_expression":
		return m.assignment(n)
	case n.Type() == "binary_expression":
		return m.binary(n)
	case n.Type() == "parenthesized_expression":
		return m.parens(n)
	}
	return nil, errShape
}

func (m *mapper) fieldAccess(n *sitter.Node) (java.J, error) {
	k := children(n)
	prefix := m.prefix(n)
	target := m.expr(k.next())
	dot, err := m.token(k.next(), ".")
	if err != nil {
		return nil, err
	}
	fieldNode := k.next()
	if fieldNode == nil || fieldNode.Type() != "identifier" || !k.done() {
		return nil, errShape
	}
	var typ jtype.Type
	if c, ok := typeOf(target).(*jtype.Class); ok {
		if v, ok := c.Member(m.text(fieldNode)); ok {
			typ = v.Type
		}
	}
	name := m.identifier(fieldNode, typ)
	return java.NewFieldAccess(prefix, target, tree.NewLeftPadded(dot, name), typ), nil
}

func (m *mapper) methodInvocation(n *sitter.Node) (java.J, error) {
	k := children(n)
	prefix := m.prefix(n)

	var sel *tree.RightPadded[java.J]
	if len(k.nodes) == 4 {
		target := m.expr(k.next())
		dot, err := m.token(k.next(), ".")
		if err != nil {
			return nil, err
		}
		sel = java.Pad(target, dot)
	}
	nameNode := k.next()
	if nameNode == nil || nameNode.Type() != "identifier" {
		return nil, errShape
	}
	name := m.identifier(nameNode, nil)
	argsNode := k.next()
	if argsNode == nil || argsNode.Type() != "argument_list" || !k.done() {
		return nil, errShape
	}
	args, arity, err := m.arguments(argsNode)
	if err != nil {
		return nil, err
	}

	var target jtype.Type
	if sel != nil {
		target = typeOf(sel.Element)
		if target == nil {
			target = jtype.UnknownType
		}
	}
	mt := m.types.method(target, name.Name, arity)
	if mt != nil {
		name = name.WithType(mt)
	}
	return java.NewMethodInvocation(prefix, sel, name, args, mt), nil
}

func (m *mapper) arguments(n *sitter.Node) (*tree.Container[java.J], int, error) {
	k := children(n)
	before, err := m.token(k.next(), "(")
	if err != nil {
		return nil, 0, err
	}
	c := tree.NewContainer[java.J](before)
	if k.is(")") {
		rparen := k.next()
		empty := java.NewEmpty(m.prefix(rparen))
		m.pos = rparen.EndByte()
		c.Elements = append(c.Elements, java.Bare(empty))
		return c, 0, nil
	}
	for a := k.next(); a != nil; a = k.next() {
		elem := m.expr(a)
		next := k.next()
		if next == nil || (next.Type() != "," && next.Type() != ")") {
			return nil, 0, errShape
		}
		after, _ := m.token(next, next.Type())
		c.Elements = append(c.Elements, java.Pad(elem, after))
		if next.Type() == ")" {
			break
		}
	}
	if !k.done() {
		return nil, 0, errShape
	}
	return c, len(c.Elements), nil
}

func (m *mapper) assignment(n *sitter.Node) (java.J, error) {
	k := children(n)
	prefix := m.prefix(n)
	left := m.expr(k.next())
	opNode := k.next()
	if opNode == nil || opNode.IsNamed() {
		return nil, errShape
	}
	op := opNode.Type()
	before, _ := m.token(opNode, op)
	rightNode := k.next()
	if rightNode == nil || !k.done() {
		return nil, errShape
	}
	right := m.expr(rightNode)
	return java.NewAssignment(prefix, left, op, tree.NewLeftPadded(before, right)), nil
}

func (m *mapper) binary(n *sitter.Node) (java.J, error) {
	k := children(n)
	prefix := m.prefix(n)
	left := m.expr(k.next())
	opNode := k.next()
	if opNode == nil || opNode.IsNamed() {
		return nil, errShape
	}
	op := opNode.Type()
	before, _ := m.token(opNode, op)
	rightNode := k.next()
	if rightNode == nil || !k.done() {
		return nil, errShape
	}
	right := m.expr(rightNode)
	return java.NewBinary(prefix, left, tree.NewLeftPadded(before, op), right,
		binaryType(op, typeOf(left), typeOf(right))), nil
}

func (m *mapper) parens(n *sitter.Node) (*java.Parens, error) {
	k := children(n)
	prefix := m.prefix(n)
	if _, err := m.token(k.next(), "("); err != nil {
		return nil, err
	}
	innerNode := k.next()
	if innerNode == nil {
		return nil, errShape
	}
	inner := m.expr(innerNode)
	after, err := m.token(k.next(), ")")
	if err != nil || !k.done() {
		return nil, errShape
	}
	return java.NewParens(prefix, java.Pad(inner, after)), nil
}

// classType keeps a missing class from becoming a non-nil interface.
func classType(c *jtype.Class) jtype.Type {
	if c == nil {
		return nil
	}
	return c
}

// typeOf returns the attributed type of an expression, or nil.
func typeOf(n java.J) jtype.Type {
	switch n := n.(type) {
	case *java.Identifier:
		return n.Type
	case *java.Literal:
		return n.Type
	case *java.FieldAccess:
		return n.Type
	case *java.Binary:
		return n.Type
	case *java.MethodInvocation:
		if n.MethodType != nil {
			return n.MethodType.ReturnType
		}
	case *java.Parens:
		return typeOf(n.Inner.Element)
	}
	return nil
}
