package java

import (
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/tree"
)

// CompilationUnit is the root of a parsed .java file.
type CompilationUnit struct {
	Meta
	// Path of the file relative to the project root.
	Path string
	// Package, imports and type declarations in source order.
	Statements []*tree.RightPadded[J]
	// Trailing formatting after the last statement.
	EOF tree.Space
}

func NewCompilationUnit(prefix tree.Space, path string, statements []*tree.RightPadded[J], eof tree.Space) *CompilationUnit {
	return &CompilationUnit{Meta: NewMeta(prefix), Path: path, Statements: statements, EOF: eof}
}

func (*CompilationUnit) Kind() Kind { return KindCompilationUnit }

func (n *CompilationUnit) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *CompilationUnit, v tree.Space) { c.prefix = v })
}

func (n *CompilationUnit) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *CompilationUnit, v tree.Markers) { c.markers = v })
}

func (n *CompilationUnit) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *CompilationUnit, v tree.ID) { c.id = v })
}

func (n *CompilationUnit) WithPath(v string) *CompilationUnit {
	return with(n, n.Path, v, func(c *CompilationUnit, x string) { c.Path = x })
}

func (n *CompilationUnit) WithStatements(v []*tree.RightPadded[J]) *CompilationUnit {
	return withSlice(n, n.Statements, v, func(c *CompilationUnit, x []*tree.RightPadded[J]) { c.Statements = x })
}

func (n *CompilationUnit) WithEOF(v tree.Space) *CompilationUnit {
	return withSpace(n, n.EOF, v, func(c *CompilationUnit, x tree.Space) { c.EOF = x })
}

// Package is a package declaration. Its prefix precedes the package keyword.
type Package struct {
	Meta
	Name J
}

func NewPackage(prefix tree.Space, name J) *Package {
	return &Package{Meta: NewMeta(prefix), Name: name}
}

func (*Package) Kind() Kind { return KindPackage }

func (n *Package) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Package, v tree.Space) { c.prefix = v })
}

func (n *Package) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Package, v tree.Markers) { c.markers = v })
}

func (n *Package) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Package, v tree.ID) { c.id = v })
}

func (n *Package) WithName(v J) *Package {
	return with(n, n.Name, v, func(c *Package, x J) { c.Name = x })
}

// Import is a single-type or on-demand import.
type Import struct {
	Meta
	Qualid J
}

func NewImport(prefix tree.Space, qualid J) *Import {
	return &Import{Meta: NewMeta(prefix), Qualid: qualid}
}

func (*Import) Kind() Kind { return KindImport }

func (n *Import) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Import, v tree.Space) { c.prefix = v })
}

func (n *Import) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Import, v tree.Markers) { c.markers = v })
}

func (n *Import) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Import, v tree.ID) { c.id = v })
}

func (n *Import) WithQualid(v J) *Import {
	return with(n, n.Qualid, v, func(c *Import, x J) { c.Qualid = x })
}

// ClassDecl declares a class, interface, enum or record.
type ClassDecl struct {
	Meta
	// Keyword or Unknown (annotations).
	Modifiers []J
	Keyword   *Keyword
	Name      *Identifier
	// The <T, U> list of a generic class, nil when absent. Each parameter is
	// an Identifier, or Unknown when it has bounds or annotations.
	TypeParameters *tree.Container[J]
	// Nil when absent.
	Extends *tree.LeftPadded[J]
	// Nil when absent.
	Implements *tree.Container[J]
	Body       *Block
	Type       *jtype.Class
}

func NewClassDecl(prefix tree.Space, modifiers []J, keyword *Keyword, name *Identifier, extends *tree.LeftPadded[J], implements *tree.Container[J], body *Block, typ *jtype.Class) *ClassDecl {
	return &ClassDecl{Meta: NewMeta(prefix), Modifiers: modifiers, Keyword: keyword, Name: name, Extends: extends, Implements: implements, Body: body, Type: typ}
}

func (*ClassDecl) Kind() Kind { return KindClassDecl }

func (n *ClassDecl) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *ClassDecl, v tree.Space) { c.prefix = v })
}

func (n *ClassDecl) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *ClassDecl, v tree.Markers) { c.markers = v })
}

func (n *ClassDecl) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *ClassDecl, v tree.ID) { c.id = v })
}

func (n *ClassDecl) WithModifiers(v []J) *ClassDecl {
	return withSlice(n, n.Modifiers, v, func(c *ClassDecl, x []J) { c.Modifiers = x })
}

func (n *ClassDecl) WithKeyword(v *Keyword) *ClassDecl {
	return with(n, n.Keyword, v, func(c *ClassDecl, x *Keyword) { c.Keyword = x })
}

func (n *ClassDecl) WithName(v *Identifier) *ClassDecl {
	return with(n, n.Name, v, func(c *ClassDecl, x *Identifier) { c.Name = x })
}

func (n *ClassDecl) WithTypeParameters(v *tree.Container[J]) *ClassDecl {
	return with(n, n.TypeParameters, v, func(c *ClassDecl, x *tree.Container[J]) { c.TypeParameters = x })
}

func (n *ClassDecl) WithExtends(v *tree.LeftPadded[J]) *ClassDecl {
	return with(n, n.Extends, v, func(c *ClassDecl, x *tree.LeftPadded[J]) { c.Extends = x })
}

func (n *ClassDecl) WithImplements(v *tree.Container[J]) *ClassDecl {
	return with(n, n.Implements, v, func(c *ClassDecl, x *tree.Container[J]) { c.Implements = x })
}

func (n *ClassDecl) WithBody(v *Block) *ClassDecl {
	return with(n, n.Body, v, func(c *ClassDecl, x *Block) { c.Body = x })
}

func (n *ClassDecl) WithType(v *jtype.Class) *ClassDecl {
	return with(n, n.Type, v, func(c *ClassDecl, x *jtype.Class) { c.Type = x })
}

// MethodDecl declares a method with a body.
type MethodDecl struct {
	Meta
	Modifiers  []J
	ReturnType J
	Name       *Identifier
	Params     *tree.Container[J]
	Body       *Block
	MethodType *jtype.Method
}

func NewMethodDecl(prefix tree.Space, modifiers []J, returnType J, name *Identifier, params *tree.Container[J], body *Block, mt *jtype.Method) *MethodDecl {
	return &MethodDecl{Meta: NewMeta(prefix), Modifiers: modifiers, ReturnType: returnType, Name: name, Params: params, Body: body, MethodType: mt}
}

func (*MethodDecl) Kind() Kind { return KindMethodDecl }

func (n *MethodDecl) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *MethodDecl, v tree.Space) { c.prefix = v })
}

func (n *MethodDecl) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *MethodDecl, v tree.Markers) { c.markers = v })
}

func (n *MethodDecl) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *MethodDecl, v tree.ID) { c.id = v })
}

func (n *MethodDecl) WithModifiers(v []J) *MethodDecl {
	return withSlice(n, n.Modifiers, v, func(c *MethodDecl, x []J) { c.Modifiers = x })
}

func (n *MethodDecl) WithReturnType(v J) *MethodDecl {
	return with(n, n.ReturnType, v, func(c *MethodDecl, x J) { c.ReturnType = x })
}

func (n *MethodDecl) WithName(v *Identifier) *MethodDecl {
	return with(n, n.Name, v, func(c *MethodDecl, x *Identifier) { c.Name = x })
}

func (n *MethodDecl) WithParams(v *tree.Container[J]) *MethodDecl {
	return with(n, n.Params, v, func(c *MethodDecl, x *tree.Container[J]) { c.Params = x })
}

func (n *MethodDecl) WithBody(v *Block) *MethodDecl {
	return with(n, n.Body, v, func(c *MethodDecl, x *Block) { c.Body = x })
}

func (n *MethodDecl) WithMethodType(v *jtype.Method) *MethodDecl {
	return with(n, n.MethodType, v, func(c *MethodDecl, x *jtype.Method) { c.MethodType = x })
}

// VariableDecls declares one or more fields, locals or a parameter sharing a type.
type VariableDecls struct {
	Meta
	Modifiers []J
	TypeExpr  J
	Vars      []*tree.RightPadded[*NamedVariable]
}

func NewVariableDecls(prefix tree.Space, modifiers []J, typeExpr J, vars []*tree.RightPadded[*NamedVariable]) *VariableDecls {
	return &VariableDecls{Meta: NewMeta(prefix), Modifiers: modifiers, TypeExpr: typeExpr, Vars: vars}
}

func (*VariableDecls) Kind() Kind { return KindVariableDecls }

func (n *VariableDecls) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *VariableDecls, v tree.Space) { c.prefix = v })
}

func (n *VariableDecls) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *VariableDecls, v tree.Markers) { c.markers = v })
}

func (n *VariableDecls) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *VariableDecls, v tree.ID) { c.id = v })
}

func (n *VariableDecls) WithModifiers(v []J) *VariableDecls {
	return withSlice(n, n.Modifiers, v, func(c *VariableDecls, x []J) { c.Modifiers = x })
}

func (n *VariableDecls) WithTypeExpr(v J) *VariableDecls {
	return with(n, n.TypeExpr, v, func(c *VariableDecls, x J) { c.TypeExpr = x })
}

func (n *VariableDecls) WithVars(v []*tree.RightPadded[*NamedVariable]) *VariableDecls {
	return withSlice(n, n.Vars, v, func(c *VariableDecls, x []*tree.RightPadded[*NamedVariable]) { c.Vars = x })
}

// NamedVariable is one declarator of a VariableDecls.
type NamedVariable struct {
	Meta
	Name *Identifier
	// Nil when absent; Before is the space before '='.
	Initializer *tree.LeftPadded[J]
	Type        jtype.Type
}

func NewNamedVariable(prefix tree.Space, name *Identifier, initializer *tree.LeftPadded[J], typ jtype.Type) *NamedVariable {
	return &NamedVariable{Meta: NewMeta(prefix), Name: name, Initializer: initializer, Type: typ}
}

func (*NamedVariable) Kind() Kind { return KindNamedVariable }

func (n *NamedVariable) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *NamedVariable, v tree.Space) { c.prefix = v })
}

func (n *NamedVariable) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *NamedVariable, v tree.Markers) { c.markers = v })
}

func (n *NamedVariable) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *NamedVariable, v tree.ID) { c.id = v })
}

func (n *NamedVariable) WithName(v *Identifier) *NamedVariable {
	return with(n, n.Name, v, func(c *NamedVariable, x *Identifier) { c.Name = x })
}

func (n *NamedVariable) WithInitializer(v *tree.LeftPadded[J]) *NamedVariable {
	return with(n, n.Initializer, v, func(c *NamedVariable, x *tree.LeftPadded[J]) { c.Initializer = x })
}

func (n *NamedVariable) WithType(v jtype.Type) *NamedVariable {
	return with(n, n.Type, v, func(c *NamedVariable, x jtype.Type) { c.Type = x })
}

// Block is a braced statement list; class bodies are blocks too.
type Block struct {
	Meta
	Statements []*tree.RightPadded[J]
	// Space before the closing brace.
	End tree.Space
}

func NewBlock(prefix tree.Space, statements []*tree.RightPadded[J], end tree.Space) *Block {
	return &Block{Meta: NewMeta(prefix), Statements: statements, End: end}
}

func (*Block) Kind() Kind { return KindBlock }

func (n *Block) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Block, v tree.Space) { c.prefix = v })
}

func (n *Block) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Block, v tree.Markers) { c.markers = v })
}

func (n *Block) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Block, v tree.ID) { c.id = v })
}

func (n *Block) WithStatements(v []*tree.RightPadded[J]) *Block {
	return withSlice(n, n.Statements, v, func(c *Block, x []*tree.RightPadded[J]) { c.Statements = x })
}

func (n *Block) WithEnd(v tree.Space) *Block {
	return withSpace(n, n.End, v, func(c *Block, x tree.Space) { c.End = x })
}

// Identifier is a simple name.
type Identifier struct {
	Meta
	Name string
	Type jtype.Type
}

func NewIdentifier(prefix tree.Space, name string, typ jtype.Type) *Identifier {
	return &Identifier{Meta: NewMeta(prefix), Name: name, Type: typ}
}

func (*Identifier) Kind() Kind { return KindIdentifier }

func (n *Identifier) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Identifier, v tree.Space) { c.prefix = v })
}

func (n *Identifier) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Identifier, v tree.Markers) { c.markers = v })
}

func (n *Identifier) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Identifier, v tree.ID) { c.id = v })
}

func (n *Identifier) WithName(v string) *Identifier {
	return with(n, n.Name, v, func(c *Identifier, x string) { c.Name = x })
}

func (n *Identifier) WithType(v jtype.Type) *Identifier {
	return with(n, n.Type, v, func(c *Identifier, x jtype.Type) { c.Type = x })
}

// Literal keeps its source text verbatim.
type Literal struct {
	Meta
	Source string
	Type   jtype.Primitive
}

func NewLiteral(prefix tree.Space, source string, typ jtype.Primitive) *Literal {
	return &Literal{Meta: NewMeta(prefix), Source: source, Type: typ}
}

func (*Literal) Kind() Kind { return KindLiteral }

func (n *Literal) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Literal, v tree.Space) { c.prefix = v })
}

func (n *Literal) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Literal, v tree.Markers) { c.markers = v })
}

func (n *Literal) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Literal, v tree.ID) { c.id = v })
}

func (n *Literal) WithSource(v string) *Literal {
	return with(n, n.Source, v, func(c *Literal, x string) { c.Source = x })
}

func (n *Literal) WithType(v jtype.Primitive) *Literal {
	return with(n, n.Type, v, func(c *Literal, x jtype.Primitive) { c.Type = x })
}

// FieldAccess is a qualified name or a field selection.
type FieldAccess struct {
	Meta
	Target J
	// Before is the space before the dot.
	Name *tree.LeftPadded[*Identifier]
	Type jtype.Type
}

func NewFieldAccess(prefix tree.Space, target J, name *tree.LeftPadded[*Identifier], typ jtype.Type) *FieldAccess {
	return &FieldAccess{Meta: NewMeta(prefix), Target: target, Name: name, Type: typ}
}

func (*FieldAccess) Kind() Kind { return KindFieldAccess }

func (n *FieldAccess) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *FieldAccess, v tree.Space) { c.prefix = v })
}

func (n *FieldAccess) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *FieldAccess, v tree.Markers) { c.markers = v })
}

func (n *FieldAccess) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *FieldAccess, v tree.ID) { c.id = v })
}

func (n *FieldAccess) WithTarget(v J) *FieldAccess {
	return with(n, n.Target, v, func(c *FieldAccess, x J) { c.Target = x })
}

func (n *FieldAccess) WithName(v *tree.LeftPadded[*Identifier]) *FieldAccess {
	return with(n, n.Name, v, func(c *FieldAccess, x *tree.LeftPadded[*Identifier]) { c.Name = x })
}

func (n *FieldAccess) WithType(v jtype.Type) *FieldAccess {
	return with(n, n.Type, v, func(c *FieldAccess, x jtype.Type) { c.Type = x })
}

// MethodInvocation is a call with an optional receiver.
type MethodInvocation struct {
	Meta
	// Nil for unqualified calls; After is the space before the dot.
	Select     *tree.RightPadded[J]
	Name       *Identifier
	Args       *tree.Container[J]
	MethodType *jtype.Method
}

func NewMethodInvocation(prefix tree.Space, sel *tree.RightPadded[J], name *Identifier, args *tree.Container[J], mt *jtype.Method) *MethodInvocation {
	return &MethodInvocation{Meta: NewMeta(prefix), Select: sel, Name: name, Args: args, MethodType: mt}
}

func (*MethodInvocation) Kind() Kind { return KindMethodInvocation }

func (n *MethodInvocation) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *MethodInvocation, v tree.Space) { c.prefix = v })
}

func (n *MethodInvocation) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *MethodInvocation, v tree.Markers) { c.markers = v })
}

func (n *MethodInvocation) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *MethodInvocation, v tree.ID) { c.id = v })
}

func (n *MethodInvocation) WithSelect(v *tree.RightPadded[J]) *MethodInvocation {
	return with(n, n.Select, v, func(c *MethodInvocation, x *tree.RightPadded[J]) { c.Select = x })
}

func (n *MethodInvocation) WithName(v *Identifier) *MethodInvocation {
	return with(n, n.Name, v, func(c *MethodInvocation, x *Identifier) { c.Name = x })
}

func (n *MethodInvocation) WithArgs(v *tree.Container[J]) *MethodInvocation {
	return with(n, n.Args, v, func(c *MethodInvocation, x *tree.Container[J]) { c.Args = x })
}

func (n *MethodInvocation) WithMethodType(v *jtype.Method) *MethodInvocation {
	return with(n, n.MethodType, v, func(c *MethodInvocation, x *jtype.Method) { c.MethodType = x })
}

// Assignment is a simple or compound assignment.
type Assignment struct {
	Meta
	Variable J
	Operator string
	// Before is the space before the operator.
	Value *tree.LeftPadded[J]
}

func NewAssignment(prefix tree.Space, variable J, operator string, value *tree.LeftPadded[J]) *Assignment {
	return &Assignment{Meta: NewMeta(prefix), Variable: variable, Operator: operator, Value: value}
}

func (*Assignment) Kind() Kind { return KindAssignment }

func (n *Assignment) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Assignment, v tree.Space) { c.prefix = v })
}

func (n *Assignment) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Assignment, v tree.Markers) { c.markers = v })
}

func (n *Assignment) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Assignment, v tree.ID) { c.id = v })
}

func (n *Assignment) WithVariable(v J) *Assignment {
	return with(n, n.Variable, v, func(c *Assignment, x J) { c.Variable = x })
}

func (n *Assignment) WithOperator(v string) *Assignment {
	return with(n, n.Operator, v, func(c *Assignment, x string) { c.Operator = x })
}

func (n *Assignment) WithValue(v *tree.LeftPadded[J]) *Assignment {
	return with(n, n.Value, v, func(c *Assignment, x *tree.LeftPadded[J]) { c.Value = x })
}

// Binary is an infix operation.
type Binary struct {
	Meta
	Left     J
	Operator *tree.LeftPadded[string]
	Right    J
	Type     jtype.Type
}

func NewBinary(prefix tree.Space, left J, operator *tree.LeftPadded[string], right J, typ jtype.Type) *Binary {
	return &Binary{Meta: NewMeta(prefix), Left: left, Operator: operator, Right: right, Type: typ}
}

func (*Binary) Kind() Kind { return KindBinary }

func (n *Binary) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Binary, v tree.Space) { c.prefix = v })
}

func (n *Binary) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Binary, v tree.Markers) { c.markers = v })
}

func (n *Binary) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Binary, v tree.ID) { c.id = v })
}

func (n *Binary) WithLeft(v J) *Binary {
	return with(n, n.Left, v, func(c *Binary, x J) { c.Left = x })
}

func (n *Binary) WithOperator(v *tree.LeftPadded[string]) *Binary {
	return with(n, n.Operator, v, func(c *Binary, x *tree.LeftPadded[string]) { c.Operator = x })
}

func (n *Binary) WithRight(v J) *Binary {
	return with(n, n.Right, v, func(c *Binary, x J) { c.Right = x })
}

func (n *Binary) WithType(v jtype.Type) *Binary {
	return with(n, n.Type, v, func(c *Binary, x jtype.Type) { c.Type = x })
}

// Return is a return statement.
type Return struct {
	Meta
	// Nil for a bare return.
	Expr J
}

func NewReturn(prefix tree.Space, expr J) *Return {
	return &Return{Meta: NewMeta(prefix), Expr: expr}
}

func (*Return) Kind() Kind { return KindReturn }

func (n *Return) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Return, v tree.Space) { c.prefix = v })
}

func (n *Return) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Return, v tree.Markers) { c.markers = v })
}

func (n *Return) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Return, v tree.ID) { c.id = v })
}

func (n *Return) WithExpr(v J) *Return {
	return with(n, n.Expr, v, func(c *Return, x J) { c.Expr = x })
}

// If is an if statement.
type If struct {
	Meta
	Cond *Parens
	Then *tree.RightPadded[J]
	// Nil when absent.
	Else *Else
}

func NewIf(prefix tree.Space, cond *Parens, then *tree.RightPadded[J], els *Else) *If {
	return &If{Meta: NewMeta(prefix), Cond: cond, Then: then, Else: els}
}

func (*If) Kind() Kind { return KindIf }

func (n *If) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *If, v tree.Space) { c.prefix = v })
}

func (n *If) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *If, v tree.Markers) { c.markers = v })
}

func (n *If) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *If, v tree.ID) { c.id = v })
}

func (n *If) WithCond(v *Parens) *If {
	return with(n, n.Cond, v, func(c *If, x *Parens) { c.Cond = x })
}

func (n *If) WithThen(v *tree.RightPadded[J]) *If {
	return with(n, n.Then, v, func(c *If, x *tree.RightPadded[J]) { c.Then = x })
}

func (n *If) WithElse(v *Else) *If {
	return with(n, n.Else, v, func(c *If, x *Else) { c.Else = x })
}

// Else is the else branch of an If. Its prefix precedes the else keyword.
type Else struct {
	Meta
	Body *tree.RightPadded[J]
}

func NewElse(prefix tree.Space, body *tree.RightPadded[J]) *Else {
	return &Else{Meta: NewMeta(prefix), Body: body}
}

func (*Else) Kind() Kind { return KindElse }

func (n *Else) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Else, v tree.Space) { c.prefix = v })
}

func (n *Else) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Else, v tree.Markers) { c.markers = v })
}

func (n *Else) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Else, v tree.ID) { c.id = v })
}

func (n *Else) WithBody(v *tree.RightPadded[J]) *Else {
	return with(n, n.Body, v, func(c *Else, x *tree.RightPadded[J]) { c.Body = x })
}

// Parens is a parenthesized expression.
type Parens struct {
	Meta
	Inner *tree.RightPadded[J]
}

func NewParens(prefix tree.Space, inner *tree.RightPadded[J]) *Parens {
	return &Parens{Meta: NewMeta(prefix), Inner: inner}
}

func (*Parens) Kind() Kind { return KindParens }

func (n *Parens) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Parens, v tree.Space) { c.prefix = v })
}

func (n *Parens) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Parens, v tree.Markers) { c.markers = v })
}

func (n *Parens) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Parens, v tree.ID) { c.id = v })
}

func (n *Parens) WithInner(v *tree.RightPadded[J]) *Parens {
	return with(n, n.Inner, v, func(c *Parens, x *tree.RightPadded[J]) { c.Inner = x })
}

// Keyword is a modifier or declaration keyword.
type Keyword struct {
	Meta
	Text string
}

func NewKeyword(prefix tree.Space, text string) *Keyword {
	return &Keyword{Meta: NewMeta(prefix), Text: text}
}

func (*Keyword) Kind() Kind { return KindKeyword }

func (n *Keyword) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Keyword, v tree.Space) { c.prefix = v })
}

func (n *Keyword) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Keyword, v tree.Markers) { c.markers = v })
}

func (n *Keyword) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Keyword, v tree.ID) { c.id = v })
}

func (n *Keyword) WithText(v string) *Keyword {
	return with(n, n.Text, v, func(c *Keyword, x string) { c.Text = x })
}

// Empty holds the formatting of an empty argument or parameter list.
type Empty struct {
	Meta
}

func NewEmpty(prefix tree.Space) *Empty {
	return &Empty{Meta: NewMeta(prefix)}
}

func (*Empty) Kind() Kind { return KindEmpty }

func (n *Empty) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Empty, v tree.Space) { c.prefix = v })
}

func (n *Empty) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Empty, v tree.Markers) { c.markers = v })
}

func (n *Empty) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Empty, v tree.ID) { c.id = v })
}

// Unknown holds a construct the dialect does not model, verbatim.
type Unknown struct {
	Meta
	Source string
}

func NewUnknown(prefix tree.Space, source string) *Unknown {
	return &Unknown{Meta: NewMeta(prefix), Source: source}
}

func (*Unknown) Kind() Kind { return KindUnknown }

func (n *Unknown) WithPrefix(s tree.Space) J {
	return withSpace(n, n.prefix, s, func(c *Unknown, v tree.Space) { c.prefix = v })
}

func (n *Unknown) WithMarkers(m tree.Markers) J {
	return withMarkers(n, n.markers, m, func(c *Unknown, v tree.Markers) { c.markers = v })
}

func (n *Unknown) WithID(id tree.ID) J {
	return with(n, n.id, id, func(c *Unknown, v tree.ID) { c.id = v })
}

func (n *Unknown) WithSource(v string) *Unknown {
	return with(n, n.Source, v, func(c *Unknown, x string) { c.Source = x })
}
