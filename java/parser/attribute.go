package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lathe/java/jtype"
)

// javaLang lists the java.lang types resolved without an import.
var javaLang = map[string]bool{
	"Object": true, "Integer": true, "Long": true, "Short": true, "Byte": true,
	"Character": true, "Boolean": true, "Double": true, "Float": true, "Number": true,
	"Math": true, "System": true, "StringBuilder": true, "Thread": true, "Runnable": true,
	"Iterable": true, "Comparable": true, "Exception": true, "RuntimeException": true,
	"Error": true, "Throwable": true, "Enum": true, "Record": true, "Override": true,
	"Deprecated": true, "Class": true, "Void": true,
}

// attributor assigns types while a file is mapped. Class shapes are
// collected from the syntax tree before any body is mapped, so references to
// later members resolve.
type attributor struct {
	interner *jtype.Interner
	pkg      string
	imports  map[string]string
	declared map[string]*jtype.Class
	byStart  map[uint32]*jtype.Class
	classes  []*jtype.Class
	scopes   []map[string]jtype.Type
}

func newAttributor(in *jtype.Interner) *attributor {
	return &attributor{
		interner: in,
		imports:  map[string]string{},
		declared: map[string]*jtype.Class{},
		byStart:  map[uint32]*jtype.Class{},
	}
}

// declare reads the package, imports and class shapes of a program and
// interns the classes.
func (a *attributor) declare(root *sitter.Node, src []byte) {
	for _, c := range named(root) {
		switch c.Type() {
		case "package_declaration":
			if n := firstOf(c, "identifier", "scoped_identifier"); n != nil {
				a.pkg = compact(n.Content(src))
			}
		case "import_declaration":
			if hasChild(c, "static") || hasChild(c, "asterisk") {
				continue
			}
			if n := firstOf(c, "identifier", "scoped_identifier"); n != nil {
				fqn := compact(n.Content(src))
				a.imports[fqn[strings.LastIndexByte(fqn, '.')+1:]] = fqn
			}
		}
	}

	type shell struct {
		node   *sitter.Node
		simple string
		class  *jtype.Class
	}
	var shells []shell
	var collect func(n *sitter.Node, outer string)
	collect = func(n *sitter.Node, outer string) {
		for _, c := range named(n) {
			switch c.Type() {
			case "class_declaration", "interface_declaration":
				name := c.ChildByFieldName("name")
				if name == nil {
					continue
				}
				simple := name.Content(src)
				fqn := qualify(a.pkg, simple)
				if outer != "" {
					fqn = outer + "$" + simple
				}
				kind := jtype.KindClass
				if c.Type() == "interface_declaration" {
					kind = jtype.KindInterface
				}
				cls := &jtype.Class{
					FullyQualifiedName: fqn,
					Kind:               kind,
					Flags:              jtype.FlagsFromModifiers(modifierKeywords(c, src)...),
				}
				a.declared[simple] = cls
				shells = append(shells, shell{node: c, simple: simple, class: cls})
				if body := c.ChildByFieldName("body"); body != nil {
					collect(body, fqn)
				}
			case "class_body", "interface_body", "block", "method_declaration", "constructor_declaration":
				collect(c, outer)
			}
		}
	}
	collect(root, "")

	for _, s := range shells {
		a.fill(s.node, s.class, src)
	}
	for _, s := range shells {
		canonical := a.interner.InternClass(s.class)
		a.byStart[s.node.StartByte()] = canonical
		a.declared[s.simple] = canonical
	}
}

func (a *attributor) fill(n *sitter.Node, c *jtype.Class, src []byte) {
	if sc := n.ChildByFieldName("superclass"); sc != nil {
		if t := lastNamed(sc); t != nil {
			c.Supertype = a.resolve(t, src)
		}
	}
	if si := n.ChildByFieldName("interfaces"); si != nil {
		if list := firstOf(si, "type_list"); list != nil {
			for _, t := range named(list) {
				c.Interfaces = append(c.Interfaces, a.resolve(t, src))
			}
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, m := range named(body) {
		switch m.Type() {
		case "field_declaration", "constant_declaration":
			typ := a.resolve(m.ChildByFieldName("type"), src)
			flags := jtype.FlagsFromModifiers(modifierKeywords(m, src)...)
			for _, d := range named(m) {
				if d.Type() != "variable_declarator" {
					continue
				}
				if name := d.ChildByFieldName("name"); name != nil {
					c.Members = append(c.Members, &jtype.Variable{
						Name: name.Content(src), Owner: c.FullyQualifiedName, Type: typ, Flags: flags,
					})
				}
			}
		case "method_declaration":
			name := m.ChildByFieldName("name")
			if name == nil {
				continue
			}
			method := &jtype.Method{
				DeclaringType: c,
				Name:          name.Content(src),
				Flags:         jtype.FlagsFromModifiers(modifierKeywords(m, src)...),
				ReturnType:    a.resolve(m.ChildByFieldName("type"), src),
			}
			if params := m.ChildByFieldName("parameters"); params != nil {
				for _, p := range named(params) {
					if p.Type() != "formal_parameter" {
						continue
					}
					method.ParameterTypes = append(method.ParameterTypes, a.resolve(p.ChildByFieldName("type"), src))
					if pn := p.ChildByFieldName("name"); pn != nil {
						method.ParameterNames = append(method.ParameterNames, pn.Content(src))
					}
				}
			}
			c.Methods = append(c.Methods, method)
		}
	}
}

// resolve maps a type node to a type.
func (a *attributor) resolve(n *sitter.Node, src []byte) jtype.Type {
	if n == nil {
		return jtype.UnknownType
	}
	switch n.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		if p, ok := jtype.LookupPrimitive(n.Content(src)); ok {
			return p
		}
		return jtype.UnknownType
	case "type_identifier":
		return a.resolveName(n.Content(src))
	case "scoped_type_identifier":
		return a.interner.InternClass(jtype.ShallowClass(compact(n.Content(src))))
	case "generic_type":
		base, ok := a.resolve(n.NamedChild(0), src).(*jtype.Class)
		if !ok {
			return jtype.UnknownType
		}
		p := &jtype.Parameterized{Base: base}
		if args := firstOf(n, "type_arguments"); args != nil {
			for _, t := range named(args) {
				p.TypeParameters = append(p.TypeParameters, a.resolve(t, src))
			}
		}
		return p
	case "array_type":
		return &jtype.Array{Elem: a.resolve(n.ChildByFieldName("element"), src)}
	}
	return jtype.UnknownType
}

func (a *attributor) resolveName(name string) jtype.Type {
	if name == "String" {
		return jtype.String
	}
	if c, ok := a.declared[name]; ok {
		return c
	}
	fqn, ok := a.imports[name]
	switch {
	case ok:
	case javaLang[name]:
		fqn = "java.lang." + name
	default:
		fqn = qualify(a.pkg, name)
	}
	return a.interner.InternClass(jtype.ShallowClass(fqn))
}

// classAt returns the interned class declared by the node starting at off.
func (a *attributor) classAt(off uint32) *jtype.Class { return a.byStart[off] }

func (a *attributor) enterClass(c *jtype.Class) {
	a.classes = append(a.classes, c)
	a.scopes = append(a.scopes, nil)
}

func (a *attributor) leaveClass() {
	a.classes = a.classes[:len(a.classes)-1]
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *attributor) currentClass() *jtype.Class {
	if len(a.classes) == 0 {
		return nil
	}
	return a.classes[len(a.classes)-1]
}

func (a *attributor) push() { a.scopes = append(a.scopes, map[string]jtype.Type{}) }
func (a *attributor) pop()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *attributor) define(name string, t jtype.Type) {
	if len(a.scopes) == 0 || a.scopes[len(a.scopes)-1] == nil {
		return
	}
	a.scopes[len(a.scopes)-1][name] = t
}

// lookup finds the type of a local, a parameter or a field of an enclosing class.
func (a *attributor) lookup(name string) jtype.Type {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if t, ok := a.scopes[i][name]; ok {
			return t
		}
	}
	for i := len(a.classes) - 1; i >= 0; i-- {
		if c := a.classes[i]; c != nil {
			if v, ok := c.Member(name); ok {
				return v.Type
			}
		}
	}
	return nil
}

// method finds a method by name and arity on target, or on the enclosing
// classes when target is nil.
func (a *attributor) method(target jtype.Type, name string, arity int) *jtype.Method {
	var candidates []*jtype.Class
	switch t := target.(type) {
	case *jtype.Class:
		candidates = []*jtype.Class{t}
	case *jtype.Parameterized:
		candidates = []*jtype.Class{t.Base}
	case nil:
		for i := len(a.classes) - 1; i >= 0; i-- {
			candidates = append(candidates, a.classes[i])
		}
	}
	for _, c := range candidates {
		if c == nil {
			continue
		}
		for _, m := range c.MethodsNamed(name) {
			if len(m.ParameterTypes) == arity {
				return m
			}
		}
	}
	return nil
}

// literal types a literal node.
func literal(n *sitter.Node, src []byte) jtype.Primitive {
	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if s := n.Content(src); strings.HasSuffix(s, "l") || strings.HasSuffix(s, "L") {
			return jtype.Long
		}
		return jtype.Int
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if s := n.Content(src); strings.HasSuffix(s, "f") || strings.HasSuffix(s, "F") {
			return jtype.Float
		}
		return jtype.Double
	case "true", "false":
		return jtype.Boolean
	case "character_literal":
		return jtype.Char
	case "string_literal", "text_block":
		return jtype.String
	case "null_literal":
		return jtype.Null
	}
	return jtype.None
}

func isLiteral(n *sitter.Node) bool {
	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal",
		"decimal_floating_point_literal", "hex_floating_point_literal",
		"true", "false", "character_literal", "string_literal", "text_block", "null_literal":
		return true
	}
	return false
}

// binaryType is the result type of an infix operation.
func binaryType(op string, left, right jtype.Type) jtype.Type {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||", "instanceof":
		return jtype.Boolean
	}
	if left == jtype.String || right == jtype.String {
		return jtype.String
	}
	if p, ok := left.(jtype.Primitive); ok {
		return p
	}
	return right
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// compact drops whitespace and comments from a qualified name.
func compact(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, ".") {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strings.TrimSpace(stripComments(part)))
	}
	return b.String()
}

func stripComments(s string) string {
	for {
		i := strings.Index(s, "/*")
		if i < 0 {
			break
		}
		j := strings.Index(s[i:], "*/")
		if j < 0 {
			return s[:i]
		}
		s = s[:i] + s[i+j+2:]
	}
	if i := strings.Index(s, "//"); i >= 0 {
		if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
			return s[:i] + stripComments(s[i+nl:])
		}
		return s[:i]
	}
	return s
}

func modifierKeywords(n *sitter.Node, src []byte) []string {
	mods := firstOf(n, "modifiers")
	if mods == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(mods.ChildCount()); i++ {
		if c := mods.Child(i); !c.IsNamed() {
			out = append(out, c.Content(src))
		}
	}
	return out
}

func named(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); !isComment(c) {
			out = append(out, c)
		}
	}
	return out
}

func lastNamed(n *sitter.Node) *sitter.Node {
	ns := named(n)
	if len(ns) == 0 {
		return nil
	}
	return ns[len(ns)-1]
}

func firstOf(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func hasChild(n *sitter.Node, typ string) bool {
	return firstOf(n, typ) != nil
}

func isComment(n *sitter.Node) bool {
	return n.Type() == "line_comment" || n.Type() == "block_comment" || n.Type() == "comment"
}
