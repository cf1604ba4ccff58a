package rpc

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

// JavaCodecs returns a registry holding a codec for every Java kind, parse
// errors and text documents.
func JavaCodecs() *Registry {
	r := NewRegistry()
	for kind, c := range javaCodecs {
		r.MustRegister(kind.String(), c)
	}
	r.MustRegister(KindParseError, codecFuncs[*tree.ParseError]{
		enc: func(n *tree.ParseError, w *writer) {
			w.str("path", n.SourcePath())
			w.str("text", n.Text())
			w.markers("markers", n.Markers())
		},
		dec: func(r *reader) *tree.ParseError {
			return tree.RestoreParseError(r.id, r.str("path"), r.str("text"), r.markers("markers"))
		},
	})
	r.MustRegister(KindText, codecFuncs[*text.Document]{
		enc: func(n *text.Document, w *writer) {
			w.str("path", n.SourcePath())
			w.str("text", n.Text())
			w.markers("markers", n.Markers())
		},
		dec: func(r *reader) *text.Document {
			return text.Restore(r.id, r.str("path"), r.str("text"), r.markers("markers"))
		},
	})
	return r
}

func operatorElem(s string) any { return s }

func operatorFrom(r *reader) func(json.RawMessage) string {
	return func(raw json.RawMessage) string {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			r.fail(errors.Wrap(err, "operator"))
		}
		return s
	}
}

var javaCodecs = map[java.Kind]Codec{
	java.KindCompilationUnit: codecFuncs[*java.CompilationUnit]{
		enc: func(n *java.CompilationUnit, w *writer) {
			w.meta(n)
			w.str("path", n.Path)
			rights(w, "statements", n.Statements)
			w.space("eof", n.EOF)
		},
		dec: func(r *reader) *java.CompilationUnit {
			return &java.CompilationUnit{
				Meta:       r.meta(),
				Path:       r.str("path"),
				Statements: decRights[java.J](r, "statements"),
				EOF:        r.space("eof"),
			}
		},
	},
	java.KindPackage: codecFuncs[*java.Package]{
		enc: func(n *java.Package, w *writer) {
			w.meta(n)
			node(w, "name", n.Name)
		},
		dec: func(r *reader) *java.Package {
			return &java.Package{Meta: r.meta(), Name: decNode[java.J](r, "name")}
		},
	},
	java.KindImport: codecFuncs[*java.Import]{
		enc: func(n *java.Import, w *writer) {
			w.meta(n)
			node(w, "qualid", n.Qualid)
		},
		dec: func(r *reader) *java.Import {
			return &java.Import{Meta: r.meta(), Qualid: decNode[java.J](r, "qualid")}
		},
	},
	java.KindClassDecl: codecFuncs[*java.ClassDecl]{
		enc: func(n *java.ClassDecl, w *writer) {
			w.meta(n)
			nodes(w, "modifiers", n.Modifiers)
			node(w, "keyword", n.Keyword)
			node(w, "name", n.Name)
			container(w, "typeParameters", n.TypeParameters)
			left(w, "extends", n.Extends)
			container(w, "implements", n.Implements)
			node(w, "body", n.Body)
			w.typ("type", n.Type)
		},
		dec: func(r *reader) *java.ClassDecl {
			return &java.ClassDecl{
				Meta:           r.meta(),
				Modifiers:      decNodes[java.J](r, "modifiers"),
				Keyword:        decNode[*java.Keyword](r, "keyword"),
				Name:           decNode[*java.Identifier](r, "name"),
				TypeParameters: decContainer[java.J](r, "typeParameters"),
				Extends:        decLeft[java.J](r, "extends"),
				Implements:     decContainer[java.J](r, "implements"),
				Body:           decNode[*java.Block](r, "body"),
				Type:           r.class("type"),
			}
		},
	},
	java.KindMethodDecl: codecFuncs[*java.MethodDecl]{
		enc: func(n *java.MethodDecl, w *writer) {
			w.meta(n)
			nodes(w, "modifiers", n.Modifiers)
			node(w, "returnType", n.ReturnType)
			node(w, "name", n.Name)
			container(w, "params", n.Params)
			node(w, "body", n.Body)
			w.typ("methodType", n.MethodType)
		},
		dec: func(r *reader) *java.MethodDecl {
			return &java.MethodDecl{
				Meta:       r.meta(),
				Modifiers:  decNodes[java.J](r, "modifiers"),
				ReturnType: decNode[java.J](r, "returnType"),
				Name:       decNode[*java.Identifier](r, "name"),
				Params:     decContainer[java.J](r, "params"),
				Body:       decNode[*java.Block](r, "body"),
				MethodType: r.method("methodType"),
			}
		},
	},
	java.KindVariableDecls: codecFuncs[*java.VariableDecls]{
		enc: func(n *java.VariableDecls, w *writer) {
			w.meta(n)
			nodes(w, "modifiers", n.Modifiers)
			node(w, "typeExpr", n.TypeExpr)
			rights(w, "vars", n.Vars)
		},
		dec: func(r *reader) *java.VariableDecls {
			return &java.VariableDecls{
				Meta:      r.meta(),
				Modifiers: decNodes[java.J](r, "modifiers"),
				TypeExpr:  decNode[java.J](r, "typeExpr"),
				Vars:      decRights[*java.NamedVariable](r, "vars"),
			}
		},
	},
	java.KindNamedVariable: codecFuncs[*java.NamedVariable]{
		enc: func(n *java.NamedVariable, w *writer) {
			w.meta(n)
			node(w, "name", n.Name)
			left(w, "initializer", n.Initializer)
			w.typ("type", n.Type)
		},
		dec: func(r *reader) *java.NamedVariable {
			return &java.NamedVariable{
				Meta:        r.meta(),
				Name:        decNode[*java.Identifier](r, "name"),
				Initializer: decLeft[java.J](r, "initializer"),
				Type:        r.typ("type"),
			}
		},
	},
	java.KindBlock: codecFuncs[*java.Block]{
		enc: func(n *java.Block, w *writer) {
			w.meta(n)
			rights(w, "statements", n.Statements)
			w.space("end", n.End)
		},
		dec: func(r *reader) *java.Block {
			return &java.Block{Meta: r.meta(), Statements: decRights[java.J](r, "statements"), End: r.space("end")}
		},
	},
	java.KindIdentifier: codecFuncs[*java.Identifier]{
		enc: func(n *java.Identifier, w *writer) {
			w.meta(n)
			w.str("name", n.Name)
			w.typ("type", n.Type)
		},
		dec: func(r *reader) *java.Identifier {
			return &java.Identifier{Meta: r.meta(), Name: r.str("name"), Type: r.typ("type")}
		},
	},
	java.KindLiteral: codecFuncs[*java.Literal]{
		enc: func(n *java.Literal, w *writer) {
			w.meta(n)
			w.str("source", n.Source)
			w.put("type", uint8(n.Type))
		},
		dec: func(r *reader) *java.Literal {
			var p uint8
			r.get("type", &p)
			return &java.Literal{Meta: r.meta(), Source: r.str("source"), Type: jtype.Primitive(p)}
		},
	},
	java.KindFieldAccess: codecFuncs[*java.FieldAccess]{
		enc: func(n *java.FieldAccess, w *writer) {
			w.meta(n)
			node(w, "target", n.Target)
			left(w, "name", n.Name)
			w.typ("type", n.Type)
		},
		dec: func(r *reader) *java.FieldAccess {
			return &java.FieldAccess{
				Meta:   r.meta(),
				Target: decNode[java.J](r, "target"),
				Name:   decLeft[*java.Identifier](r, "name"),
				Type:   r.typ("type"),
			}
		},
	},
	java.KindMethodInvocation: codecFuncs[*java.MethodInvocation]{
		enc: func(n *java.MethodInvocation, w *writer) {
			w.meta(n)
			right(w, "select", n.Select)
			node(w, "name", n.Name)
			container(w, "args", n.Args)
			w.typ("methodType", n.MethodType)
		},
		dec: func(r *reader) *java.MethodInvocation {
			return &java.MethodInvocation{
				Meta:       r.meta(),
				Select:     decRight[java.J](r, "select"),
				Name:       decNode[*java.Identifier](r, "name"),
				Args:       decContainer[java.J](r, "args"),
				MethodType: r.method("methodType"),
			}
		},
	},
	java.KindAssignment: codecFuncs[*java.Assignment]{
		enc: func(n *java.Assignment, w *writer) {
			w.meta(n)
			node(w, "variable", n.Variable)
			w.str("operator", n.Operator)
			left(w, "value", n.Value)
		},
		dec: func(r *reader) *java.Assignment {
			return &java.Assignment{
				Meta:     r.meta(),
				Variable: decNode[java.J](r, "variable"),
				Operator: r.str("operator"),
				Value:    decLeft[java.J](r, "value"),
			}
		},
	},
	java.KindBinary: codecFuncs[*java.Binary]{
		enc: func(n *java.Binary, w *writer) {
			w.meta(n)
			node(w, "left", n.Left)
			w.put("operator", leftWire(w, n.Operator, operatorElem))
			node(w, "right", n.Right)
			w.typ("type", n.Type)
		},
		dec: func(r *reader) *java.Binary {
			var op *padWire
			r.get("operator", &op)
			return &java.Binary{
				Meta:     r.meta(),
				Left:     decNode[java.J](r, "left"),
				Operator: leftFrom(r, op, operatorFrom(r)),
				Right:    decNode[java.J](r, "right"),
				Type:     r.typ("type"),
			}
		},
	},
	java.KindReturn: codecFuncs[*java.Return]{
		enc: func(n *java.Return, w *writer) {
			w.meta(n)
			node(w, "expr", n.Expr)
		},
		dec: func(r *reader) *java.Return {
			return &java.Return{Meta: r.meta(), Expr: decNode[java.J](r, "expr")}
		},
	},
	java.KindIf: codecFuncs[*java.If]{
		enc: func(n *java.If, w *writer) {
			w.meta(n)
			node(w, "cond", n.Cond)
			right(w, "then", n.Then)
			node(w, "else", n.Else)
		},
		dec: func(r *reader) *java.If {
			return &java.If{
				Meta: r.meta(),
				Cond: decNode[*java.Parens](r, "cond"),
				Then: decRight[java.J](r, "then"),
				Else: decNode[*java.Else](r, "else"),
			}
		},
	},
	java.KindElse: codecFuncs[*java.Else]{
		enc: func(n *java.Else, w *writer) {
			w.meta(n)
			right(w, "body", n.Body)
		},
		dec: func(r *reader) *java.Else {
			return &java.Else{Meta: r.meta(), Body: decRight[java.J](r, "body")}
		},
	},
	java.KindParens: codecFuncs[*java.Parens]{
		enc: func(n *java.Parens, w *writer) {
			w.meta(n)
			right(w, "inner", n.Inner)
		},
		dec: func(r *reader) *java.Parens {
			return &java.Parens{Meta: r.meta(), Inner: decRight[java.J](r, "inner")}
		},
	},
	java.KindKeyword: codecFuncs[*java.Keyword]{
		enc: func(n *java.Keyword, w *writer) {
			w.meta(n)
			w.str("text", n.Text)
		},
		dec: func(r *reader) *java.Keyword {
			return &java.Keyword{Meta: r.meta(), Text: r.str("text")}
		},
	},
	java.KindEmpty: codecFuncs[*java.Empty]{
		enc: func(n *java.Empty, w *writer) { w.meta(n) },
		dec: func(r *reader) *java.Empty {
			return &java.Empty{Meta: r.meta()}
		},
	},
	java.KindUnknown: codecFuncs[*java.Unknown]{
		enc: func(n *java.Unknown, w *writer) {
			w.meta(n)
			w.str("source", n.Source)
		},
		dec: func(r *reader) *java.Unknown {
			return &java.Unknown{Meta: r.meta(), Source: r.str("source")}
		},
	},
}
