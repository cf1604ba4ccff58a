// Package parser turns Java source into lossless semantic trees.
//
// Parsing is done by tree-sitter. The concrete syntax tree is then mapped
// onto the java dialect, with every byte between tokens kept as formatting,
// so printing an unmodified result reproduces the input exactly. Constructs
// the dialect does not model are kept verbatim as java.Unknown nodes. A file
// tree-sitter cannot parse becomes a tree.ParseError.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	sitterjava "github.com/smacker/go-tree-sitter/java"
	"go.uber.org/zap"

	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/tree"
)

// Name identifies this parser in parse error markers.
const Name = "java"

// Parser parses Java files. It is safe for concurrent use; each call to
// Parse uses its own tree-sitter parser.
type Parser struct {
	interner *jtype.Interner
	logger   *zap.SugaredLogger
}

// Option configures a Parser.
type Option func(*Parser)

// WithInterner shares a type interner between parsers. Without it each
// Parser gets its own.
func WithInterner(in *jtype.Interner) Option {
	return func(p *Parser) {
		p.interner = in
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.interner == nil {
		p.interner = jtype.NewInterner()
	}
	if p.logger == nil {
		p.logger = zap.NewNop().Sugar()
	}
	return p
}

// Interner returns the interner types are canonicalised through.
func (p *Parser) Interner() *jtype.Interner { return p.interner }

// Accepts reports whether path looks like a Java source file.
func Accepts(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// Parse parses src. Syntax errors do not fail the call: the result is then
// a *tree.ParseError holding the text. The returned error is reserved for
// cancellation and tree-sitter failures.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (tree.SourceFile, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(sitterjava.GetLanguage())

	st, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parser: parse %s", path)
	}
	defer st.Close()

	root := st.RootNode()
	if root.HasError() {
		p.logger.Debugw("syntax error", "path", path)
		return tree.NewParseError(path, string(src), Name, syntaxError(root)), nil
	}

	m := newMapper(src, newAttributor(p.interner))
	return m.compilationUnit(path, root), nil
}

// syntaxError locates the first error or missing node under n.
func syntaxError(n *sitter.Node) error {
	var find func(*sitter.Node) *sitter.Node
	find = func(n *sitter.Node) *sitter.Node {
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil && c.HasError() {
				if bad := find(c); bad != nil {
					return bad
				}
			}
		}
		return nil
	}
	bad := find(n)
	if bad == nil {
		return errors.New("syntax error")
	}
	pt := bad.StartPoint()
	if bad.IsMissing() {
		return errors.Newf("missing %s at line %d, column %d", bad.Type(), pt.Row+1, pt.Column+1)
	}
	return errors.Newf("unexpected input at line %d, column %d", pt.Row+1, pt.Column+1)
}
