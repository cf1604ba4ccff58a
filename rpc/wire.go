package rpc

import (
	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/tree"
)

// Wire forms of the values records are made of. Field names are short
// because they repeat in every record.

type spaceWire struct {
	Whitespace string        `json:"ws,omitempty"`
	Comments   []commentWire `json:"c,omitempty"`
}

type commentWire struct {
	Multiline bool   `json:"ml,omitempty"`
	Text      string `json:"t"`
	Suffix    string `json:"sx,omitempty"`
}

func toSpaceWire(s tree.Space) spaceWire {
	w := spaceWire{Whitespace: s.Whitespace}
	for _, c := range s.Comments {
		w.Comments = append(w.Comments, commentWire{Multiline: c.Multiline, Text: c.Text, Suffix: c.Suffix})
	}
	return w
}

func (w spaceWire) space() tree.Space {
	s := tree.Space{Whitespace: w.Whitespace}
	for _, c := range w.Comments {
		s.Comments = append(s.Comments, tree.Comment{Multiline: c.Multiline, Text: c.Text, Suffix: c.Suffix})
	}
	return s
}

type markersWire struct {
	ID      tree.ID      `json:"id"`
	Entries []markerWire `json:"e,omitempty"`
}

type markerWire struct {
	Type          string  `json:"type"`
	ID            tree.ID `json:"id"`
	Description   string  `json:"description,omitempty"`
	Parser        string  `json:"parser,omitempty"`
	ExceptionType string  `json:"exception_type,omitempty"`
	Message       string  `json:"message,omitempty"`
	Level         string  `json:"level,omitempty"`
	Recipe        string  `json:"recipe,omitempty"`
}

// toMarkersWire returns nil for an empty set without identity.
func toMarkersWire(m tree.Markers) (*markersWire, error) {
	if m.ID() == tree.NilID && m.IsEmpty() {
		return nil, nil
	}
	w := &markersWire{ID: m.ID()}
	for _, mk := range m.Entries() {
		var e markerWire
		switch mk := mk.(type) {
		case tree.SearchResult:
			e = markerWire{Type: "search_result", ID: mk.ID, Description: mk.Description}
		case tree.ParseExceptionResult:
			e = markerWire{Type: "parse_exception", ID: mk.ID, Parser: mk.Parser, ExceptionType: mk.ExceptionType, Message: mk.Message}
		case tree.Markup:
			e = markerWire{Type: "markup", ID: mk.ID, Level: string(mk.Level), Message: mk.Message}
		case tree.Semicolon:
			e = markerWire{Type: "semicolon", ID: mk.ID}
		case tree.Generated:
			e = markerWire{Type: "generated", ID: mk.ID, Recipe: mk.Recipe}
		default:
			return nil, errors.Newf("rpc: no wire form for marker %T", mk)
		}
		w.Entries = append(w.Entries, e)
	}
	return w, nil
}

func (w *markersWire) markers() (tree.Markers, error) {
	if w == nil {
		return tree.Markers{}, nil
	}
	var entries []tree.Marker
	for _, e := range w.Entries {
		switch e.Type {
		case "search_result":
			entries = append(entries, tree.SearchResult{ID: e.ID, Description: e.Description})
		case "parse_exception":
			entries = append(entries, tree.ParseExceptionResult{ID: e.ID, Parser: e.Parser, ExceptionType: e.ExceptionType, Message: e.Message})
		case "markup":
			entries = append(entries, tree.Markup{ID: e.ID, Level: tree.MarkupLevel(e.Level), Message: e.Message})
		case "semicolon":
			entries = append(entries, tree.Semicolon{ID: e.ID})
		case "generated":
			entries = append(entries, tree.Generated{ID: e.ID, Recipe: e.Recipe})
		default:
			return tree.Markers{}, errors.Newf("unknown marker type %q", e.Type)
		}
	}
	return tree.MarkersWithID(w.ID, entries...), nil
}

// typeWire is a type descriptor. T selects the variant; the other fields
// are used as the variant needs them.
type typeWire struct {
	T          string      `json:"t"`
	Name       string      `json:"n,omitempty"`
	Kind       uint8       `json:"k,omitempty"`
	Flags      jtype.Flags `json:"f,omitempty"`
	Super      *typeWire   `json:"s,omitempty"`
	Interfaces []*typeWire `json:"i,omitempty"`
	Params     []*typeWire `json:"tp,omitempty"`
	Members    []*typeWire `json:"m,omitempty"`
	Methods    []*typeWire `json:"ms,omitempty"`
	Declaring  *typeWire   `json:"d,omitempty"`
	Return     *typeWire   `json:"r,omitempty"`
	Types      []*typeWire `json:"ts,omitempty"`
	Names      []string    `json:"pn,omitempty"`
	Thrown     []*typeWire `json:"x,omitempty"`
	Owner      string      `json:"o,omitempty"`
	Elem       *typeWire   `json:"e,omitempty"`
}

const (
	typePrimitive     = "prim"
	typeClass         = "class"
	typeParameterized = "param"
	typeArray         = "array"
	typeVariable      = "gtv"
	typeMultiCatch    = "multi"
	typeMethod        = "method"
	typeVar           = "var"
	typeUnknown       = "unknown"
	typeCyclic        = "cyclic"
)

// typeEncoder writes a type graph as a tree. A class met again while it is
// being written becomes a cyclic reference to it, so the output depends only
// on the type and not on what was written before.
type typeEncoder struct {
	visiting map[*jtype.Class]bool
}

func encodeType(t jtype.Type) *typeWire {
	e := &typeEncoder{visiting: map[*jtype.Class]bool{}}
	return e.encode(t)
}

func (e *typeEncoder) encode(t jtype.Type) *typeWire {
	switch t := t.(type) {
	case nil:
		return nil
	case jtype.Primitive:
		return &typeWire{T: typePrimitive, Kind: uint8(t)}
	case *jtype.Class:
		if t == nil {
			return nil
		}
		return e.class(t)
	case *jtype.Parameterized:
		if t == nil {
			return nil
		}
		return &typeWire{T: typeParameterized, Elem: e.encode(t.Base), Types: e.list(t.TypeParameters)}
	case *jtype.Array:
		if t == nil {
			return nil
		}
		return &typeWire{T: typeArray, Elem: e.encode(t.Elem)}
	case *jtype.GenericTypeVariable:
		if t == nil {
			return nil
		}
		return &typeWire{T: typeVariable, Name: t.Name, Kind: uint8(t.Variance), Types: e.list(t.Bounds)}
	case *jtype.MultiCatch:
		if t == nil {
			return nil
		}
		return &typeWire{T: typeMultiCatch, Types: e.list(t.Alternatives)}
	case *jtype.Method:
		if t == nil {
			return nil
		}
		return e.method(t)
	case *jtype.Variable:
		if t == nil {
			return nil
		}
		return &typeWire{T: typeVar, Name: t.Name, Owner: t.Owner, Flags: t.Flags, Elem: e.encode(t.Type)}
	case *jtype.Unknown:
		return &typeWire{T: typeUnknown}
	case *jtype.Cyclic:
		if t == nil {
			return nil
		}
		return &typeWire{T: typeCyclic, Name: t.FullyQualifiedName}
	}
	panic(errors.AssertionFailedf("rpc: no wire form for type %T", t))
}

func (e *typeEncoder) class(c *jtype.Class) *typeWire {
	if e.visiting[c] {
		return &typeWire{T: typeCyclic, Name: c.FullyQualifiedName}
	}
	e.visiting[c] = true
	defer delete(e.visiting, c)

	w := &typeWire{
		T:          typeClass,
		Name:       c.FullyQualifiedName,
		Kind:       uint8(c.Kind),
		Flags:      c.Flags,
		Super:      e.encode(c.Supertype),
		Interfaces: e.list(c.Interfaces),
		Params:     e.list(c.TypeParameters),
	}
	for _, m := range c.Members {
		w.Members = append(w.Members, e.encode(m))
	}
	for _, m := range c.Methods {
		w.Methods = append(w.Methods, e.method(m))
	}
	return w
}

func (e *typeEncoder) method(m *jtype.Method) *typeWire {
	return &typeWire{
		T:         typeMethod,
		Name:      m.Name,
		Flags:     m.Flags,
		Declaring: e.encode(m.DeclaringType),
		Return:    e.encode(m.ReturnType),
		Types:     e.list(m.ParameterTypes),
		Names:     m.ParameterNames,
		Thrown:    e.list(m.ThrownExceptions),
	}
}

func (e *typeEncoder) list(ts []jtype.Type) []*typeWire {
	if len(ts) == 0 {
		return nil
	}
	out := make([]*typeWire, len(ts))
	for i, t := range ts {
		out[i] = e.encode(t)
	}
	return out
}

// typeDecoder rebuilds a type graph. Cyclic references to a class that is
// being decoded link back to it; others stay Cyclic placeholders.
type typeDecoder struct {
	open map[string]*jtype.Class
}

func decodeType(w *typeWire) (jtype.Type, error) {
	d := &typeDecoder{open: map[string]*jtype.Class{}}
	return d.decode(w)
}

func (d *typeDecoder) decode(w *typeWire) (jtype.Type, error) {
	if w == nil {
		return nil, nil
	}
	switch w.T {
	case typePrimitive:
		return jtype.Primitive(w.Kind), nil
	case typeClass:
		return d.class(w)
	case typeParameterized:
		base, err := d.decode(w.Elem)
		if err != nil {
			return nil, err
		}
		var c *jtype.Class
		switch base := base.(type) {
		case nil:
		case *jtype.Class:
			c = base
		case *jtype.Cyclic:
			c = jtype.ShallowClass(base.FullyQualifiedName)
		default:
			return nil, errors.Newf("parameterized base is %T", base)
		}
		params, err := d.list(w.Types)
		if err != nil {
			return nil, err
		}
		return &jtype.Parameterized{Base: c, TypeParameters: params}, nil
	case typeArray:
		elem, err := d.decode(w.Elem)
		if err != nil {
			return nil, err
		}
		return &jtype.Array{Elem: elem}, nil
	case typeVariable:
		bounds, err := d.list(w.Types)
		if err != nil {
			return nil, err
		}
		return &jtype.GenericTypeVariable{Name: w.Name, Variance: jtype.Variance(w.Kind), Bounds: bounds}, nil
	case typeMultiCatch:
		alts, err := d.list(w.Types)
		if err != nil {
			return nil, err
		}
		return &jtype.MultiCatch{Alternatives: alts}, nil
	case typeMethod:
		return d.method(w)
	case typeVar:
		return d.variable(w)
	case typeUnknown:
		return jtype.UnknownType, nil
	case typeCyclic:
		if c, ok := d.open[w.Name]; ok {
			return c, nil
		}
		return &jtype.Cyclic{FullyQualifiedName: w.Name}, nil
	}
	return nil, errors.Newf("unknown type variant %q", w.T)
}

func (d *typeDecoder) class(w *typeWire) (*jtype.Class, error) {
	c := &jtype.Class{FullyQualifiedName: w.Name, Kind: jtype.ClassKind(w.Kind), Flags: w.Flags}
	prev, had := d.open[w.Name]
	d.open[w.Name] = c
	defer func() {
		if had {
			d.open[w.Name] = prev
		} else {
			delete(d.open, w.Name)
		}
	}()

	var err error
	if c.Supertype, err = d.decode(w.Super); err != nil {
		return nil, err
	}
	if c.Interfaces, err = d.list(w.Interfaces); err != nil {
		return nil, err
	}
	if c.TypeParameters, err = d.list(w.Params); err != nil {
		return nil, err
	}
	for _, mw := range w.Members {
		v, err := d.variable(mw)
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, v)
	}
	for _, mw := range w.Methods {
		m, err := d.method(mw)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, m)
	}
	return c, nil
}

func (d *typeDecoder) method(w *typeWire) (*jtype.Method, error) {
	if w == nil || w.T != typeMethod {
		return nil, errors.New("expected a method type")
	}
	m := &jtype.Method{Name: w.Name, Flags: w.Flags, ParameterNames: w.Names}
	decl, err := d.decode(w.Declaring)
	if err != nil {
		return nil, err
	}
	switch decl := decl.(type) {
	case *jtype.Class:
		m.DeclaringType = decl
	case *jtype.Cyclic:
		m.DeclaringType = jtype.ShallowClass(decl.FullyQualifiedName)
	}
	if m.ReturnType, err = d.decode(w.Return); err != nil {
		return nil, err
	}
	if m.ParameterTypes, err = d.list(w.Types); err != nil {
		return nil, err
	}
	if m.ThrownExceptions, err = d.list(w.Thrown); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *typeDecoder) variable(w *typeWire) (*jtype.Variable, error) {
	if w == nil || w.T != typeVar {
		return nil, errors.New("expected a variable type")
	}
	t, err := d.decode(w.Elem)
	if err != nil {
		return nil, err
	}
	return &jtype.Variable{Name: w.Name, Owner: w.Owner, Type: t, Flags: w.Flags}, nil
}

func (d *typeDecoder) list(ws []*typeWire) ([]jtype.Type, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]jtype.Type, len(ws))
	for i, w := range ws {
		t, err := d.decode(w)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
