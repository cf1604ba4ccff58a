package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/xxh3"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

// Fields is a node record: field name to encoded value.
type Fields map[string]json.RawMessage

func (f Fields) clone() Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// checksum hashes a record independent of map order.
func checksum(f Fields) uint64 {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxh3.New()
	for _, k := range keys {
		_, _ = io.WriteString(h, k)
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(f[k])
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Codec converts nodes of one kind to and from records.
type Codec interface {
	Encode(t tree.Tree, e *Encoder) (Fields, error)
	Decode(id tree.ID, f Fields, d *Decoder) (tree.Tree, error)
}

// Encoder collects the child nodes a record refers to, in field order.
type Encoder struct {
	children []tree.Tree
}

// Ref records t as a child and returns the ID to write in its place.
func (e *Encoder) Ref(t tree.Tree) tree.ID {
	e.children = append(e.children, t)
	return t.ID()
}

// Decoder resolves child IDs while a record is decoded.
type Decoder struct {
	interner *jtype.Interner
	resolve  func(tree.ID) (tree.Tree, error)
	children []tree.ID
}

// Resolve returns the decoded node for a child ID.
func (d *Decoder) Resolve(id tree.ID) (tree.Tree, error) {
	d.children = append(d.children, id)
	return d.resolve(id)
}

// Intern canonicalises a decoded type through the receiver's interner.
func (d *Decoder) Intern(t jtype.Type) jtype.Type {
	if d.interner == nil || t == nil {
		return t
	}
	return d.interner.Intern(t)
}

// Registry maps kind tags to codecs.
type Registry struct {
	codecs map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

func (r *Registry) Register(kind string, c Codec) error {
	if kind == "" {
		return errors.New("rpc: codec kind is empty")
	}
	if _, dup := r.codecs[kind]; dup {
		return errors.Newf("rpc: codec for %s already registered", kind)
	}
	r.codecs[kind] = c
	return nil
}

func (r *Registry) MustRegister(kind string, c Codec) {
	if err := r.Register(kind, c); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(kind string) (Codec, bool) {
	c, ok := r.codecs[kind]
	return c, ok
}

// Kinds lists the registered kind tags in order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Kind tags of the non-Java source files.
const (
	KindParseError = "ParseError"
	KindText       = "Text"
)

// KindOf returns the kind tag a node is registered under.
func KindOf(t tree.Tree) (string, error) {
	switch t := t.(type) {
	case java.J:
		return t.Kind().String(), nil
	case *tree.ParseError:
		return KindParseError, nil
	case *text.Document:
		return KindText, nil
	}
	return "", errors.Newf("rpc: no kind tag for %T", t)
}

func (r *Registry) encode(t tree.Tree) (string, Fields, []tree.Tree, error) {
	kind, err := KindOf(t)
	if err != nil {
		return "", nil, nil, err
	}
	c, ok := r.codecs[kind]
	if !ok {
		return "", nil, nil, errors.Newf("rpc: no codec for %s", kind)
	}
	e := &Encoder{}
	f, err := c.Encode(t, e)
	if err != nil {
		return "", nil, nil, errors.Wrapf(err, "rpc: encode %s %s", kind, t.ID())
	}
	return kind, f, e.children, nil
}

// codecFuncs adapts a typed encode/decode pair to Codec.
type codecFuncs[T tree.Tree] struct {
	enc func(T, *writer)
	dec func(*reader) T
}

func (c codecFuncs[T]) Encode(t tree.Tree, e *Encoder) (Fields, error) {
	n, ok := t.(T)
	if !ok {
		var want T
		panic(errors.AssertionFailedf("rpc: codec for %T given %T", want, t))
	}
	w := &writer{fields: Fields{}, enc: e}
	c.enc(n, w)
	if w.err != nil {
		return nil, w.err
	}
	return w.fields, nil
}

func (c codecFuncs[T]) Decode(id tree.ID, f Fields, d *Decoder) (tree.Tree, error) {
	r := &reader{id: id, fields: f, dec: d}
	n := c.dec(r)
	if r.err != nil {
		return nil, r.err
	}
	return n, nil
}

func isZero[T any](v T) bool {
	x := any(v)
	if x == nil {
		return true
	}
	rv := reflect.ValueOf(x)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// writer builds one record. The first failure sticks.
type writer struct {
	fields Fields
	enc    *Encoder
	err    error
}

func (w *writer) put(name string, v any) {
	if w.err != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		w.err = errors.Wrapf(err, "field %s", name)
		return
	}
	w.fields[name] = raw
}

func (w *writer) str(name, s string) { w.put(name, s) }

func (w *writer) space(name string, s tree.Space) { w.put(name, toSpaceWire(s)) }

func (w *writer) markers(name string, m tree.Markers) {
	mw, err := toMarkersWire(m)
	if err != nil {
		if w.err == nil {
			w.err = errors.Wrapf(err, "field %s", name)
		}
		return
	}
	w.put(name, mw)
}

func (w *writer) meta(n java.J) {
	w.space("prefix", n.Prefix())
	w.markers("markers", n.Markers())
}

func (w *writer) typ(name string, t jtype.Type) { w.put(name, encodeType(t)) }

// ref returns the wire value for an optional child.
func ref[T tree.Tree](w *writer, n T) any {
	if isZero(n) {
		return nil
	}
	return w.enc.Ref(n)
}

func node[T tree.Tree](w *writer, name string, n T) { w.put(name, ref(w, n)) }

func nodes[T tree.Tree](w *writer, name string, ns []T) {
	if ns == nil {
		w.put(name, nil)
		return
	}
	ids := make([]any, len(ns))
	for i, n := range ns {
		ids[i] = ref(w, n)
	}
	w.put(name, ids)
}

// padWire is the inline form of a padding wrapper.
type padWire struct {
	Before  *spaceWire      `json:"b,omitempty"`
	Elem    json.RawMessage `json:"e"`
	After   *spaceWire      `json:"a,omitempty"`
	Markers *markersWire    `json:"m,omitempty"`
}

func optSpace(s tree.Space) *spaceWire {
	if s.IsEmpty() {
		return nil
	}
	sw := toSpaceWire(s)
	return &sw
}

func (w *writer) elem(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil && w.err == nil {
		w.err = err
	}
	return raw
}

func (w *writer) padMarkers(m tree.Markers) *markersWire {
	mw, err := toMarkersWire(m)
	if err != nil && w.err == nil {
		w.err = err
	}
	return mw
}

func rightWire[T any](w *writer, p *tree.RightPadded[T], elem func(T) any) *padWire {
	if p == nil {
		return nil
	}
	return &padWire{Elem: w.elem(elem(p.Element)), After: optSpace(p.After), Markers: w.padMarkers(p.Markers)}
}

func leftWire[T any](w *writer, p *tree.LeftPadded[T], elem func(T) any) *padWire {
	if p == nil {
		return nil
	}
	return &padWire{Before: optSpace(p.Before), Elem: w.elem(elem(p.Element)), Markers: w.padMarkers(p.Markers)}
}

func nodeElem[T tree.Tree](w *writer) func(T) any {
	return func(n T) any { return ref(w, n) }
}

func right[T tree.Tree](w *writer, name string, p *tree.RightPadded[T]) {
	w.put(name, rightWire(w, p, nodeElem[T](w)))
}

func left[T tree.Tree](w *writer, name string, p *tree.LeftPadded[T]) {
	w.put(name, leftWire(w, p, nodeElem[T](w)))
}

func rights[T tree.Tree](w *writer, name string, ps []*tree.RightPadded[T]) {
	if ps == nil {
		w.put(name, nil)
		return
	}
	out := make([]*padWire, len(ps))
	for i, p := range ps {
		out[i] = rightWire(w, p, nodeElem[T](w))
	}
	w.put(name, out)
}

// container writes the elements under name, so they splice as a list, and
// the surrounding space and markers under their own fields.
func container[T tree.Tree](w *writer, name string, c *tree.Container[T]) {
	if c == nil {
		w.put(name, nil)
		w.put(name+".before", nil)
		w.put(name+".markers", nil)
		return
	}
	rights(w, name, c.Elements)
	w.put(name+".before", toSpaceWire(c.Before))
	w.markers(name+".markers", c.Markers)
}

// reader decodes one record. The first failure sticks.
type reader struct {
	id     tree.ID
	fields Fields
	dec    *Decoder
	err    error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) raw(name string) (json.RawMessage, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.fields[name]
	if !ok {
		r.fail(errors.Newf("missing field %s", name))
		return nil, false
	}
	return v, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (r *reader) get(name string, v any) bool {
	raw, ok := r.raw(name)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		r.fail(errors.Wrapf(err, "field %s", name))
		return false
	}
	return true
}

func (r *reader) str(name string) string {
	var s string
	r.get(name, &s)
	return s
}

func (r *reader) space(name string) tree.Space {
	var sw spaceWire
	r.get(name, &sw)
	return sw.space()
}

func (r *reader) markers(name string) tree.Markers {
	var mw *markersWire
	if !r.get(name, &mw) {
		return tree.Markers{}
	}
	return r.toMarkers(mw)
}

func (r *reader) toMarkers(mw *markersWire) tree.Markers {
	m, err := mw.markers()
	if err != nil {
		r.fail(err)
	}
	return m
}

func (r *reader) meta() java.Meta {
	return java.RestoreMeta(r.id, r.space("prefix"), r.markers("markers"))
}

func (r *reader) typ(name string) jtype.Type {
	var tw *typeWire
	if !r.get(name, &tw) {
		return nil
	}
	t, err := decodeType(tw)
	if err != nil {
		r.fail(errors.Wrapf(err, "field %s", name))
		return nil
	}
	return r.dec.Intern(t)
}

func (r *reader) class(name string) *jtype.Class {
	t := r.typ(name)
	if t == nil {
		return nil
	}
	c, ok := t.(*jtype.Class)
	if !ok {
		r.fail(errors.Newf("field %s: want a class type, got %T", name, t))
	}
	return c
}

func (r *reader) method(name string) *jtype.Method {
	t := r.typ(name)
	if t == nil {
		return nil
	}
	m, ok := t.(*jtype.Method)
	if !ok {
		r.fail(errors.Newf("field %s: want a method type, got %T", name, t))
	}
	return m
}

// resolve decodes a child reference.
func resolve[T tree.Tree](r *reader, raw json.RawMessage) T {
	var zero T
	if r.err != nil || isNull(raw) {
		return zero
	}
	var id tree.ID
	if err := json.Unmarshal(raw, &id); err != nil {
		r.fail(errors.Wrap(err, "child reference"))
		return zero
	}
	t, err := r.dec.Resolve(id)
	if err != nil {
		r.fail(err)
		return zero
	}
	n, ok := t.(T)
	if !ok {
		r.fail(errors.Newf("child %s is %T, want %T", id, t, zero))
		return zero
	}
	return n
}

func decNode[T tree.Tree](r *reader, name string) T {
	raw, ok := r.raw(name)
	if !ok {
		var zero T
		return zero
	}
	return resolve[T](r, raw)
}

func decNodes[T tree.Tree](r *reader, name string) []T {
	var raws []json.RawMessage
	if !r.get(name, &raws) || raws == nil {
		return nil
	}
	out := make([]T, len(raws))
	for i, raw := range raws {
		out[i] = resolve[T](r, raw)
	}
	return out
}

func nodeFrom[T tree.Tree](r *reader) func(json.RawMessage) T {
	return func(raw json.RawMessage) T { return resolve[T](r, raw) }
}

func padFrom[T any](r *reader, pw *padWire, elem func(json.RawMessage) T) (T, tree.Space, tree.Space, tree.Markers) {
	var before, after tree.Space
	if pw.Before != nil {
		before = pw.Before.space()
	}
	if pw.After != nil {
		after = pw.After.space()
	}
	return elem(pw.Elem), before, after, r.toMarkers(pw.Markers)
}

func rightFrom[T any](r *reader, pw *padWire, elem func(json.RawMessage) T) *tree.RightPadded[T] {
	if pw == nil {
		return nil
	}
	e, _, after, m := padFrom(r, pw, elem)
	return &tree.RightPadded[T]{Element: e, After: after, Markers: m}
}

func leftFrom[T any](r *reader, pw *padWire, elem func(json.RawMessage) T) *tree.LeftPadded[T] {
	if pw == nil {
		return nil
	}
	e, before, _, m := padFrom(r, pw, elem)
	return &tree.LeftPadded[T]{Before: before, Element: e, Markers: m}
}

func decRight[T tree.Tree](r *reader, name string) *tree.RightPadded[T] {
	var pw *padWire
	if !r.get(name, &pw) {
		return nil
	}
	return rightFrom(r, pw, nodeFrom[T](r))
}

func decLeft[T tree.Tree](r *reader, name string) *tree.LeftPadded[T] {
	var pw *padWire
	if !r.get(name, &pw) {
		return nil
	}
	return leftFrom(r, pw, nodeFrom[T](r))
}

func decRights[T tree.Tree](r *reader, name string) []*tree.RightPadded[T] {
	var pws []*padWire
	if !r.get(name, &pws) || pws == nil {
		return nil
	}
	out := make([]*tree.RightPadded[T], len(pws))
	for i, pw := range pws {
		if pw == nil {
			r.fail(errors.Newf("field %s: null element", name))
			return nil
		}
		out[i] = rightFrom(r, pw, nodeFrom[T](r))
	}
	return out
}

func decContainer[T tree.Tree](r *reader, name string) *tree.Container[T] {
	raw, ok := r.raw(name + ".before")
	if !ok || isNull(raw) {
		return nil
	}
	elems := decRights[T](r, name)
	var mw *markersWire
	r.get(name+".markers", &mw)
	return &tree.Container[T]{Before: r.space(name + ".before"), Elements: elems, Markers: r.toMarkers(mw)}
}
