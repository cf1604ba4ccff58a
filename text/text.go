// Package text is the plain-text dialect: a source file that is a single
// opaque string. Files no other parser accepts are read as documents, and
// recipes that generate files usually produce them.
package text

import (
	"github.com/jward/lathe/tree"
)

// Document is a plain-text source file.
type Document struct {
	id      tree.ID
	path    string
	text    string
	markers tree.Markers
}

var _ tree.SourceFile = (*Document)(nil)

// New returns a document with a fresh ID.
func New(path, text string) *Document {
	return &Document{id: tree.NewID(), path: path, text: text}
}

// Restore rebuilds a document with a known identity.
func Restore(id tree.ID, path, text string, markers tree.Markers) *Document {
	return &Document{id: id, path: path, text: text, markers: markers}
}

func (d *Document) ID() tree.ID           { return d.id }
func (d *Document) Markers() tree.Markers { return d.markers }
func (d *Document) SourcePath() string    { return d.path }
func (d *Document) Text() string          { return d.text }
func (d *Document) Print() string         { return d.text }

func (d *Document) WithText(text string) *Document {
	if d.text == text {
		return d
	}
	c := *d
	c.text = text
	return &c
}

func (d *Document) WithSourcePath(path string) tree.SourceFile {
	if d.path == path {
		return d
	}
	c := *d
	c.path = path
	return &c
}

func (d *Document) WithSourceMarkers(m tree.Markers) tree.SourceFile {
	if d.markers.Equal(m) {
		return d
	}
	c := *d
	c.markers = m
	return &c
}
