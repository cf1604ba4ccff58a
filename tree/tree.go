// Package tree holds the dialect-neutral parts of the lossless semantic tree:
// identity, formatting, markers, padding wrappers, source files and the
// traversal cursor.
package tree

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Tree is implemented by every node of every dialect.
type Tree interface {
	ID() ID
	Markers() Markers
}

// SourceFile is the root of one parsed file.
type SourceFile interface {
	Tree
	SourcePath() string
	// Print renders the file. An unmodified parse prints its input byte for byte.
	Print() string
	WithSourcePath(path string) SourceFile
	WithSourceMarkers(m Markers) SourceFile
}

// SkipChildren is returned by a pre-visit hook to keep the node as it is
// without descending into it.
var SkipChildren = errors.New("skip children")

// ParseError is a source file that could not be parsed. It keeps the raw text
// so it still prints faithfully, and always carries a ParseExceptionResult.
type ParseError struct {
	id      ID
	path    string
	text    string
	markers Markers
}

// NewParseError builds the error node for a file the named parser rejected.
func NewParseError(path, text, parser string, cause error) *ParseError {
	msg := "syntax error"
	excType := "SyntaxError"
	if cause != nil {
		msg = cause.Error()
		excType = fmt.Sprintf("%T", errors.UnwrapAll(cause))
	}
	return &ParseError{
		id:   NewID(),
		path: path,
		text: text,
		markers: NewMarkers(ParseExceptionResult{
			ID:            NewID(),
			Parser:        parser,
			ExceptionType: excType,
			Message:       msg,
		}),
	}
}

// RestoreParseError rebuilds a ParseError with a known identity.
func RestoreParseError(id ID, path, text string, markers Markers) *ParseError {
	return &ParseError{id: id, path: path, text: text, markers: markers}
}

func (p *ParseError) ID() ID             { return p.id }
func (p *ParseError) Markers() Markers   { return p.markers }
func (p *ParseError) SourcePath() string { return p.path }
func (p *ParseError) Text() string       { return p.text }
func (p *ParseError) Print() string      { return p.text }

// Cause returns the recorded parse failure.
func (p *ParseError) Cause() ParseExceptionResult {
	r, _ := FindFirst[ParseExceptionResult](p.markers)
	return r
}

func (p *ParseError) WithText(text string) *ParseError {
	if p.text == text {
		return p
	}
	c := *p
	c.text = text
	return &c
}

func (p *ParseError) WithSourcePath(path string) SourceFile {
	if p.path == path {
		return p
	}
	c := *p
	c.path = path
	return &c
}

func (p *ParseError) WithSourceMarkers(m Markers) SourceFile {
	if p.markers.Equal(m) {
		return p
	}
	c := *p
	c.markers = m
	return &c
}
