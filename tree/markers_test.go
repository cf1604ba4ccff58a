package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkers_AddIsCopyOnWrite(t *testing.T) {
	t.Parallel()

	m := NewMarkers()
	sr := SearchResult{ID: NewID(), Description: "found"}
	m2 := m.Add(sr)

	assert.True(t, m.IsEmpty())
	assert.Equal(t, 1, m2.Len())
	assert.Equal(t, m.ID(), m2.ID())
	assert.False(t, m.Equal(m2))

	// Adding the same marker again is a no-op.
	m3 := m2.Add(sr)
	assert.True(t, m2.Equal(m3))
}

func TestMarkers_ZeroValueGetsID(t *testing.T) {
	t.Parallel()

	var m Markers
	m2 := m.Add(Semicolon{ID: NewID()})
	assert.NotEqual(t, NilID, m2.ID())
}

func TestMarkers_FindAndRemove(t *testing.T) {
	t.Parallel()

	pe := ParseExceptionResult{ID: NewID(), Parser: "java", Message: "boom"}
	m := NewMarkers(Semicolon{ID: NewID()}, pe)

	got, ok := FindFirst[ParseExceptionResult](m)
	require.True(t, ok)
	assert.Equal(t, "boom", got.Message)
	assert.True(t, Has[Semicolon](m))
	assert.False(t, Has[SearchResult](m))

	m2 := m.Remove(pe.ID)
	assert.False(t, Has[ParseExceptionResult](m2))
	assert.True(t, Has[ParseExceptionResult](m))
}

func TestAddSearchResult_Idempotent(t *testing.T) {
	t.Parallel()

	m := AddSearchResult(Markers{}, "println")
	again := AddSearchResult(m, "println")
	assert.True(t, m.Equal(again))
	other := AddSearchResult(m, "other")
	assert.Len(t, FindAll[SearchResult](other), 2)
}

func TestParseError_CarriesMarker(t *testing.T) {
	t.Parallel()

	pe := NewParseError("A.java", "class {", "java", nil)
	assert.Equal(t, "class {", pe.Print())
	assert.Equal(t, "java", pe.Cause().Parser)
	assert.Equal(t, "syntax error", pe.Cause().Message)

	same := pe.WithSourcePath("A.java")
	assert.Same(t, pe, same.(*ParseError))
	moved := pe.WithSourcePath("B.java")
	assert.Equal(t, pe.ID(), moved.ID())
	assert.Equal(t, "B.java", moved.SourcePath())
}
