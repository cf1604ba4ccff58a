package tree

// Marker is an out-of-band annotation attached to a node. Implementations
// must be comparable with ==.
type Marker interface {
	MarkerID() ID
}

// SearchResult flags a node found by a search recipe.
type SearchResult struct {
	ID          ID
	Description string
}

func (m SearchResult) MarkerID() ID { return m.ID }

// ParseExceptionResult records why a source file could not be parsed.
type ParseExceptionResult struct {
	ID            ID
	Parser        string
	ExceptionType string
	Message       string
}

func (m ParseExceptionResult) MarkerID() ID { return m.ID }

// MarkupLevel grades a Markup marker.
type MarkupLevel string

const (
	MarkupInfo  MarkupLevel = "info"
	MarkupWarn  MarkupLevel = "warn"
	MarkupError MarkupLevel = "error"
)

// Markup attaches a diagnostic message to a node.
type Markup struct {
	ID      ID
	Level   MarkupLevel
	Message string
}

func (m Markup) MarkerID() ID { return m.ID }

// Semicolon marks a padded statement that is terminated by ';'. The
// padding's After space is the space before the semicolon.
type Semicolon struct {
	ID ID
}

func (m Semicolon) MarkerID() ID { return m.ID }

// Generated records the recipe that created a source file.
type Generated struct {
	ID     ID
	Recipe string
}

func (m Generated) MarkerID() ID { return m.ID }

// Markers is an immutable, ordered set of markers. The zero value is empty.
type Markers struct {
	id      ID
	entries []Marker
}

// NewMarkers returns a marker set with a fresh ID.
func NewMarkers(entries ...Marker) Markers {
	return Markers{id: NewID(), entries: entries}
}

// MarkersWithID rebuilds a marker set received from elsewhere.
func MarkersWithID(id ID, entries ...Marker) Markers {
	return Markers{id: id, entries: entries}
}

func (m Markers) ID() ID { return m.id }

// Entries returns the markers in insertion order. The slice must not be modified.
func (m Markers) Entries() []Marker { return m.entries }

func (m Markers) Len() int { return len(m.entries) }

func (m Markers) IsEmpty() bool { return len(m.entries) == 0 }

// Add returns a set with mk appended. A marker already present is not added twice.
func (m Markers) Add(mk Marker) Markers {
	for _, e := range m.entries {
		if e == mk {
			return m
		}
	}
	entries := make([]Marker, 0, len(m.entries)+1)
	entries = append(entries, m.entries...)
	entries = append(entries, mk)
	id := m.id
	if id == NilID {
		id = NewID()
	}
	return Markers{id: id, entries: entries}
}

// Remove returns a set without the marker identified by id.
func (m Markers) Remove(id ID) Markers {
	for i, e := range m.entries {
		if e.MarkerID() != id {
			continue
		}
		entries := make([]Marker, 0, len(m.entries)-1)
		entries = append(entries, m.entries[:i]...)
		entries = append(entries, m.entries[i+1:]...)
		return Markers{id: m.id, entries: entries}
	}
	return m
}

// Equal reports whether both sets have the same ID and the same entries in order.
func (m Markers) Equal(o Markers) bool {
	if m.id != o.id || len(m.entries) != len(o.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i] != o.entries[i] {
			return false
		}
	}
	return true
}

// FindFirst returns the first marker of type M.
func FindFirst[M Marker](m Markers) (M, bool) {
	for _, e := range m.entries {
		if v, ok := e.(M); ok {
			return v, true
		}
	}
	var zero M
	return zero, false
}

// FindAll returns every marker of type M.
func FindAll[M Marker](m Markers) []M {
	var out []M
	for _, e := range m.entries {
		if v, ok := e.(M); ok {
			out = append(out, v)
		}
	}
	return out
}

// Has reports whether any marker of type M is present.
func Has[M Marker](m Markers) bool {
	_, ok := FindFirst[M](m)
	return ok
}

// AddSearchResult marks a set as found. It returns m unchanged when a search
// result with the same description is already present, which keeps search
// recipes idempotent across cycles.
func AddSearchResult(m Markers, description string) Markers {
	for _, sr := range FindAll[SearchResult](m) {
		if sr.Description == description {
			return m
		}
	}
	return m.Add(SearchResult{ID: NewID(), Description: description})
}
