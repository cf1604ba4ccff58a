package tree

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ID identifies one source construct. Builders carry it over to the nodes they
// produce, so the same ID names the same construct across cycles and across a
// process boundary.
type ID = uuid.UUID

// NilID is the zero ID. No parsed node carries it.
var NilID = uuid.Nil

// NewID returns a fresh random ID.
func NewID() ID {
	return uuid.New()
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilID, errors.Wrapf(err, "tree: parse id %q", s)
	}
	return id, nil
}
