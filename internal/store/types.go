package store

import "time"

// Snapshot is the last synchronized state of one node in a named cache.
// Record is the node's encoded field record; child nodes appear in it by ID.
type Snapshot struct {
	Cache     string
	NodeID    string
	Kind      string
	Record    []byte
	Checksum  uint64
	UpdatedAt time.Time
}

// Root binds a source path to the ID of its root node in a cache.
type Root struct {
	Cache  string
	Path   string
	NodeID string
}

// Run history

type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Recipes    []string
	Cycles     int
	Converged  bool
	State      string
	Warning    string
}

// Change values of RunFile.
const (
	ChangeModified  = "modified"
	ChangeDeleted   = "deleted"
	ChangeGenerated = "generated"
	ChangeError     = "error"
)

type RunFile struct {
	ID         int64
	RunID      int64
	Path       string
	Change     string
	Recipes    []string
	BeforeHash string
	AfterHash  string
	Error      string
}
