package store

// DataStore is the interface for snapshot writes and reads. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering until an
// acknowledgement) implement it.
type DataStore interface {
	PutSnapshot(snap *Snapshot) error
	DeleteSnapshot(cache, nodeID string) error
	PutRoot(root *Root) error

	Snapshot(cache, nodeID string) (*Snapshot, error)
	RootByPath(cache, path string) (*Root, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
