package rpc

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/internal/store"
	"github.com/jward/lathe/tree"
)

// StoreCache is a SnapshotCache persisted in a named cache of a SQLite
// store, so a session survives a restart of either peer.
type StoreCache struct {
	store *store.Store
	name  string
}

func NewStoreCache(s *store.Store, name string) *StoreCache {
	return &StoreCache{store: s, name: name}
}

// storedRecord is the layout of the record column.
type storedRecord struct {
	Fields   Fields    `json:"fields"`
	Children []tree.ID `json:"children,omitempty"`
}

func (c *StoreCache) Snapshot(id tree.ID) (*Snapshot, error) {
	row, err := c.store.Snapshot(c.name, id.String())
	if err != nil || row == nil {
		return nil, err
	}
	var rec storedRecord
	if err := json.Unmarshal(row.Record, &rec); err != nil {
		return nil, errors.Wrapf(err, "rpc: decode snapshot %s/%s", c.name, id)
	}
	return &Snapshot{Kind: row.Kind, Fields: rec.Fields, Children: rec.Children, Checksum: row.Checksum}, nil
}

func (c *StoreCache) Root(path string) (tree.ID, bool, error) {
	row, err := c.store.RootByPath(c.name, path)
	if err != nil || row == nil {
		return tree.NilID, false, err
	}
	id, err := tree.ParseID(row.NodeID)
	if err != nil {
		return tree.NilID, false, err
	}
	return id, true, nil
}

func (c *StoreCache) Commit(cs *Changeset) error {
	batch := store.NewBatchedStore(c.store)
	for id := range cs.deletes {
		if err := batch.DeleteSnapshot(c.name, id.String()); err != nil {
			return err
		}
	}
	for id, s := range cs.puts {
		rec, err := json.Marshal(storedRecord{Fields: s.Fields, Children: s.Children})
		if err != nil {
			return errors.Wrapf(err, "rpc: encode snapshot %s", id)
		}
		snap := &store.Snapshot{Cache: c.name, NodeID: id.String(), Kind: s.Kind, Record: rec, Checksum: s.Checksum}
		if err := batch.PutSnapshot(snap); err != nil {
			return err
		}
	}
	for path, id := range cs.roots {
		if err := batch.PutRoot(&store.Root{Cache: c.name, Path: path, NodeID: id.String()}); err != nil {
			return err
		}
	}
	return c.store.CommitBatch(batch)
}
