package store

import (
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// --- Snapshot operations ---

// PutSnapshot inserts or replaces the snapshot of a node.
func (s *Store) PutSnapshot(snap *Snapshot) error {
	return putSnapshotTx(s.db, snap)
}

func putSnapshotTx(ex execer, snap *Snapshot) error {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	_, err := ex.Exec(
		`INSERT INTO snapshots (cache, node_id, kind, record, checksum, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (cache, node_id) DO UPDATE SET kind = excluded.kind, record = excluded.record,
		   checksum = excluded.checksum, updated_at = excluded.updated_at`,
		snap.Cache, snap.NodeID, snap.Kind, snap.Record, int64(snap.Checksum), snap.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "put snapshot %s/%s", snap.Cache, snap.NodeID)
	}
	return nil
}

func (s *Store) DeleteSnapshot(cache, nodeID string) error {
	return deleteSnapshotTx(s.db, cache, nodeID)
}

func deleteSnapshotTx(ex execer, cache, nodeID string) error {
	if _, err := ex.Exec("DELETE FROM snapshots WHERE cache = ? AND node_id = ?", cache, nodeID); err != nil {
		return errors.Wrapf(err, "delete snapshot %s/%s", cache, nodeID)
	}
	return nil
}

// Snapshot returns the snapshot of a node, or nil if the cache has none.
func (s *Store) Snapshot(cache, nodeID string) (*Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(
		"SELECT cache, node_id, kind, record, checksum, updated_at FROM snapshots WHERE cache = ? AND node_id = ?",
		cache, nodeID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "snapshot")
	}
	return snap, nil
}

// SnapshotsByCache returns every snapshot of a cache ordered by node ID.
func (s *Store) SnapshotsByCache(cache string) ([]*Snapshot, error) {
	rows, err := s.db.Query(
		"SELECT cache, node_id, kind, record, checksum, updated_at FROM snapshots WHERE cache = ? ORDER BY node_id",
		cache,
	)
	if err != nil {
		return nil, errors.Wrap(err, "snapshots by cache")
	}
	defer rows.Close()
	var out []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan snapshot")
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// CountSnapshots returns the number of snapshots in a cache.
func (s *Store) CountSnapshots(cache string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots WHERE cache = ?", cache).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count snapshots")
	}
	return n, nil
}

func scanSnapshot(scanner interface{ Scan(...any) error }) (*Snapshot, error) {
	snap := &Snapshot{}
	var checksum int64
	var updated sql.NullTime
	if err := scanner.Scan(&snap.Cache, &snap.NodeID, &snap.Kind, &snap.Record, &checksum, &updated); err != nil {
		return nil, err
	}
	snap.Checksum = uint64(checksum)
	snap.UpdatedAt = updated.Time
	return snap, nil
}

// --- Root operations ---

func (s *Store) PutRoot(root *Root) error {
	return putRootTx(s.db, root)
}

func putRootTx(ex execer, root *Root) error {
	_, err := ex.Exec(
		`INSERT INTO snapshot_roots (cache, path, node_id) VALUES (?, ?, ?)
		 ON CONFLICT (cache, path) DO UPDATE SET node_id = excluded.node_id`,
		root.Cache, root.Path, root.NodeID,
	)
	if err != nil {
		return errors.Wrapf(err, "put root %s/%s", root.Cache, root.Path)
	}
	return nil
}

// RootByPath returns the root bound to path, or nil.
func (s *Store) RootByPath(cache, path string) (*Root, error) {
	r := &Root{}
	err := s.db.QueryRow(
		"SELECT cache, path, node_id FROM snapshot_roots WHERE cache = ? AND path = ?", cache, path,
	).Scan(&r.Cache, &r.Path, &r.NodeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "root by path")
	}
	return r, nil
}

// Roots returns every root of a cache ordered by path.
func (s *Store) Roots(cache string) ([]*Root, error) {
	rows, err := s.db.Query("SELECT cache, path, node_id FROM snapshot_roots WHERE cache = ? ORDER BY path", cache)
	if err != nil {
		return nil, errors.Wrap(err, "roots")
	}
	defer rows.Close()
	var out []*Root
	for rows.Next() {
		r := &Root{}
		if err := rows.Scan(&r.Cache, &r.Path, &r.NodeID); err != nil {
			return nil, errors.Wrap(err, "scan root")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
