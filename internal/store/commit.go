package store

import (
	"github.com/cockroachdb/errors"
)

// CommitBatch applies every buffered write of batch within a single
// transaction: deletions first, then snapshot puts, then roots. On failure
// nothing is written and the batch keeps its contents.
func (s *Store) CommitBatch(batch *BatchedStore) (err error) {
	puts, deletes, roots := batch.drain()
	defer func() {
		if err != nil {
			batch.restore(puts, deletes, roots)
		}
	}()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "commit batch: begin")
	}
	defer tx.Rollback()

	for _, k := range deletes {
		if err := deleteSnapshotTx(tx, k.cache, k.id); err != nil {
			return errors.Wrap(err, "commit batch")
		}
	}
	for i := range puts {
		if err := putSnapshotTx(tx, &puts[i]); err != nil {
			return errors.Wrap(err, "commit batch")
		}
	}
	for i := range roots {
		if err := putRootTx(tx, &roots[i]); err != nil {
			return errors.Wrap(err, "commit batch")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit batch: commit")
	}
	return nil
}
