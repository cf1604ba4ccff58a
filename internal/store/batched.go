package store

import (
	"sort"
	"sync"
)

// BatchedStore buffers snapshot writes in memory until CommitBatch applies
// them in one transaction. A delta-sync sender fills a batch while encoding
// a delta and commits it only once the peer acknowledges; dropping the batch
// leaves the cache untouched.
//
// Reads consult the buffer first and fall through to the underlying Store.
type BatchedStore struct {
	store *Store
	mu    sync.Mutex

	puts    map[snapshotKey]Snapshot
	deletes map[snapshotKey]struct{}
	roots   map[snapshotKey]Root
}

type snapshotKey struct {
	cache, id string
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by s for reads.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:   s,
		puts:    map[snapshotKey]Snapshot{},
		deletes: map[snapshotKey]struct{}{},
		roots:   map[snapshotKey]Root{},
	}
}

func (b *BatchedStore) PutSnapshot(snap *Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := snapshotKey{snap.Cache, snap.NodeID}
	delete(b.deletes, k)
	b.puts[k] = *snap
	return nil
}

func (b *BatchedStore) DeleteSnapshot(cache, nodeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := snapshotKey{cache, nodeID}
	delete(b.puts, k)
	b.deletes[k] = struct{}{}
	return nil
}

func (b *BatchedStore) PutRoot(root *Root) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roots[snapshotKey{root.Cache, root.Path}] = *root
	return nil
}

// Snapshot returns the buffered snapshot if any, nil if the node is buffered
// for deletion, and the stored snapshot otherwise.
func (b *BatchedStore) Snapshot(cache, nodeID string) (*Snapshot, error) {
	k := snapshotKey{cache, nodeID}
	b.mu.Lock()
	if snap, ok := b.puts[k]; ok {
		b.mu.Unlock()
		return &snap, nil
	}
	if _, ok := b.deletes[k]; ok {
		b.mu.Unlock()
		return nil, nil
	}
	b.mu.Unlock()
	return b.store.Snapshot(cache, nodeID)
}

func (b *BatchedStore) RootByPath(cache, path string) (*Root, error) {
	b.mu.Lock()
	if r, ok := b.roots[snapshotKey{cache, path}]; ok {
		b.mu.Unlock()
		return &r, nil
	}
	b.mu.Unlock()
	return b.store.RootByPath(cache, path)
}

// Len returns the number of buffered writes.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.puts) + len(b.deletes) + len(b.roots)
}

// drain returns the buffered writes in a deterministic order and empties
// the buffer.
func (b *BatchedStore) drain() (puts []Snapshot, deletes []snapshotKey, roots []Root) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.puts {
		puts = append(puts, p)
	}
	for k := range b.deletes {
		deletes = append(deletes, k)
	}
	for _, r := range b.roots {
		roots = append(roots, r)
	}
	sort.Slice(puts, func(i, j int) bool {
		if puts[i].Cache != puts[j].Cache {
			return puts[i].Cache < puts[j].Cache
		}
		return puts[i].NodeID < puts[j].NodeID
	})
	sort.Slice(deletes, func(i, j int) bool {
		if deletes[i].cache != deletes[j].cache {
			return deletes[i].cache < deletes[j].cache
		}
		return deletes[i].id < deletes[j].id
	})
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Cache != roots[j].Cache {
			return roots[i].Cache < roots[j].Cache
		}
		return roots[i].Path < roots[j].Path
	})
	b.puts = map[snapshotKey]Snapshot{}
	b.deletes = map[snapshotKey]struct{}{}
	b.roots = map[snapshotKey]Root{}
	return puts, deletes, roots
}

// restore puts drained writes back after a failed commit.
func (b *BatchedStore) restore(puts []Snapshot, deletes []snapshotKey, roots []Root) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range puts {
		b.puts[snapshotKey{p.Cache, p.NodeID}] = p
	}
	for _, k := range deletes {
		b.deletes[k] = struct{}{}
	}
	for _, r := range roots {
		b.roots[snapshotKey{r.Cache, r.Path}] = r
	}
}
