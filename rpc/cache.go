package rpc

import (
	"sync"

	"github.com/jward/lathe/tree"
)

// Snapshot is the last transmitted record of one node.
type Snapshot struct {
	Kind     string
	Fields   Fields
	Children []tree.ID
	Checksum uint64
}

// Changeset is a set of snapshot writes applied together.
type Changeset struct {
	puts    map[tree.ID]*Snapshot
	deletes map[tree.ID]struct{}
	roots   map[string]tree.ID
}

func newChangeset() *Changeset {
	return &Changeset{
		puts:    make(map[tree.ID]*Snapshot),
		deletes: make(map[tree.ID]struct{}),
		roots:   make(map[string]tree.ID),
	}
}

func (c *Changeset) put(id tree.ID, s *Snapshot) {
	delete(c.deletes, id)
	c.puts[id] = s
}

func (c *Changeset) remove(id tree.ID) {
	delete(c.puts, id)
	c.deletes[id] = struct{}{}
}

func (c *Changeset) setRoot(path string, id tree.ID) { c.roots[path] = id }

func (c *Changeset) Puts() map[tree.ID]*Snapshot { return c.puts }

func (c *Changeset) Deletes() []tree.ID {
	out := make([]tree.ID, 0, len(c.deletes))
	for id := range c.deletes {
		out = append(out, id)
	}
	return out
}

func (c *Changeset) Roots() map[string]tree.ID { return c.roots }

// Len counts the node writes in the changeset.
func (c *Changeset) Len() int { return len(c.puts) + len(c.deletes) }

// SnapshotCache holds one side's view of what the peer knows.
// Snapshots returned by a cache must not be modified.
type SnapshotCache interface {
	// Snapshot returns nil and no error for an unknown ID.
	Snapshot(id tree.ID) (*Snapshot, error)
	// Root returns the root node ID last transmitted for a path.
	Root(path string) (tree.ID, bool, error)
	// Commit applies a changeset atomically.
	Commit(cs *Changeset) error
}

// MemoryCache is a SnapshotCache held in memory.
type MemoryCache struct {
	mu    sync.RWMutex
	nodes map[tree.ID]*Snapshot
	roots map[string]tree.ID
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		nodes: make(map[tree.ID]*Snapshot),
		roots: make(map[string]tree.ID),
	}
}

func (m *MemoryCache) Snapshot(id tree.ID) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[id], nil
}

func (m *MemoryCache) Root(path string) (tree.ID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.roots[path]
	return id, ok, nil
}

func (m *MemoryCache) Commit(cs *Changeset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range cs.deletes {
		delete(m.nodes, id)
	}
	for id, s := range cs.puts {
		m.nodes[id] = s
	}
	for path, id := range cs.roots {
		m.roots[path] = id
	}
	return nil
}

// Len returns the number of nodes held.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// overlay reads through a pending changeset to its base cache.
type overlay struct {
	base SnapshotCache
	cs   *Changeset
}

func newOverlay(base SnapshotCache) *overlay {
	return &overlay{base: base, cs: newChangeset()}
}

func (o *overlay) Snapshot(id tree.ID) (*Snapshot, error) {
	if _, gone := o.cs.deletes[id]; gone {
		return nil, nil
	}
	if s, ok := o.cs.puts[id]; ok {
		return s, nil
	}
	return o.base.Snapshot(id)
}
