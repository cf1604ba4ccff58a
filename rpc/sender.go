package rpc

import (
	"bytes"
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jward/lathe/tree"
)

// Sender turns trees into deltas against a snapshot cache.
type Sender struct {
	registry *Registry
	cache    SnapshotCache
	logger   *zap.SugaredLogger
	// track, if set, sees every node encoded by Diff.
	track func(n tree.Tree, sum uint64, children []tree.ID)
}

type SenderOption func(*Sender)

func WithSenderLogger(l *zap.SugaredLogger) SenderOption {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSender(reg *Registry, cache SnapshotCache, opts ...SenderOption) *Sender {
	s := &Sender{registry: reg, cache: cache, logger: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Diff computes the delta that brings the peer from the cached snapshot to
// root, and the changeset to commit once the peer has applied it. Diff does
// not modify the cache.
func (s *Sender) Diff(root tree.SourceFile) (*Delta, *Changeset, error) {
	d := &differ{
		s:     s,
		delta: &Delta{Root: root.ID(), Path: root.SourcePath(), Instructions: []Instruction{}},
		cs:    newChangeset(),
		seen:  make(map[tree.ID]uint64),
	}
	if err := d.walk(root); err != nil {
		return nil, nil, err
	}
	if err := d.deletes(root); err != nil {
		return nil, nil, err
	}
	d.cs.setRoot(root.SourcePath(), root.ID())
	return d.delta, d.cs, nil
}

// Commit records a changeset from Diff as known to the peer.
func (s *Sender) Commit(cs *Changeset) error {
	return errors.Wrap(s.cache.Commit(cs), "rpc: commit snapshot")
}

// Send transmits root as a delta and commits the snapshot once the peer
// acknowledges it. A rejected delta leaves the snapshot unchanged.
func (s *Sender) Send(ctx context.Context, conn Conn, root tree.SourceFile) (*Delta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	delta, cs, err := s.Diff(root)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(Msg{Type: MsgDelta, Delta: delta}); err != nil {
		return nil, errors.Wrap(err, "rpc: send delta")
	}
	var msg Msg
	if err := conn.ReadJSON(&msg); err != nil {
		return nil, errors.Wrap(err, "rpc: receive ack")
	}
	switch {
	case msg.Type == MsgError:
		return nil, &RemoteError{Message: msg.Error}
	case msg.Type != MsgAck || msg.Ack == nil:
		return nil, errors.Newf("rpc: expected %s, got %s", MsgAck, msg.Type)
	}
	if msg.Ack.Root != delta.Root {
		return nil, violation("", delta.Root, "ack for root %s", msg.Ack.Root)
	}
	if !msg.Ack.OK {
		return nil, violation("", delta.Root, "peer rejected delta: %s", msg.Ack.Error)
	}
	if err := s.Commit(cs); err != nil {
		return nil, err
	}
	s.logger.Debugw("Delta sent",
		"path", delta.Path,
		"instructions", len(delta.Instructions),
		"nodes", cs.Len(),
	)
	return delta, nil
}

type differ struct {
	s     *Sender
	delta *Delta
	cs    *Changeset
	seen  map[tree.ID]uint64
}

func (d *differ) emit(ins Instruction) {
	d.delta.Instructions = append(d.delta.Instructions, ins)
}

func (d *differ) walk(t tree.Tree) error {
	kind, fields, children, err := d.s.registry.encode(t)
	if err != nil {
		return err
	}
	id := t.ID()
	sum := checksum(fields)
	if prev, ok := d.seen[id]; ok {
		if prev != sum {
			return errors.Newf("rpc: node %s appears twice with different content", id)
		}
		return nil
	}
	d.seen[id] = sum
	ids := childIDs(children)
	if d.s.track != nil {
		d.s.track(t, sum, ids)
	}

	old, err := d.s.cache.Snapshot(id)
	if err != nil {
		return errors.Wrapf(err, "rpc: snapshot %s", id)
	}
	snap := &Snapshot{Kind: kind, Fields: fields, Children: ids, Checksum: sum}
	switch {
	case old == nil || old.Kind != kind || !sameKeys(old.Fields, fields):
		d.emit(Instruction{Op: OpFull, ID: id, Kind: kind, Fields: fields, Checksum: sum})
		d.cs.put(id, snap)
	case old.Checksum != sum:
		if err := d.edits(id, old.Fields, fields); err != nil {
			return err
		}
		d.cs.put(id, snap)
	}

	for _, c := range children {
		if err := d.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// edits emits one instruction per changed field, in field name order.
func (d *differ) edits(id tree.ID, old, cur Fields) error {
	names := make([]string, 0, len(cur))
	for name, v := range cur {
		if !bytes.Equal(old[name], v) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	work := old.clone()
	for _, name := range names {
		work[name] = cur[name]
		ins := Instruction{Op: OpUpdate, ID: id, Field: name, Value: cur[name], Checksum: checksum(work)}
		if isArray(old[name]) && isArray(cur[name]) {
			a, err := splitArray(old[name])
			if err != nil {
				return errors.Wrapf(err, "rpc: field %s of %s", name, id)
			}
			b, err := splitArray(cur[name])
			if err != nil {
				return errors.Wrapf(err, "rpc: field %s of %s", name, id)
			}
			if ops := diffList(a, b); spliceSize(ops) < len(cur[name]) {
				ins = Instruction{Op: OpSplice, ID: id, Field: name, Splice: ops, Checksum: ins.Checksum}
			}
		}
		d.emit(ins)
	}
	return nil
}

// deletes emits a delete for every node of the previous tree that the
// current one no longer holds, in pre-order of the previous tree.
func (d *differ) deletes(root tree.SourceFile) error {
	prev, ok, err := d.s.cache.Root(root.SourcePath())
	if err != nil {
		return errors.Wrap(err, "rpc: snapshot root")
	}
	if !ok {
		prev = root.ID()
	}

	visited := make(map[tree.ID]bool)
	var walk func(id tree.ID) error
	walk = func(id tree.ID) error {
		if visited[id] {
			return nil
		}
		visited[id] = true
		snap, err := d.s.cache.Snapshot(id)
		if err != nil {
			return errors.Wrapf(err, "rpc: snapshot %s", id)
		}
		if snap == nil {
			return nil
		}
		if _, live := d.seen[id]; !live {
			d.emit(Instruction{Op: OpDelete, ID: id})
			d.cs.remove(id)
		}
		for _, c := range snap.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(prev)
}

func childIDs(children []tree.Tree) []tree.ID {
	if len(children) == 0 {
		return nil
	}
	ids := make([]tree.ID, len(children))
	for i, c := range children {
		ids[i] = c.ID()
	}
	return ids
}

func sameKeys(a, b Fields) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
