package rpc

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/tree"
)

// Receiver replays deltas against a snapshot cache and rebuilds trees.
// Nodes whose records did not change are reused from earlier deltas, so
// unchanged subtrees keep their identity across exchanges.
type Receiver struct {
	registry *Registry
	cache    SnapshotCache
	interner *jtype.Interner
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	nodes map[tree.ID]decoded
}

type decoded struct {
	checksum uint64
	node     tree.Tree
	children []tree.ID
}

type ReceiverOption func(*Receiver)

func WithReceiverLogger(l *zap.SugaredLogger) ReceiverOption {
	return func(r *Receiver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithInterner canonicalises every decoded type through in.
func WithInterner(in *jtype.Interner) ReceiverOption {
	return func(r *Receiver) { r.interner = in }
}

func NewReceiver(reg *Registry, cache SnapshotCache, opts ...ReceiverOption) *Receiver {
	r := &Receiver{
		registry: reg,
		cache:    cache,
		logger:   zap.NewNop().Sugar(),
		nodes:    make(map[tree.ID]decoded),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Apply replays a delta and returns the source file it describes. Either
// every instruction applies and the snapshot is committed, or the snapshot
// is left as it was and the error wraps ErrProtocolViolation.
func (r *Receiver) Apply(delta *Delta) (tree.SourceFile, error) {
	if delta == nil {
		return nil, violation("", tree.NilID, "empty delta")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ov := newOverlay(r.cache)
	for _, ins := range delta.Instructions {
		if err := r.replay(ov, ins); err != nil {
			return nil, err
		}
	}

	b := &builder{r: r, ov: ov, built: make(map[tree.ID]tree.Tree), fresh: make(map[tree.ID]decoded), open: make(map[tree.ID]bool)}
	root, err := b.build(delta.Root)
	if err != nil {
		return nil, err
	}
	sf, ok := root.(tree.SourceFile)
	if !ok {
		return nil, violation("", delta.Root, "root is %T, not a source file", root)
	}

	for id, snap := range ov.cs.puts {
		if f, ok := b.fresh[id]; ok {
			snap.Children = f.children
		}
	}
	ov.cs.setRoot(sf.SourcePath(), sf.ID())
	if err := r.cache.Commit(ov.cs); err != nil {
		return nil, errors.Wrap(err, "rpc: commit snapshot")
	}

	for id := range ov.cs.deletes {
		delete(r.nodes, id)
	}
	for id, f := range b.fresh {
		r.nodes[id] = f
	}
	r.logger.Debugw("Delta applied",
		"path", sf.SourcePath(),
		"instructions", len(delta.Instructions),
		"decoded", len(b.fresh),
	)
	return sf, nil
}

// remember makes a node known for reuse as if it had been received.
func (r *Receiver) remember(n tree.Tree, sum uint64, children []tree.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[n.ID()] = decoded{checksum: sum, node: n, children: children}
}

func (r *Receiver) replay(ov *overlay, ins Instruction) error {
	switch ins.Op {
	case OpFull:
		if _, ok := r.registry.Lookup(ins.Kind); !ok {
			return violation(ins.Op, ins.ID, "unknown kind %q", ins.Kind)
		}
		if sum := checksum(ins.Fields); sum != ins.Checksum {
			return violation(ins.Op, ins.ID, "checksum mismatch")
		}
		ov.cs.put(ins.ID, &Snapshot{Kind: ins.Kind, Fields: ins.Fields, Checksum: ins.Checksum})
		return nil

	case OpUpdate, OpSplice:
		snap, err := ov.Snapshot(ins.ID)
		if err != nil {
			return errors.Wrapf(err, "rpc: snapshot %s", ins.ID)
		}
		if snap == nil {
			return violation(ins.Op, ins.ID, "unknown id")
		}
		old, ok := snap.Fields[ins.Field]
		if !ok {
			return violation(ins.Op, ins.ID, "unknown field %q of %s", ins.Field, snap.Kind)
		}
		value := ins.Value
		if ins.Op == OpSplice {
			if !isArray(old) {
				return violation(ins.Op, ins.ID, "field %q is not a list", ins.Field)
			}
			elems, err := splitArray(old)
			if err != nil {
				return violation(ins.Op, ins.ID, "field %q: %v", ins.Field, err)
			}
			if elems, err = applySplice(elems, ins.Splice); err != nil {
				return violation(ins.Op, ins.ID, "field %q: %v", ins.Field, err)
			}
			value = joinArray(elems)
		}
		fields := snap.Fields.clone()
		fields[ins.Field] = value
		sum := checksum(fields)
		if sum != ins.Checksum {
			return violation(ins.Op, ins.ID, "checksum mismatch after %q", ins.Field)
		}
		ov.cs.put(ins.ID, &Snapshot{Kind: snap.Kind, Fields: fields, Checksum: sum})
		return nil

	case OpDelete:
		snap, err := ov.Snapshot(ins.ID)
		if err != nil {
			return errors.Wrapf(err, "rpc: snapshot %s", ins.ID)
		}
		if snap == nil {
			return violation(ins.Op, ins.ID, "unknown id")
		}
		ov.cs.remove(ins.ID)
		return nil
	}
	return violation(ins.Op, ins.ID, "unknown op")
}

// builder decodes the nodes reachable from a root.
type builder struct {
	r     *Receiver
	ov    *overlay
	built map[tree.ID]tree.Tree
	fresh map[tree.ID]decoded
	open  map[tree.ID]bool
}

func (b *builder) build(id tree.ID) (tree.Tree, error) {
	if n, ok := b.built[id]; ok {
		return n, nil
	}
	if b.open[id] {
		return nil, violation("", id, "node contains itself")
	}
	b.open[id] = true
	defer delete(b.open, id)

	snap, err := b.ov.Snapshot(id)
	if err != nil {
		return nil, errors.Wrapf(err, "rpc: snapshot %s", id)
	}
	if snap == nil {
		return nil, violation("", id, "unknown id")
	}

	if prev, ok := b.r.nodes[id]; ok && prev.checksum == snap.Checksum {
		reuse := true
		for _, c := range prev.children {
			n, err := b.build(c)
			if err != nil {
				return nil, err
			}
			if old, ok := b.r.nodes[c]; !ok || old.node != n {
				reuse = false
			}
		}
		if reuse {
			b.built[id] = prev.node
			return prev.node, nil
		}
	}

	codec, ok := b.r.registry.Lookup(snap.Kind)
	if !ok {
		return nil, violation("", id, "unknown kind %q", snap.Kind)
	}
	d := &Decoder{interner: b.r.interner, resolve: b.build}
	n, err := codec.Decode(id, snap.Fields, d)
	if err != nil {
		if errors.Is(err, ErrProtocolViolation) {
			return nil, err
		}
		return nil, violation("", id, "decode %s: %v", snap.Kind, err)
	}
	b.built[id] = n
	b.fresh[id] = decoded{checksum: snap.Checksum, node: n, children: d.children}
	return n, nil
}

// Serve applies deltas from conn until the peer sends done, acknowledging
// each one. handle, if set, sees every rebuilt file before it is acked.
func (r *Receiver) Serve(ctx context.Context, conn Conn, handle func(tree.SourceFile) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			return errors.Wrap(err, "rpc: receive")
		}
		switch msg.Type {
		case MsgDelta:
			if _, err := r.accept(conn, msg.Delta, handle); err != nil {
				return err
			}
		case MsgDone:
			return nil
		default:
			return errors.Newf("rpc: unexpected %s message", msg.Type)
		}
	}
}

// accept applies one delta and answers it.
func (r *Receiver) accept(conn Conn, delta *Delta, handle func(tree.SourceFile) error) (tree.SourceFile, error) {
	sf, err := r.Apply(delta)
	if err == nil && handle != nil {
		err = handle(sf)
	}
	ack := Ack{OK: err == nil}
	if delta != nil {
		ack.Root = delta.Root
	}
	if err != nil {
		ack.Error = err.Error()
		r.logger.Warnw("Delta rejected", "root", ack.Root, "error", err)
	}
	if werr := conn.WriteJSON(Msg{Type: MsgAck, Ack: &ack}); werr != nil && err == nil {
		err = errors.Wrap(werr, "rpc: send ack")
	}
	if err != nil {
		return nil, err
	}
	return sf, nil
}
