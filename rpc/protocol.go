// Package rpc ships trees across a process boundary as deltas.
//
// Both ends keep a snapshot of every node they agree on, keyed by node ID.
// A Sender compares a tree against that snapshot and emits only what changed:
// a full record for a node seen for the first time, one update per changed
// field otherwise, splices for list fields, and deletes for nodes that are
// gone. A Receiver replays the instructions against its own snapshot and
// rebuilds the tree, reusing every node whose record did not change.
//
// Records are produced by per-kind codecs held in a Registry. Child nodes
// appear in a record by ID, so an edit deep in a tree only touches the
// records of the nodes that actually changed.
package rpc

import (
	"encoding/json"

	"github.com/jward/lathe/tree"
)

// Op names an instruction.
type Op string

const (
	// OpFull sends every field of a node the peer has not seen.
	OpFull Op = "full"
	// OpUpdate replaces one field of a known node.
	OpUpdate Op = "update"
	// OpSplice edits one list field of a known node in place.
	OpSplice Op = "splice"
	// OpDelete drops a node the peer knows.
	OpDelete Op = "delete"
)

// Instruction is one step of a delta.
//
// Checksum is the checksum of the node's whole record after the instruction
// is applied; it is zero for deletes.
type Instruction struct {
	Op       Op              `json:"op"`
	ID       tree.ID         `json:"id"`
	Kind     string          `json:"kind,omitempty"`
	Fields   Fields          `json:"fields,omitempty"`
	Field    string          `json:"field,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Splice   []SpliceOp      `json:"splice,omitempty"`
	Checksum uint64          `json:"checksum,omitempty"`
}

// SpliceOp removes Remove elements at index At and inserts Insert there.
// Ops apply in order, each to the result of the previous one.
type SpliceOp struct {
	At     int               `json:"at"`
	Remove int               `json:"remove,omitempty"`
	Insert []json.RawMessage `json:"insert,omitempty"`
}

// Delta carries the instructions that bring one source file up to date.
// Instructions are in pre-order of the current tree, deletes last.
type Delta struct {
	Root         tree.ID       `json:"root"`
	Path         string        `json:"path"`
	Instructions []Instruction `json:"instructions"`
}

// Ack answers a delta. A sender commits its snapshot only on a positive ack.
type Ack struct {
	Root  tree.ID `json:"root"`
	OK    bool    `json:"ok"`
	Error string  `json:"error,omitempty"`
}

// MsgType identifies a message on the wire.
type MsgType string

const (
	MsgDelta  MsgType = "delta"
	MsgAck    MsgType = "ack"
	MsgRun    MsgType = "run"
	MsgResult MsgType = "result"
	MsgDone   MsgType = "done"
	MsgError  MsgType = "error"
)

// Msg is the envelope for every message.
//
// Remote execution runs as:
//
//	1. client sends Run (recipes, file count)
//	2. client sends one Delta per file, each answered by an Ack
//	3. server runs the recipes and sends Result
//	4. server sends one Delta per changed or generated file, each acked
//	5. server sends Done
type Msg struct {
	Type MsgType `json:"type"`

	Delta  *Delta      `json:"delta,omitempty"`
	Ack    *Ack        `json:"ack,omitempty"`
	Run    *RunRequest `json:"run,omitempty"`
	Result *RunReply   `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// RecipeSpec names a registered recipe and its raw option values.
type RecipeSpec struct {
	Name    string         `json:"name"`
	Options map[string]any `json:"options,omitempty"`
}

// RunRequest asks a server to run recipes over the files that follow.
type RunRequest struct {
	Recipes   []RecipeSpec `json:"recipes"`
	Files     int          `json:"files"`
	MaxCycles int          `json:"max_cycles,omitempty"`
	// Session names a persistent snapshot cache on the server. Empty means
	// a fresh in-memory cache for this connection.
	Session string `json:"session,omitempty"`
}

// File change values of FileReply.
const (
	ChangeNone      = "unchanged"
	ChangeModified  = "modified"
	ChangeDeleted   = "deleted"
	ChangeGenerated = "generated"
)

// FileReply reports the outcome for one file.
type FileReply struct {
	Path    string   `json:"path"`
	Root    tree.ID  `json:"root"`
	Change  string   `json:"change"`
	Recipes []string `json:"recipes,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// RunReply summarises a remote run. Deltas for modified and generated
// files follow it in the order of Files.
type RunReply struct {
	Files      []FileReply `json:"files"`
	CyclesUsed int         `json:"cycles_used"`
	Converged  bool        `json:"converged"`
	State      string      `json:"state"`
	Warning    string      `json:"warning,omitempty"`
	// Error is set when the run stopped early; Files then holds the state
	// reached so far.
	Error string `json:"error,omitempty"`
}
