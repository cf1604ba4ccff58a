package rpc

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/tree"
)

// ErrProtocolViolation is wrapped by every ProtocolError.
var ErrProtocolViolation = errors.New("protocol violation")

// ProtocolError reports an exchange that cannot be replayed: an unknown ID,
// a checksum mismatch or a record of the wrong shape. The exchange fails as
// a whole.
type ProtocolError struct {
	Op     Op
	ID     tree.ID
	Reason string
}

func (e *ProtocolError) Error() string {
	switch {
	case e.ID == tree.NilID:
		return fmt.Sprintf("rpc: %s: %s", ErrProtocolViolation, e.Reason)
	case e.Op == "":
		return fmt.Sprintf("rpc: %s: %s: %s", ErrProtocolViolation, e.ID, e.Reason)
	}
	return fmt.Sprintf("rpc: %s: %s %s: %s", ErrProtocolViolation, e.Op, e.ID, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return ErrProtocolViolation }

func violation(op Op, id tree.ID, format string, args ...any) error {
	return &ProtocolError{Op: op, ID: id, Reason: fmt.Sprintf(format, args...)}
}

// RemoteError is a failure the peer reported in place of an answer.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return "rpc: remote run failed: " + e.Message }
