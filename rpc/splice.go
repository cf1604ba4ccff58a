package rpc

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// maxSpliceCells bounds the LCS table. Longer lists are replaced whole.
const maxSpliceCells = 1 << 20

func isArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}

func splitArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

// joinArray is the inverse of splitArray for compact input.
func joinArray(elems []json.RawMessage) json.RawMessage {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(e)
	}
	b.WriteByte(']')
	return b.Bytes()
}

// diffList returns the splice ops turning a into b. Each op covers one run
// between common elements of a longest common subsequence.
func diffList(a, b []json.RawMessage) []SpliceOp {
	n, m := len(a), len(b)
	if n*m > maxSpliceCells {
		return []SpliceOp{{At: 0, Remove: n, Insert: b}}
	}

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if bytes.Equal(a[i], b[j]) {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var ops []SpliceOp
	var cur *SpliceOp
	pos, i, j := 0, 0, 0
	flush := func() {
		if cur != nil {
			ops = append(ops, *cur)
			pos = cur.At + len(cur.Insert)
			cur = nil
		}
	}
	for i < n || j < m {
		switch {
		case i < n && j < m && bytes.Equal(a[i], b[j]):
			flush()
			i++
			j++
			pos++
		case j < m && (i == n || lcs[i][j+1] >= lcs[i+1][j]):
			if cur == nil {
				cur = &SpliceOp{At: pos}
			}
			cur.Insert = append(cur.Insert, b[j])
			j++
		default:
			if cur == nil {
				cur = &SpliceOp{At: pos}
			}
			cur.Remove++
			i++
		}
	}
	flush()
	return ops
}

// applySplice replays ops against a list.
func applySplice(elems []json.RawMessage, ops []SpliceOp) ([]json.RawMessage, error) {
	for k, op := range ops {
		if op.At < 0 || op.Remove < 0 || op.At+op.Remove > len(elems) {
			return nil, errors.Newf("splice op %d out of range: at %d remove %d of %d", k, op.At, op.Remove, len(elems))
		}
		next := make([]json.RawMessage, 0, len(elems)-op.Remove+len(op.Insert))
		next = append(next, elems[:op.At]...)
		next = append(next, op.Insert...)
		next = append(next, elems[op.At+op.Remove:]...)
		elems = next
	}
	return elems, nil
}

func spliceSize(ops []SpliceOp) int {
	size := 0
	for _, op := range ops {
		for _, e := range op.Insert {
			size += len(e)
		}
	}
	return size
}
