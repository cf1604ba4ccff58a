package rpc

import (
	"encoding/json"
	"io"
	"sync"
)

// chanConn is an in-memory Conn. Messages pass through JSON so both ends
// see exactly what the websocket would carry.
type chanConn struct {
	in   <-chan json.RawMessage
	out  chan<- json.RawMessage
	once sync.Once
	done chan struct{}
}

func (c *chanConn) ReadJSON(v any) error {
	select {
	case raw, ok := <-c.in:
		if !ok {
			return io.EOF
		}
		return json.Unmarshal(raw, v)
	case <-c.done:
		return io.EOF
	}
}

func (c *chanConn) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c.out <- raw:
		return nil
	case <-c.done:
		return io.ErrClosedPipe
	}
}

func (c *chanConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// connPair returns two connected ends.
func connPair() (*chanConn, *chanConn) {
	ab := make(chan json.RawMessage, 32)
	ba := make(chan json.RawMessage, 32)
	a := &chanConn{in: ba, out: ab, done: make(chan struct{})}
	b := &chanConn{in: ab, out: ba, done: make(chan struct{})}
	return a, b
}
