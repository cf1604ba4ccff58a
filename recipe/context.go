package recipe

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ExecutionContext is shared by every editor during one run. It is safe for
// concurrent use: files of a cycle are edited in parallel.
type ExecutionContext struct {
	ctx    context.Context
	logger *zap.SugaredLogger
	cycle  atomic.Int32

	mu       sync.Mutex
	messages map[string]any
}

// NewExecutionContext returns a context for one run. A nil logger discards.
func NewExecutionContext(ctx context.Context, logger *zap.SugaredLogger) *ExecutionContext {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ExecutionContext{ctx: ctx, logger: logger, messages: map[string]any{}}
}

func (c *ExecutionContext) Context() context.Context { return c.ctx }

func (c *ExecutionContext) Logger() *zap.SugaredLogger { return c.logger }

// Cycle returns the current cycle, starting at 1.
func (c *ExecutionContext) Cycle() int { return int(c.cycle.Load()) }

func (c *ExecutionContext) setCycle(n int) { c.cycle.Store(int32(n)) }

// PutMessage stores a value for later editors and cycles.
func (c *ExecutionContext) PutMessage(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[key] = v
}

func (c *ExecutionContext) Message(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.messages[key]
	return v, ok
}

// ComputeMessage replaces the value under key with f(old) atomically and
// returns the new value. old is nil when key is unset.
func (c *ExecutionContext) ComputeMessage(key string, f func(old any) any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := f(c.messages[key])
	c.messages[key] = v
	return v
}
