package lathe

import "github.com/jward/lathe/internal/store"

// Public type aliases for internal store types used in the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time.

type Store = store.Store
type Run = store.Run
type RunFile = store.RunFile
