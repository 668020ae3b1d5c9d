package grove

import "github.com/jward/grove/internal/store"

// Public type aliases for internal store types used in the QueryBuilder API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Node = store.Node
type ID = store.ID
