package train

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// runEntropy is the monotonic entropy source every RunID draws from,
// the same ulid.Monotonic(rand.Reader, 0) shape as pkg/korel/cards.Builder
// (spec §4.4 has no run-identifier concept of its own; this gives the
// progress log and, downstream, the autotune ledger a sortable handle
// on "which training invocation produced this line").
var (
	runEntropyMu sync.Mutex
	runEntropy   = ulid.Monotonic(rand.Reader, 0)
)

// RunID returns a fresh, time-sortable identifier for one Driver.Run
// invocation.
func RunID() string {
	runEntropyMu.Lock()
	defer runEntropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), runEntropy).String()
}
