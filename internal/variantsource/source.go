package variantsource

import (
	"fmt"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

// Backend selects which VariantSource implementation a config-driven caller
// wants: cached in-memory, or one of the file-backed stores.
type Backend string

const (
	// BackendCached loads every variant into an in-memory interval index.
	// Fastest for repeated queries over a variant set that fits in memory.
	BackendCached Backend = "cached"
	// BackendKV persists variants to a local modernc.org/kv file, trading
	// some query latency for a bounded memory footprint.
	BackendKV Backend = "kv"
	// BackendDuckDB persists variants to an embedded DuckDB database,
	// appropriate for variant sets too large for BackendKV's linear scans.
	BackendDuckDB Backend = "duckdb"
)

// Open constructs the file-backed VariantSource named by backend; path names
// the on-disk store. Only BackendKV and BackendDuckDB are handled: any other
// backend, BackendCached included, returns an error (a cached source is built
// with NewCached instead).
func Open(backend Backend, path string) (design.VariantSource, error) {
	switch backend {
	case BackendKV:
		return OpenKV(path)
	case BackendDuckDB:
		return OpenDuckDB(path)
	default:
		return nil, fmt.Errorf("variantsource: unknown backend %q", backend)
	}
}
