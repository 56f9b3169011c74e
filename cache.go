package llmdispatch

import "time"

// ResponseCache is the content-addressed response store consulted by
// the dispatcher. Implementations own their underlying storage
// exclusively and absorb read failures as misses; the cache is an
// optimization and must never become a point of total-system failure.
type ResponseCache interface {
	// Get returns the cached Result for a fingerprint, or false when
	// absent (including when the stored payload is unreadable). The
	// dispatcher copies the returned Result before handing it to a
	// caller, so implementations may return a shared pointer.
	Get(fingerprint string) (*Result, bool)

	// Set stores a Result under a fingerprint. Insert-or-replace:
	// writing the same fingerprint twice is not an error and the
	// second write wins.
	Set(fingerprint string, result *Result) error

	// Clear removes all entries.
	Clear() error

	// Stats reports the cache's current shape.
	Stats() (CacheStats, error)

	// Close releases the underlying store.
	Close() error
}

// CacheStats describes the cache contents and its in-process hit rate.
type CacheStats struct {
	Entries int64
	Oldest  time.Time
	Newest  time.Time
	Hits    int64
	Misses  int64
}
