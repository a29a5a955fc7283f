// Package cache provides file-based caching with time-based invalidation for
// expensive upstream calls made during a report run.
//
// Each key is stored as one JSON file in the configured directory:
//
//	{
//	  "cached_at": "2024-03-01T14:22:05.123456",
//	  "data": <arbitrary JSON value>
//	}
//
// Key features:
//   - One file per key, named <key>.json for plain keys and hashed otherwise
//   - Lazy freshness check at read time (no background sweep)
//   - Stale and corrupt entries are reported as misses but left on disk
//   - Best-effort writes: failures are logged, never returned
//
// The store is built for a single-process, single-writer scheduled job. It
// holds no in-memory state and takes no locks, so two stores on the same
// directory observe each other's writes and concurrent writers to one key race
// (last rename wins).
package cache
