// Package store provides the SQLite-backed registration journal.
//
// The journal is an append-only audit log:
//   - sessions: one row per Session (token, name)
//   - registrations: one row per registered marker, with the index it was
//     assigned at insertion and how many markers it shifted
//
// Sessions never load their ordering back from the journal. The journal exists
// so `markord trace` can show how an ordering was built and `markord replay`
// can verify that rebuilding it is deterministic.
//
// # Ordering
//
// All registration reads use ORDER BY seq ASC. seq is the session's logical
// clock, never a wall-clock timestamp.
//
// # Marker encoding
//
// Markers are uint64 bit patterns. SQLite integers are signed, so markers are
// stored as int64 with the same bits and converted back on read. SQL never
// compares markers by value.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
