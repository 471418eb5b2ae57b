// Package rollback tracks which entities take part in rollback save/load and
// gives every tagged entity a stable, deterministic order index.
//
// ARCHITECTURE:
//
// Registry:
// Registry holds markers in a sorted slice plus a reverse map from marker to
// position. Registration appends and then swaps the new marker backward while
// its predecessor is strictly greater. Markers normally arrive in increasing
// order, so the scan usually stops after one comparison. A recycled entity
// slot can produce a smaller marker; then only the run of larger markers
// shifts up by one.
//
// Registration is unexported. The only way in is a command applied by
// Session.Flush, which mints the marker from the entity handle and registers
// it before any other code can observe it.
//
// Session:
// Session is the explicit context for one simulation: entity allocator,
// marker registry, logical clock, deferred command queue, optional journal.
// Commands may be enqueued from any goroutine. Flush drains the queue in FIFO
// order on the calling goroutine, which is the single synchronization point
// where registrations happen.
//
// CONTRACT VIOLATIONS:
//
// OrderOf on a marker that was never registered, and registering a marker
// twice, are caller bugs. Both panic with a *ContractError. Use Lookup when a
// missing marker is an expected outcome.
package rollback
