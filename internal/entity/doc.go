// Package entity allocates the generational handles that rollback markers
// are derived from.
//
// A Handle names a slot (Index) and the number of times that slot has been
// recycled (Generation). Freed slots are reused last-in first-out with a
// bumped generation, so a handle is never handed out twice.
//
// Handle.Bits packs the handle index-major: a recycled low slot produces a
// value smaller than handles allocated after it. Registries keyed on these
// bits must tolerate out-of-order registration.
package entity
