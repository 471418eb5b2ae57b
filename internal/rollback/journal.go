package rollback

import (
	"context"
	"fmt"
)

// Registration records one applied registration.
type Registration struct {
	// Seq is the logical clock value when the marker was registered.
	Seq int64 `json:"seq"`

	// Marker is the registered marker.
	Marker Marker `json:"marker"`

	// Order is the index assigned to Marker at insertion time.
	Order int `json:"order"`

	// Shifted is the number of previously registered markers whose index
	// increased by one because of this registration.
	Shifted int `json:"shifted"`
}

// Journal receives registration events from a Session.
//
// A journal is an audit log. Sessions never read it back.
type Journal interface {
	CreateSession(ctx context.Context, token, name string, seq int64) error
	WriteRegistration(ctx context.Context, token string, reg Registration) error
}

// ReplayMismatch describes a journaled registration whose recorded index
// differs from the index a fresh registry assigns.
type ReplayMismatch struct {
	Seq      int64  `json:"seq"`
	Marker   Marker `json:"marker"`
	Recorded int    `json:"recorded"`
	Replayed int    `json:"replayed"`
}

// String renders the mismatch for CLI output.
func (m ReplayMismatch) String() string {
	return fmt.Sprintf("seq %d %s: recorded order %d, replayed %d", m.Seq, m.Marker, m.Recorded, m.Replayed)
}

// Replay registers journaled markers, in the order given, into a fresh
// registry and compares each assigned index with the recorded one.
//
// Registrations must be ordered by Seq. A marker that appears twice is
// reported as an error rather than a panic, since the input is external data.
func Replay(regs []Registration) (*Registry[Marker], []ReplayMismatch, error) {
	r := NewRegistry[Marker]()
	var mismatches []ReplayMismatch

	for _, reg := range regs {
		if r.Contains(reg.Marker) {
			return nil, nil, fmt.Errorf("replay seq %d: %w: %s", reg.Seq, ErrMarkerExists, reg.Marker)
		}
		idx := r.register(reg.Marker)
		if idx != reg.Order {
			mismatches = append(mismatches, ReplayMismatch{
				Seq:      reg.Seq,
				Marker:   reg.Marker,
				Recorded: reg.Order,
				Replayed: idx,
			})
		}
	}

	return r, mismatches, nil
}
