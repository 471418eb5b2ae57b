package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/markord/internal/rollback"
)

// DomainOrder separates order digests from any other SHA-256 use.
const DomainOrder = "markord/order/v1"

// Entry is one marker and its order index.
type Entry struct {
	Marker rollback.Marker `json:"marker"`
	Order  int             `json:"order"`
}

// Snapshot is the full ordering of a registry at one point in time.
type Snapshot struct {
	Session string  `json:"session,omitempty"`
	Entries []Entry `json:"entries"`
}

// Build captures every marker in r, in sort order.
func Build(session string, r rollback.Reader[rollback.Marker]) Snapshot {
	entries := make([]Entry, 0, r.Len())
	for m := range r.All() {
		entries = append(entries, Entry{Marker: m, Order: r.OrderOf(m)})
	}
	return Snapshot{Session: session, Entries: entries}
}

// entriesList converts entries to canonical values. Marker bits are
// rendered as decimal strings so 64-bit values survive JSON consumers
// with 53-bit integers.
func (s Snapshot) entriesList() []any {
	list := make([]any, len(s.Entries))
	for i, e := range s.Entries {
		list[i] = map[string]any{
			"marker": e.Marker.Handle().String(),
			"bits":   fmt.Sprintf("%d", uint64(e.Marker)),
			"order":  e.Order,
		}
	}
	return list
}

// Canonical returns the snapshot as a value accepted by MarshalCanonical.
func (s Snapshot) Canonical() map[string]any {
	obj := map[string]any{
		"entries": s.entriesList(),
	}
	if s.Session != "" {
		obj["session"] = s.Session
	}
	return obj
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(s.Canonical())
}

// Digest returns the hex SHA-256 of the canonical entries, with domain
// separation. The session name is excluded so peers can compare orderings.
//
// Format: SHA256(domain + 0x00 + canonical(entries))
func (s Snapshot) Digest() (string, error) {
	data, err := MarshalCanonical(s.entriesList())
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainOrder))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
