package rollback

import (
	"fmt"

	"github.com/roach88/markord/internal/entity"
)

// Marker flags an entity as included in rollback save/load.
//
// Markers compare by the bit pattern of the entity handle they were minted
// from. They are never mutated after creation.
type Marker uint64

// newMarker creates the marker for an entity handle.
func newMarker(h entity.Handle) Marker {
	return Marker(h.Bits())
}

// Handle returns the entity handle the marker was minted from.
func (m Marker) Handle() entity.Handle {
	return entity.FromBits(uint64(m))
}

// String renders the marker with its originating handle.
func (m Marker) String() string {
	return fmt.Sprintf("marker(%s)", m.Handle())
}
