package rollback

import (
	"fmt"

	"github.com/roach88/markord/internal/entity"
)

// Commands enqueues deferred work against a Session.
type Commands struct {
	s *Session
}

// Commands returns a command buffer for the session.
func (s *Session) Commands() *Commands {
	return &Commands{s: s}
}

// Spawn reserves a new entity handle. Components are added through the
// returned EntityCommands and take effect at the next Flush.
func (c *Commands) Spawn() *EntityCommands {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.isClosed() {
		return &EntityCommands{c: c, err: ErrSessionClosed}
	}
	return &EntityCommands{c: c, id: s.alloc.Alloc()}
}

// Entity returns commands for an existing entity.
func (c *Commands) Entity(h entity.Handle) *EntityCommands {
	return &EntityCommands{c: c, id: h}
}

// Despawn queues removal of an entity. Its marker, if any, stays registered.
func (c *Commands) Despawn(h entity.Handle) error {
	return c.enqueue(Command{Type: CommandDespawn, Entity: h})
}

// RegisterMarker queues registration of a marker that was not minted by this
// session's allocator, such as one received from a remote peer.
func (c *Commands) RegisterMarker(m Marker) error {
	return c.enqueue(Command{Type: CommandRegisterMarker, Marker: m})
}

func (c *Commands) enqueue(cmd Command) error {
	if !c.s.queue.Enqueue(cmd) {
		return fmt.Errorf("enqueue %s: %w", cmd.Type, ErrSessionClosed)
	}
	return nil
}

// EntityCommands queues commands for a single entity.
type EntityCommands struct {
	c   *Commands
	id  entity.Handle
	err error
}

// ID returns the entity handle.
func (e *EntityCommands) ID() entity.Handle {
	return e.id
}

// AddRollback queues tagging the entity with a rollback marker. The marker
// is registered when the command is applied.
func (e *EntityCommands) AddRollback() *EntityCommands {
	if e.err != nil {
		return e
	}
	e.err = e.c.enqueue(Command{Type: CommandAddRollback, Entity: e.id})
	return e
}

// Err returns the first error from queueing commands for this entity.
func (e *EntityCommands) Err() error {
	return e.err
}
