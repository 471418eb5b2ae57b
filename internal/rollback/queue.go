package rollback

import (
	"sync"

	"github.com/roach88/markord/internal/entity"
)

// CommandType distinguishes deferred command kinds.
type CommandType int

const (
	// CommandAddRollback tags an entity with a marker and registers it.
	CommandAddRollback CommandType = iota + 1
	// CommandRegisterMarker registers a marker minted outside this session's allocator.
	CommandRegisterMarker
	// CommandDespawn frees an entity slot. Its marker stays registered.
	CommandDespawn
)

// String returns the command name used in logs and traces.
func (t CommandType) String() string {
	switch t {
	case CommandAddRollback:
		return "add_rollback"
	case CommandRegisterMarker:
		return "register_marker"
	case CommandDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

// Command is a deferred operation applied by Session.Flush.
type Command struct {
	Type   CommandType
	Entity entity.Handle
	Marker Marker // CommandRegisterMarker only
}

// commandQueue is a thread-safe FIFO queue of deferred commands.
//
// Any goroutine may enqueue. Only Session.Flush drains, so commands are
// applied one at a time in enqueue order.
type commandQueue struct {
	mu       sync.Mutex
	commands []Command
	closed   bool
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		commands: make([]Command, 0, 64),
	}
}

// Enqueue adds a command to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.commands = append(q.commands, c)
	return true
}

// TryDequeue removes and returns the front command.
// Returns (Command{}, false) if the queue is empty.
func (q *commandQueue) TryDequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return Command{}, false
	}

	c := q.commands[0]
	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}
	return c, true
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Close rejects further enqueues. Commands already queued can still be drained.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *commandQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
