package message

import (
	"sync"

	"github.com/openagent-dev/openagent/internal/event"
)

// Conversation is an append-only log of turns owned by a single agent
// instance. Turns are copied out on read; history is never edited in place.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append commits one or more turns to the log. The commit is all-or-nothing:
// callers stage a complete unit (e.g. an assistant turn plus its results
// turn) and append it in a single call.
func (c *Conversation) Append(turns ...Turn) {
	c.mu.Lock()
	c.turns = append(c.turns, turns...)
	c.mu.Unlock()

	for _, t := range turns {
		event.Publish(event.Event{
			Type: event.TurnAppended,
			Data: event.TurnAppendedData{Role: string(t.Role)},
		})
	}
}

// Turns returns a snapshot of the log.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of committed turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}
