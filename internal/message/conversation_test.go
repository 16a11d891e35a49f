package message

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagent-dev/openagent/internal/event"
)

func TestConversationAppend(t *testing.T) {
	event.Reset()
	c := NewConversation()

	c.Append(UserText("hi"))
	c.Append(
		AssistantTurn("", []ToolCall{{ID: "c1", Name: "glob"}}),
		ResultsTurn([]ToolResult{{CallID: "c1", Output: "ok"}}),
	)

	require.Equal(t, 3, c.Len())
	require.NoError(t, ValidatePairing(c.Turns()))
}

func TestConversationSnapshotIsolation(t *testing.T) {
	event.Reset()
	c := NewConversation()
	c.Append(UserText("one"))

	snapshot := c.Turns()
	c.Append(UserText("two"))

	assert.Len(t, snapshot, 1)
	assert.Len(t, c.Turns(), 2)
}

func TestConversationPublishesTurnAppended(t *testing.T) {
	event.Reset()

	var mu sync.Mutex
	var roles []string
	defer event.Subscribe(event.TurnAppended, func(e event.Event) {
		mu.Lock()
		roles = append(roles, e.Data.(event.TurnAppendedData).Role)
		mu.Unlock()
	})()

	c := NewConversation()
	c.Append(UserText("hi"))
	c.Append(AssistantTurn("hello", nil))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(roles) == 2
	}, time.Second, 10*time.Millisecond)
}
