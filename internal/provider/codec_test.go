package provider

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagent-dev/openagent/internal/message"
)

func TestEncodeConversation(t *testing.T) {
	turns := []message.Turn{
		message.UserText("list the files"),
		message.AssistantTurn("Listing now.", []message.ToolCall{
			{ID: "call_1", Name: "list_directory", Arguments: map[string]any{}},
		}),
		message.ResultsTurn([]message.ToolResult{
			{CallID: "call_1", Output: "a.txt\nb.txt"},
		}),
	}

	msgs, err := EncodeConversation("You are a coding agent.", turns)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)

	assert.Equal(t, schema.Assistant, msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[2].ToolCalls[0].ID)
	assert.Equal(t, "list_directory", msgs[2].ToolCalls[0].Function.Name)

	assert.Equal(t, schema.Tool, msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
}

func TestEncodeConversationRejectsUnansweredCalls(t *testing.T) {
	turns := []message.Turn{
		message.UserText("go"),
		message.AssistantTurn("", []message.ToolCall{{ID: "call_1", Name: "glob"}}),
	}

	_, err := EncodeConversation("", turns)
	assert.Error(t, err)
}

func TestEncodeConversationRejectsMismatchedResult(t *testing.T) {
	turns := []message.Turn{
		message.AssistantTurn("", []message.ToolCall{{ID: "call_1", Name: "glob"}}),
		message.ResultsTurn([]message.ToolResult{{CallID: "call_other", Output: "x"}}),
	}

	_, err := EncodeConversation("", turns)
	assert.Error(t, err)
}

func TestDecodeResponse(t *testing.T) {
	msg := &schema.Message{
		Role:    schema.Assistant,
		Content: "Running the search.",
		ToolCalls: []schema.ToolCall{
			{ID: "call_a", Function: schema.FunctionCall{Name: "grep", Arguments: `{"pattern":"TODO"}`}},
			{ID: "call_b", Function: schema.FunctionCall{Name: "glob", Arguments: `{"pattern":"*.go"}`}},
		},
	}

	resp, err := DecodeResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, "Running the search.", resp.Text)
	require.Len(t, resp.Calls, 2)
	assert.Equal(t, "grep", resp.Calls[0].Name)
	assert.Equal(t, "TODO", resp.Calls[0].Arguments["pattern"])
}

func TestDecodeResponseCorrelationErrors(t *testing.T) {
	tests := []struct {
		name  string
		calls []schema.ToolCall
	}{
		{
			name:  "missing id",
			calls: []schema.ToolCall{{Function: schema.FunctionCall{Name: "glob"}}},
		},
		{
			name:  "missing name",
			calls: []schema.ToolCall{{ID: "call_1"}},
		},
		{
			name: "duplicate id",
			calls: []schema.ToolCall{
				{ID: "call_1", Function: schema.FunctionCall{Name: "glob"}},
				{ID: "call_1", Function: schema.FunctionCall{Name: "grep"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(&schema.Message{Role: schema.Assistant, ToolCalls: tt.calls})
			require.Error(t, err)
			var ce *CorrelationError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestDecodeResponseMalformedArguments(t *testing.T) {
	msg := &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "glob", Arguments: `{not json`}},
		},
	}

	resp, err := DecodeResponse(msg)
	require.NoError(t, err, "malformed arguments are recoverable, not a correlation violation")
	require.Len(t, resp.Calls, 1)
	assert.Empty(t, resp.Calls[0].Arguments)
}

func TestDecodeResponseUsage(t *testing.T) {
	msg := &schema.Message{
		Role:    schema.Assistant,
		Content: "done",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 30},
		},
	}

	resp, err := DecodeResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, Usage{Input: 120, Output: 30}, resp.Usage)
}
