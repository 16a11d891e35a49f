package provider

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/openagent-dev/openagent/internal/logging"
	"github.com/openagent-dev/openagent/internal/message"
)

// CorrelationError reports a response that violates the tool-call contract:
// a call without an identifier, without a name, or with a duplicate
// identifier. It is fatal; the dispatcher does not feed it back to the
// model.
type CorrelationError struct {
	CallID string
	Reason string
}

func (e *CorrelationError) Error() string {
	if e.CallID != "" {
		return fmt.Sprintf("tool call correlation violated for %q: %s", e.CallID, e.Reason)
	}
	return fmt.Sprintf("tool call correlation violated: %s", e.Reason)
}

// EncodeConversation translates canonical turns into Eino messages. The
// tool_use/tool_result pairing is validated before encoding; a conversation
// that fails it never reaches the vendor.
func EncodeConversation(system string, turns []message.Turn) ([]*schema.Message, error) {
	if err := message.ValidatePairing(turns); err != nil {
		return nil, fmt.Errorf("conversation is not well formed: %w", err)
	}

	msgs := make([]*schema.Message, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}

	for _, turn := range turns {
		switch turn.Role {
		case message.RoleAssistant:
			msg := &schema.Message{
				Role:    schema.Assistant,
				Content: turn.Text(),
			}
			for _, call := range turn.ToolCalls() {
				msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
					ID:   call.ID,
					Type: "function",
					Function: schema.FunctionCall{
						Name:      call.Name,
						Arguments: string(call.ArgumentsJSON()),
					},
				})
			}
			msgs = append(msgs, msg)

		case message.RoleUser:
			for _, result := range turn.ToolResults() {
				msgs = append(msgs, schema.ToolMessage(result.Output, result.CallID))
			}
			if text := turn.Text(); text != "" {
				msgs = append(msgs, schema.UserMessage(text))
			}

		default:
			return nil, fmt.Errorf("unsupported role %q", turn.Role)
		}
	}
	return msgs, nil
}

// DecodeResponse translates a vendor reply into canonical form, enforcing
// call identifier uniqueness and presence.
func DecodeResponse(msg *schema.Message) (*Response, error) {
	resp := &Response{Text: msg.Content}

	seen := make(map[string]bool, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		if tc.ID == "" {
			return nil, &CorrelationError{Reason: "tool call without an identifier"}
		}
		if tc.Function.Name == "" {
			return nil, &CorrelationError{CallID: tc.ID, Reason: "tool call without a name"}
		}
		if seen[tc.ID] {
			return nil, &CorrelationError{CallID: tc.ID, Reason: "duplicate call identifier"}
		}
		seen[tc.ID] = true

		args := make(map[string]any)
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				// Malformed arguments are recoverable: the tool rejects
				// them and the model gets an error result.
				logging.Warn().
					Str("call", tc.ID).
					Str("tool", tc.Function.Name).
					Msg("unparseable tool call arguments")
				args = make(map[string]any)
			}
		}

		resp.Calls = append(resp.Calls, message.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	if meta := msg.ResponseMeta; meta != nil && meta.Usage != nil {
		resp.Usage = Usage{
			Input:  meta.Usage.PromptTokens,
			Output: meta.Usage.CompletionTokens,
		}
	}
	return resp, nil
}
