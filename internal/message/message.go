// Package message defines the vendor-independent conversation model: tool
// calls, tool results, and the append-only turn log shared by every provider
// adapter.
package message

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall is the canonical form of a model-issued tool invocation.
// The ID is unique within one dispatch round and is consumed exactly once.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ArgumentsJSON returns the call arguments encoded as JSON.
func (c ToolCall) ArgumentsJSON() json.RawMessage {
	data, err := json.Marshal(c.Arguments)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// ToolResult is the canonical outcome of one tool call. CallID must match
// the originating ToolCall.
type ToolResult struct {
	CallID  string `json:"callID"`
	Output  string `json:"output"`
	IsError bool   `json:"isError"`
}

// Block is one content element of a turn.
type Block interface {
	blockType() string
}

// TextBlock carries assistant or user prose.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) blockType() string { return "text" }

// ToolUseBlock carries a tool invocation inside an assistant turn.
type ToolUseBlock struct {
	Call ToolCall `json:"call"`
}

func (ToolUseBlock) blockType() string { return "tool_use" }

// ToolResultBlock carries a tool outcome inside a user turn.
type ToolResultBlock struct {
	Result ToolResult `json:"result"`
}

func (ToolResultBlock) blockType() string { return "tool_result" }

// Turn is one entry of the conversation log. Turns are never mutated after
// being appended.
type Turn struct {
	Role   Role    `json:"role"`
	Blocks []Block `json:"blocks"`
}

// Text concatenates all text blocks of the turn.
func (t Turn) Text() string {
	var out string
	for _, b := range t.Blocks {
		if tb, ok := b.(TextBlock); ok {
			out += tb.Text
		}
	}
	return out
}

// ToolCalls returns the tool invocations carried by the turn, in order.
func (t Turn) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, b := range t.Blocks {
		if tu, ok := b.(ToolUseBlock); ok {
			calls = append(calls, tu.Call)
		}
	}
	return calls
}

// ToolResults returns the tool results carried by the turn, in order.
func (t Turn) ToolResults() []ToolResult {
	var results []ToolResult
	for _, b := range t.Blocks {
		if tr, ok := b.(ToolResultBlock); ok {
			results = append(results, tr.Result)
		}
	}
	return results
}

// UserText builds a plain user turn.
func UserText(text string) Turn {
	return Turn{Role: RoleUser, Blocks: []Block{TextBlock{Text: text}}}
}

// AssistantTurn builds an assistant turn from text plus zero or more tool
// invocations.
func AssistantTurn(text string, calls []ToolCall) Turn {
	turn := Turn{Role: RoleAssistant}
	if text != "" {
		turn.Blocks = append(turn.Blocks, TextBlock{Text: text})
	}
	for _, c := range calls {
		turn.Blocks = append(turn.Blocks, ToolUseBlock{Call: c})
	}
	return turn
}

// ResultsTurn builds the user turn carrying tool results back to the model.
func ResultsTurn(results []ToolResult) Turn {
	turn := Turn{Role: RoleUser}
	for _, r := range results {
		turn.Blocks = append(turn.Blocks, ToolResultBlock{Result: r})
	}
	return turn
}

// ValidatePairing checks the tool_use/tool_result invariant across a turn
// sequence: every tool_use block must be answered by exactly one tool_result
// with the same call ID in the following turn.
func ValidatePairing(turns []Turn) error {
	for i, turn := range turns {
		calls := turn.ToolCalls()
		if len(calls) == 0 {
			continue
		}

		if i+1 >= len(turns) {
			return fmt.Errorf("turn %d has %d unanswered tool call(s)", i, len(calls))
		}

		results := turns[i+1].ToolResults()
		byID := make(map[string]int, len(results))
		for _, r := range results {
			byID[r.CallID]++
		}

		for _, c := range calls {
			switch byID[c.ID] {
			case 0:
				return fmt.Errorf("tool call %q has no result in the following turn", c.ID)
			case 1:
			default:
				return fmt.Errorf("tool call %q has %d results", c.ID, byID[c.ID])
			}
		}

		if len(results) != len(calls) {
			return fmt.Errorf("turn %d carries %d results for %d calls", i+1, len(results), len(calls))
		}
	}
	return nil
}
