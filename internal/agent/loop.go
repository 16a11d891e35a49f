package agent

import (
	"context"
	"fmt"

	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/logging"
	"github.com/openagent-dev/openagent/internal/message"
	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/provider"
	"github.com/openagent-dev/openagent/internal/tool"
)

// RoundResult is the outcome of one chat round.
type RoundResult struct {
	// Text is the final assistant text, empty when the round was stopped at
	// a budget pause.
	Text string

	// Calls and Results accumulate every tool call executed this round, in
	// order.
	Calls   []message.ToolCall
	Results []message.ToolResult

	// Stopped is set when the user declined to continue past the budget.
	Stopped bool

	Usage provider.Usage
}

// Chat runs one round: the user message is committed, then the loop
// alternates model turns and tool execution until the model stops calling
// tools, the budget pause is declined, or the context is cancelled. Each
// assistant turn and its results turn are committed together; cancellation
// mid-execution leaves no partial unit in the log.
func (a *Agent) Chat(ctx context.Context, text string) (*RoundResult, error) {
	a.perms.ResetRound()
	budget := NewBudget(a.opts.BudgetThreshold)
	result := &RoundResult{}

	a.conv.Append(message.UserText(text))

	for iter := 0; ; iter++ {
		if iter >= maxIterations {
			return nil, fmt.Errorf("round exceeded %d model turns", maxIterations)
		}

		resp, err := a.adapter.Complete(ctx, &provider.Request{
			System: a.opts.SystemPrompt,
			Turns:  a.conv.Turns(),
			Tools:  a.tools.Infos(),
		})
		if err != nil {
			return nil, err
		}
		result.Usage.Input += resp.Usage.Input
		result.Usage.Output += resp.Usage.Output

		if len(resp.Calls) == 0 {
			a.conv.Append(message.AssistantTurn(resp.Text, nil))
			result.Text = resp.Text
			return result, nil
		}

		results, err := a.executeCalls(ctx, resp.Calls)
		if err != nil {
			return nil, err
		}

		// The assistant turn and its results commit as one unit so the
		// pairing invariant holds at every point of the log.
		a.conv.Append(
			message.AssistantTurn(resp.Text, resp.Calls),
			message.ResultsTurn(results),
		)
		result.Calls = append(result.Calls, resp.Calls...)
		result.Results = append(result.Results, results...)

		budget.Spend(len(results))
		if budget.Exhausted() {
			ok, err := a.opts.OnContinue(ctx, budget.Count())
			if err != nil {
				return nil, err
			}
			if !ok {
				logging.Info().Int("executed", budget.Count()).Msg("round stopped at budget pause")
				result.Stopped = true
				return result, nil
			}
			budget.Raise()
		}
	}
}

// executeCalls runs tool calls sequentially in received order. Unknown
// tools, denials and tool failures become error results; only context
// cancellation aborts the round.
func (a *Agent) executeCalls(ctx context.Context, calls []message.ToolCall) ([]message.ToolResult, error) {
	results := make([]message.ToolResult, 0, len(calls))
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		event.Publish(event.Event{
			Type: event.ToolStarted,
			Data: event.ToolStartedData{CallID: call.ID, Tool: call.Name},
		})

		res, err := a.executeCall(ctx, call)
		if err != nil {
			return nil, err
		}
		results = append(results, res)

		event.Publish(event.Event{
			Type: event.ToolCompleted,
			Data: event.ToolCompletedData{CallID: call.ID, Tool: call.Name, IsError: res.IsError},
		})
	}
	return results, nil
}

func (a *Agent) executeCall(ctx context.Context, call message.ToolCall) (message.ToolResult, error) {
	errorResult := func(msg string) message.ToolResult {
		return message.ToolResult{CallID: call.ID, Output: msg, IsError: true}
	}

	tl, ok := a.tools.Get(call.Name)
	if !ok {
		logging.Warn().Str("tool", call.Name).Msg("model called unregistered tool")
		return errorResult((&tool.UnknownToolError{Name: call.Name}).Error()), nil
	}

	tc := &tool.Context{WorkDir: a.opts.WorkDir, CallID: call.ID}
	input := call.ArgumentsJSON()

	if gated, ok := tl.(tool.Permissioned); ok {
		req, err := gated.PermissionRequest(input, tc)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		decision, err := a.perms.Ask(ctx, req)
		if ctx.Err() != nil {
			return message.ToolResult{}, ctx.Err()
		}
		if err != nil || decision == permission.Denied {
			denied := &permission.DeniedError{
				Operation: req.Operation,
				Message:   fmt.Sprintf("Permission denied: %s", permission.Title(req)),
			}
			return errorResult(denied.Error()), nil
		}
	}

	res, err := tl.Execute(ctx, input, tc)
	if err != nil {
		if ctx.Err() != nil {
			return message.ToolResult{}, ctx.Err()
		}
		return errorResult(err.Error()), nil
	}
	return message.ToolResult{CallID: call.ID, Output: res.Output}, nil
}
