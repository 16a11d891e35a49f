package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openagent-dev/openagent/internal/agent"
	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/message"
	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/provider"
	"github.com/openagent-dev/openagent/internal/tool"
)

// scriptedAdapter replays canned responses and records every request it
// receives.
type scriptedAdapter struct {
	responses []*provider.Response
	errs      []error
	requests  []*provider.Request
	idx       int
}

func (s *scriptedAdapter) ID() string               { return "scripted" }
func (s *scriptedAdapter) Name() string             { return "Scripted" }
func (s *scriptedAdapter) Models() []provider.Model { return nil }

func (s *scriptedAdapter) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	s.requests = append(s.requests, req)
	i := s.idx
	s.idx++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		return &provider.Response{Text: "out of script"}, nil
	}
	return s.responses[i], nil
}

func callTo(id, name string, args map[string]any) message.ToolCall {
	if args == nil {
		args = map[string]any{}
	}
	return message.ToolCall{ID: id, Name: name, Arguments: args}
}

var _ = Describe("Dispatch Loop", func() {
	var (
		adapter  *scriptedAdapter
		registry *tool.Registry
		perms    *permission.Channel
	)

	BeforeEach(func() {
		event.Reset()
		adapter = &scriptedAdapter{}
		registry = tool.NewRegistry()

		registry.RegisterFunc("succeed", "Always succeeds.", json.RawMessage(`{"type":"object","properties":{}}`),
			func(ctx context.Context, input json.RawMessage, tc *tool.Context) (*tool.Result, error) {
				return &tool.Result{Title: "ok", Output: "it worked"}, nil
			})
		registry.RegisterFunc("explode", "Always fails.", json.RawMessage(`{"type":"object","properties":{}}`),
			func(ctx context.Context, input json.RawMessage, tc *tool.Context) (*tool.Result, error) {
				return nil, errors.New("tool blew up")
			})

		perms = permission.NewChannel(permission.Options{YoloMode: true})
	})

	newAgent := func(opts agent.Options) *agent.Agent {
		return agent.New(adapter, registry, perms, opts)
	}

	Describe("a round without tool calls", func() {
		It("returns the text and commits user and assistant turns", func() {
			adapter.responses = []*provider.Response{{Text: "hello there"}}
			a := newAgent(agent.Options{})

			res, err := a.Chat(context.Background(), "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("hello there"))
			Expect(res.Calls).To(BeEmpty())

			turns := a.Conversation().Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Role).To(Equal(message.RoleUser))
			Expect(turns[1].Role).To(Equal(message.RoleAssistant))
		})
	})

	Describe("tool execution", func() {
		It("feeds results back and loops until the model stops", func() {
			adapter.responses = []*provider.Response{
				{Text: "running a tool", Calls: []message.ToolCall{callTo("call_1", "succeed", nil)}},
				{Text: "all done"},
			}
			a := newAgent(agent.Options{})

			res, err := a.Chat(context.Background(), "do the thing")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("all done"))
			Expect(res.Results).To(HaveLen(1))
			Expect(res.Results[0].IsError).To(BeFalse())
			Expect(res.Results[0].Output).To(Equal("it worked"))

			// Second request carries the executed call and its result.
			Expect(adapter.requests).To(HaveLen(2))
			turns := adapter.requests[1].Turns
			Expect(message.ValidatePairing(turns)).To(Succeed())
		})

		It("keeps going when one of two calls fails", func() {
			adapter.responses = []*provider.Response{
				{Calls: []message.ToolCall{
					callTo("call_1", "succeed", nil),
					callTo("call_2", "explode", nil),
				}},
				{Text: "recovered"},
			}
			a := newAgent(agent.Options{})

			res, err := a.Chat(context.Background(), "go")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("recovered"))

			Expect(res.Results).To(HaveLen(2))
			Expect(res.Results[0].IsError).To(BeFalse())
			Expect(res.Results[1].IsError).To(BeTrue())
			Expect(res.Results[1].Output).To(ContainSubstring("tool blew up"))

			// Both results were committed before the next model turn.
			turns := a.Conversation().Turns()
			Expect(turns).To(HaveLen(4))
			Expect(turns[2].ToolResults()).To(HaveLen(2))
		})

		It("reports unknown tools as error results without aborting", func() {
			adapter.responses = []*provider.Response{
				{Calls: []message.ToolCall{callTo("call_1", "no_such_tool", nil)}},
				{Text: "noted"},
			}
			a := newAgent(agent.Options{})

			res, err := a.Chat(context.Background(), "go")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Results).To(HaveLen(1))
			Expect(res.Results[0].IsError).To(BeTrue())
			Expect(res.Results[0].Output).To(ContainSubstring("unknown tool"))
		})

		It("turns a permission denial into an error result containing denied", func() {
			perms = permission.NewChannel(permission.Options{
				DeleteFileProtection: true,
				Callback: func(ctx context.Context, req permission.Request) (permission.Decision, error) {
					return permission.Denied, nil
				},
			})
			registry.Register(tool.NewDeleteTool())

			adapter.responses = []*provider.Response{
				{Calls: []message.ToolCall{callTo("call_1", "delete_file", map[string]any{"path": "x.txt"})}},
				{Text: "understood"},
			}
			a := newAgent(agent.Options{WorkDir: GinkgoT().TempDir()})

			res, err := a.Chat(context.Background(), "delete it")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Results).To(HaveLen(1))
			Expect(res.Results[0].IsError).To(BeTrue())
			Expect(res.Results[0].Output).To(ContainSubstring("denied"))
		})
	})

	Describe("the tool-call budget", func() {
		manyCalls := func(n int) []*provider.Response {
			responses := make([]*provider.Response, 0, n+1)
			for i := 0; i < n; i++ {
				responses = append(responses, &provider.Response{
					Calls: []message.ToolCall{callTo(fmt.Sprintf("call_%d", i), "succeed", nil)},
				})
			}
			return append(responses, &provider.Response{Text: "finished"})
		}

		It("pauses at the threshold and again at twice the threshold", func() {
			adapter.responses = manyCalls(5)

			var pauses []int
			a := newAgent(agent.Options{
				BudgetThreshold: 2,
				OnContinue: func(ctx context.Context, executed int) (bool, error) {
					pauses = append(pauses, executed)
					return true, nil
				},
			})

			res, err := a.Chat(context.Background(), "go")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("finished"))
			Expect(res.Results).To(HaveLen(5))
			Expect(pauses).To(Equal([]int{2, 4}))
		})

		It("stops the round when continuation is declined", func() {
			adapter.responses = manyCalls(5)

			a := newAgent(agent.Options{
				BudgetThreshold: 2,
				OnContinue: func(ctx context.Context, executed int) (bool, error) {
					return false, nil
				},
			})

			res, err := a.Chat(context.Background(), "go")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(res.Text).To(BeEmpty())
			Expect(res.Results).To(HaveLen(2))

			// Committed turns stay well formed at the stop point.
			Expect(message.ValidatePairing(a.Conversation().Turns())).To(Succeed())
		})
	})

	Describe("fatal conditions", func() {
		It("surfaces correlation errors without committing the turn", func() {
			adapter.errs = []error{&provider.CorrelationError{Reason: "duplicate call identifier"}}
			a := newAgent(agent.Options{})

			_, err := a.Chat(context.Background(), "go")
			var ce *provider.CorrelationError
			Expect(errors.As(err, &ce)).To(BeTrue())

			// Only the user turn was committed.
			Expect(a.Conversation().Len()).To(Equal(1))
		})

		It("aborts without partial commit when cancelled during execution", func() {
			ctx, cancel := context.WithCancel(context.Background())
			registry.RegisterFunc("block", "Cancels the round.", json.RawMessage(`{"type":"object","properties":{}}`),
				func(ctx context.Context, input json.RawMessage, tc *tool.Context) (*tool.Result, error) {
					cancel()
					return nil, ctx.Err()
				})

			adapter.responses = []*provider.Response{
				{Calls: []message.ToolCall{
					callTo("call_1", "succeed", nil),
					callTo("call_2", "block", nil),
					callTo("call_3", "succeed", nil),
				}},
			}
			a := newAgent(agent.Options{})

			_, err := a.Chat(ctx, "go")
			Expect(err).To(MatchError(context.Canceled))

			// The assistant turn and the first result never reached the log.
			Expect(a.Conversation().Len()).To(Equal(1))
		})

		It("denies and aborts when cancelled while awaiting permission", func() {
			ctx, cancel := context.WithCancel(context.Background())
			perms = permission.NewChannel(permission.Options{
				Callback: func(ctx context.Context, req permission.Request) (permission.Decision, error) {
					cancel()
					<-ctx.Done()
					return permission.Granted, nil
				},
			})
			registry.Register(tool.NewDeleteTool())

			adapter.responses = []*provider.Response{
				{Calls: []message.ToolCall{callTo("call_1", "delete_file", map[string]any{"path": "x.txt"})}},
			}
			a := newAgent(agent.Options{WorkDir: GinkgoT().TempDir()})

			_, err := a.Chat(ctx, "delete it")
			Expect(err).To(MatchError(context.Canceled))
			Expect(a.Conversation().Len()).To(Equal(1))
		})
	})
})
