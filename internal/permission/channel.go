package permission

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/logging"
)

// Callback resolves a request the policy could not settle. Implementations
// may block until a human answers; the context bounds the wait.
type Callback func(ctx context.Context, req Request) (Decision, error)

// PendingRequest is a request parked in queue mode, awaiting Respond.
type PendingRequest struct {
	ID      string  `json:"id"`
	Request Request `json:"request"`
	Title   string  `json:"title"`
}

type pendingEntry struct {
	req  Request
	resp chan Decision
}

// Channel is the single gate every side-effecting tool operation passes
// through. It applies the policy, memoizes interactive decisions within a
// dispatch round, and fails closed on any interaction error.
type Channel struct {
	opts Options

	mu      sync.Mutex
	memo    map[string]Decision
	queue   bool
	pending map[string]*pendingEntry
}

// NewChannel builds a channel from options. Without an explicit callback,
// decisions fall back to a console prompt on stdin/stderr.
func NewChannel(opts Options) *Channel {
	if opts.Callback == nil {
		opts.Callback = ConsoleCallback(os.Stdin, os.Stderr)
	}
	if opts.YoloMode && opts.YoloPrompt != "" {
		logging.Warn().Msg(opts.YoloPrompt)
	}
	return &Channel{
		opts:    opts,
		memo:    make(map[string]Decision),
		pending: make(map[string]*pendingEntry),
	}
}

// EnableQueue switches interactive requests from the callback to a pending
// queue drained via Respond. Used by the HTTP permission endpoints.
func (c *Channel) EnableQueue() {
	c.mu.Lock()
	c.queue = true
	c.mu.Unlock()
}

// Options returns the channel's configuration.
func (c *Channel) Options() Options {
	return c.opts
}

// Ask resolves a request. Policy verdicts return immediately; ASK verdicts
// consult the memo, then the callback or the queue. Context cancellation and
// interaction failures both resolve to Denied.
func (c *Channel) Ask(ctx context.Context, req Request) (Decision, error) {
	switch Decide(req, c.opts) {
	case AutoGrant:
		return Granted, nil
	case AutoDeny:
		logging.Info().
			Str("operation", string(req.Operation)).
			Msg("operation denied by policy")
		return Denied, nil
	}

	fp := req.Fingerprint()
	c.mu.Lock()
	if d, ok := c.memo[fp]; ok {
		c.mu.Unlock()
		return d, nil
	}
	queue := c.queue
	c.mu.Unlock()

	id := ulid.Make().String()
	event.Publish(event.Event{
		Type: event.PermissionRequired,
		Data: event.PermissionRequiredData{
			ID:        id,
			Operation: string(req.Operation),
			Details:   req.Details,
			Title:     Title(req),
		},
	})

	var (
		decision Decision
		err      error
	)
	if queue {
		decision, err = c.await(ctx, id, req)
	} else {
		decision, err = c.invoke(ctx, req)
	}

	if err != nil {
		decision = Denied
	}

	c.mu.Lock()
	c.memo[fp] = decision
	c.mu.Unlock()

	event.Publish(event.Event{
		Type: event.PermissionResolved,
		Data: event.PermissionResolvedData{ID: id, Granted: decision == Granted},
	})
	return decision, err
}

// invoke runs the callback off-goroutine so cancellation cannot be held up
// by a blocked prompt.
func (c *Channel) invoke(ctx context.Context, req Request) (Decision, error) {
	type outcome struct {
		d   Decision
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		d, err := c.opts.Callback(ctx, req)
		done <- outcome{d, err}
	}()

	select {
	case <-ctx.Done():
		return Denied, ctx.Err()
	case out := <-done:
		if out.err != nil {
			logging.Error().Err(out.err).Msg("permission callback failed, denying")
			return Denied, out.err
		}
		if out.d != Granted {
			return Denied, nil
		}
		return Granted, nil
	}
}

func (c *Channel) await(ctx context.Context, id string, req Request) (Decision, error) {
	entry := &pendingEntry{req: req, resp: make(chan Decision, 1)}
	c.mu.Lock()
	c.pending[id] = entry
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return Denied, ctx.Err()
	case d := <-entry.resp:
		return d, nil
	}
}

// Pending lists queued requests awaiting Respond.
func (c *Channel) Pending() []PendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PendingRequest, 0, len(c.pending))
	for id, entry := range c.pending {
		out = append(out, PendingRequest{ID: id, Request: entry.req, Title: Title(entry.req)})
	}
	return out
}

// Respond resolves a queued request. Returns false when no request with the
// given ID is pending.
func (c *Channel) Respond(id string, granted bool) bool {
	c.mu.Lock()
	entry, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}

	d := Denied
	if granted {
		d = Granted
	}
	entry.resp <- d
	return true
}

// ResetRound clears memoized decisions. Called at the start of each user
// round so earlier answers do not leak forward.
func (c *Channel) ResetRound() {
	c.mu.Lock()
	c.memo = make(map[string]Decision)
	c.mu.Unlock()
}

// ConsoleCallback returns a callback that prompts on out and reads a yes/no
// answer from in. Anything other than an explicit yes denies.
func ConsoleCallback(in io.Reader, out io.Writer) Callback {
	reader := bufio.NewReader(in)
	var mu sync.Mutex
	return func(ctx context.Context, req Request) (Decision, error) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(out, "\n%s\n", Title(req))
		if cmd := req.Command(); cmd != "" {
			fmt.Fprintf(out, "  $ %s\n", strings.TrimSpace(cmd))
		}
		fmt.Fprint(out, "Allow? [y/N]: ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return Denied, nil
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return Granted, nil
		default:
			return Denied, nil
		}
	}
}
