package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/openagent-dev/openagent/internal/logging"
)

const defaultMaxRetries = 3

// retryAdapter wraps an adapter with exponential backoff on transient
// completion failures. Correlation violations and context cancellation are
// never retried.
type retryAdapter struct {
	inner      Adapter
	maxRetries uint64
}

// WithRetry decorates an adapter with retry behavior. maxRetries <= 0 uses
// the default of 3 attempts after the first.
func WithRetry(a Adapter, maxRetries int) Adapter {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &retryAdapter{inner: a, maxRetries: uint64(maxRetries)}
}

func (r *retryAdapter) ID() string      { return r.inner.ID() }
func (r *retryAdapter) Name() string    { return r.inner.Name() }
func (r *retryAdapter) Models() []Model { return r.inner.Models() }

func (r *retryAdapter) Complete(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response

	op := func() error {
		var err error
		resp, err = r.inner.Complete(ctx, req)
		if err == nil {
			return nil
		}

		var ce *CorrelationError
		if errors.As(err, &ce) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		logging.Warn().Err(err).Str("provider", r.inner.ID()).Msg("completion failed, retrying")
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}
