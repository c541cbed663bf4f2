package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry controls how throttled requests are retried.
type Retry struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Defaults applies default values to the retry policy.
func (r *Retry) Defaults() {
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = 30 * time.Second
	}
}

// Backoff returns a capped exponential schedule that stops after MaxRetries.
func (r Retry) Backoff() retry.Backoff {
	r.Defaults()
	b := retry.NewExponential(r.BaseDelay)
	b = retry.WithCappedDuration(r.MaxDelay, b)
	return retry.WithMaxRetries(uint64(r.MaxRetries), b)
}

// throttleBackoff replaces the next scheduled wait with the server's
// Retry-After hint when one was seen on the last response.
type throttleBackoff struct {
	next  retry.Backoff
	cap   time.Duration
	after time.Duration
	hint  bool
}

func (b *throttleBackoff) Next() (time.Duration, bool) {
	d, stop := b.next.Next()
	if stop {
		return 0, true
	}
	if b.hint {
		b.hint = false
		d = min(b.after, b.cap)
	}
	return d, false
}

func (b *throttleBackoff) observe(header string) {
	b.after, b.hint = retryAfter(header)
}

// retryAfter parses a Retry-After value given in whole seconds.
func retryAfter(header string) (time.Duration, bool) {
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// Do sends the request produced by build, retrying 429 responses with
// backoff. A request is rebuilt for every attempt so bodies and tokens are
// fresh. The caller owns the body of the returned 2xx response.
func Do(ctx context.Context, client *http.Client, service string, build func(context.Context) (*http.Request, error), policy Retry) (*http.Response, error) {
	policy.Defaults()
	backoff := &throttleBackoff{next: policy.Backoff(), cap: policy.MaxDelay}

	return retry.DoValue(ctx, backoff, func(ctx context.Context) (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if err := CheckResponse(service, resp); err != nil {
			if errors.Is(err, ErrThrottled) {
				backoff.observe(resp.Header.Get("Retry-After"))
				return nil, retry.RetryableError(err)
			}
			return nil, err
		}
		return resp, nil
	})
}
