package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     Constant(time.Millisecond),
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

func drain(p Policy, n int) []time.Duration {
	run := p()
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = run.NextBackOff()
	}
	return out
}

func TestExponentialPolicy(t *testing.T) {
	got := drain(Exponential(100*time.Millisecond, time.Second, 2, 0), 6)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}, got)
}

func TestExponentialPolicyJitterBounds(t *testing.T) {
	p := Exponential(100*time.Millisecond, time.Second, 2, 0.3)
	for i := 0; i < 50; i++ {
		delay := drain(p, 2)[1]
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 261*time.Millisecond)
	}
}

func TestPolicyFreshPerCall(t *testing.T) {
	cfg := fastConfig(3)
	cfg.Backoff = Exponential(time.Millisecond, time.Second, 3, 0)
	var delays []time.Duration
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { delays = append(delays, d) }

	op := func(ctx context.Context) error { return igerrors.Upstream(503, nil) }
	_ = Do(context.Background(), op, cfg)
	_ = Do(context.Background(), op, cfg)

	assert.Equal(t, []time.Duration{
		time.Millisecond, 3 * time.Millisecond,
		time.Millisecond, 3 * time.Millisecond,
	}, delays)
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return igerrors.Upstream(503, nil)
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return igerrors.Transport(errors.New("connection reset"))
	}, fastConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, igerrors.ErrTransport)
}

func TestDoNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", igerrors.Upstream(404, []byte("missing"))},
		{"malformed", igerrors.MalformedResponse("bad body", nil)},
		{"schema", igerrors.SchemaMismatch("media", "code")},
		{"plain", errors.New("unknown")},
		{"cancelled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func(ctx context.Context) error {
				attempts++
				return tt.err
			}, fastConfig(5))

			assert.Equal(t, 1, attempts)
			assert.Same(t, tt.err, err)
		})
	}
}

func TestDoContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.Backoff = Constant(time.Hour)
	cfg.OnRetry = func(int, error, time.Duration) { cancel() }

	err := Do(ctx, func(ctx context.Context) error {
		return igerrors.Upstream(429, nil)
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", igerrors.Upstream(500, nil)
		}
		return "ok", nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, attempts)
}

func TestOnRetryCallback(t *testing.T) {
	var seen []int
	cfg := fastConfig(4)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		seen = append(seen, attempt)
	}

	_ = Do(context.Background(), func(ctx context.Context) error {
		return igerrors.Upstream(502, nil)
	}, cfg)

	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{igerrors.Transport(errors.New("x")), ClassNetwork},
		{igerrors.Upstream(429, nil), ClassRateLimit},
		{igerrors.Upstream(503, nil), ClassServer},
		{igerrors.Upstream(404, nil), ClassOther},
		{errors.New("other"), ClassOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), tt.err.Error())
	}
}

func TestPerClassSequencesAreIndependent(t *testing.T) {
	cfg := fastConfig(4)
	cfg.PerClass = map[Class]Policy{
		ClassRateLimit: Exponential(10*time.Millisecond, time.Second, 2, 0),
		ClassServer:    Constant(time.Millisecond),
	}
	var delays []time.Duration
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { delays = append(delays, d) }

	errs := []error{igerrors.Upstream(429, nil), igerrors.Upstream(500, nil), igerrors.Upstream(429, nil)}
	attempt := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		defer func() { attempt++ }()
		if attempt < len(errs) {
			return errs[attempt]
		}
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, time.Millisecond, 20 * time.Millisecond}, delays)
}

func TestNewHTTPConfigUsesPerErrorBackoff(t *testing.T) {
	log := logger.NewTestLogger()
	cfg := NewHTTPConfig(2, time.Millisecond, 5*time.Millisecond, log)

	var delays []time.Duration
	cfg.OnRetry = func(_ int, _ error, delay time.Duration) {
		delays = append(delays, delay)
	}

	err := Do(context.Background(), func(ctx context.Context) error {
		return igerrors.Upstream(429, nil)
	}, cfg)

	require.Error(t, err)
	require.Len(t, delays, 1)
	// rate limit backoff starts at ten times the base
	assert.GreaterOrEqual(t, delays[0], 7*time.Millisecond)
	assert.True(t, log.HasMessage("retrying operation"))
}
