package retry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	igerrors "igcrawler/pkg/errors"
)

// Policy builds the delay sequence for one call to Do. backoff.BackOff
// values are stateful, so every call gets its own sequence.
type Policy func() backoff.BackOff

// Exponential grows the delay from initial by multiplier up to max. jitter
// is the randomization factor in [0, 1]; zero gives exact delays.
func Exponential(initial, max time.Duration, multiplier, jitter float64) Policy {
	return func() backoff.BackOff {
		return backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(initial),
			backoff.WithMaxInterval(max),
			backoff.WithMultiplier(multiplier),
			backoff.WithRandomizationFactor(jitter),
			backoff.WithMaxElapsedTime(0),
		)
	}
}

// Constant waits d between every attempt.
func Constant(d time.Duration) Policy {
	return func() backoff.BackOff { return backoff.NewConstantBackOff(d) }
}

// DefaultPolicy starts at one second and doubles up to a minute.
func DefaultPolicy() Policy {
	return Exponential(time.Second, time.Minute, 2, 0.1)
}

// Class groups failures that share a backoff sequence.
type Class string

const (
	ClassNetwork   Class = "network"
	ClassRateLimit Class = "rate_limit"
	ClassServer    Class = "server"
	ClassOther     Class = "other"
)

// Classify maps an error onto its backoff class.
func Classify(err error) Class {
	var e *igerrors.Error
	if !errors.As(err, &e) {
		return ClassOther
	}
	switch {
	case e.Type == igerrors.ErrorTypeTransport:
		return ClassNetwork
	case e.Type == igerrors.ErrorTypeUpstream && e.Code == http.StatusTooManyRequests:
		return ClassRateLimit
	case e.Type == igerrors.ErrorTypeUpstream && e.Code >= 500:
		return ClassServer
	}
	return ClassOther
}

// UpstreamPolicies derives one policy per class from a base and max delay.
// Rate limited requests back off from ten times the base.
func UpstreamPolicies(base, max time.Duration) map[Class]Policy {
	return map[Class]Policy{
		ClassNetwork:   Exponential(base, max, 2, 0.2),
		ClassRateLimit: Exponential(10*base, 10*max, 1.5, 0.3),
		ClassServer:    Exponential(2*base, max, 2, 0.1),
		ClassOther:     Exponential(base, max, 2, 0.1),
	}
}

// sequences hands out one running backoff per class for a single Do call.
type sequences struct {
	cfg  *Config
	runs map[Class]backoff.BackOff
}

func (s *sequences) next(err error) time.Duration {
	class := ClassOther
	if len(s.cfg.PerClass) > 0 {
		class = Classify(err)
	}
	run, ok := s.runs[class]
	if !ok {
		policy := s.cfg.PerClass[class]
		if policy == nil {
			policy = s.cfg.Backoff
		}
		if policy == nil {
			policy = DefaultPolicy()
		}
		run = policy()
		s.runs[class] = run
	}
	return run.NextBackOff()
}

// Wait sleeps for delay unless ctx is done first.
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
