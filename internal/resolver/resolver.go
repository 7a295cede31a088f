// Package resolver fetches many media documents at once and keeps whatever
// succeeded.
//
// Every code is requested before any response is awaited. The batch then
// settles: it waits until each fetch has either produced a Media or
// failed, and a failure never cancels its siblings.
package resolver

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
	"igcrawler/pkg/transport"
)

// PathFunc maps a shortcode to the request path of its media page
type PathFunc func(code string) string

// Decoder turns a media page response into an entity. It owns status
// checks, so a non-2xx response must come back as an error.
type Decoder func(resp *transport.Response) (models.Media, error)

// Outcome is the settled state of one fetch
type Outcome struct {
	Code  string
	Media models.Media
	Err   error
}

// OK reports whether the fetch produced a Media
func (o Outcome) OK() bool {
	return o.Err == nil && o.Media != nil
}

const meterName = "igcrawler.resolver"

// Resolver resolves batches of shortcodes through a Transport
type Resolver struct {
	transport transport.Transport
	path      PathFunc
	decode    Decoder
	logger    logger.Logger

	fetches  metric.Int64Counter
	duration metric.Float64Histogram
}

// Option customizes a Resolver
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records batch metrics with mp instead of the global
// provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// New creates a resolver. A nil logger discards batch logs.
func New(t transport.Transport, path PathFunc, decode Decoder, log logger.Logger, opts ...Option) *Resolver {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resolver{
		transport: t,
		path:      path,
		decode:    decode,
		logger:    logger.OrNop(log),
	}
	r.instrument(o.meterProvider.Meter(meterName))
	return r
}

// instrument creates the batch instruments. Creation only fails for
// invalid names; a missing instrument is skipped when recording.
func (r *Resolver) instrument(meter metric.Meter) {
	var err error
	r.fetches, err = meter.Int64Counter("igcrawler.resolver.fetches",
		metric.WithDescription("Media fetches settled by the resolver"),
		metric.WithUnit("{fetch}"))
	if err != nil {
		r.logger.WithError(err).Warn("failed to create fetch counter")
	}
	r.duration, err = meter.Float64Histogram("igcrawler.resolver.batch.duration",
		metric.WithDescription("Time until every fetch of a batch settled"),
		metric.WithUnit("s"))
	if err != nil {
		r.logger.WithError(err).Warn("failed to create batch histogram")
	}
}

// Resolve returns the media of every code that resolved, in completion
// order. Failed codes are logged and omitted; if all fail the result is
// empty, never an error.
func (r *Resolver) Resolve(ctx context.Context, codes []string) []models.Media {
	outcomes := r.Settle(ctx, codes)

	media := make([]models.Media, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			media = append(media, o.Media)
		}
	}
	return media
}

// Settle fetches every code concurrently and returns one Outcome per code
// in completion order. Duplicate codes are fetched independently.
func (r *Resolver) Settle(ctx context.Context, codes []string) []Outcome {
	batch := ksuid.New().String()
	log := r.logger.WithField("batch", batch)
	start := time.Now()

	log.DebugWithFields("resolving media batch", map[string]interface{}{
		"requested": len(codes),
	})

	// start every request before waiting on any of them
	pending := make([]<-chan transport.Result, len(codes))
	for i, code := range codes {
		pending[i] = r.transport.GetAsync(ctx, r.path(code), nil)
	}

	settled := make(chan Outcome, len(codes))
	for i, code := range codes {
		go func(code string, ch <-chan transport.Result) {
			settled <- r.settle(code, <-ch)
		}(code, pending[i])
	}

	outcomes := make([]Outcome, 0, len(codes))
	failed := 0
	for range codes {
		o := <-settled
		r.record(ctx, o)
		if !o.OK() {
			failed++
			log.WithError(o.Err).WarnWithFields("media fetch failed", map[string]interface{}{
				"code": o.Code,
			})
		}
		outcomes = append(outcomes, o)
	}

	elapsed := time.Since(start)
	if r.duration != nil {
		r.duration.Record(ctx, elapsed.Seconds())
	}
	logger.LogMetrics(log, "resolve", map[string]interface{}{
		"batch":       batch,
		"requested":   len(codes),
		"resolved":    len(codes) - failed,
		"failed":      failed,
		"duration_ms": elapsed.Milliseconds(),
	})

	return outcomes
}

func (r *Resolver) record(ctx context.Context, o Outcome) {
	if r.fetches == nil {
		return
	}
	outcome := "resolved"
	if !o.OK() {
		outcome = "failed"
	}
	r.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *Resolver) settle(code string, res transport.Result) Outcome {
	if res.Err != nil {
		return Outcome{Code: code, Err: res.Err}
	}
	media, err := r.decode(res.Response)
	if err != nil {
		return Outcome{Code: code, Err: err}
	}
	return Outcome{Code: code, Media: media}
}
