package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/trace"

	"igcrawler/pkg/config"
	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/ratelimit"
	"igcrawler/pkg/retry"
)

// Options configures an HTTP transport
type Options struct {
	BaseURL string
	// DefaultQuery is sent with every request; per-request values win
	DefaultQuery map[string]string
	UserAgent    string
	Timeout      time.Duration
	// Limiter paces requests; nil means unlimited
	Limiter ratelimit.Limiter
	// Retry enables transport level retries; nil disables them
	Retry *retry.Config
	// Tracer records one span per request; nil uses the global provider
	Tracer trace.Tracer
	Logger logger.Logger
	// HTTPClient replaces the underlying client, e.g. in tests
	HTTPClient *http.Client
}

// HTTP is the resty backed Transport
type HTTP struct {
	client  *resty.Client
	limiter ratelimit.Limiter
	retry   *retry.Config
	logger  logger.Logger
}

// NewHTTP creates a transport with the base URL and default query fixed
func NewHTTP(opts Options) *HTTP {
	client := resty.New()
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	}

	client.SetBaseURL(opts.BaseURL)
	client.SetQueryParams(opts.DefaultQuery)
	client.SetHeaders(map[string]string{
		"Accept":          "application/json, text/html;q=0.9, */*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	log := logger.OrNop(opts.Logger)
	instrumentClient(client, opts.Tracer, log)

	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &HTTP{
		client:  client,
		limiter: limiter,
		retry:   opts.Retry,
		logger:  log,
	}
}

// NewHTTPFromConfig builds the transport described by cfg
func NewHTTPFromConfig(cfg *config.Config, log logger.Logger) *HTTP {
	opts := Options{
		BaseURL:      cfg.Crawler.BaseURL,
		DefaultQuery: cfg.Crawler.DefaultQuery,
		UserAgent:    cfg.Crawler.UserAgent,
		Timeout:      cfg.Transport.Timeout,
		Limiter:      ratelimit.New(cfg.Transport.RequestsPerMinute, cfg.Transport.Burst),
		Logger:       log,
	}
	if cfg.Retry.Enabled {
		opts.Retry = retry.NewHTTPConfig(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay, log)
	}
	return NewHTTP(opts)
}

// Get implements Transport
func (h *HTTP) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if h.retry == nil {
		return h.get(ctx, path, query)
	}

	resp, err := retry.DoWithResult(ctx, func(ctx context.Context) (*Response, error) {
		resp, err := h.get(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if !resp.OK() && igerrors.IsRetryableStatusCode(resp.Status) {
			return resp, igerrors.Upstream(resp.Status, resp.Body)
		}
		return resp, nil
	}, h.retry)

	// a retryable status that never cleared is still a response
	if err != nil && resp != nil && errors.Is(err, igerrors.ErrUpstream) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAsync implements Transport
func (h *HTTP) GetAsync(ctx context.Context, path string, query url.Values) <-chan Result {
	return Async(ctx, func(ctx context.Context) (*Response, error) {
		return h.Get(ctx, path, query)
	})
}

func (h *HTTP) get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, igerrors.Transport(err)
	}

	start := time.Now()
	req := h.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Get(path)
	if err != nil {
		logger.LogRequest(h.logger.WithError(err), http.MethodGet, path, 0, time.Since(start))
		return nil, igerrors.Transport(err)
	}
	logger.LogRequest(h.logger, http.MethodGet, path, res.StatusCode(), time.Since(start))

	return &Response{
		Status: res.StatusCode(),
		Body:   res.Body(),
		URL:    res.Request.URL,
	}, nil
}
