package transport

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"

	"igcrawler/pkg/logger"
)

const tracerName = "igcrawler.transport"

// instrumentClient opens a span before each request and ends it when the
// response or the error arrives. Without an installed tracer provider the
// spans are no-ops.
func instrumentClient(client *resty.Client, tracer trace.Tracer, log logger.Logger) {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method), trace.WithSpanKind(trace.SpanKindClient))
		req.SetContext(ctx)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		// RawRequest is only populated once the request was sent
		if res.Request.RawRequest != nil {
			span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
		}
		if res.RawResponse != nil {
			span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
		}
		if code, desc := httpconv.ClientStatus(res.StatusCode()); code == codes.Error {
			span.SetStatus(code, desc)
		}
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if req.RawRequest != nil {
			span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
		}

		log.WithError(err).DebugWithFields("request span closed with error", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		})
	})
}
