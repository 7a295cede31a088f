package resolver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
	"igcrawler/pkg/transport"
	"igcrawler/pkg/transport/transporttest"
)

func mediaPath(code string) string {
	return "/p/" + code
}

// decodeCode treats the body as the shortcode of a photo
func decodeCode(resp *transport.Response) (models.Media, error) {
	if !resp.OK() {
		return nil, igerrors.Upstream(resp.Status, resp.Body)
	}
	if len(resp.Body) == 0 {
		return nil, igerrors.SchemaMismatch("media", "code")
	}
	return models.Photo{Post: models.Post{Code: string(resp.Body)}}, nil
}

func codesOf(media []models.Media) []string {
	out := make([]string, 0, len(media))
	for _, m := range media {
		out = append(out, m.Details().Code)
	}
	return out
}

func TestResolveAllSucceed(t *testing.T) {
	fake := transporttest.New(nil)
	for _, code := range []string{"a", "b", "c"} {
		fake.JSON(mediaPath(code), code)
	}

	r := New(fake, mediaPath, decodeCode, logger.NewNopLogger())
	media := r.Resolve(context.Background(), []string{"a", "b", "c"})

	assert.ElementsMatch(t, []string{"a", "b", "c"}, codesOf(media))
	assert.Len(t, fake.Calls(), 3)
}

func TestResolvePartialFailure(t *testing.T) {
	fake := transporttest.New(map[string]transporttest.Route{
		mediaPath("ok1"):    {Status: 200, Body: "ok1"},
		mediaPath("ok2"):    {Status: 200, Body: "ok2"},
		mediaPath("gone"):   {Status: 404, Body: "missing"},
		mediaPath("down"):   {Err: igerrors.Transport(transporttest.ErrConnectionRefused)},
		mediaPath("broken"): {Status: 200, Body: ""},
	})
	log := logger.NewTestLogger()

	r := New(fake, mediaPath, decodeCode, log)
	media := r.Resolve(context.Background(), []string{"ok1", "gone", "down", "ok2", "broken"})

	assert.ElementsMatch(t, []string{"ok1", "ok2"}, codesOf(media))

	warns := log.GetMessagesByLevel("WARN")
	require.Len(t, warns, 3)
	for _, w := range warns {
		assert.Equal(t, "media fetch failed", w.Message)
		assert.Contains(t, w.Fields, "batch")
		assert.Contains(t, w.Fields, "code")
		assert.Error(t, w.Error)
	}
}

func TestResolveAllFail(t *testing.T) {
	fake := transporttest.New(nil)

	r := New(fake, mediaPath, decodeCode, nil)
	media := r.Resolve(context.Background(), []string{"x", "y"})

	require.NotNil(t, media)
	assert.Empty(t, media)
}

func TestResolveEmpty(t *testing.T) {
	r := New(transporttest.New(nil), mediaPath, decodeCode, nil)

	media := r.Resolve(context.Background(), nil)
	require.NotNil(t, media)
	assert.Empty(t, media)
}

func TestResolveDuplicatesFetchedIndependently(t *testing.T) {
	fake := transporttest.New(nil)
	fake.JSON(mediaPath("dup"), "dup")

	r := New(fake, mediaPath, decodeCode, nil)
	media := r.Resolve(context.Background(), []string{"dup", "dup"})

	assert.Equal(t, []string{"dup", "dup"}, codesOf(media))
	assert.Len(t, fake.Calls(), 2)
}

func TestSettleCompletionOrder(t *testing.T) {
	fake := transporttest.New(map[string]transporttest.Route{
		mediaPath("slow"): {Status: 200, Body: "slow", Delay: 150 * time.Millisecond},
		mediaPath("fast"): {Status: 200, Body: "fast"},
		mediaPath("bad"):  {Status: 500, Body: "oops", Delay: 50 * time.Millisecond},
	})

	r := New(fake, mediaPath, decodeCode, nil)
	outcomes := r.Settle(context.Background(), []string{"slow", "fast", "bad"})

	require.Len(t, outcomes, 3)
	assert.Equal(t, "fast", outcomes[0].Code)
	assert.True(t, outcomes[0].OK())

	assert.Equal(t, "bad", outcomes[1].Code)
	assert.False(t, outcomes[1].OK())
	assert.ErrorIs(t, outcomes[1].Err, igerrors.ErrUpstream)

	assert.Equal(t, "slow", outcomes[2].Code)
	assert.True(t, outcomes[2].OK())
}

func TestSettleWaitsForEveryFetch(t *testing.T) {
	fake := transporttest.New(map[string]transporttest.Route{
		mediaPath("late"): {Status: 200, Body: "late", Delay: 100 * time.Millisecond},
		mediaPath("fail"): {Err: igerrors.Transport(transporttest.ErrConnectionRefused)},
	})

	r := New(fake, mediaPath, decodeCode, nil)
	start := time.Now()
	outcomes := r.Settle(context.Background(), []string{"fail", "late"})

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	require.Len(t, outcomes, 2)
	assert.ErrorIs(t, outcomes[0].Err, igerrors.ErrTransport)
	assert.True(t, outcomes[1].OK())
}

func TestSettleIssuesAllRequestsUpFront(t *testing.T) {
	fake := transporttest.New(nil)
	codes := make([]string, 20)
	for i := range codes {
		codes[i] = fmt.Sprintf("c%d", i)
		fake.Handle(mediaPath(codes[i]), transporttest.Route{Status: 200, Body: codes[i], Delay: 100 * time.Millisecond})
	}

	r := New(fake, mediaPath, decodeCode, nil)
	start := time.Now()
	media := r.Resolve(context.Background(), codes)

	assert.Len(t, media, 20)
	// sequential fetching would take two seconds
	assert.Less(t, time.Since(start), time.Second)
}

func TestSettleLogsMetrics(t *testing.T) {
	fake := transporttest.New(nil)
	fake.JSON(mediaPath("a"), "a")
	log := logger.NewTestLogger()

	r := New(fake, mediaPath, decodeCode, log)
	r.Settle(context.Background(), []string{"a", "missing"})

	infos := log.GetMessagesByLevel("INFO")
	require.Len(t, infos, 1)
	assert.Equal(t, "resolve", infos[0].Fields["operation"])
	assert.Equal(t, 2, infos[0].Fields["requested"])
	assert.Equal(t, 1, infos[0].Fields["resolved"])
	assert.Equal(t, 1, infos[0].Fields["failed"])
	assert.NotEmpty(t, infos[0].Fields["batch"])
}

func TestSettleRecordsMeterMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	fake := transporttest.New(nil)
	fake.JSON(mediaPath("a"), "a")
	fake.JSON(mediaPath("b"), "b")

	r := New(fake, mediaPath, decodeCode, nil, WithMeterProvider(provider))
	r.Settle(context.Background(), []string{"a", "b", "missing"})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, meterName, rm.ScopeMetrics[0].Scope.Name)

	counts := map[string]int64{}
	var batches uint64
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch data := m.Data.(type) {
		case metricdata.Sum[int64]:
			for _, dp := range data.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[outcome.AsString()] += dp.Value
			}
		case metricdata.Histogram[float64]:
			for _, dp := range data.DataPoints {
				batches += dp.Count
			}
		}
	}

	assert.Equal(t, map[string]int64{"resolved": 2, "failed": 1}, counts)
	assert.Equal(t, uint64(1), batches)
}
