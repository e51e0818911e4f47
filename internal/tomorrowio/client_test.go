package tomorrowio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/planwx/planwx-core/internal/cache"
	t "github.com/planwx/planwx-core/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCoords = t.Coordinates{Latitude: 43.65, Longitude: -79.38}

const realtimeBody = `{"data":{"time":"2024-06-10T12:00:00Z","values":{"temperature":18.5,"weatherCode":1000}},"location":{"lat":43.65,"lon":-79.38}}`

// recordingSleeper collects backoff delays instead of waiting them out.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestClient(baseUrl string, sleeper *recordingSleeper, extra ...ClientOption) *Client {
	opts := []ClientOption{
		ApiKeyOption("test-key"),
		BaseUrlOption(baseUrl),
		SleepOption(sleeper.sleep),
	}
	opts = append(opts, extra...)
	return New(opts...)
}

func TestRealtimeCachesPayload(tt *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(realtimeBody))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &recordingSleeper{})

	first, err := c.Realtime(context.Background(), testCoords, "metric")
	require.NoError(tt, err)
	second, err := c.Realtime(context.Background(), testCoords, "metric")
	require.NoError(tt, err)

	assert.Equal(tt, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(tt, first, second)
	require.NotNil(tt, first.Data.Values.Temperature)
	assert.Equal(tt, 18.5, *first.Data.Values.Temperature)
}

func TestRetryHonorsRetryAfterHeader(tt *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(realtimeBody))
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := newTestClient(srv.URL, sleeper)

	_, err := c.Realtime(context.Background(), testCoords, "metric")
	require.NoError(tt, err)

	assert.Equal(tt, int32(2), atomic.LoadInt32(&hits))
	require.Len(tt, sleeper.delays, 1)
	assert.Equal(tt, 2*time.Second, sleeper.delays[0])
}

func TestRetryBacksOffExponentiallyWithoutHeader(tt *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := newTestClient(srv.URL, sleeper,
		MaxRetriesOption(3),
		BaseBackoffOption(100*time.Millisecond),
	)

	_, err := c.Realtime(context.Background(), testCoords, "metric")
	require.Error(tt, err)

	// Two sleeps between three attempts: base, then base*2.
	require.Len(tt, sleeper.delays, 2)
	assert.Equal(tt, 100*time.Millisecond, sleeper.delays[0])
	assert.Equal(tt, 200*time.Millisecond, sleeper.delays[1])

	var uerr *t.UpstreamError
	require.True(tt, errors.As(err, &uerr))
	assert.Equal(tt, 500, uerr.Status)
}

func TestClientErrorIsFatal(tt *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := newTestClient(srv.URL, sleeper)

	_, err := c.Realtime(context.Background(), testCoords, "metric")
	require.Error(tt, err)

	assert.Equal(tt, int32(1), atomic.LoadInt32(&hits))
	assert.Empty(tt, sleeper.delays)

	var uerr *t.UpstreamError
	require.True(tt, errors.As(err, &uerr))
	assert.False(tt, uerr.Retryable())
}

func TestStalePayloadServedAfterExhaustedRetries(tt *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(realtimeBody))
	}))
	defer srv.Close()

	now := time.Now()
	cs := cache.New(cache.NowOption(func() time.Time { return now }))
	c := newTestClient(srv.URL, &recordingSleeper{},
		CacheOption(cs),
		TTLOption(time.Minute),
	)

	_, err := c.Realtime(context.Background(), testCoords, "metric")
	require.NoError(tt, err)

	// Entry expires, upstream starts failing.
	now = now.Add(5 * time.Minute)
	fail.Store(true)

	resp, err := c.Realtime(context.Background(), testCoords, "metric")
	require.NoError(tt, err)
	require.NotNil(tt, resp.Data.Values.Temperature)
	assert.Equal(tt, 18.5, *resp.Data.Values.Temperature)
}

func TestMissingApiKeyFailsFast(tt *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := New(
		BaseUrlOption(srv.URL),
		SleepOption(sleeper.sleep),
	)

	_, err := c.Realtime(context.Background(), testCoords, "metric")
	require.Error(tt, err)

	var cfgErr *t.ConfigurationError
	assert.True(tt, errors.As(err, &cfgErr))
	assert.Equal(tt, int32(0), atomic.LoadInt32(&hits))
	assert.Empty(tt, sleeper.delays)
}
