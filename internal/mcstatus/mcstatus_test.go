package mcstatus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mcstatusbot/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onlinePayload = `{"online":true,"players":{"online":7,"max":20},"version":{"name_clean":"1.20.1"}}`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Requester answering from a function and counting the calls
type fakeRequester struct {
	calls   atomic.Int32
	urls    chan string
	respond func() ([]byte, error)
}

func (r *fakeRequester) Request(_ context.Context, url string) ([]byte, error) {
	r.calls.Add(1)
	if r.urls != nil {
		r.urls <- url
	}
	return r.respond()
}

func newCache(requester Requester, clock *fakeClock) *StatusCache {
	return NewStatusCache(time.Second, WithRequester(requester), WithClock(clock.Now))
}

func TestGetEndToEnd(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	requester := &fakeRequester{urls: make(chan string, 1), respond: func() ([]byte, error) {
		clock.Advance(42 * time.Millisecond)
		return []byte(onlinePayload), nil
	}}
	cache := newCache(requester, clock)

	result := cache.Get(context.Background(), "play.example.com")
	require.False(t, result.Failed())
	assert.Equal(t, "https://api.mcstatus.io/v2/status/java/play.example.com", <-requester.urls)
	assert.Equal(t, Snapshot{
		Online:        true,
		PlayersOnline: 7,
		PlayersMax:    20,
		Version:       "1.20.1",
		PingMillis:    42,
		FetchedAt:     clock.Now(),
	}, result.Snapshot)
}

func TestGetCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	requester := &fakeRequester{respond: func() ([]byte, error) { return []byte(onlinePayload), nil }}
	cache := newCache(requester, clock)
	ctx := context.Background()

	first := cache.Get(ctx, "play.example.com")
	clock.Advance(29 * time.Second)
	second := cache.Get(ctx, "play.example.com")
	assert.Equal(t, int32(1), requester.calls.Load())
	assert.Equal(t, first.Snapshot, second.Snapshot)

	clock.Advance(time.Second)
	cache.Get(ctx, "play.example.com")
	assert.Equal(t, int32(2), requester.calls.Load(), "an entry expires after the ttl")

	// Addresses are cached separately
	cache.Get(ctx, "other.example.com")
	assert.Equal(t, int32(3), requester.calls.Load())

	cache.Invalidate("play.example.com")
	cache.Get(ctx, "play.example.com")
	assert.Equal(t, int32(4), requester.calls.Load())
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	requester := &fakeRequester{respond: func() ([]byte, error) { return nil, errors.New("connection refused") }}
	cache := newCache(requester, clock)

	for i := 0; i < 3; i++ {
		result := cache.Get(context.Background(), "play.example.com")
		assert.Equal(t, RESULT_NETWORK_ERROR, result.Kind)
		assert.False(t, result.Snapshot.Online)
	}
	assert.Equal(t, int32(3), requester.calls.Load())
}

func TestGetSharesInflightRequest(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	started := make(chan struct{})
	release := make(chan struct{})
	requester := &fakeRequester{respond: func() ([]byte, error) {
		close(started)
		<-release
		return []byte(onlinePayload), nil
	}}
	cache := newCache(requester, clock)

	var wg sync.WaitGroup
	results := make(chan Result, 5)
	call := func() {
		defer wg.Done()
		results <- cache.Get(context.Background(), "play.example.com")
	}
	wg.Add(1)
	go call()
	<-started
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go call()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	assert.Equal(t, int32(1), requester.calls.Load())
	for result := range results {
		assert.Equal(t, 7, result.Snapshot.PlayersOnline)
	}
}

func TestGetCancelledCallerDoesNotCancelFetch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	var seen context.Context
	requester := requesterFunc(func(ctx context.Context, _ string) ([]byte, error) {
		seen = ctx
		return []byte(onlinePayload), nil
	})
	cache := NewStatusCache(time.Second, WithRequester(requester), WithClock(clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := cache.Get(ctx, "play.example.com")
	assert.False(t, result.Failed())
	assert.NoError(t, seen.Err())
}

type requesterFunc func(ctx context.Context, url string) ([]byte, error)

func (f requesterFunc) Request(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

func TestFetchClassifiesFailures(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	tests := []struct {
		name string
		err  error
		data string
		kind ResultKind
	}{
		{"timeout", common.ErrTimeout, "", RESULT_TIMEOUT},
		{"http", &common.StatusError{Code: 503}, "", RESULT_HTTP_ERROR},
		{"network", errors.New("no route to host"), "", RESULT_NETWORK_ERROR},
		{"malformed", nil, `{"players":{}}`, RESULT_MALFORMED},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requester := &fakeRequester{respond: func() ([]byte, error) { return []byte(test.data), test.err }}
			result := newCache(requester, clock).Fetch(context.Background(), "play.example.com")
			assert.Equal(t, test.kind, result.Kind)
			assert.True(t, result.Failed())
			assert.Error(t, result.Err)
			assert.False(t, result.Snapshot.Online)
		})
	}
}

func TestGetOverHTTP(t *testing.T) {
	var status atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/play.example.com", r.URL.Path)
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		code := int(status.Load())
		w.WriteHeader(code)
		if code == http.StatusOK {
			_, _ = w.Write([]byte(onlinePayload))
		}
	}))
	defer server.Close()

	status.Store(http.StatusInternalServerError)
	cache := NewStatusCache(time.Second, WithRoute(server.URL+"/status/%s"))
	result := cache.Get(context.Background(), "play.example.com")
	assert.Equal(t, RESULT_HTTP_ERROR, result.Kind)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.False(t, result.Snapshot.Online)

	status.Store(http.StatusOK)
	result = cache.Get(context.Background(), "play.example.com")
	assert.Equal(t, RESULT_OK, result.Kind)
	assert.Equal(t, "1.20.1", result.Snapshot.Version)
}
