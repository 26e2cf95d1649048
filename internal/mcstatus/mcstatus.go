package mcstatus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"mcstatusbot/internal/common"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Status API route. %s is the server address
const ROUTE_STATUS = "https://api.mcstatus.io/v2/status/java/%s"

const (
	DEFAULT_TTL     = 30 * time.Second
	DEFAULT_TIMEOUT = 5 * time.Second
	USER_AGENT      = "mcstatusbot/1.0"
)

// Source of status payloads
type Requester interface {
	Request(ctx context.Context, url string) ([]byte, error)
}

type cacheEntry struct {
	snapshot   Snapshot
	expiration common.Stopwatch
}

// Status cache for any number of server addresses.
// A fresh entry is served without network traffic, overlapping
// callers share one request, and failed polls are never stored
type StatusCache struct {
	route     string
	ttl       time.Duration
	requester Requester
	now       common.Clock

	mu       sync.Mutex
	entries  map[string]cacheEntry
	inflight singleflight.Group
}

type Option func(*StatusCache)

// Use a different status API route. It must contain one %s for the address
func WithRoute(route string) Option {
	return func(cache *StatusCache) { cache.route = route }
}

func WithTTL(ttl time.Duration) Option {
	return func(cache *StatusCache) { cache.ttl = ttl }
}

func WithRequester(requester Requester) Option {
	return func(cache *StatusCache) { cache.requester = requester }
}

func WithClock(now common.Clock) Option {
	return func(cache *StatusCache) { cache.now = now }
}

func NewStatusCache(timeout time.Duration, options ...Option) *StatusCache {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	cache := &StatusCache{
		route:   ROUTE_STATUS,
		ttl:     DEFAULT_TTL,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
	for _, option := range options {
		option(cache)
	}
	if cache.requester == nil {
		cache.requester = common.NewProxy(map[string]string{"User-Agent": USER_AGENT}, timeout)
	}
	return cache
}

// Get the status of the server at ip, from the cache if still fresh
func (cache *StatusCache) Get(ctx context.Context, ip string) Result {

	if snapshot, ok := cache.lookup(ip); ok {
		return Result{Kind: RESULT_OK, Snapshot: snapshot}
	}

	// The request is shared, so no single caller may cancel it
	shared := context.WithoutCancel(ctx)
	value, _, _ := cache.inflight.Do(ip, func() (interface{}, error) {
		// Someone may have refreshed the entry while we were waiting
		if snapshot, ok := cache.lookup(ip); ok {
			return Result{Kind: RESULT_OK, Snapshot: snapshot}, nil
		}
		result := cache.Fetch(shared, ip)
		if !result.Failed() {
			cache.store(ip, result.Snapshot)
		}
		return result, nil
	})
	return value.(Result)
}

// Poll the status API once, bypassing the cache
func (cache *StatusCache) Fetch(ctx context.Context, ip string) Result {

	route := fmt.Sprintf(cache.route, url.PathEscape(ip))
	log.Debug().Msg(fmt.Sprintf("Requesting status of %s", ip))

	start := cache.now()
	data, err := cache.requester.Request(ctx, route)
	if err != nil {
		return cache.failure(ip, err, start)
	}
	snapshot, err := UnmarshalStatus(data)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Malformed status for %s: %s", ip, err))
		return Result{Kind: RESULT_MALFORMED, Snapshot: OfflineSnapshot(start), Err: err}
	}
	end := cache.now()

	snapshot.FetchedAt = end
	if snapshot.Online {
		snapshot.PingMillis = int(end.Sub(start).Milliseconds())
	}
	return Result{Kind: RESULT_OK, Snapshot: snapshot}
}

// Drop the cached status of ip
func (cache *StatusCache) Invalidate(ip string) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	delete(cache.entries, ip)
}

func (cache *StatusCache) failure(ip string, err error, at time.Time) Result {
	result := Result{Snapshot: OfflineSnapshot(at), Err: err}
	var statusErr *common.StatusError
	switch {
	case errors.Is(err, common.ErrTimeout):
		result.Kind = RESULT_TIMEOUT
		log.Error().Msg(fmt.Sprintf("Status request for %s timed out", ip))
	case errors.As(err, &statusErr):
		result.Kind = RESULT_HTTP_ERROR
		result.StatusCode = statusErr.Code
		log.Warn().Msg(fmt.Sprintf("Status API answered %d for %s", statusErr.Code, ip))
	default:
		result.Kind = RESULT_NETWORK_ERROR
		log.Error().Msg(fmt.Sprintf("Error fetching status of %s: %s", ip, strings.TrimSpace(err.Error())))
	}
	return result
}

func (cache *StatusCache) lookup(ip string) (Snapshot, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[ip]
	if !ok {
		return Snapshot{}, false
	}
	if stopped, _ := entry.expiration.Stopped(); stopped {
		return Snapshot{}, false
	}
	return entry.snapshot, true
}

func (cache *StatusCache) store(ip string, snapshot Snapshot) {
	expiration := common.NewStopwatchWithClock(cache.ttl, cache.now)
	expiration.Start()
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[ip] = cacheEntry{snapshot: snapshot, expiration: expiration}
}
