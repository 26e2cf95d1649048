package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	OK                    int = 200
	BAD_REQUEST           int = 400
	FORBIDDEN             int = 403
	DATA_NOT_FOUND        int = 404
	RATE_LIMIT_EXCEEDED   int = 429
	INTERNAL_SERVER_ERROR int = 500
	BAD_GATEWAY           int = 502
	SERVICE_UNAVAILABLE   int = 503
	GATEWAY_TIMEOUT       int = 504
)

var messages = map[int]string{
	OK:                    "OK",
	BAD_REQUEST:           "Bad request",
	FORBIDDEN:             "Forbidden",
	DATA_NOT_FOUND:        "Data not found",
	RATE_LIMIT_EXCEEDED:   "Rate limit exceeded",
	INTERNAL_SERVER_ERROR: "Internal server error",
	BAD_GATEWAY:           "Bad gateway",
	SERVICE_UNAVAILABLE:   "Service unavailable",
	GATEWAY_TIMEOUT:       "Gateway timeout",
}

// Largest response body read
const MAX_BODY_SIZE = 1 << 20

var (
	// Returned when the request did not finish inside the proxy timeout
	ErrTimeout      = errors.New("request timed out")
	ErrBodyTooLarge = errors.New("response body too large")
)

// Returned when the remote end answered with anything other than 200
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if message, ok := messages[e.Code]; ok {
		return fmt.Sprintf("unexpected status %d %s", e.Code, message)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

type Proxy struct {
	header  map[string]string
	client  *http.Client
	timeout time.Duration
}

func NewProxy(header map[string]string, timeout time.Duration) *Proxy {
	return &Proxy{header: header, client: &http.Client{}, timeout: timeout}
}

// Make a GET request to the provided url.
// The whole exchange, body included, is bounded by the proxy timeout
func (proxy *Proxy) Request(ctx context.Context, url string) ([]byte, error) {

	ctx, cancel := context.WithTimeout(ctx, proxy.timeout)
	defer cancel()

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for url %s: %w", url, err)
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}

	// Perform the request
	res, err := proxy.client.Do(request)
	if err != nil {
		return nil, proxy.classify(ctx, err)
	}
	defer res.Body.Close()

	if message, ok := messages[res.StatusCode]; ok {
		log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, message))
	} else {
		log.Debug().Msg(fmt.Sprintf("Status code of request (%d) is not understood", res.StatusCode))
	}
	if res.StatusCode != OK {
		return nil, &StatusError{Code: res.StatusCode}
	}

	// Read the response
	stream, err := io.ReadAll(io.LimitReader(res.Body, MAX_BODY_SIZE+1))
	if err != nil {
		return nil, proxy.classify(ctx, err)
	}
	if len(stream) > MAX_BODY_SIZE {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, MAX_BODY_SIZE, url)
	}
	return stream, nil
}

func (proxy *Proxy) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, proxy.timeout)
	}
	return err
}
