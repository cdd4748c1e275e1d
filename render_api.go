package phonecrawler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultRenderEndpoint = "https://app.scrapingbee.com/api/v1/"

// RenderClient fetches pages through a ScrapingBee-compatible rendering API,
// rotating through a pool of API keys. A 403/429 from the API means the
// current key is exhausted or blocked and the next one is tried; once every
// key has been tried within a single call the fetch fails with
// ErrCredentialsExhausted.
type RenderClient struct {
	http     *resty.Client
	endpoint string

	mu   sync.Mutex
	keys []string
	idx  int
}

// NewRenderClient builds a client over the given key pool.
func NewRenderClient(endpoint string, keys []string, timeout time.Duration) *RenderClient {
	return &RenderClient{
		http:     resty.New().SetTimeout(timeout),
		endpoint: endpoint,
		keys:     keys,
	}
}

// KeyCount returns the number of keys in the pool.
func (r *RenderClient) KeyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func (r *RenderClient) nextKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.keys[r.idx]
	r.idx = (r.idx + 1) % len(r.keys)
	return key
}

// Fetch retrieves targetURL through the rendering API. Each key is tried at
// most once per call.
func (r *RenderClient) Fetch(ctx context.Context, targetURL string) (string, error) {
	total := r.KeyCount()
	if total == 0 {
		return "", ErrCredentialsExhausted
	}

	var lastErr error
	for attempt := 1; attempt <= total; attempt++ {
		apiKey := r.nextKey()

		resp, err := r.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"api_key":   apiKey,
				"url":       targetURL,
				"render_js": "false",
			}).
			Get(r.endpoint)
		if err != nil {
			lastErr = fmt.Errorf("render api request failed: %w", err)
			if ctx.Err() != nil {
				return "", lastErr
			}
			continue
		}

		code := resp.StatusCode()
		switch {
		case code >= 200 && code < 300:
			return resp.String(), nil
		case code == http.StatusForbidden || code == http.StatusTooManyRequests:
			// Key exhausted or blocked, advance to the next one.
			lastErr = &StatusError{Code: code, URL: targetURL}
		default:
			return "", &StatusError{Code: code, URL: targetURL}
		}
	}

	if lastErr != nil && !isBlocked(lastErr) {
		return "", fmt.Errorf("%w: %v", ErrCredentialsExhausted, lastErr)
	}
	return "", ErrCredentialsExhausted
}
