package phonecrawler

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
)

// ChannelKind selects how an outbound fetch is issued.
type ChannelKind int

const (
	// ChannelDirect issues the request with no intermediary.
	ChannelDirect ChannelKind = iota
	// ChannelProxyRotated routes requests through a rotating proxy pool.
	ChannelProxyRotated
	// ChannelRenderAPI delegates the fetch to the external rendering API.
	ChannelRenderAPI
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelProxyRotated:
		return "proxy"
	case ChannelRenderAPI:
		return "render"
	default:
		return "direct"
	}
}

// Proxy is one entry of the rotation pool.
type Proxy struct {
	Endpoint string `json:"proxy" bson:"proxy"`
	Type     string `json:"type" bson:"type"`
	Status   string `json:"status" bson:"status"`
}

// URL returns the proxy endpoint with a scheme, defaulting to the declared
// transport type (http when none is declared).
func (p Proxy) URL() string {
	if strings.Contains(p.Endpoint, "://") {
		return p.Endpoint
	}
	scheme := strings.ToLower(p.Type)
	switch scheme {
	case "http", "https", "socks4", "socks5":
	default:
		scheme = "http"
	}
	return scheme + "://" + p.Endpoint
}

// TransportSelector owns the proxy pool, the render API client and the shared
// fetch plumbing (user agent, referer, timeouts). Rotation cursors live here
// behind a mutex so concurrent workers never corrupt them.
type TransportSelector struct {
	Logger *defaultLogger

	userAgent string
	referer   string
	timeout   time.Duration

	mu       sync.Mutex
	proxies  []Proxy
	proxyIdx int

	render *RenderClient
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// NewTransportSelector builds a selector from configuration. Render API keys
// come from a comma-separated RENDER_API_KEYS list; the pool stays nil when
// no keys are configured.
func NewTransportSelector(config *configService, logger *defaultLogger) *TransportSelector {
	t := &TransportSelector{
		Logger:    logger,
		userAgent: config.EnvString("USER_AGENT", defaultUserAgent),
		referer:   config.EnvString("BASE_URL", defaultBaseURL),
		timeout:   config.EnvDurationMs("HTTP_TIMEOUT_MS", 30*time.Second),
	}
	if keys := splitList(config.EnvString("RENDER_API_KEYS")); len(keys) > 0 {
		endpoint := config.EnvString("RENDER_API_ENDPOINT", defaultRenderEndpoint)
		t.render = NewRenderClient(endpoint, keys, t.timeout)
		logger.Info("Loaded %d render API key(s)", len(keys))
	}
	return t
}

// LoadProxies replaces the rotation pool. The pool is shuffled once so
// independent runs don't hammer the same proxy first; rotation is round-robin
// afterwards.
func (t *TransportSelector) LoadProxies(proxies []Proxy) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rand.Shuffle(len(proxies), func(i, j int) {
		proxies[i], proxies[j] = proxies[j], proxies[i]
	})
	t.proxies = proxies
	t.proxyIdx = 0
}

// ProxyCount returns the size of the rotation pool.
func (t *TransportSelector) ProxyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.proxies)
}

// RenderKeyCount returns the number of configured render API credentials.
func (t *TransportSelector) RenderKeyCount() int {
	if t.render == nil {
		return 0
	}
	return t.render.KeyCount()
}

func (t *TransportSelector) nextProxy() (Proxy, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.proxies) == 0 {
		return Proxy{}, false
	}
	p := t.proxies[t.proxyIdx]
	t.proxyIdx = (t.proxyIdx + 1) % len(t.proxies)
	return p, true
}

// Acquire produces a Channel bound to the preferred kind. A proxy channel
// with an empty pool degrades to a direct connection, matching how the
// pipeline is run when no proxy source is configured.
func (t *TransportSelector) Acquire(preferred ChannelKind) (*Channel, error) {
	switch preferred {
	case ChannelRenderAPI:
		if t.render == nil {
			return nil, fmt.Errorf("render channel requested but no RENDER_API_KEYS configured")
		}
		return &Channel{Kind: ChannelRenderAPI, selector: t}, nil
	case ChannelProxyRotated:
		proxy, ok := t.nextProxy()
		if !ok {
			t.Logger.Warn("Proxy channel requested with an empty pool, using direct connection")
			return &Channel{Kind: ChannelDirect, selector: t, client: t.buildClient(Proxy{})}, nil
		}
		return &Channel{Kind: ChannelProxyRotated, selector: t, proxy: proxy, client: t.buildClient(proxy)}, nil
	default:
		return &Channel{Kind: ChannelDirect, selector: t, client: t.buildClient(Proxy{})}, nil
	}
}

// buildClient constructs an http.Client, optionally routed through a proxy.
func (t *TransportSelector) buildClient(proxy Proxy) *http.Client {
	httpTransport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   60 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 60 * time.Second,
	}
	if proxy.Endpoint != "" {
		proxyURL, err := url.Parse(proxy.URL())
		if err != nil {
			t.Logger.Error("Failed to parse proxy URL %s: %v", proxy.Endpoint, err)
		} else {
			httpTransport.Proxy = http.ProxyURL(proxyURL)
			// Pool proxies routinely present self-signed certificates.
			httpTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}
	return &http.Client{
		Timeout:   t.timeout,
		Transport: httpTransport,
	}
}

// Channel is one concrete way of fetching a URL. Rotate rebinds a proxy
// channel to the next pool entry; the render channel rotates credentials
// internally per call.
type Channel struct {
	Kind     ChannelKind
	selector *TransportSelector

	mu     sync.Mutex
	proxy  Proxy
	client *http.Client
}

// Fetch retrieves the body of url as text. Non-2xx responses map to
// StatusError, connection failures to a wrapped network error.
func (c *Channel) Fetch(ctx context.Context, rawURL string) (string, error) {
	if c.Kind == ChannelRenderAPI {
		return c.selector.render.Fetch(ctx, rawURL)
	}
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	return c.selector.doFetch(ctx, client, rawURL)
}

// Rotate advances a proxy channel to the next proxy in the pool. Direct and
// render channels are unaffected.
func (c *Channel) Rotate() {
	if c.Kind != ChannelProxyRotated {
		return
	}
	proxy, ok := c.selector.nextProxy()
	if !ok {
		return
	}
	client := c.selector.buildClient(proxy)
	c.mu.Lock()
	c.proxy = proxy
	c.client = client
	c.mu.Unlock()
	c.selector.Logger.Info("Rotated to proxy %s", proxy.Endpoint)
}

func (t *TransportSelector) doFetch(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Referer", t.referer)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to navigate %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Decode the response body with the encoding the server declared.
	reader, err := charset.NewReader(strings.NewReader(string(body)), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to create reader with correct encoding: %w", err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	return string(decoded), nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
