package phonecrawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyURL(t *testing.T) {
	tests := []struct {
		name  string
		proxy Proxy
		want  string
	}{
		{"bare endpoint defaults to http", Proxy{Endpoint: "10.0.0.1:8080"}, "http://10.0.0.1:8080"},
		{"declared type becomes the scheme", Proxy{Endpoint: "10.0.0.1:1080", Type: "socks5"}, "socks5://10.0.0.1:1080"},
		{"type is case-insensitive", Proxy{Endpoint: "10.0.0.1:8080", Type: "HTTPS"}, "https://10.0.0.1:8080"},
		{"unknown type falls back to http", Proxy{Endpoint: "10.0.0.1:8080", Type: "weird"}, "http://10.0.0.1:8080"},
		{"explicit scheme wins over type", Proxy{Endpoint: "socks4://10.0.0.1:1080", Type: "http"}, "socks4://10.0.0.1:1080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.proxy.URL())
		})
	}
}

func TestNextProxyRoundRobin(t *testing.T) {
	selector := &TransportSelector{}
	selector.proxies = []Proxy{
		{Endpoint: "a:1"}, {Endpoint: "b:1"}, {Endpoint: "c:1"},
	}

	var seen []string
	for i := 0; i < 7; i++ {
		p, ok := selector.nextProxy()
		require.True(t, ok)
		seen = append(seen, p.Endpoint)
	}
	assert.Equal(t, []string{"a:1", "b:1", "c:1", "a:1", "b:1", "c:1", "a:1"}, seen)
}

func TestNextProxyEmptyPool(t *testing.T) {
	selector := &TransportSelector{}
	_, ok := selector.nextProxy()
	assert.False(t, ok)
}

func TestLoadProxiesResetsCursor(t *testing.T) {
	selector := &TransportSelector{}
	selector.LoadProxies([]Proxy{{Endpoint: "a:1"}, {Endpoint: "b:1"}})
	first, ok := selector.nextProxy()
	require.True(t, ok)

	selector.LoadProxies([]Proxy{{Endpoint: "c:1"}})
	next, ok := selector.nextProxy()
	require.True(t, ok)
	assert.Equal(t, "c:1", next.Endpoint)
	assert.NotEqual(t, first.Endpoint, next.Endpoint)
}

func TestAcquireProxyChannelDegradesToDirect(t *testing.T) {
	app := newTestHarvester("http://example.test")
	ch, err := app.selector.Acquire(ChannelProxyRotated)
	require.NoError(t, err)
	assert.Equal(t, ChannelDirect, ch.Kind)
}

func TestAcquireRenderChannelRequiresKeys(t *testing.T) {
	app := newTestHarvester("http://example.test")
	_, err := app.selector.Acquire(ChannelRenderAPI)
	assert.Error(t, err)
}

func TestChannelFetchSetsHeaders(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		fmt.Fprint(w, "payload")
	}))
	defer srv.Close()

	app := newTestHarvester(srv.URL)
	body, err := app.mustChannel().Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "payload", body)
	assert.Equal(t, defaultUserAgent, gotUA)
	assert.Equal(t, srv.URL, gotReferer)
}

func TestChannelFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	app := newTestHarvester(srv.URL)
	_, err := app.mustChannel().Fetch(context.Background(), srv.URL+"/missing")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, srv.URL+"/missing", statusErr.URL)
	assert.True(t, isBlocked(&StatusError{Code: 429}))
	assert.True(t, isBlocked(&StatusError{Code: 403}))
	assert.False(t, isBlocked(statusErr))
}

func TestChannelFetchDecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in Latin-1.
		w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	app := newTestHarvester(srv.URL)
	body, err := app.mustChannel().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", body)
}

func TestChannelRotate(t *testing.T) {
	selector := &TransportSelector{
		Logger:  newTestHarvester("http://example.test").Logger,
		timeout: time.Second,
	}
	selector.proxies = []Proxy{{Endpoint: "a:1"}, {Endpoint: "b:1"}}

	ch, err := selector.Acquire(ChannelProxyRotated)
	require.NoError(t, err)
	require.Equal(t, "a:1", ch.proxy.Endpoint)

	ch.Rotate()
	assert.Equal(t, "b:1", ch.proxy.Endpoint)
	ch.Rotate()
	assert.Equal(t, "a:1", ch.proxy.Endpoint)
}

func TestChannelRotateNoopForDirect(t *testing.T) {
	app := newTestHarvester("http://example.test")
	ch := app.mustChannel()
	ch.Rotate()
	assert.Equal(t, ChannelDirect, ch.Kind)
}

func TestChannelKindString(t *testing.T) {
	assert.Equal(t, "direct", ChannelDirect.String())
	assert.Equal(t, "proxy", ChannelProxyRotated.String())
	assert.Equal(t, "render", ChannelRenderAPI.String())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList("a"))
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a, b ,,c "))
}
