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

func TestRenderClientFetch(t *testing.T) {
	var gotKey, gotURL, gotRender string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotKey = q.Get("api_key")
		gotURL = q.Get("url")
		gotRender = q.Get("render_js")
		fmt.Fprint(w, "<html>rendered</html>")
	}))
	defer srv.Close()

	client := NewRenderClient(srv.URL, []string{"key-a", "key-b"}, time.Second)
	body, err := client.Fetch(context.Background(), "https://target.test/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", body)
	assert.Equal(t, "key-a", gotKey)
	assert.Equal(t, "https://target.test/page", gotURL)
	assert.Equal(t, "false", gotRender)
}

func TestRenderClientRotatesPastBlockedKeys(t *testing.T) {
	var served []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("api_key")
		served = append(served, key)
		if key != "key-c" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client := NewRenderClient(srv.URL, []string{"key-a", "key-b", "key-c"}, time.Second)
	body, err := client.Fetch(context.Background(), "https://target.test/page")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, []string{"key-a", "key-b", "key-c"}, served)
}

func TestRenderClientAllKeysExhausted(t *testing.T) {
	var served []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = append(served, r.URL.Query().Get("api_key"))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewRenderClient(srv.URL, []string{"key-a", "key-b", "key-c"}, time.Second)
	_, err := client.Fetch(context.Background(), "https://target.test/page")
	assert.ErrorIs(t, err, ErrCredentialsExhausted)
	// Each key is tried exactly once per call.
	assert.Equal(t, []string{"key-a", "key-b", "key-c"}, served)
}

func TestRenderClientNonBlockedStatusFailsImmediately(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRenderClient(srv.URL, []string{"key-a", "key-b"}, time.Second)
	_, err := client.Fetch(context.Background(), "https://target.test/page")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, 1, calls, "a server-side failure is not a key problem")
	assert.NotErrorIs(t, err, ErrCredentialsExhausted)
}

func TestRenderClientKeyCursorPersistsAcrossCalls(t *testing.T) {
	var served []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = append(served, r.URL.Query().Get("api_key"))
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client := NewRenderClient(srv.URL, []string{"key-a", "key-b"}, time.Second)
	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), "https://target.test/page")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"key-a", "key-b", "key-a"}, served)
}

func TestRenderClientNoKeys(t *testing.T) {
	client := NewRenderClient("http://unused.test", nil, time.Second)
	_, err := client.Fetch(context.Background(), "https://target.test/page")
	assert.ErrorIs(t, err, ErrCredentialsExhausted)
}
