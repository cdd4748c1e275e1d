package phonecrawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func robotsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckRobotsTxtAllowed(t *testing.T) {
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nAllow: /\n")
	app := newTestHarvester(srv.URL)
	assert.True(t, app.CheckRobotsTxt())
}

func TestCheckRobotsTxtDisallowed(t *testing.T) {
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /\n")
	app := newTestHarvester(srv.URL)
	assert.False(t, app.CheckRobotsTxt())
}

func TestCheckRobotsTxtMissingDefaultsToAllow(t *testing.T) {
	srv := robotsServer(t, http.StatusNotFound, "")
	app := newTestHarvester(srv.URL)
	assert.True(t, app.CheckRobotsTxt())
}

func TestCheckRobotsTxtUnreachableDefaultsToAllow(t *testing.T) {
	app := newTestHarvester("http://127.0.0.1:1")
	assert.True(t, app.CheckRobotsTxt())
}
