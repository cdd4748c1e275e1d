package phonecrawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// proxyListResponse is the shape of the remote proxy-source document list.
type proxyListResponse struct {
	Documents []Proxy `json:"documents"`
}

// FetchProxyPool loads candidate proxies from the remote document source
// configured via PROXY_SOURCE_URL (plus PROXY_SOURCE_PROJECT_ID and
// PROXY_SOURCE_API_KEY headers). Only entries with an active/working status
// make it into the pool. When no remote source is configured the static
// PROXY_SERVERS list is used instead.
func (app *Harvester) FetchProxyPool(ctx context.Context) (int, error) {
	sourceURL := app.Config.EnvString("PROXY_SOURCE_URL")
	if sourceURL == "" {
		proxies := staticProxyPool(app.Config)
		app.selector.LoadProxies(proxies)
		if len(proxies) > 0 {
			app.Logger.Info("Loaded %d proxies from PROXY_SERVERS", len(proxies))
		}
		return len(proxies), nil
	}

	client := resty.New().SetTimeout(30 * time.Second)
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("X-Appwrite-Project", app.Config.EnvString("PROXY_SOURCE_PROJECT_ID")).
		SetHeader("X-Appwrite-Key", app.Config.EnvString("PROXY_SOURCE_API_KEY")).
		SetHeader("Content-Type", "application/json").
		SetResult(&proxyListResponse{}).
		Get(sourceURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch proxy list: %w", err)
	}
	if resp.IsError() {
		return 0, &StatusError{Code: resp.StatusCode(), URL: sourceURL}
	}

	list, ok := resp.Result().(*proxyListResponse)
	if !ok {
		return 0, fmt.Errorf("unexpected proxy list response")
	}

	var proxies []Proxy
	for _, doc := range list.Documents {
		status := strings.ToLower(doc.Status)
		if status == "working" || status == "active" {
			proxies = append(proxies, doc)
		}
	}

	app.selector.LoadProxies(proxies)
	app.Logger.Info("Loaded %d active proxies from proxy source", len(proxies))
	return len(proxies), nil
}

func staticProxyPool(config *configService) []Proxy {
	var proxies []Proxy
	for _, endpoint := range splitList(config.EnvString("PROXY_SERVERS")) {
		proxies = append(proxies, Proxy{Endpoint: endpoint, Status: "active"})
	}
	return proxies
}
