package phonecrawler

import (
	"net/http"
	"time"

	"github.com/temoto/robotstxt"
)

// CheckRobotsTxt fetches the origin's robots.txt and reports whether the
// configured user agent may crawl at all. Unfetchable or malformed robots.txt
// defaults to allow, matching conventional crawler behavior.
func (app *Harvester) CheckRobotsTxt() bool {
	app.Logger.Info("Checking robots.txt")
	_, allowed := fetchRobotsTxt(app.BaseURL, app.Config.EnvString("USER_AGENT", defaultUserAgent))
	if !allowed {
		app.Logger.Error("Crawling is disallowed by robots.txt")
	}
	return allowed
}

func fetchRobotsTxt(baseURL, userAgent string) (*robotstxt.RobotsData, bool) {
	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(http.MethodGet, baseURL+"/robots.txt", nil)
	if err != nil {
		return nil, true
	}
	req.Header.Set("User-Agent", userAgent)

	response, err := client.Do(req)
	if err != nil || response.StatusCode != http.StatusOK {
		return nil, true
	}
	defer response.Body.Close()

	robotsData, err := robotstxt.FromResponse(response)
	if err != nil {
		return nil, true
	}

	group := robotsData.FindGroup(userAgent)
	return robotsData, group.Test("/")
}
