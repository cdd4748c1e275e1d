package phonecrawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchListing walks the paginated device listing for a brand slug until a
// page contributes no new items, a fetch fails, or limit items (when > 0)
// have been collected. A failed page fetch ends pagination instead of
// erroring: the site omits a last-page marker, so running off the end looks
// identical to a transient failure. Credential exhaustion is the exception
// and is returned so the run can abort.
func (app *Harvester) FetchListing(ctx context.Context, ch *Channel, brandSlug string, limit int) ([]ListingItem, error) {
	var items []ListingItem
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		if limit > 0 && len(items) >= limit {
			break
		}

		pageURL := app.listingPageURL(brandSlug, page)
		if page > 1 {
			if err := sleepCtx(ctx, app.pageDelay); err != nil {
				return items, err
			}
		}

		body, err := WithRetry(ctx, ch, app.maxAttempts, app.retryDelay, func() (string, error) {
			return ch.Fetch(ctx, pageURL)
		})
		if err != nil {
			if errors.Is(err, ErrCredentialsExhausted) || errors.Is(err, context.Canceled) {
				return items, err
			}
			app.Logger.Warn("Listing page %d for %s failed, treating as end of pagination: %v", page, brandSlug, err)
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			app.Logger.Warn("Listing page %d for %s did not parse: %v", page, brandSlug, err)
			break
		}

		added := 0
		doc.Find("div.makers ul li a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if limit > 0 && len(items) >= limit {
				return false
			}
			href, ok := s.Attr("href")
			if !ok {
				return true
			}
			detailID := strings.TrimSuffix(href, ".php")
			if _, dup := seen[detailID]; dup {
				return true
			}
			seen[detailID] = struct{}{}

			item := ListingItem{
				Name:      strings.TrimSpace(s.Text()),
				DetailID:  detailID,
				DetailURL: app.BaseURL + "/" + href,
			}
			if src, ok := s.Find("img").First().Attr("src"); ok {
				item.ThumbnailURL = app.resolveURL(src)
			}
			items = append(items, item)
			added++
			return true
		})

		// A page with nothing new means the site is echoing the last real
		// page back at us.
		if added == 0 {
			break
		}
	}

	return items, nil
}

// listingPageURL builds the brand listing URL for a page number. Page 1 is
// the bare slug; later pages use the -p{page} suffix.
func (app *Harvester) listingPageURL(brandSlug string, page int) string {
	if page == 1 {
		return fmt.Sprintf("%s/%s.php", app.BaseURL, brandSlug)
	}
	return fmt.Sprintf("%s/%s-p%d.php", app.BaseURL, brandSlug, page)
}

// resolveURL prefixes site-relative asset paths with the base URL.
func (app *Harvester) resolveURL(src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return app.BaseURL + "/" + strings.TrimPrefix(src, "/")
}
