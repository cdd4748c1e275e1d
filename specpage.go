package phonecrawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchSpecification fetches a device detail page and extracts its titled
// specification categories in page order. The returned name is the page's own
// title; callers fall back to the listing name when it is empty.
func (app *Harvester) FetchSpecification(ctx context.Context, ch *Channel, detailID string) (string, []RawCategory, error) {
	detailURL := fmt.Sprintf("%s/%s.php", app.BaseURL, detailID)
	body, err := ch.Fetch(ctx, detailURL)
	if err != nil {
		return "", nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	name, categories := parseSpecPage(doc)
	return name, categories, nil
}

// parseSpecPage reads the #specs-list layout: one table per category, the
// category title in the table's first th, and td.ttl/td.nfo cells per row.
// Pages missing the expected structure yield partial or empty results, never
// an error; the site's markup varies across device eras.
func parseSpecPage(doc *goquery.Document) (string, []RawCategory) {
	name := strings.TrimSpace(doc.Find("h1.specs-phone-name-title").First().Text())

	var categories []RawCategory
	doc.Find("#specs-list table").Each(func(_ int, table *goquery.Selection) {
		title := strings.TrimSpace(table.Find("th").First().Text())
		if title == "" {
			return
		}
		category := RawCategory{Title: title}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			key := strings.TrimSpace(row.Find("td.ttl").First().Text())
			value := strings.TrimSpace(row.Find("td.nfo").First().Text())
			if key == "" && value == "" {
				return
			}
			category.Specs = append(category.Specs, SpecPair{Key: key, Value: value})
		})
		categories = append(categories, category)
	})

	return name, categories
}
