package phonecrawler

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const brandIndexPath = "/makers.php3"

// FetchBrands retrieves the full manufacturer list from the makers index
// page. Zero brands is not an error; it usually means the page structure
// changed or the fetch was served a block page, which the caller can judge
// from context.
func (app *Harvester) FetchBrands(ctx context.Context, ch *Channel) ([]Brand, error) {
	body, err := ch.Fetch(ctx, app.BaseURL+brandIndexPath)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	return parseBrands(doc), nil
}

// parseBrands extracts brands in document order. No dedup, no sort.
func parseBrands(doc *goquery.Document) []Brand {
	var brands []Brand
	doc.Find("div.st-text table td a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		name, count := splitBrandText(text)
		brands = append(brands, Brand{
			Name:        name,
			Slug:        strings.TrimSuffix(href, ".php"),
			DeviceCount: count,
		})
	})
	return brands
}

// splitBrandText separates "Acme 42 devices" into the brand name and its
// advertised device count. When the second-to-last token is not an unsigned
// integer the whole text is the name and the count is 0. Brand names that
// themselves end in a number will mis-parse; that matches the source site's
// labeling and has not bitten in practice.
func splitBrandText(text string) (string, int) {
	parts := strings.Fields(text)
	if len(parts) >= 2 {
		countToken := parts[len(parts)-2]
		if count, err := strconv.Atoi(countToken); err == nil && count >= 0 && !strings.HasPrefix(countToken, "-") {
			return strings.Join(parts[:len(parts)-2], " "), count
		}
	}
	return text, 0
}
