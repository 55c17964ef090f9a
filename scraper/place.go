package scraper

import (
	"regexp"
	"strings"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

// titleSuffixMarker splits the place name out of the document title when
// no heading is available ("店舗名 - Google マップ").
const titleSuffixMarker = " - Google"

// reviewCountPattern pulls the numeric count out of the reviews-tab
// aria-label ("1,234 件のクチコミ").
var reviewCountPattern = regexp.MustCompile(`([\d,]+)\s*件`)

// stripTitleSuffix returns the page title up to the Google suffix.
func stripTitleSuffix(title string) string {
	if idx := strings.Index(title, titleSuffixMarker); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}

// readPlaceInfo resolves the three place fields independently; any field
// that cannot be resolved stays at its unknown placeholder without
// blocking the others.
func (j *job) readPlaceInfo() models.PlaceInfo {
	info := models.UnknownPlace()
	page := j.session.Page()

	if text := pageFirstText(page, j.catalog.PlaceName); text != "" {
		info.Name = firstLine(text)
	} else if title := stripTitleSuffix(j.session.Title()); title != "" {
		info.Name = title
	}

	if text := pageFirstText(page, j.catalog.PlaceAvgRating); text != "" {
		info.AvgRating = text
	}

	for _, sel := range j.catalog.PlaceReviewCount {
		elements, err := page.Elements(sel)
		if err != nil || len(elements) == 0 {
			continue
		}
		label, err := elements.First().Attribute("aria-label")
		if err != nil || label == nil {
			continue
		}
		if m := reviewCountPattern.FindStringSubmatch(*label); m != nil {
			info.ReviewCount = m[1]
			break
		}
	}

	return info
}
