package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

// extractFromSnapshot is the fallback extraction path: it re-parses the
// rendered page HTML with goquery and applies the same catalog. Live
// element probing occasionally dies mid-walk when the panel re-renders
// under it; a static snapshot cannot.
func extractFromSnapshot(html string, catalog *Catalog, target int, sourceURL string) []models.Review {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	reviews := make([]models.Review, 0, target)
	seen := make(map[string]struct{})

	doc.Find(catalog.ReviewNodeUnion()).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		review, ok := snapshotOne(node, catalog, sourceURL)
		if ok {
			key := review.DedupKey()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				reviews = append(reviews, review)
			}
		}
		return len(reviews) < target
	})

	return reviews
}

func snapshotOne(node *goquery.Selection, catalog *Catalog, sourceURL string) (models.Review, bool) {
	author := models.UnknownValue
	if text := firstSelectionText(node, catalog.Author); text != "" {
		author = firstLine(text)
	}

	rating := 0
	for _, sel := range catalog.Rating {
		label, exists := node.Find(sel).First().Attr("aria-label")
		if !exists {
			continue
		}
		if r := parseRating(label); r > 0 {
			rating = r
			break
		}
	}

	date := models.UnknownValue
	if text := firstSelectionText(node, catalog.Date); text != "" {
		date = text
	}

	body := cleanBody(firstSelectionText(node, catalog.Body))
	if body == "" {
		return models.Review{}, false
	}

	return models.Review{
		Author:      author,
		Rating:      rating,
		RatingStars: models.StarGlyphs(rating),
		PostedAt:    date,
		Body:        body,
		SourceURL:   sourceURL,
	}, true
}

func firstSelectionText(node *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(node.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
