package scraper

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-rod/rod"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

// ownerReplyMarker separates review text from the owner's reply when the
// site flattens both into one text node.
const ownerReplyMarker = "オーナーからの返信"

// expandLabel is the "show more" literal that sometimes survives inside
// the body text after expansion.
const expandLabel = "もっと見る"

// ratingPatterns parse a star count out of the rating element's
// accessibility label. Japanese locale first, English fallback.
var ratingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*つ星`),
	regexp.MustCompile(`(?i)(\d+)\s*star`),
}

// parseRating extracts the integer star count from an aria-label.
// Returns 0 (unrated) when no pattern matches.
func parseRating(label string) int {
	for _, re := range ratingPatterns {
		if m := re.FindStringSubmatch(label); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n <= 5 {
				return n
			}
		}
	}
	return 0
}

// cleanBody normalizes extracted review text: the owner's reply is cut
// off, the stray "show more" label removed, whitespace trimmed.
func cleanBody(text string) string {
	if idx := strings.Index(text, ownerReplyMarker); idx >= 0 {
		text = text[:idx]
	}
	text = strings.ReplaceAll(text, expandLabel, "")
	return strings.TrimSpace(text)
}

// firstLine returns the text before the first line break, trimmed.
// Author nodes carry badge lines ("ローカルガイド · ...") under the name.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// firstNonEmptyText probes the selector list against one review node and
// returns the first non-empty text match.
func firstNonEmptyText(node *rod.Element, selectors []string) string {
	for _, sel := range selectors {
		elements, err := node.Elements(sel)
		if err != nil || len(elements) == 0 {
			continue
		}
		text, err := elements.First().Text()
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// expandReview clicks the node's "show more" control if one is visible.
// Best-effort; an unclickable control just leaves the text truncated.
func (j *job) expandReview(node *rod.Element) {
	for _, sel := range j.catalog.ExpandButton {
		elements, err := node.Elements(sel)
		if err != nil {
			continue
		}
		for _, btn := range elements {
			if visible, err := btn.Visible(); err == nil && visible {
				if clickJS(btn) == nil {
					sleep(j.cfg.ExpandClickDelay)
				}
				return
			}
		}
	}
}

// extractOne resolves one review node into a record. ok is false when the
// node has no usable body text.
func (j *job) extractOne(node *rod.Element, sourceURL string) (models.Review, bool) {
	j.expandReview(node)

	author := models.UnknownValue
	if text := firstNonEmptyText(node, j.catalog.Author); text != "" {
		author = firstLine(text)
	}

	rating := 0
	for _, sel := range j.catalog.Rating {
		elements, err := node.Elements(sel)
		if err != nil || len(elements) == 0 {
			continue
		}
		label, err := elements.First().Attribute("aria-label")
		if err != nil || label == nil {
			continue
		}
		if r := parseRating(*label); r > 0 {
			rating = r
			break
		}
	}

	date := models.UnknownValue
	if text := firstNonEmptyText(node, j.catalog.Date); text != "" {
		date = text
	}

	body := cleanBody(firstNonEmptyText(node, j.catalog.Body))
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

// extractReviews walks the rendered review nodes in DOM order, stopping
// once target valid records exist. A failure on any single node skips
// that node only.
func (j *job) extractReviews(target int, sourceURL string) []models.Review {
	nodes, err := j.session.Page().Elements(j.catalog.ReviewNodeUnion())
	if err != nil || len(nodes) == 0 {
		return nil
	}

	j.report("口コミを抽出中...", 75)

	reviews := make([]models.Review, 0, target)
	seen := make(map[string]struct{})

	for idx, node := range nodes {
		if len(reviews) >= target {
			break
		}

		err := rod.Try(func() {
			review, ok := j.extractOne(node, sourceURL)
			if !ok {
				return
			}
			key := review.DedupKey()
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			reviews = append(reviews, review)
		})
		if err != nil {
			slog.Debug("review node skipped", "index", idx, "error", err)
		}

		if (idx+1)%10 == 0 {
			percent := 75
			if target > 0 {
				percent += len(reviews) * 20 / target
			}
			if percent > 95 {
				percent = 95
			}
			j.report("抽出中...", percent)
		}
	}

	return reviews
}
