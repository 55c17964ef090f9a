package models

import "strings"

// UnknownValue is the terminal placeholder for fields that could not be
// resolved from the page. It is valid output, not an error.
const UnknownValue = "不明"

// NoRatingGlyphs is the display string for an unrated review.
const NoRatingGlyphs = "評価なし"

// Review is one extracted user review.
type Review struct {
	// Author is the reviewer's display name, first line only.
	Author string `json:"author"`

	// Rating is the star count, 0-5. 0 means unrated.
	Rating int `json:"rating"`

	// RatingStars is the display form of Rating, e.g. "★★★☆☆".
	RatingStars string `json:"rating_stars"`

	// PostedAt is the site-native relative date text (e.g. "2 週間前").
	// It is not parsed; UnknownValue when absent.
	PostedAt string `json:"posted_at"`

	// Body is the review text. Always non-empty; reviews with an empty
	// body are discarded before they reach a result.
	Body string `json:"body"`

	// SourceURL is the place page the review was extracted from.
	SourceURL string `json:"source_url"`

	// PlaceName is filled for batch results, where one result set spans
	// several places. Empty for single-place scrapes.
	PlaceName string `json:"place_name,omitempty"`
}

// DedupKey identifies a review within one scrape: author plus the first
// 50 characters of the body. Rune-safe so multi-byte text never splits.
func (r *Review) DedupKey() string {
	body := r.Body
	if runes := []rune(body); len(runes) > 50 {
		body = string(runes[:50])
	}
	return r.Author + "_" + body
}

// StarGlyphs renders a 0-5 rating as filled/empty star glyphs.
// A zero rating renders as the no-rating marker.
func StarGlyphs(rating int) string {
	if rating <= 0 {
		return NoRatingGlyphs
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// PlaceInfo holds place-level metadata read once per scrape.
// Each field independently degrades to UnknownValue.
type PlaceInfo struct {
	Name        string `json:"name"`
	AvgRating   string `json:"avg_rating"`
	ReviewCount string `json:"review_count"`
}

// UnknownPlace returns a PlaceInfo with every field unresolved.
func UnknownPlace() PlaceInfo {
	return PlaceInfo{
		Name:        UnknownValue,
		AvgRating:   UnknownValue,
		ReviewCount: UnknownValue,
	}
}

// ScrapeResult is the complete output of one scrape invocation: the
// deduplicated review sequence in DOM order plus the place metadata.
type ScrapeResult struct {
	Reviews []Review  `json:"reviews"`
	Place   PlaceInfo `json:"place_info"`
}
