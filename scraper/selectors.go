package scraper

import (
	"fmt"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Catalog is the ordered selector lists for every logical field the
// pipeline probes. Each list is a fallback chain: resolution tries the
// entries in order and the first match wins. The catalog is data, not
// contract — the target site reshuffles its class names without notice,
// so deployments can override any list from a YAML file.
type Catalog struct {
	// ReviewNode matches one rendered review.
	ReviewNode []string `yaml:"review_node"`

	// ScrollContainer candidates for the scrollable reviews panel.
	ScrollContainer []string `yaml:"scroll_container"`

	// Per-review field selectors.
	Author []string `yaml:"author"`
	Rating []string `yaml:"rating"`
	Date   []string `yaml:"date"`
	Body   []string `yaml:"body"`

	// ExpandButton reveals truncated review text.
	ExpandButton []string `yaml:"expand_button"`

	// Page-navigation controls.
	ConsentButton []string `yaml:"consent_button"`
	SearchResult  []string `yaml:"search_result"`
	ReviewsTab    []string `yaml:"reviews_tab"`
	SortButton    []string `yaml:"sort_button"`

	// SortNewestText is the visible-text match for the "most recent"
	// menu item, not a CSS selector.
	SortNewestText string `yaml:"sort_newest_text"`

	// Place-level metadata.
	PlaceName        []string `yaml:"place_name"`
	PlaceAvgRating   []string `yaml:"place_avg_rating"`
	PlaceReviewCount []string `yaml:"place_review_count"`
}

// DefaultCatalog returns the built-in selector lists, consolidated from
// the most defensive variant observed against the live site.
func DefaultCatalog() *Catalog {
	return &Catalog{
		ReviewNode: []string{
			`div[data-review-id]`,
			`div.jftiEf.fontBodyMedium`,
		},
		ScrollContainer: []string{
			`div.m6QErb.DxyBCb.kA9KIf.dS8AEf.XiKgde`,
			`div.m6QErb.XiKgde`,
			`div.m6QErb.DxyBCb`,
			`div[role="main"]`,
			`div.m6QErb`,
		},
		Author: []string{
			`div.d4r55`,
			`.WNxzHc.qLhwHc`,
			`button[data-review-id] div`,
		},
		Rating: []string{
			`span.kvMYJc`,
			`span[role="img"]`,
		},
		Date: []string{
			`span.rsqaWe`,
			`span.xRkPPb`,
		},
		Body: []string{
			`span.wiI7pd`,
			`div.MyEned`,
		},
		ExpandButton: []string{
			`button[aria-label*="もっと見る"]`,
			`button.w8nwRe.kyuRq`,
			`button.w8nwRe`,
		},
		ConsentButton: []string{
			`button[aria-label*="すべて拒否"]`,
			`button[aria-label*="同意"]`,
			`form[action*="consent"] button`,
		},
		SearchResult: []string{
			`a[href*="/maps/place/"]`,
			`div.Nv2PK a`,
			`div.Nv2PK`,
		},
		ReviewsTab: []string{
			`button[aria-label*="のクチコミ"]`,
			`button[role="tab"][aria-label*="クチコミ"]`,
			`button[data-tab-index="1"]`,
		},
		SortButton: []string{
			`button[data-value="Sort"]`,
			`button[aria-label*="並べ替え"]`,
		},
		SortNewestText: "新しい順",
		PlaceName: []string{
			`h1.DUwDvf`,
			`h1`,
		},
		PlaceAvgRating: []string{
			`div.F7nice span[aria-hidden="true"]`,
			`span.ceNzKf`,
		},
		PlaceReviewCount: []string{
			`button[aria-label*="件のクチコミ"]`,
			`div.F7nice span[aria-label]`,
		},
	}
}

// LoadCatalog returns the default catalog, merged with the YAML override
// file at path when path is non-empty. Every selector in the resulting
// catalog must parse as CSS; an invalid entry fails the load rather than
// surfacing later as a silent no-match.
func LoadCatalog(path string) (*Catalog, error) {
	cat := DefaultCatalog()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("selector catalog: read %s: %w", path, err)
		}
		var override Catalog
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("selector catalog: parse %s: %w", path, err)
		}
		cat.merge(&override)
	}

	if err := cat.validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// merge replaces any list the override file sets. Lists are replaced
// whole, never appended — an override is an authoritative statement of
// the current site layout.
func (c *Catalog) merge(o *Catalog) {
	if len(o.ReviewNode) > 0 {
		c.ReviewNode = o.ReviewNode
	}
	if len(o.ScrollContainer) > 0 {
		c.ScrollContainer = o.ScrollContainer
	}
	if len(o.Author) > 0 {
		c.Author = o.Author
	}
	if len(o.Rating) > 0 {
		c.Rating = o.Rating
	}
	if len(o.Date) > 0 {
		c.Date = o.Date
	}
	if len(o.Body) > 0 {
		c.Body = o.Body
	}
	if len(o.ExpandButton) > 0 {
		c.ExpandButton = o.ExpandButton
	}
	if len(o.ConsentButton) > 0 {
		c.ConsentButton = o.ConsentButton
	}
	if len(o.SearchResult) > 0 {
		c.SearchResult = o.SearchResult
	}
	if len(o.ReviewsTab) > 0 {
		c.ReviewsTab = o.ReviewsTab
	}
	if len(o.SortButton) > 0 {
		c.SortButton = o.SortButton
	}
	if o.SortNewestText != "" {
		c.SortNewestText = o.SortNewestText
	}
	if len(o.PlaceName) > 0 {
		c.PlaceName = o.PlaceName
	}
	if len(o.PlaceAvgRating) > 0 {
		c.PlaceAvgRating = o.PlaceAvgRating
	}
	if len(o.PlaceReviewCount) > 0 {
		c.PlaceReviewCount = o.PlaceReviewCount
	}
}

// validate parses every selector with cascadia.
func (c *Catalog) validate() error {
	lists := map[string][]string{
		"review_node":        c.ReviewNode,
		"scroll_container":   c.ScrollContainer,
		"author":             c.Author,
		"rating":             c.Rating,
		"date":               c.Date,
		"body":               c.Body,
		"expand_button":      c.ExpandButton,
		"consent_button":     c.ConsentButton,
		"search_result":      c.SearchResult,
		"reviews_tab":        c.ReviewsTab,
		"sort_button":        c.SortButton,
		"place_name":         c.PlaceName,
		"place_avg_rating":   c.PlaceAvgRating,
		"place_review_count": c.PlaceReviewCount,
	}
	for field, selectors := range lists {
		for _, sel := range selectors {
			if _, err := cascadia.Parse(sel); err != nil {
				return fmt.Errorf("selector catalog: %s: invalid selector %q: %w", field, sel, err)
			}
		}
	}
	return nil
}

// ReviewNodeUnion joins the review-node selectors into one comma list so
// a single query counts nodes across all fallbacks.
func (c *Catalog) ReviewNodeUnion() string {
	union := ""
	for i, sel := range c.ReviewNode {
		if i > 0 {
			union += ", "
		}
		union += sel
	}
	return union
}
