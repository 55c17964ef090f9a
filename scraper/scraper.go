package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"

	"github.com/kuchikomi-lab/kuchikomi/config"
	"github.com/kuchikomi-lab/kuchikomi/models"
)

// Scraper runs review-extraction invocations. It holds only immutable
// configuration, so it is safe for concurrent use: every invocation
// launches and owns its own isolated browser session.
type Scraper struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	catalog    *Catalog
}

// New creates a Scraper over the given configuration and selector catalog.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, catalog *Catalog) *Scraper {
	return &Scraper{
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		catalog:    catalog,
	}
}

// job carries one invocation's state through the pipeline stages.
type job struct {
	session *Session
	catalog *Catalog
	cfg     config.ScraperConfig
	report  ProgressFunc
}

// Run scrapes up to count reviews from the place behind target, which may
// be a place link or a search-results link.
//
// The error return covers only the fatal conditions: session acquisition
// failure and a panic escaping the pipeline. Every stage-level failure
// degrades instead, so a non-error return is always a structurally valid
// (possibly empty) result. Progress lands on 100 on both paths.
func (s *Scraper) Run(ctx context.Context, target string, count int, report ProgressFunc) (result *models.ScrapeResult, err error) {
	if count <= 0 {
		count = models.DefaultReviewCount
	}
	sink := Monotonic(report)

	defer func() {
		if r := recover(); r != nil {
			err = models.NewScrapeError(models.ErrCodeInternal,
				fmt.Sprintf("scrape panicked: %v", r), nil)
		}
		if err != nil {
			result = &models.ScrapeResult{Place: models.UnknownPlace()}
			sink("エラー: "+truncateMessage(err.Error(), 120), 100)
		}
	}()

	sink("ブラウザをセットアップ中...", 5)
	session, err := NewSession(ctx, s.browserCfg)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	sink("ブラウザの起動完了", 10)

	j := &job{
		session: session,
		catalog: s.catalog,
		cfg:     s.scraperCfg,
		report:  sink,
	}

	url := NormalizeURL(target, "ja")
	sink("ページにアクセス中...", 15)
	if navErr := session.Navigate(url); navErr != nil {
		// Nothing rendered, nothing to extract. Still a well-formed
		// empty result rather than an invocation failure.
		slog.Warn("initial navigation failed", "url", url, "error", navErr)
	}
	sleep(s.scraperCfg.NavSettleDelay)
	sink("ページ読込完了: "+truncateMessage(session.Title(), 30), 16)

	j.dismissConsent(url).log()

	sink("検索結果から店舗を選択中...", 18)
	j.resolveSearchResult().log()

	sink("店舗情報を取得中...", 20)
	place := j.readPlaceInfo()

	sink("口コミタブを開いています...", 25)
	j.openReviewsTab().log()
	j.sortByNewest().log()

	loaded := j.loadReviews(count)
	slog.Debug("scroll phase done", "loaded", loaded, "target", count)

	reviews := j.extractReviews(count, url)
	if len(reviews) == 0 {
		// Live probing came up empty; one pass over the static HTML.
		if html, htmlErr := session.Page().HTML(); htmlErr == nil {
			reviews = extractFromSnapshot(html, s.catalog, count, url)
			if len(reviews) > 0 {
				slog.Info("snapshot fallback recovered reviews", "count", len(reviews))
			}
		}
	}

	sink(fmt.Sprintf("完了: %d件取得", len(reviews)), 100)
	return &models.ScrapeResult{Reviews: reviews, Place: place}, nil
}

// RunSearch scrapes via a free-text place query instead of a URL.
func (s *Scraper) RunSearch(ctx context.Context, query string, count int, report ProgressFunc) (*models.ScrapeResult, error) {
	return s.Run(ctx, BuildSearchURL(query), count, report)
}

// pageFirstText probes the selector list against the whole page and
// returns the first non-empty text match.
func pageFirstText(page *rod.Page, selectors []string) string {
	for _, sel := range selectors {
		elements, err := page.Elements(sel)
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

// truncateMessage bounds user-facing status text.
func truncateMessage(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
