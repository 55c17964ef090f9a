package scraper

import (
	"log/slog"

	"github.com/go-rod/rod"
)

// stepOutcome is the structured result of one navigation stage. Stages
// never fail the invocation; a not-OK outcome means the pipeline carries
// on with reduced state.
type stepOutcome struct {
	Stage string
	OK    bool
	Note  string
}

func (o stepOutcome) log() {
	if o.OK {
		slog.Debug("stage complete", "stage", o.Stage, "note", o.Note)
		return
	}
	slog.Info("stage degraded", "stage", o.Stage, "note", o.Note)
}

// firstVisible probes the selector list in priority order and returns the
// first element that exists and is visible. Waits up to the given rod
// page's timeout per selector via Element; pass an already-bounded page.
func firstVisible(p *rod.Page, selectors []string) (*rod.Element, string) {
	for _, sel := range selectors {
		elements, err := p.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range elements {
			if visible, err := el.Visible(); err == nil && visible {
				return el, sel
			}
		}
	}
	return nil, ""
}

// waitFirstVisible is firstVisible with one bounded element-appears wait
// on the highest-priority selector before probing the whole list. The
// wait gives lazy panels a chance to render; the probe then works on
// whatever exists.
func (j *job) waitFirstVisible(selectors []string) (*rod.Element, string) {
	if len(selectors) == 0 {
		return nil, ""
	}
	bounded := j.session.Page().Timeout(j.cfg.StepTimeout)
	if _, err := bounded.Element(selectors[0]); err != nil {
		slog.Debug("element wait expired", "selector", selectors[0], "error", err)
	}
	return firstVisible(j.session.Page(), selectors)
}

// clickJS clicks through the DOM rather than the input domain. Overlays
// and half-rendered layers on this site swallow synthetic mouse events;
// a script click does not care.
func clickJS(el *rod.Element) error {
	_, err := el.Eval(`() => this.click()`)
	return err
}

// dismissConsent detects the consent interstitial and clicks the first
// visible accept/reject control. If the page is still on the interstitial
// afterwards, the original navigation is retried once.
func (j *job) dismissConsent(originalURL string) stepOutcome {
	loc := j.session.Location()
	onConsent := isConsentURL(loc)
	if !onConsent {
		// A consent form can also be injected into the Maps page itself.
		if elements, err := j.session.Page().Elements(`form[action*="consent"]`); err != nil || len(elements) == 0 {
			return stepOutcome{Stage: "consent", OK: true, Note: "no interstitial"}
		}
	}

	el, sel := firstVisible(j.session.Page(), j.catalog.ConsentButton)
	if el == nil {
		return stepOutcome{Stage: "consent", OK: false, Note: "no consent button matched"}
	}
	if err := clickJS(el); err != nil {
		return stepOutcome{Stage: "consent", OK: false, Note: "consent click failed: " + err.Error()}
	}
	sleep(j.cfg.ConsentSettleDelay)

	if isConsentURL(j.session.Location()) {
		// Still stuck: go back to where we were headed and hope the
		// consent cookie took.
		if err := j.session.Navigate(originalURL); err != nil {
			return stepOutcome{Stage: "consent", OK: false, Note: "re-navigation after consent failed"}
		}
		sleep(j.cfg.ConsentSettleDelay)
	}
	return stepOutcome{Stage: "consent", OK: true, Note: "clicked " + sel}
}

// resolveSearchResult clicks the first place entry on a search-results
// page. Three fallback strategies; giving up means scraping whatever page
// is currently loaded.
func (j *job) resolveSearchResult() stepOutcome {
	if !isSearchURL(j.session.Location()) {
		return stepOutcome{Stage: "search", OK: true, Note: "direct place link"}
	}

	el, sel := j.waitFirstVisible(j.catalog.SearchResult)
	if el == nil {
		return stepOutcome{Stage: "search", OK: false, Note: "no search result matched"}
	}
	if err := clickJS(el); err != nil {
		return stepOutcome{Stage: "search", OK: false, Note: "result click failed: " + err.Error()}
	}
	sleep(j.cfg.SearchSettleDelay)
	return stepOutcome{Stage: "search", OK: true, Note: "clicked " + sel}
}

// openReviewsTab activates the reviews panel and waits for its lazy
// content to start rendering.
func (j *job) openReviewsTab() stepOutcome {
	el, sel := j.waitFirstVisible(j.catalog.ReviewsTab)
	if el == nil {
		return stepOutcome{Stage: "reviews-tab", OK: false, Note: "reviews tab not found"}
	}
	if err := clickJS(el); err != nil {
		return stepOutcome{Stage: "reviews-tab", OK: false, Note: "tab click failed: " + err.Error()}
	}
	sleep(j.cfg.TabSettleDelay)
	return stepOutcome{Stage: "reviews-tab", OK: true, Note: "clicked " + sel}
}

// sortByNewest switches the review order to most-recent. Any failure here
// is acceptable — unsorted reviews are still reviews.
func (j *job) sortByNewest() stepOutcome {
	el, _ := firstVisible(j.session.Page(), j.catalog.SortButton)
	if el == nil {
		return stepOutcome{Stage: "sort", OK: false, Note: "sort button not found"}
	}
	if err := clickJS(el); err != nil {
		return stepOutcome{Stage: "sort", OK: false, Note: "sort click failed"}
	}
	sleep(j.cfg.ConsentSettleDelay)

	item, err := j.session.Page().Timeout(j.cfg.StepTimeout).
		ElementR(`div[role="menuitemradio"]`, j.catalog.SortNewestText)
	if err != nil {
		return stepOutcome{Stage: "sort", OK: false, Note: "newest option not found"}
	}
	if err := clickJS(item); err != nil {
		return stepOutcome{Stage: "sort", OK: false, Note: "newest click failed"}
	}
	sleep(j.cfg.SortSettleDelay)
	return stepOutcome{Stage: "sort", OK: true}
}
