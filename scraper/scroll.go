package scraper

import (
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/kuchikomi-lab/kuchikomi/config"
)

// scrollStepPx is the size of one incremental scroll inside a round.
// Several small steps after the jump to the bottom mimic how the feed's
// lazy loader expects to be driven.
const scrollStepPx = 800

// incrementalSteps per round.
const incrementalSteps = 5

// containerDriver is what the scroll convergence loop needs from the
// reviews container. The rod implementation talks to the live page; tests
// drive the loop with a stub.
type containerDriver interface {
	// CountNodes returns how many review nodes are currently rendered.
	CountNodes() int

	// ScrollToBottom jumps the container to its full scroll height.
	ScrollToBottom()

	// ScrollBy scrolls the container down by px pixels.
	ScrollBy(px int)

	// Wait sleeps for a settle delay.
	Wait(d time.Duration)
}

// loadUntil drives the container until target review nodes are rendered,
// the round budget runs out, or growth stalls. All three are normal
// terminations; the return value is whatever is rendered at that point.
func loadUntil(drv containerDriver, target int, cfg config.ScraperConfig, report ProgressFunc) int {
	if report == nil {
		report = NopProgress
	}

	loaded := 0
	stalls := 0

	for round := 0; round < cfg.MaxScrollRounds; round++ {
		loaded = drv.CountNodes()

		if round%20 == 0 {
			percent := 30
			if target > 0 {
				percent += loaded * 40 / target
			}
			if percent > 70 {
				percent = 70
			}
			report("口コミを読み込み中...", percent)
		}

		if loaded >= target {
			return loaded
		}

		drv.ScrollToBottom()
		drv.Wait(cfg.ScrollBottomDelay)
		for i := 0; i < incrementalSteps; i++ {
			drv.ScrollBy(scrollStepPx)
			drv.Wait(cfg.ScrollStepDelay)
		}
		drv.Wait(cfg.ScrollRoundDelay)

		if n := drv.CountNodes(); n == loaded {
			stalls++
			if stalls >= cfg.StallThreshold {
				// One extended wait + extra pass before declaring the
				// feed exhausted. Slow loads sometimes need it.
				drv.Wait(cfg.StallRecheckDelay)
				drv.ScrollToBottom()
				drv.Wait(cfg.ScrollRoundDelay)
				if drv.CountNodes() == loaded {
					slog.Debug("scroll stalled, terminating", "loaded", loaded, "target", target)
					return loaded
				}
				stalls = 0
			}
		} else {
			stalls = 0
		}
	}

	return drv.CountNodes()
}

// rodContainer is the live containerDriver over the scrollable reviews
// panel.
type rodContainer struct {
	page      *rod.Page
	container *rod.Element
	nodeUnion string
}

func (r *rodContainer) CountNodes() int {
	elements, err := r.page.Elements(r.nodeUnion)
	if err != nil {
		return 0
	}
	return len(elements)
}

func (r *rodContainer) ScrollToBottom() {
	_, _ = r.container.Eval(`() => this.scrollTo(0, this.scrollHeight)`)
}

func (r *rodContainer) ScrollBy(px int) {
	_, _ = r.container.Eval(`(y) => this.scrollBy(0, y)`, px)
}

func (r *rodContainer) Wait(d time.Duration) {
	sleep(d)
}

// findScrollContainer probes the container selector list and accepts the
// first element that is genuinely scrollable: scrollHeight exceeding
// clientHeight by more than 10%. Nil when nothing qualifies — the caller
// then extracts whatever already rendered.
func findScrollContainer(page *rod.Page, catalog *Catalog) *rod.Element {
	for _, sel := range catalog.ScrollContainer {
		elements, err := page.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range elements {
			res, err := el.Eval(`() => this.scrollHeight > this.clientHeight * 1.1`)
			if err != nil {
				continue
			}
			if res.Value.Bool() {
				return el
			}
		}
	}
	return nil
}

// loadReviews wires the live container into the convergence loop.
// Returns 0 when no scrollable container exists.
func (j *job) loadReviews(target int) int {
	container := findScrollContainer(j.session.Page(), j.catalog)
	if container == nil {
		slog.Info("stage degraded", "stage", "scroll", "note", "no scrollable container")
		return 0
	}

	drv := &rodContainer{
		page:      j.session.Page(),
		container: container,
		nodeUnion: j.catalog.ReviewNodeUnion(),
	}
	return loadUntil(drv, target, j.cfg, j.report)
}
