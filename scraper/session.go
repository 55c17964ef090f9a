package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/kuchikomi-lab/kuchikomi/config"
	"github.com/kuchikomi-lab/kuchikomi/models"
)

// userAgents is a small pool of real browser strings; each session picks
// one at random so consecutive sessions don't share a fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

// maskJS patches the automation tells that stealth.JS alone does not
// cover on this site. Best-effort: a failed patch never fails the session.
const maskJS = `() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
	Object.defineProperty(navigator, 'languages', { get: () => ['ja', 'ja-JP'] });
	const getParameter = WebGLRenderingContext.prototype.getParameter;
	WebGLRenderingContext.prototype.getParameter = function(param) {
		if (param === 37445) return 'Intel Inc.';
		if (param === 37446) return 'Intel Iris OpenGL Engine';
		return getParameter.call(this, param);
	};
}`

// Session owns exactly one browser process and one page for the duration
// of a single scrape invocation. Sessions share no state; Close is safe
// to call on every exit path and must be.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     config.BrowserConfig
}

// NewSession launches a dedicated browser, opens one page and applies the
// locale/viewport/user-agent/stealth configuration before any target page
// script can run. The page is bound to ctx so cancelling it aborts every
// in-flight browser operation. Launch or connect failure is the
// pipeline's one fatal condition.
func NewSession(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	l.Set(flags.Flag("lang"), cfg.Locale)
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-sync"))
	l.Set(flags.Flag("disable-translate"))
	l.Set(flags.Flag("disable-background-networking"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSessionFailed, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSessionFailed, "failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, models.NewScrapeError(models.ErrCodeSessionFailed, "failed to create page", err)
	}

	s := &Session{browser: browser, page: page.Context(ctx), cfg: cfg}
	s.configure()
	return s, nil
}

// configure applies fingerprint and environment overrides. All of this is
// best-effort hardening, not a correctness requirement, so failures are
// logged at debug and swallowed.
func (s *Session) configure() {
	ua := userAgents[rand.Intn(len(userAgents))]
	if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "ja,ja-JP",
	}); err != nil {
		slog.Debug("session: user-agent override failed", "error", err)
	}

	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Debug("session: viewport override failed", "error", err)
	}

	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: s.cfg.Timezone}).Call(s.page); err != nil {
		slog.Debug("session: timezone override failed", "error", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: s.cfg.Locale}).Call(s.page); err != nil {
		slog.Debug("session: locale override failed", "error", err)
	}

	// Both scripts must be installed before the first navigation: they
	// only take effect for documents created afterwards.
	if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Debug("session: stealth injection failed", "error", err)
	}
	if _, err := s.page.EvalOnNewDocument(maskJS); err != nil {
		slog.Debug("session: navigator mask injection failed", "error", err)
	}

	setupHijack(s.page)
}

// Page exposes the session's single page to the pipeline stages.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate loads url under the page-load timeout and waits for the load
// event. A slow load degrades to "proceed with whatever rendered".
func (s *Session) Navigate(url string) error {
	p := s.page.Timeout(s.cfg.PageLoadTimeout)
	if err := p.Navigate(url); err != nil {
		return models.NewScrapeError(models.ErrCodeNavigation, "navigation failed", err)
	}
	if err := p.WaitLoad(); err != nil {
		slog.Debug("session: load event not reached, proceeding", "url", url, "error", err)
	}
	return nil
}

// Location returns the page's current URL, or "" if the target is gone.
func (s *Session) Location() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Title returns the current document title, best-effort.
func (s *Session) Title() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

// Close tears down the browser process. Idempotent enough to sit in a
// defer next to early returns.
func (s *Session) Close() {
	if err := s.browser.Close(); err != nil {
		slog.Warn("session: browser close failed", "error", err)
	}
}

// sleep is the pipeline's settle delay: the target site exposes no
// completion signal, so fixed waits tuned via config are all there is.
func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
