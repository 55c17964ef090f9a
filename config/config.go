package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Tasks     TaskConfig
	Store     StoreConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the per-invocation Rod browser.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Locale and Timezone are forced onto every page so review dates and
	// aria-labels render in the expected language.
	Locale   string // default: "ja-JP"
	Timezone string // default: "Asia/Tokyo"

	// ViewportWidth/Height fix the page size. Bots with default-size
	// windows are easier to fingerprint.
	ViewportWidth  int // default: 1280
	ViewportHeight int // default: 720

	// PageLoadTimeout bounds a single navigation.
	PageLoadTimeout time.Duration // default: 30s
}

// ScraperConfig holds the empirically tuned timing and convergence
// parameters of the extraction pipeline. Everything here is remote-host
// behaviour, so it must stay tunable per deployment.
type ScraperConfig struct {
	// StepTimeout bounds each element-appears wait inside a stage.
	StepTimeout time.Duration // default: 10s

	// NavSettleDelay follows the initial page load.
	NavSettleDelay time.Duration // default: 8s

	// ConsentSettleDelay follows a consent-button click.
	ConsentSettleDelay time.Duration // default: 2s

	// SearchSettleDelay follows a search-result click.
	SearchSettleDelay time.Duration // default: 8s

	// TabSettleDelay follows the reviews-tab click, letting the panel's
	// lazy content begin rendering.
	TabSettleDelay time.Duration // default: 5s

	// SortSettleDelay follows the sort-order change.
	SortSettleDelay time.Duration // default: 3s

	// ScrollBottomDelay follows each scroll-to-bottom.
	ScrollBottomDelay time.Duration // default: 1500ms

	// ScrollStepDelay follows each incremental scroll.
	ScrollStepDelay time.Duration // default: 300ms

	// ScrollRoundDelay follows the incremental scroll burst, before the
	// review nodes are recounted.
	ScrollRoundDelay time.Duration // default: 2s

	// StallRecheckDelay is the extended wait of the final no-growth check.
	StallRecheckDelay time.Duration // default: 5s

	// MaxScrollRounds bounds the scroll loop outright.
	MaxScrollRounds int // default: 300

	// StallThreshold is how many consecutive no-growth rounds trigger the
	// final recheck and, failing that, termination.
	StallThreshold int // default: 15

	// ExpandClickDelay follows a "show more" click on a single review.
	ExpandClickDelay time.Duration // default: 200ms

	// SelectorsPath optionally points at a YAML selector-catalog override.
	SelectorsPath string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// TaskConfig controls the scrape task registry and worker pool.
type TaskConfig struct {
	// MaxWorkers bounds how many browser sessions run in parallel.
	// Each session is a full Chrome process, so keep this small.
	MaxWorkers int // default: 2

	// BatchRowDelay spaces out consecutive scrapes within one batch task.
	BatchRowDelay time.Duration // default: 20s

	// TTL is how long finished tasks stay queryable.
	TTL time.Duration // default: 1h
}

// StoreConfig controls optional sqlite persistence of completed results.
type StoreConfig struct {
	// DBPath is the sqlite file. Empty disables persistence.
	DBPath string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads a .env file if present, then reads configuration from
// environment variables with sane defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using system env vars")
	}

	return &Config{
		Server: ServerConfig{
			Host: envOr("KUCHIKOMI_HOST", "0.0.0.0"),
			Port: envIntOr("KUCHIKOMI_PORT", 8080),
			Mode: envOr("KUCHIKOMI_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:        envBoolOr("KUCHIKOMI_HEADLESS", true),
			NoSandbox:       envBoolOr("KUCHIKOMI_NO_SANDBOX", true),
			BrowserBin:      os.Getenv("KUCHIKOMI_BROWSER_BIN"),
			Locale:          envOr("KUCHIKOMI_LOCALE", "ja-JP"),
			Timezone:        envOr("KUCHIKOMI_TIMEZONE", "Asia/Tokyo"),
			ViewportWidth:   envIntOr("KUCHIKOMI_VIEWPORT_W", 1280),
			ViewportHeight:  envIntOr("KUCHIKOMI_VIEWPORT_H", 720),
			PageLoadTimeout: envDurationOr("KUCHIKOMI_PAGE_TIMEOUT", 30*time.Second),
		},
		Scraper: ScraperConfig{
			StepTimeout:        envDurationOr("KUCHIKOMI_STEP_TIMEOUT", 10*time.Second),
			NavSettleDelay:     envDurationOr("KUCHIKOMI_NAV_SETTLE", 8*time.Second),
			ConsentSettleDelay: envDurationOr("KUCHIKOMI_CONSENT_SETTLE", 2*time.Second),
			SearchSettleDelay:  envDurationOr("KUCHIKOMI_SEARCH_SETTLE", 8*time.Second),
			TabSettleDelay:     envDurationOr("KUCHIKOMI_TAB_SETTLE", 5*time.Second),
			SortSettleDelay:    envDurationOr("KUCHIKOMI_SORT_SETTLE", 3*time.Second),
			ScrollBottomDelay:  envDurationOr("KUCHIKOMI_SCROLL_BOTTOM_DELAY", 1500*time.Millisecond),
			ScrollStepDelay:    envDurationOr("KUCHIKOMI_SCROLL_STEP_DELAY", 300*time.Millisecond),
			ScrollRoundDelay:   envDurationOr("KUCHIKOMI_SCROLL_ROUND_DELAY", 2*time.Second),
			StallRecheckDelay:  envDurationOr("KUCHIKOMI_STALL_RECHECK_DELAY", 5*time.Second),
			MaxScrollRounds:    envIntOr("KUCHIKOMI_MAX_SCROLL_ROUNDS", 300),
			StallThreshold:     envIntOr("KUCHIKOMI_STALL_THRESHOLD", 15),
			ExpandClickDelay:   envDurationOr("KUCHIKOMI_EXPAND_DELAY", 200*time.Millisecond),
			SelectorsPath:      os.Getenv("KUCHIKOMI_SELECTORS_PATH"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("KUCHIKOMI_AUTH_ENABLED", false),
			APIKeys: envSliceOr("KUCHIKOMI_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("KUCHIKOMI_RATE_RPS", 2.0),
			Burst:             envIntOr("KUCHIKOMI_RATE_BURST", 5),
		},
		Tasks: TaskConfig{
			MaxWorkers:    envIntOr("KUCHIKOMI_MAX_WORKERS", 2),
			BatchRowDelay: envDurationOr("KUCHIKOMI_BATCH_ROW_DELAY", 20*time.Second),
			TTL:           envDurationOr("KUCHIKOMI_TASK_TTL", time.Hour),
		},
		Store: StoreConfig{
			DBPath: os.Getenv("KUCHIKOMI_DB_PATH"),
		},
		Log: LogConfig{
			Level:  envOr("KUCHIKOMI_LOG_LEVEL", "info"),
			Format: envOr("KUCHIKOMI_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
