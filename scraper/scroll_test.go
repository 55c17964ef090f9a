package scraper

import (
	"testing"
	"time"

	"github.com/kuchikomi-lab/kuchikomi/config"
)

// stubContainer grows by growthPerRound nodes on each jump to the bottom,
// up to maxNodes, without touching a browser.
type stubContainer struct {
	nodes          int
	maxNodes       int
	growthPerRound int
	bottomCalls    int
}

func (s *stubContainer) CountNodes() int { return s.nodes }

func (s *stubContainer) ScrollToBottom() {
	s.bottomCalls++
	s.nodes += s.growthPerRound
	if s.nodes > s.maxNodes {
		s.nodes = s.maxNodes
	}
}

func (s *stubContainer) ScrollBy(int) {}

func (s *stubContainer) Wait(time.Duration) {}

func scrollTestConfig() config.ScraperConfig {
	return config.ScraperConfig{
		MaxScrollRounds: 100,
		StallThreshold:  3,
	}
}

func TestLoadUntil_ReachesTarget(t *testing.T) {
	drv := &stubContainer{maxNodes: 200, growthPerRound: 10}
	got := loadUntil(drv, 45, scrollTestConfig(), nil)
	if got < 45 {
		t.Errorf("loadUntil stopped at %d nodes, target 45", got)
	}
}

func TestLoadUntil_TerminatesOnStall(t *testing.T) {
	// The feed holds 7 reviews and never grows past them.
	drv := &stubContainer{nodes: 7, maxNodes: 7}
	got := loadUntil(drv, 50, scrollTestConfig(), nil)
	if got != 7 {
		t.Errorf("loadUntil = %d, want 7", got)
	}
	if drv.bottomCalls >= 100 {
		t.Errorf("stall detection did not short-circuit: %d rounds", drv.bottomCalls)
	}
}

func TestLoadUntil_RoundBudget(t *testing.T) {
	// Growth of one node per round never reaches the target and never
	// stalls; the round budget must end the loop.
	cfg := scrollTestConfig()
	cfg.MaxScrollRounds = 10
	drv := &stubContainer{maxNodes: 10000, growthPerRound: 1}
	got := loadUntil(drv, 10000, cfg, nil)
	if got > 11 {
		t.Errorf("loadUntil overshot the round budget: %d nodes", got)
	}
	if drv.bottomCalls > 10 {
		t.Errorf("too many rounds: %d", drv.bottomCalls)
	}
}

func TestLoadUntil_EmptyFeed(t *testing.T) {
	drv := &stubContainer{}
	if got := loadUntil(drv, 50, scrollTestConfig(), nil); got != 0 {
		t.Errorf("empty feed returned %d nodes", got)
	}
}

func TestLoadUntil_ProgressWithinBounds(t *testing.T) {
	drv := &stubContainer{maxNodes: 30, growthPerRound: 1}
	loadUntil(drv, 1000, scrollTestConfig(), func(_ string, percent int) {
		if percent < 30 || percent > 70 {
			t.Errorf("scroll progress %d outside [30,70]", percent)
		}
	})
}
