package scraper

import (
	"strings"
	"testing"
)

func TestNormalizeURL_PlaceDeepLinkToCid(t *testing.T) {
	raw := "https://www.google.com/maps/place/%E3%82%AB%E3%83%95%E3%82%A7/@35.658,139.745,17z/data=!3m1!4b1!4m6!3m5!1s0x60188b5c9e2c4e05:0x1c0b84a14cbd6a31!8m2!3d35.658!4d139.745"
	got := NormalizeURL(raw, "ja")
	want := "https://www.google.com/maps?cid=2020854686117882417&hl=ja"
	if got != want {
		t.Errorf("cid conversion: got %q, want %q", got, want)
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.google.com/maps/place/X/data=!1s0x60188b5c9e2c4e05:0x1c0b84a14cbd6a31",
		"https://www.google.com/maps?q=tokyo&gclid=abc123&utm_source=mail",
		"https://maps.google.com/maps?cid=12345",
	}
	for _, raw := range inputs {
		once := NormalizeURL(raw, "ja")
		twice := NormalizeURL(once, "ja")
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestNormalizeURL_StripsTracking(t *testing.T) {
	got := NormalizeURL("https://www.google.com/maps?q=tokyo&gclid=abc&utm_source=x&utm_medium=y&ved=z", "ja")
	for _, param := range []string{"gclid", "utm_source", "utm_medium", "ved"} {
		if strings.Contains(got, param) {
			t.Errorf("tracking param %s survived: %q", param, got)
		}
	}
	if !strings.Contains(got, "hl=ja") {
		t.Errorf("language param missing: %q", got)
	}
	if !strings.Contains(got, "q=tokyo") {
		t.Errorf("query param lost: %q", got)
	}
}

func TestNormalizeURL_KeepsExistingLanguage(t *testing.T) {
	got := NormalizeURL("https://www.google.com/maps?cid=99&hl=en", "ja")
	if !strings.Contains(got, "hl=en") {
		t.Errorf("existing hl overridden: %q", got)
	}
}

func TestNormalizeURL_UnparseableReturnedUnchanged(t *testing.T) {
	raw := "http://%zz"
	if got := NormalizeURL(raw, "ja"); got != raw {
		t.Errorf("unparseable input changed: got %q", got)
	}
}

func TestBuildSearchURL(t *testing.T) {
	got := BuildSearchURL("渋谷 ラーメン")
	if !strings.HasPrefix(got, "https://www.google.com/maps/search/") {
		t.Errorf("wrong prefix: %q", got)
	}
	if strings.Contains(got, " ") {
		t.Errorf("raw space survived encoding: %q", got)
	}
}

func TestIsConsentURL(t *testing.T) {
	if !isConsentURL("https://consent.google.com/m?continue=https://www.google.com/maps") {
		t.Error("consent URL not detected")
	}
	if isConsentURL("https://www.google.com/maps?cid=1") {
		t.Error("maps URL misdetected as consent")
	}
}

func TestIsSearchURL(t *testing.T) {
	if !isSearchURL("https://www.google.com/maps/search/%E6%B8%8B%E8%B0%B7") {
		t.Error("search URL not detected")
	}
	if isSearchURL("https://www.google.com/maps/place/X") {
		t.Error("place URL misdetected as search")
	}
}
