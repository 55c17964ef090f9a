package scraper

import "testing"

func TestParseRating_Japanese(t *testing.T) {
	cases := map[string]int{
		"5 つ星":     5,
		"3つ星":      3,
		"星 1 つ星の評価": 1,
	}
	for label, want := range cases {
		if got := parseRating(label); got != want {
			t.Errorf("parseRating(%q) = %d, want %d", label, got, want)
		}
	}
}

func TestParseRating_EnglishFallback(t *testing.T) {
	if got := parseRating("4 stars"); got != 4 {
		t.Errorf("parseRating english = %d, want 4", got)
	}
	if got := parseRating("1 Star"); got != 1 {
		t.Errorf("parseRating english single = %d, want 1", got)
	}
}

func TestParseRating_NoMatch(t *testing.T) {
	for _, label := range []string{"", "評価なし", "great place"} {
		if got := parseRating(label); got != 0 {
			t.Errorf("parseRating(%q) = %d, want 0", label, got)
		}
	}
}

func TestParseRating_OutOfRange(t *testing.T) {
	if got := parseRating("9 つ星"); got != 0 {
		t.Errorf("out-of-range rating accepted: %d", got)
	}
}

func TestCleanBody_CutsOwnerReply(t *testing.T) {
	text := "料理がとても美味しかったです。\nオーナーからの返信\nありがとうございます。"
	want := "料理がとても美味しかったです。"
	if got := cleanBody(text); got != want {
		t.Errorf("cleanBody = %q, want %q", got, want)
	}
}

func TestCleanBody_RemovesExpandLabel(t *testing.T) {
	if got := cleanBody("美味しい もっと見る"); got != "美味しい" {
		t.Errorf("cleanBody = %q, want %q", got, "美味しい")
	}
}

func TestCleanBody_TrimsWhitespace(t *testing.T) {
	if got := cleanBody("  text \n"); got != "text" {
		t.Errorf("cleanBody = %q, want %q", got, "text")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("山田太郎\nローカルガイド · クチコミ12件"); got != "山田太郎" {
		t.Errorf("firstLine = %q", got)
	}
	if got := firstLine("  単一行  "); got != "単一行" {
		t.Errorf("firstLine single = %q", got)
	}
}

func TestStripTitleSuffix(t *testing.T) {
	if got := stripTitleSuffix("すし処 さくら - Google マップ"); got != "すし処 さくら" {
		t.Errorf("stripTitleSuffix = %q", got)
	}
	if got := stripTitleSuffix("no suffix here"); got != "no suffix here" {
		t.Errorf("stripTitleSuffix without marker = %q", got)
	}
}
