package models

import (
	"strings"
	"testing"
)

func TestStarGlyphs(t *testing.T) {
	cases := map[int]string{
		0: NoRatingGlyphs,
		1: "★☆☆☆☆",
		3: "★★★☆☆",
		5: "★★★★★",
	}
	for rating, want := range cases {
		if got := StarGlyphs(rating); got != want {
			t.Errorf("StarGlyphs(%d) = %q, want %q", rating, got, want)
		}
	}
}

func TestStarGlyphs_OutOfRange(t *testing.T) {
	if got := StarGlyphs(9); got != "★★★★★" {
		t.Errorf("StarGlyphs(9) = %q", got)
	}
	if got := StarGlyphs(-1); got != NoRatingGlyphs {
		t.Errorf("StarGlyphs(-1) = %q", got)
	}
}

func TestDedupKey_ShortBody(t *testing.T) {
	r := Review{Author: "山田", Body: "美味しい"}
	if got := r.DedupKey(); got != "山田_美味しい" {
		t.Errorf("DedupKey = %q", got)
	}
}

func TestDedupKey_TruncatesAtFiftyRunes(t *testing.T) {
	long := strings.Repeat("あ", 60)
	r := Review{Author: "山田", Body: long}
	key := r.DedupKey()

	want := "山田_" + strings.Repeat("あ", 50)
	if key != want {
		t.Errorf("DedupKey truncation: got %d runes after prefix", len([]rune(key))-3)
	}

	// Reviews identical through the first 50 runes collide.
	other := Review{Author: "山田", Body: long + "違う末尾"}
	if other.DedupKey() != key {
		t.Error("same prefix produced different keys")
	}
}

func TestUnknownPlace(t *testing.T) {
	p := UnknownPlace()
	if p.Name != UnknownValue || p.AvgRating != UnknownValue || p.ReviewCount != UnknownValue {
		t.Errorf("UnknownPlace = %+v", p)
	}
}
