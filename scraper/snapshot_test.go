package scraper

import "testing"

const snapshotFixture = `
<html><body>
  <div data-review-id="r1">
    <div class="d4r55">山田太郎
ローカルガイド · クチコミ12件</div>
    <span class="kvMYJc" aria-label="5 つ星"></span>
    <span class="rsqaWe">2 週間前</span>
    <span class="wiI7pd">最高のお店でした。もっと見る</span>
  </div>
  <div data-review-id="r2">
    <span class="wiI7pd">普通でした。オーナーからの返信ご来店ありがとうございます。</span>
  </div>
  <div data-review-id="r3">
    <div class="d4r55">山田太郎</div>
    <span class="wiI7pd">最高のお店でした。</span>
  </div>
  <div data-review-id="r4">
    <div class="d4r55">匿名</div>
    <span class="kvMYJc" aria-label="3 つ星"></span>
  </div>
</body></html>`

func TestExtractFromSnapshot(t *testing.T) {
	reviews := extractFromSnapshot(snapshotFixture, DefaultCatalog(), 10, "https://example/maps")

	// r3 duplicates r1 after cleanup, r4 has no body. Two survive.
	if len(reviews) != 2 {
		t.Fatalf("got %d reviews, want 2: %+v", len(reviews), reviews)
	}

	first := reviews[0]
	if first.Author != "山田太郎" {
		t.Errorf("author = %q", first.Author)
	}
	if first.Rating != 5 || first.RatingStars != "★★★★★" {
		t.Errorf("rating = %d %q", first.Rating, first.RatingStars)
	}
	if first.PostedAt != "2 週間前" {
		t.Errorf("posted at = %q", first.PostedAt)
	}
	if first.Body != "最高のお店でした。" {
		t.Errorf("body = %q", first.Body)
	}
	if first.SourceURL != "https://example/maps" {
		t.Errorf("source url = %q", first.SourceURL)
	}

	second := reviews[1]
	if second.Author != "不明" {
		t.Errorf("missing author placeholder = %q", second.Author)
	}
	if second.Body != "普通でした。" {
		t.Errorf("owner reply not cut: %q", second.Body)
	}
	if second.RatingStars != "評価なし" {
		t.Errorf("unrated glyphs = %q", second.RatingStars)
	}
}

func TestExtractFromSnapshot_TargetCap(t *testing.T) {
	reviews := extractFromSnapshot(snapshotFixture, DefaultCatalog(), 1, "https://example/maps")
	if len(reviews) != 1 {
		t.Errorf("target cap ignored: %d reviews", len(reviews))
	}
}

func TestExtractFromSnapshot_EmptyDocument(t *testing.T) {
	if reviews := extractFromSnapshot("<html><body></body></html>", DefaultCatalog(), 5, "u"); len(reviews) != 0 {
		t.Errorf("empty document produced %d reviews", len(reviews))
	}
}
