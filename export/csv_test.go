package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

func sampleReviews() []models.Review {
	return []models.Review{
		{Author: "山田太郎", Rating: 5, RatingStars: "★★★★★", PostedAt: "2 週間前", Body: "最高でした", SourceURL: "https://www.google.com/maps?cid=1"},
		{Author: "不明", Rating: 0, RatingStars: models.NoRatingGlyphs, PostedAt: "不明", Body: "普通", SourceURL: "https://www.google.com/maps?cid=1"},
	}
}

func TestWriteCSV_BOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReviews(), "すし処 さくら"); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data := buf.Bytes()
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Error("output missing UTF-8 BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "店舗名" || records[0][1] != "投稿者名" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "すし処 さくら" {
		t.Errorf("place name not applied: %v", records[1])
	}
	if records[2][3] != models.NoRatingGlyphs {
		t.Errorf("unrated glyphs: %v", records[2])
	}
}

func TestWriteCSV_PerReviewPlaceWins(t *testing.T) {
	reviews := sampleReviews()
	reviews[0].PlaceName = "別の店"

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reviews, "すし処 さくら"); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if records[1][0] != "別の店" {
		t.Errorf("per-review place ignored: %v", records[1])
	}
	if records[2][0] != "すし処 さくら" {
		t.Errorf("fallback place lost: %v", records[2])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, "店"); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("empty result should still carry the header, got %d records", len(records))
	}
}

func TestFilename(t *testing.T) {
	name := Filename(mustTime(t, "2026-08-30T13:05:07"))
	if name != "google_maps_reviews_20260830_130507.csv" {
		t.Errorf("Filename = %q", name)
	}
}
