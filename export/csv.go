// Package export serializes scrape results to spreadsheet-friendly CSV
// and parses uploaded batch CSVs.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

// utf8BOM makes Excel open the file as UTF-8 instead of the locale
// codepage, which matters for Japanese review text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvHeader mirrors the column names users of the original exports rely on.
var csvHeader = []string{
	"店舗名", "投稿者名", "評価", "評価星", "投稿日時", "口コミテキスト", "出典URL",
}

// WriteCSV writes the reviews as a BOM-prefixed CSV document.
func WriteCSV(w io.Writer, reviews []models.Review, placeName string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reviews {
		// Batch results carry their own place per review.
		name := r.PlaceName
		if name == "" {
			name = placeName
		}
		row := []string{
			name,
			r.Author,
			strconv.Itoa(r.Rating),
			r.RatingStars,
			r.PostedAt,
			r.Body,
			r.SourceURL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename builds a timestamped download name.
func Filename(t time.Time) string {
	return "google_maps_reviews_" + t.Format("20060102_150405") + ".csv"
}
