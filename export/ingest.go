package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Row is one parsed batch-CSV record, keyed by header name.
type Row map[string]string

// urlColumnHints mark a column as containing a Maps link.
var urlColumnHints = []string{"url", "map", "マップ"}

// queryColumns are combined, in order, into a search query when a row has
// no URL column. Store or clinic name first, then address.
var queryColumns = []string{"店舗名", "院名", "name", "名前", "住所", "address"}

// DecodeRows parses an uploaded CSV that may be UTF-8 (with or without
// BOM) or Shift_JIS/CP932, the encodings Japanese spreadsheet tools
// produce. Returns one Row per data record.
func DecodeRows(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("ingest: decode Shift_JIS: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are common in hand-edited files

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row: %w", err)
		}
		row := make(Row, len(header))
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TargetURL finds a Maps link in the row by column-name hint. Empty when
// the row carries no link.
func TargetURL(row Row) string {
	for key, value := range row {
		if value == "" {
			continue
		}
		lower := strings.ToLower(key)
		for _, hint := range urlColumnHints {
			if strings.Contains(lower, hint) {
				return value
			}
		}
	}
	return ""
}

// SearchQuery composes a place search query from a row's name and address
// columns. Empty when the row has none of them.
func SearchQuery(row Row) string {
	var parts []string
	for _, key := range queryColumns {
		if value := row[key]; value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}
