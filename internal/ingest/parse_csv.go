package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

// missingSentinels are the literal cell values normalized to null during
// parsing, before any escaping or inference runs. Matching is exact and
// case-sensitive; an empty string is a valid, non-null value.
var missingSentinels = map[string]bool{
	"NA":      true,
	"N/A":     true,
	"missing": true,
}

// utf8BOM is stripped from the start of delimited input if present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// rawColumn is the pre-inference representation of one column. Columns are
// text-native unless the source format itself typed them (workbook number
// cells), in which case native is set and nums is populated instead of text.
type rawColumn struct {
	name   string
	native ColumnType
	text   []pgtype.Text
	nums   []pgtype.Float8
}

// rawTable is the parser output: ordered columns, all of length rows.
type rawTable struct {
	cols []rawColumn
	rows int
}

// parseDelimited decodes CSV bytes into a rawTable. The first record is the
// header; every column is text-native. Structural problems (no header,
// duplicate column names, ragged records) are parse failures.
func parseDelimited(data []byte) (*rawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file: no header row")
	}

	header := records[0]
	if err := checkColumnNames(header); err != nil {
		return nil, err
	}

	dataRows := records[1:]
	rt := &rawTable{
		cols: make([]rawColumn, len(header)),
		rows: len(dataRows),
	}
	for c, name := range header {
		rt.cols[c] = rawColumn{
			name:   name,
			native: TypeText,
			text:   make([]pgtype.Text, len(dataRows)),
		}
	}

	for i, row := range dataRows {
		for c := range rt.cols {
			rt.cols[c].text[i] = textCell(row[c])
		}
	}

	return rt, nil
}

// textCell builds a nullable text cell, applying missing-value
// normalization.
func textCell(s string) pgtype.Text {
	if missingSentinels[s] {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// checkColumnNames rejects duplicate column names. The upstream formats
// leave duplicates undefined; rejecting keeps the snapshot unambiguous for
// SQL engines.
func checkColumnNames(header []string) error {
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("duplicate column name %q (columns %d and %d)", name, prev+1, i+1)
		}
		seen[name] = i
	}
	return nil
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so the snapshot is always valid UTF-8.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
