package ingest

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// inferColumns assigns each raw column a final type and converts its cells.
//
// Rules, in order of precedence:
//
//  1. A column whose name contains "date" (case-insensitive) becomes a date
//     column. Every cell is parsed individually; cells that fail become
//     null. Name wins over content, so a digit-only "update_date" column is
//     still parsed as dates.
//
//  2. A text-native column whose non-null cells all parse as numbers is
//     converted to a number column whole. One unparsable cell keeps the
//     entire column text. Null cells do not vote, so an all-null column
//     converts vacuously.
//
//  3. Number-native workbook columns pass through unchanged.
//
// Inference never fails: cell-level problems degrade to null, and the worst
// whole-column outcome is staying text.
func inferColumns(rt *rawTable) *Table {
	t := &Table{Columns: make([]Column, len(rt.cols))}
	for c := range rt.cols {
		t.Columns[c] = inferColumn(&rt.cols[c], rt.rows)
	}
	return t
}

func inferColumn(col *rawColumn, rows int) Column {
	if strings.Contains(strings.ToLower(col.name), "date") {
		return dateColumn(col, rows)
	}

	if col.native == TypeNumber {
		return Column{Name: col.name, Type: TypeNumber, Numbers: col.nums}
	}

	if nums, ok := allNumeric(col.text); ok {
		return Column{Name: col.name, Type: TypeNumber, Numbers: nums}
	}

	return Column{Name: col.name, Type: TypeText, Text: col.text}
}

// dateColumn parses every cell of col as a timestamp, null on failure.
// Works for both text-native and number-native source columns.
func dateColumn(col *rawColumn, rows int) Column {
	times := make([]pgtype.Timestamp, rows)
	for i := 0; i < rows; i++ {
		var raw string
		switch col.native {
		case TypeNumber:
			raw = formatNumber(col.nums[i])
		default:
			if !col.text[i].Valid {
				continue
			}
			raw = col.text[i].String
		}
		times[i] = parseTimestamp(raw)
	}
	return Column{Name: col.name, Type: TypeDate, Times: times}
}

// allNumeric converts text cells to numbers if every non-null cell parses.
// The conversion is all-or-nothing per column.
func allNumeric(text []pgtype.Text) ([]pgtype.Float8, bool) {
	nums := make([]pgtype.Float8, len(text))
	for i := range text {
		if !text[i].Valid {
			nums[i] = pgtype.Float8{Valid: false}
			continue
		}
		n := parseNumber(text[i].String)
		if !n.Valid {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}
