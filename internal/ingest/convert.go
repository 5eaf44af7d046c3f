package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TwoDigitYearPivot controls how two-digit years resolve. Years more than
// this many years past the current year roll back a century, so "68" parses
// as 1968 rather than 2068 when the pivot is 20.
const TwoDigitYearPivot = 20

// Layouts tried for date parsing, most specific first. Time-bearing layouts
// come before bare dates so "2024-01-15 09:30:00" keeps its clock.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
	"1.2.2006",
	"01.02.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

var twoDigitYearLayouts = []string{
	"1/2/06",
	"01/02/06",
	"1-2-06",
	"1.2.06",
	"01.02.06",
}

// parseTimestamp attempts to interpret s as a date or timestamp. The zero
// value with Valid=false means the cell could not be read as a date.
func parseTimestamp(s string) pgtype.Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{Valid: false}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}
		}
	}

	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > time.Now().Year()+TwoDigitYearPivot {
			t = t.AddDate(-100, 0, 0)
		}
		return pgtype.Timestamp{Time: t, Valid: true}
	}

	return pgtype.Timestamp{Valid: false}
}

// parseNumber attempts to interpret s as a float64. Parsing is strict: only
// what strconv accepts counts, so "1,200" and "$5" stay text.
func parseNumber(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{Valid: false}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: v, Valid: true}
}

// formatNumber serializes a nullable number. The shortest round-trippable
// decimal form is used, so integers print without a trailing ".0".
func formatNumber(n pgtype.Float8) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// formatTimestamp serializes a nullable timestamp. Midnight values print
// date-only, which is what most date columns carry.
func formatTimestamp(ts pgtype.Timestamp) string {
	if !ts.Valid {
		return ""
	}
	t := ts.Time
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
