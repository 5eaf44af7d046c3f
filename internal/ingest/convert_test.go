package ingest

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{
			name:      "iso date",
			input:     "2024-01-15",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "us slash date",
			input:     "1/15/2024",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "padded us slash date",
			input:     "01/15/2024",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "dash date",
			input:     "01-15-2024",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "month name",
			input:     "Jan 15, 2024",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "day first month name",
			input:     "15 Jan 2024",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "compact digits",
			input:     "20240115",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "datetime with seconds",
			input:     "2024-01-15 09:30:00",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:      "surrounding whitespace",
			input:     "  2024-01-15  ",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "two digit year recent",
			input:     "1/15/24",
			wantValid: true,
			want:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{name: "not a date", input: "hello", wantValid: false},
		{name: "empty string", input: "", wantValid: false},
		{name: "bare number", input: "1234", wantValid: false},
		{name: "month out of range", input: "2024-13-01", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("parseTimestamp(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && !got.Time.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

func TestParseTimestamp_TwoDigitYearPivot(t *testing.T) {
	// A two-digit year far past the pivot rolls back a century.
	got := parseTimestamp("6/1/68")
	if !got.Valid {
		t.Fatal("parseTimestamp(6/1/68) not valid")
	}
	if got.Time.Year() != 1968 {
		t.Errorf("year = %d, want 1968", got.Time.Year())
	}

	got = parseTimestamp("6/1/20")
	if !got.Valid {
		t.Fatal("parseTimestamp(6/1/20) not valid")
	}
	if got.Time.Year() != 2020 {
		t.Errorf("year = %d, want 2020", got.Time.Year())
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		{name: "integer", input: "42", wantValid: true, want: 42},
		{name: "negative", input: "-7", wantValid: true, want: -7},
		{name: "decimal", input: "3.14", wantValid: true, want: 3.14},
		{name: "scientific", input: "1e3", wantValid: true, want: 1000},
		{name: "surrounding whitespace", input: " 12 ", wantValid: true, want: 12},
		{name: "currency symbol rejected", input: "$5", wantValid: false},
		{name: "thousands separator rejected", input: "1,200", wantValid: false},
		{name: "text", input: "abc", wantValid: false},
		{name: "empty", input: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNumber(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("parseNumber(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Float64 != tt.want {
				t.Errorf("parseNumber(%q) = %v, want %v", tt.input, got.Float64, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		input pgtype.Float8
		want  string
	}{
		{name: "integer value", input: pgtype.Float8{Float64: 42, Valid: true}, want: "42"},
		{name: "decimal value", input: pgtype.Float8{Float64: 3.5, Valid: true}, want: "3.5"},
		{name: "negative", input: pgtype.Float8{Float64: -0.25, Valid: true}, want: "-0.25"},
		{name: "null", input: pgtype.Float8{Valid: false}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatNumber(tt.input); got != tt.want {
				t.Errorf("formatNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input pgtype.Timestamp
		want  string
	}{
		{
			name:  "midnight prints date only",
			input: pgtype.Timestamp{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Valid: true},
			want:  "2024-01-15",
		},
		{
			name:  "with clock",
			input: pgtype.Timestamp{Time: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), Valid: true},
			want:  "2024-01-15 09:30:00",
		},
		{name: "null", input: pgtype.Timestamp{Valid: false}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimestamp(tt.input); got != tt.want {
				t.Errorf("formatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}
