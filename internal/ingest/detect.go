package ingest

import (
	"fmt"
	"strings"
)

// Format identifies which parser handles an upload.
type Format int

const (
	FormatDelimited Format = iota // .csv
	FormatWorkbook                // .xlsx
)

// DetectFormat selects a parser by filename suffix.
//
// Matching is deliberately case-sensitive on the two literal suffixes ".csv"
// and ".xlsx"; variants like ".CSV" are rejected. Downstream behavior depends
// on this exact contract, so it must not be broadened.
func DetectFormat(filename string) (Format, error) {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return FormatDelimited, nil
	case strings.HasSuffix(filename, ".xlsx"):
		return FormatWorkbook, nil
	default:
		return 0, fmt.Errorf("unsupported file format %q: upload a .csv or .xlsx file", filename)
	}
}
