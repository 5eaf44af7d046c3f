package ingest

import "strings"

// escapeTextColumns doubles every double-quote character in the text cells of
// text-native columns, in place. This runs after missing-value normalization
// and before inference, so inference sees the escaped form. Number-native
// workbook columns carry no text and are untouched. Nulls stay null.
func escapeTextColumns(rt *rawTable) {
	for c := range rt.cols {
		col := &rt.cols[c]
		if col.native != TypeText {
			continue
		}
		for i := range col.text {
			if !col.text[i].Valid {
				continue
			}
			if strings.Contains(col.text[i].String, `"`) {
				col.text[i].String = strings.ReplaceAll(col.text[i].String, `"`, `""`)
			}
		}
	}
}
