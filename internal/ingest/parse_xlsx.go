package ingest

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"
)

// parseWorkbook decodes the first sheet of an xlsx workbook into a rawTable.
// The first row is the header. Cells a row does not reach are null, mirroring
// how spreadsheets leave trailing cells unset.
//
// Columns whose populated cells are all native number cells (no string type
// attribute in the sheet XML) come out number-native and skip both escaping
// and inference. Everything else is text-native and flows through the same
// stages as delimited input, including missing-value normalization.
// Date-styled cells are not detected as native dates; they arrive as their
// formatted display strings, which name-based inference can still parse.
func parseWorkbook(data []byte) (*rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("invalid workbook: no sheets")
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: read sheet %q: %w", sheet, err)
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
		col := rawColumn{name: name, native: TypeText}

		values := make([]pgtype.Text, len(dataRows))
		for i, row := range dataRows {
			if c >= len(row) {
				values[i] = pgtype.Text{Valid: false}
				continue
			}
			values[i] = textCell(row[c])
		}
		col.text = values

		if nums, ok := nativeNumbers(f, sheet, c, values); ok {
			col.native = TypeNumber
			col.nums = nums
			col.text = nil
		}

		rt.cols[c] = col
	}

	return rt, nil
}

// nativeNumbers reports whether every populated cell in column c is a native
// number cell, returning the parsed values when so. Sentinel and empty cells
// are skipped: a numeric column with a stray "NA" stays numeric, the "NA"
// becoming null. A column with no populated cells is not considered numeric.
func nativeNumbers(f *excelize.File, sheet string, c int, values []pgtype.Text) ([]pgtype.Float8, bool) {
	nums := make([]pgtype.Float8, len(values))
	populated := 0

	for i := range values {
		if !values[i].Valid || values[i].String == "" {
			nums[i] = pgtype.Float8{Valid: false}
			continue
		}

		axis, err := excelize.CoordinatesToCellName(c+1, i+2) // +2: 1-based, after header
		if err != nil {
			return nil, false
		}
		ct, err := f.GetCellType(sheet, axis)
		if err != nil {
			return nil, false
		}
		// Number cells carry no type attribute in sheet XML, so both Unset
		// and Number count as numeric.
		if ct != excelize.CellTypeNumber && ct != excelize.CellTypeUnset {
			return nil, false
		}

		v, err := strconv.ParseFloat(values[i].String, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = pgtype.Float8{Float64: v, Valid: true}
		populated++
	}

	return nums, populated > 0
}
