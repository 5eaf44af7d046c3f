package ingest

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ColumnType is the inferred (or native) type of a whole column.
// Types are decided per column, never per cell, so a downstream SQL engine
// sees one type per column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeNumber
	TypeDate
)

// String returns the lowercase name used in logs and API responses.
func (t ColumnType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	default:
		return "text"
	}
}

// Column holds one named column of the typed table in columnar form.
// Exactly one of the value slices is populated, matching Type. Cells use
// pgtype values so that Valid=false is the null marker, distinguishable
// from an empty string.
type Column struct {
	Name    string
	Type    ColumnType
	Text    []pgtype.Text
	Numbers []pgtype.Float8
	Times   []pgtype.Timestamp
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	switch c.Type {
	case TypeNumber:
		return len(c.Numbers)
	case TypeDate:
		return len(c.Times)
	default:
		return len(c.Text)
	}
}

// IsNull reports whether the cell at row i is a null marker.
func (c *Column) IsNull(i int) bool {
	switch c.Type {
	case TypeNumber:
		return !c.Numbers[i].Valid
	case TypeDate:
		return !c.Times[i].Valid
	default:
		return !c.Text[i].Valid
	}
}

// nullToken is the serialized form of a null cell. It is one of the
// missing-value sentinels, so parsing a snapshot turns these cells back into
// nulls: a re-ingested snapshot keeps the same non-null cells as its source.
// A valid text cell can never equal the token, since the parser already
// normalized such values to null.
const nullToken = "NA"

// ValueString returns the serialized form of the cell at row i.
// Nulls serialize as the NA sentinel, which is how they appear in the
// durable snapshot.
func (c *Column) ValueString(i int) string {
	if c.IsNull(i) {
		return nullToken
	}
	switch c.Type {
	case TypeNumber:
		return formatNumber(c.Numbers[i])
	case TypeDate:
		return formatTimestamp(c.Times[i])
	default:
		return c.Text[i].String
	}
}

// Table is the immutable result of parsing and inference: an ordered set of
// typed columns, all of equal length. A Table is created once per upload and
// never mutated afterward.
type Table struct {
	Columns []Column
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Row returns the serialized values of row i, aligned with ColumnNames.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].ValueString(i)
	}
	return row
}

// Phase indicates the current stage of pipeline processing.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseParsing   Phase = "parsing"
	PhaseEscaping  Phase = "escaping"
	PhaseInferring Phase = "inferring"
	PhaseWriting   Phase = "writing"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// Result is the outcome of a successful pipeline run. The snapshot at
// SnapshotPath is row-for-row and column-for-column equivalent to Table,
// plus a header line.
type Result struct {
	Table        *Table
	Columns      []string
	SnapshotPath string
	Duration     time.Duration
}

// Dataset describes one successfully ingested upload held in the service
// registry. The embedded table is immutable; each upload produces an
// independent Dataset and snapshot, never mutating a prior one.
type Dataset struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	Columns      []string  `json:"columns"`
	ColumnTypes  []string  `json:"columnTypes"`
	Rows         int       `json:"rows"`
	SnapshotPath string    `json:"-"`
	UploadedAt   time.Time `json:"uploadedAt"`

	table *Table
}

// Table returns the in-memory typed table backing the dataset.
func (d *Dataset) Table() *Table {
	return d.table
}

// Preview contains the head of a dataset rendered as display strings,
// for UI tables and quick sanity checks after upload.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"totalRows"`
}
