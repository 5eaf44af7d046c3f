package ingest

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(NewSnapshotWriter(t.TempDir()))
}

func TestPipeline_CSV(t *testing.T) {
	p := newTestPipeline(t)

	csvData := strings.Join([]string{
		`name,amount,order_date,note`,
		`alice,10,2024-01-15,"said ""hi"""`,
		`bob,NA,not-a-date,plain`,
		``,
	}, "\n")

	res, err := p.Run(context.Background(), "orders.csv", []byte(csvData))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantCols := []string{"name", "amount", "order_date", "note"}
	if len(res.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", res.Columns, wantCols)
	}
	for i, want := range wantCols {
		if res.Columns[i] != want {
			t.Errorf("column %d = %q, want %q", i, res.Columns[i], want)
		}
	}

	table := res.Table
	if table.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", table.NumRows())
	}

	// amount has a sentinel null plus numeric values: converts whole
	if got := table.Columns[1].Type; got != TypeNumber {
		t.Errorf("amount type = %v, want number", got)
	}
	if !table.Columns[1].IsNull(1) {
		t.Error("amount row 1 should be null (NA sentinel)")
	}

	// order_date named like a date: per-cell parse, failure becomes null
	if got := table.Columns[2].Type; got != TypeDate {
		t.Errorf("order_date type = %v, want date", got)
	}
	if table.Columns[2].IsNull(0) {
		t.Error("order_date row 0 should parse")
	}
	if !table.Columns[2].IsNull(1) {
		t.Error("order_date row 1 should be null")
	}

	// note keeps text with quotes doubled by the escape stage
	if got := table.Columns[3].ValueString(0); got != `said ""hi""` {
		t.Errorf("note row 0 = %q, want escaped quotes", got)
	}

	// Durable snapshot exists and has header + rows lines
	raw, err := os.ReadFile(res.SnapshotPath)
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("snapshot lines = %d, want 3", len(lines))
	}
}

func TestPipeline_XLSX(t *testing.T) {
	p := newTestPipeline(t)

	data := buildWorkbook(t, [][]any{
		{"product", "units"},
		{"widget", 4},
		{"gadget", 9},
	})

	res, err := p.Run(context.Background(), "inventory.xlsx", data)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Table.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", res.Table.NumRows())
	}
	if got := res.Table.Columns[1].Type; got != TypeNumber {
		t.Errorf("units type = %v, want number", got)
	}
}

func TestPipeline_UnsupportedFormat(t *testing.T) {
	p := newTestPipeline(t)

	for _, filename := range []string{"data.txt", "data.CSV", "data.Xlsx", "data"} {
		res, err := p.Run(context.Background(), filename, []byte("a,b\n1,2\n"))
		if err == nil {
			t.Fatalf("Run(%q) expected error", filename)
		}
		if res != nil {
			t.Errorf("Run(%q) returned a result alongside the error", filename)
		}
		kind, ok := KindOf(err)
		if !ok || kind != KindUnsupportedFormat {
			t.Errorf("Run(%q) kind = %v (ok=%v), want unsupported_format", filename, kind, ok)
		}
	}
}

func TestPipeline_ParseFailure(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), "bad.csv", []byte("a,b\n1,2,3\n"))
	if err == nil {
		t.Fatal("Run() expected error for ragged csv")
	}
	if res != nil {
		t.Error("Run() returned a result alongside the error")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindParse {
		t.Errorf("kind = %v (ok=%v), want parse_failure", kind, ok)
	}

	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("error is not a *PipelineError")
	}
	if pe.Phase != PhaseParsing {
		t.Errorf("phase = %v, want parsing", pe.Phase)
	}
}

func TestPipeline_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := dir + "/blocked"
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPipeline(NewSnapshotWriter(blocker + "/sub"))

	_, err := p.Run(context.Background(), "ok.csv", []byte("a\n1\n"))
	if err == nil {
		t.Fatal("Run() expected write error")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindWrite {
		t.Errorf("kind = %v (ok=%v), want write_failure", kind, ok)
	}
}

func countNonNull(t *Table) int {
	n := 0
	for c := range t.Columns {
		for i := 0; i < t.NumRows(); i++ {
			if !t.Columns[c].IsNull(i) {
				n++
			}
		}
	}
	return n
}

func TestPipeline_SnapshotReingest(t *testing.T) {
	// Running the pipeline on its own snapshot preserves shape: same
	// columns, same row count, same column types, and the same non-null
	// cells. Nulls are written as the NA sentinel, which the parser turns
	// back into nulls on the second pass.
	p := newTestPipeline(t)

	in := []byte("name,amount\nalice,10\nNA,20\nbob,missing\n")
	first, err := p.Run(context.Background(), "in.csv", in)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	snap, err := os.ReadFile(first.SnapshotPath)
	if err != nil {
		t.Fatal(err)
	}

	second, err := p.Run(context.Background(), "snapshot.csv", snap)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if len(second.Columns) != len(first.Columns) {
		t.Fatalf("columns = %d, want %d", len(second.Columns), len(first.Columns))
	}
	if second.Table.NumRows() != first.Table.NumRows() {
		t.Fatalf("rows = %d, want %d", second.Table.NumRows(), first.Table.NumRows())
	}

	firstNonNull := countNonNull(first.Table)
	if firstNonNull != 4 {
		t.Fatalf("first non-null cells = %d, want 4", firstNonNull)
	}
	if got := countNonNull(second.Table); got != firstNonNull {
		t.Errorf("non-null cells = %d after re-ingest, want %d", got, firstNonNull)
	}

	for c := range first.Table.Columns {
		if second.Table.Columns[c].Type != first.Table.Columns[c].Type {
			t.Errorf("column %d type = %v, want %v",
				c, second.Table.Columns[c].Type, first.Table.Columns[c].Type)
		}
		for i := 0; i < first.Table.NumRows(); i++ {
			if second.Table.Columns[c].IsNull(i) != first.Table.Columns[c].IsNull(i) {
				t.Errorf("null mismatch at column %d row %d", c, i)
			}
		}
	}
}

func TestPipeline_ContextCancelled(t *testing.T) {
	p := newTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, "data.csv", []byte("a\n1\n")); err == nil {
		t.Fatal("Run() expected error with cancelled context")
	}
}

func BenchmarkPipelineCSV(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("id,amount,ship_date,note\n")
	for i := 0; i < 1000; i++ {
		sb.WriteString(`1,10.5,2024-01-15,"some ""quoted"" note"` + "\n")
	}
	data := []byte(sb.String())

	dir := b.TempDir()
	p := NewPipeline(NewSnapshotWriter(dir))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Run(ctx, "bench.csv", data); err != nil {
			b.Fatal(err)
		}
	}
}
