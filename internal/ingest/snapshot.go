package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SnapshotWriter persists typed tables as durable CSV files. Every field in
// the output is quoted, header included, so the snapshot parses the same way
// regardless of embedded commas or newlines. Filenames carry a fresh UUID,
// so concurrent writers never collide and O_EXCL never fires in practice.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter returns a writer that places snapshots under dir.
func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{dir: dir}
}

// Dir returns the snapshot directory.
func (w *SnapshotWriter) Dir() string {
	return w.dir
}

// Write serializes t to a new file and returns its path. The file holds one
// header line plus one line per row, UTF-8, LF line endings. On any failure
// the partial file is removed so callers never see a half-written snapshot.
func (w *SnapshotWriter) Write(t *Table) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(w.dir, "dataset-"+uuid.New().String()+".csv")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}

	if err := writeTable(f, t); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close snapshot: %w", err)
	}

	return path, nil
}

func writeTable(f *os.File, t *Table) error {
	buf := bufio.NewWriter(f)

	if err := writeRecord(buf, t.ColumnNames()); err != nil {
		return err
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := writeRecord(buf, t.Row(i)); err != nil {
			return err
		}
	}

	return buf.Flush()
}

func writeRecord(buf *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := buf.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := buf.WriteString(quoteField(field)); err != nil {
			return err
		}
	}
	return buf.WriteByte('\n')
}

// quoteField wraps a serialized value in double quotes, doubling any quote
// characters inside it. Applied uniformly to every field.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
