package ingest

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/DataPrep/internal/logging"
	"github.com/google/uuid"
)

// DefaultIngestTimeout bounds a single pipeline run.
const DefaultIngestTimeout = 2 * time.Minute

// DefaultMaxFileBytes is the upload size limit when none is configured.
const DefaultMaxFileBytes = 100 << 20 // 100MB

// Options configures a Service. Zero fields fall back to defaults.
type Options struct {
	SnapshotDir   string
	MaxConcurrent int
	MaxWait       time.Duration
	IngestTimeout time.Duration
	MaxFileBytes  int64
}

// Service owns the ingest pipeline, the concurrency limiter, and the
// registry of ingested datasets. Each upload produces an independent dataset
// with its own snapshot; re-uploading a file never mutates a prior dataset.
type Service struct {
	pipeline *Pipeline
	limiter  *IngestLimiter
	timeout  time.Duration
	maxBytes int64

	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewService builds a Service writing snapshots under opts.SnapshotDir.
func NewService(opts Options) *Service {
	timeout := opts.IngestTimeout
	if timeout <= 0 {
		timeout = DefaultIngestTimeout
	}
	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	return &Service{
		pipeline: NewPipeline(NewSnapshotWriter(opts.SnapshotDir)),
		limiter:  NewIngestLimiter(opts.MaxConcurrent, opts.MaxWait),
		timeout:  timeout,
		maxBytes: maxBytes,
		datasets: make(map[string]*Dataset),
	}
}

// Ingest runs the pipeline on one upload and registers the result. It blocks
// for an available slot, so concurrent callers queue rather than pile up.
func (s *Service) Ingest(ctx context.Context, fileName string, data []byte) (*Dataset, error) {
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), s.maxBytes)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.pipeline.Run(runCtx, fileName, data)
	if err != nil {
		return nil, err
	}

	types := make([]string, len(res.Table.Columns))
	for i := range res.Table.Columns {
		types[i] = res.Table.Columns[i].Type.String()
	}

	ds := &Dataset{
		ID:           uuid.New().String(),
		FileName:     fileName,
		Columns:      res.Columns,
		ColumnTypes:  types,
		Rows:         res.Table.NumRows(),
		SnapshotPath: res.SnapshotPath,
		UploadedAt:   time.Now().UTC(),
		table:        res.Table,
	}

	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.mu.Unlock()

	return ds, nil
}

// Get returns the dataset with the given ID.
func (s *Service) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// List returns all datasets, newest first.
func (s *Service) List() []*Dataset {
	s.mu.RLock()
	out := make([]*Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, ds)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Preview returns the first rows of a dataset rendered as display strings.
func (s *Service) Preview(id string, rows int) (*Preview, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	t := ds.Table()
	total := t.NumRows()
	if rows <= 0 || rows > total {
		rows = total
	}

	out := make([][]string, rows)
	for i := 0; i < rows; i++ {
		out[i] = t.Row(i)
	}

	return &Preview{Columns: ds.Columns, Rows: out, Total: total}, nil
}

// Remove drops a dataset from the registry and deletes its snapshot file.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	ds, ok := s.datasets[id]
	if ok {
		delete(s.datasets, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}

	if err := os.Remove(ds.SnapshotPath); err != nil && !os.IsNotExist(err) {
		logging.FromContext(ctx).Warn("remove snapshot", "path", ds.SnapshotPath, "error", err)
	}
	return nil
}

// Count returns the number of registered datasets.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// LimiterStatus exposes the limiter state for the status endpoint.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForIngests blocks until in-flight ingests drain or ctx is cancelled.
func (s *Service) WaitForIngests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
