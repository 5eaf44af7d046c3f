package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/DataPrep/internal/ingest"
	"github.com/JonMunkholm/DataPrep/internal/logging"
	"github.com/go-chi/chi/v5"
)

// defaultPreviewRows is used when the preview endpoint gets no rows param.
const defaultPreviewRows = 10

// multipartOverhead is slack added on top of the file size limit to account
// for multipart boundaries and form fields.
const multipartOverhead = 1 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateDataset accepts a multipart upload, runs the ingestion
// pipeline on it, and returns the registered dataset.
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, r, fmt.Errorf("%w: request body exceeds limit", ingest.ErrFileTooLarge))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: no file provided", errBadRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	log := logging.WithFields(r.Context(), "file", header.Filename, "bytes", len(data))
	log.Info("upload received")

	ds, err := s.service.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	log.Info("dataset created", "dataset_id", ds.ID, "rows", ds.Rows)
	writeJSON(w, http.StatusCreated, ds)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := s.service.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Get(chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// handlePreview returns the first rows of a dataset as display strings.
// The row count comes from the "rows" query parameter.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rows := defaultPreviewRows
	if raw := r.URL.Query().Get("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, r, fmt.Errorf("%w: invalid rows parameter %q", errBadRequest, raw))
			return
		}
		rows = n
	}

	preview, err := s.service.Preview(chi.URLParam(r, "datasetID"), rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleSnapshot streams the normalized CSV snapshot as a download.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Get(chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	f, err := os.Open(ds.SnapshotPath)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("open snapshot: %w", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(ds.SnapshotPath)))
	if _, err := io.Copy(w, f); err != nil {
		logging.FromContext(r.Context()).Error("stream snapshot", "error", err)
	}
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Remove(r.Context(), chi.URLParam(r, "datasetID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStatus reports service health details: dataset count and limiter
// occupancy. Useful for dashboards and load tests.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"datasets": s.service.Count(),
		"ingest":   s.service.LimiterStatus(),
	})
}
