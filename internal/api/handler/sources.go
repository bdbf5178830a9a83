package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/ingest"
	"go-etl-builder/internal/inspect"
	"go-etl-builder/internal/model"
	"go-etl-builder/internal/rawstore"
)

// UploadSource ingests an uploaded file as a new source
// @Summary Upload a data source
// @Description Parse a CSV (or .json) upload, store it as raw data and open it in the workspace
// @Tags sources
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or JSON file"
// @Param skip_rows formData int false "Leading lines to skip before the header"
// @Success 201 {object} Preview
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sources [post]
func (h *Handler) UploadSource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	skipRows := 0
	if v := r.FormValue("skip_rows"); v != "" {
		skipRows, err = strconv.Atoi(v)
		if err != nil || skipRows < 0 {
			h.writeError(w, http.StatusBadRequest, "skip_rows must be a non-negative integer")
			return
		}
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	fileName := filepath.Base(header.Filename)
	sourceType := ingest.DetectSourceType(fileName)
	log := h.logger.WithFields(logrus.Fields{
		"filename":  fileName,
		"bytes":     len(content),
		"skip_rows": skipRows,
	})

	ds, err := ingest.Read(bytes.NewReader(content), sourceType, ingest.Options{SkipRows: skipRows})
	if err != nil {
		log.WithError(err).Warn("Failed to parse upload")
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", sourceType, err))
		return
	}
	rows, cols := ds.Shape()

	ctx := r.Context()
	id, err := h.db.InsertSource(ctx, model.NewDataSource{
		Name:         fileName,
		SourceType:   sourceType,
		OriginalName: &fileName,
		SkipRows:     skipRows,
		RowCount:     &rows,
		ColumnCount:  &cols,
		Status:       "ready",
	})
	if err != nil {
		log.WithError(err).Error("Failed to insert data source metadata")
		h.writeError(w, http.StatusInternalServerError, "failed to save data source metadata")
		return
	}

	path, err := h.files.SaveRaw(id, sourceType, content)
	if err != nil {
		// Without the raw file the source could never be replayed
		log.WithError(err).Error("Failed to save raw file")
		if _, derr := h.db.DeleteSources(ctx, []int64{id}); derr != nil {
			log.WithError(derr).Error("Failed to remove metadata of unsaved source")
		}
		h.writeError(w, http.StatusInternalServerError, "failed to save raw file")
		return
	}
	if err := h.db.UpdateFilePath(ctx, id, path); err != nil {
		log.WithError(err).Error("Failed to record raw file path")
	}

	h.ws.Put(id, ds)
	h.pipelines.Reset(id)

	log.WithFields(logrus.Fields{"source_id": id, "rows": rows, "columns": cols}).Info("Source uploaded")
	preview := newPreview(id, ds, "")
	preview.Filename = fileName
	h.writeJSON(w, http.StatusCreated, preview)
}

// ListSources returns every source, newest first
// @Summary List data sources
// @Tags sources
// @Produce json
// @Success 200 {array} model.DataSource
// @Failure 500 {object} ErrorResponse
// @Router /sources [get]
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.db.ListSources(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sources")
		h.writeError(w, http.StatusInternalServerError, "failed to fetch sources")
		return
	}
	h.writeJSON(w, http.StatusOK, sources)
}

// DeleteSourcesRequest selects the sources to delete
type DeleteSourcesRequest struct {
	SourceIDs []int64 `json:"source_ids"`
}

// DeleteSources removes sources with their files, workspace entries and pipelines
// @Summary Delete data sources
// @Tags sources
// @Accept json
// @Produce json
// @Param request body DeleteSourcesRequest true "Sources to delete"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sources/delete [post]
func (h *Handler) DeleteSources(w http.ResponseWriter, r *http.Request) {
	var req DeleteSourcesRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if len(req.SourceIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "no sources selected")
		return
	}

	deleted, err := h.db.DeleteSources(r.Context(), req.SourceIDs)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete sources")
		h.writeError(w, http.StatusInternalServerError, "failed to delete sources")
		return
	}
	for _, id := range req.SourceIDs {
		if err := h.files.Delete(id); err != nil {
			h.logger.WithError(err).WithField("source_id", id).Warn("Failed to delete source files")
		}
		h.ws.Delete(id)
		h.pipelines.Delete(id)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"requested": len(req.SourceIDs),
		"deleted":   deleted,
	})
}

// OpenSource previews a source, loading it into the workspace when needed
// @Summary Open a data source
// @Tags sources
// @Produce json
// @Param id path int true "Source ID"
// @Success 200 {object} Preview
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/open [post]
func (h *Handler) OpenSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	ds, err := h.currentDataset(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newPreview(id, ds, ""))
}

// ValidateRequest optionally lists columns that must be present
type ValidateRequest struct {
	Required []string `json:"required"`
}

// ValidateSource profiles the current dataset of a source
// @Summary Validate a data source
// @Description Per column dtype, null count, null percentage and sample values, plus an optional required-columns check
// @Tags sources
// @Accept json
// @Produce json
// @Param id path int true "Source ID"
// @Param request body ValidateRequest false "Required columns"
// @Success 200 {object} inspect.Report
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/validate [post]
func (h *Handler) ValidateSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	var req ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	ds, err := h.currentDataset(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}
	report, err := inspect.Validate(ds, req.Required)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logger.WithFields(logrus.Fields{"source_id": id, "valid": report.Valid}).Info("Validated source")
	h.writeJSON(w, http.StatusOK, report)
}

// SaveSource writes the current dataset as the source's cleaned CSV
// @Summary Save the cleaned dataset
// @Description Writes source_<id>_clean.csv; the raw file is never overwritten
// @Tags sources
// @Produce json
// @Param id path int true "Source ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sources/{id}/save [post]
func (h *Handler) SaveSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	ds, err := h.currentDataset(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}

	res, err := h.files.SaveClean(id, ds)
	if err != nil {
		h.logger.WithError(err).WithField("source_id", id).Error("Failed to save cleaned dataset")
		h.writeError(w, http.StatusInternalServerError, "failed to save cleaned dataset")
		return
	}
	rows, cols := ds.Shape()
	if err := h.db.UpdateShape(r.Context(), id, rows, cols); err != nil {
		h.logger.WithError(err).WithField("source_id", id).Warn("Failed to update source shape")
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"source_id": id,
		"path":      res.Path,
		"rows":      rows,
		"columns":   cols,
		"message":   fmt.Sprintf("Saved cleaned dataset with %d rows and %d columns.", rows, cols),
	})
}

// DownloadSource serves the cleaned CSV when saved, otherwise the raw file
// @Summary Download a data source
// @Tags sources
// @Produce octet-stream
// @Param id path int true "Source ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/download [get]
func (h *Handler) DownloadSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	src, err := h.db.GetSource(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}

	path, cleaned, err := h.files.DownloadPath(id, src.SourceType)
	if errors.Is(err, rawstore.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "no file for this source")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to locate file")
		return
	}

	h.logger.WithFields(logrus.Fields{"source_id": id, "cleaned": cleaned}).Info("Serving source download")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
