package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/pipeline"
	"go-etl-builder/internal/store"
)

// DropNullRowsRequest optionally limits the null check to some columns
type DropNullRowsRequest struct {
	Subset []string `json:"subset"`
}

// DropColumnsRequest lists the columns to remove
type DropColumnsRequest struct {
	Columns []string `json:"columns"`
}

// DropNullRows removes rows with absent values and records the step
// @Summary Drop rows with nulls
// @Description Applies drop_rows_with_nulls to the current dataset and appends it to the source pipeline. An empty subset checks every column.
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path int true "Source ID"
// @Param request body DropNullRowsRequest false "Columns to check"
// @Success 200 {object} Preview
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/clean/drop-null-rows [post]
func (h *Handler) DropNullRows(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	var req DropNullRowsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.clean(w, r, id, pipeline.KindDropRowsWithNulls, pipeline.Params{Subset: req.Subset})
}

// DropColumns removes columns and records the step
// @Summary Drop columns
// @Description Applies drop_columns to the current dataset and appends it to the source pipeline. An empty list changes nothing.
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path int true "Source ID"
// @Param request body DropColumnsRequest true "Columns to drop"
// @Success 200 {object} Preview
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/clean/drop-columns [post]
func (h *Handler) DropColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	var req DropColumnsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	h.clean(w, r, id, pipeline.KindDropColumns, pipeline.Params{Columns: req.Columns})
}

func (h *Handler) clean(w http.ResponseWriter, r *http.Request, id int64, kind pipeline.StepKind, params pipeline.Params) {
	before, err := h.currentDataset(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}

	ds, _, err := h.recorder.Execute(id, kind, params)
	switch {
	case errors.Is(err, pipeline.ErrNoOp):
		h.writeJSON(w, http.StatusOK, newPreview(id, before, "No columns selected. Nothing changed."))
		return
	case err != nil:
		h.logger.WithError(err).WithField("source_id", id).Error("Failed to apply step")
		h.writeError(w, http.StatusInternalServerError, "failed to apply step")
		return
	}

	var message string
	switch kind {
	case pipeline.KindDropRowsWithNulls:
		message = fmt.Sprintf("Dropped %d rows with null values.", before.NumRows()-ds.NumRows())
	case pipeline.KindDropColumns:
		message = fmt.Sprintf("Dropped %d columns.", before.NumColumns()-ds.NumColumns())
	}
	h.writeJSON(w, http.StatusOK, newPreview(id, ds, message))
}

// PipelineResponse lists the recorded steps of a source
type PipelineResponse struct {
	SourceID int64             `json:"source_id"`
	Steps    pipeline.StepList `json:"steps"`
}

// GetPipeline returns the recorded steps of a source
// @Summary Get the recorded pipeline
// @Tags pipeline
// @Produce json
// @Param id path int true "Source ID"
// @Success 200 {object} PipelineResponse
// @Router /sources/{id}/pipeline [get]
func (h *Handler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, PipelineResponse{SourceID: id, Steps: h.pipelines.Get(id)})
}

// ExportConfig returns the pipeline configuration document of a source
// @Summary Export the pipeline configuration
// @Tags pipeline
// @Produce json
// @Param id path int true "Source ID"
// @Success 200 {object} pipeline.Document
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/export-config [post]
func (h *Handler) ExportConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	steps := h.pipelines.Get(id)
	if len(steps) == 0 {
		h.writeJSON(w, http.StatusOK, MessageResponse{Message: "No pipeline steps recorded yet."})
		return
	}

	var name *string
	src, err := h.db.GetSource(r.Context(), id)
	switch {
	case err == nil:
		name = &src.Name
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("source %d not found", id))
		return
	default:
		h.logger.WithError(err).WithField("source_id", id).Warn("Exporting config without source name")
	}

	doc := pipeline.BuildConfig(id, name, steps)
	h.logger.WithFields(logrus.Fields{"source_id": id, "steps": len(steps)}).Info("Exported pipeline config")
	h.writeJSON(w, http.StatusOK, doc)
}

// ReplayResponse is the regenerated dataset preview with the per-step report
type ReplayResponse struct {
	Preview
	Report pipeline.Report `json:"report"`
}

// ReplayPipeline regenerates the current dataset from raw data and the recorded steps
// @Summary Replay the pipeline from raw data
// @Tags pipeline
// @Produce json
// @Param id path int true "Source ID"
// @Success 200 {object} ReplayResponse
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/replay [post]
func (h *Handler) ReplayPipeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	if h.pipelines.Len(id) == 0 {
		h.writeJSON(w, http.StatusOK, MessageResponse{Message: "No pipeline steps recorded yet. Nothing to replay."})
		return
	}

	res, err := h.replayer.Replay(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}
	msg := fmt.Sprintf("Replayed pipeline from raw data. Applied %d steps.", res.Steps-res.Report.Skipped)
	if res.Report.Skipped > 0 {
		msg += fmt.Sprintf(" Skipped %d steps of unknown kind.", res.Report.Skipped)
	}
	h.writeJSON(w, http.StatusOK, ReplayResponse{
		Preview: newPreview(id, res.Dataset, msg),
		Report:  res.Report,
	})
}

// LoadRequest names the table to load into
type LoadRequest struct {
	TargetTable string `json:"target_table"`
	Mode        string `json:"mode"`
}

// LoadSource writes the current dataset of a source into a database table
// @Summary Load into a table
// @Description Mode is overwrite (default) or append; unknown modes fall back to overwrite
// @Tags pipeline
// @Accept json
// @Produce json
// @Param id path int true "Source ID"
// @Param request body LoadRequest true "Target table and mode"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sources/{id}/load [post]
func (h *Handler) LoadSource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	var req LoadRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.TargetTable == "" {
		h.writeError(w, http.StatusBadRequest, "target_table is required")
		return
	}
	if err := store.ValidateTableName(req.TargetTable); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode, known := pipeline.ParseWriteMode(req.Mode)
	if !known {
		h.logger.WithFields(logrus.Fields{"source_id": id, "mode": req.Mode}).Warn("Unknown load mode, using overwrite")
	}

	ds, err := h.currentDataset(r.Context(), id)
	if err != nil {
		h.datasetError(w, id, err)
		return
	}

	rows, err := h.db.LoadDataset(r.Context(), ds, req.TargetTable, mode)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"source_id": id, "table": req.TargetTable}).Error("Load failed")
		h.writeError(w, http.StatusInternalServerError, "failed to load into table: "+err.Error())
		return
	}
	h.metrics.RowsWritten(string(mode), rows)

	message := fmt.Sprintf("Loaded %d rows into %s (%s).", rows, req.TargetTable, mode)
	if rows == 0 {
		message = "Dataset is empty. Nothing was loaded."
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"source_id": id,
		"table":     req.TargetTable,
		"mode":      mode,
		"rows":      rows,
		"message":   message,
	})
}
