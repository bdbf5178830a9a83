package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/metrics"
	"go-etl-builder/internal/model"
	"go-etl-builder/internal/pipeline"
	"go-etl-builder/internal/rawstore"
	"go-etl-builder/internal/store"
	"go-etl-builder/internal/workspace"
	"go-etl-builder/pkg/router"
)

// previewRows is how many rows a dataset preview shows
const previewRows = 10

// Deps are the collaborators the HTTP handlers work with
type Deps struct {
	DB             *store.DB
	Files          *rawstore.FileStore
	Workspace      *workspace.Workspace
	Pipelines      *pipeline.Store
	Logger         *logrus.Logger
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
}

// Handler serves the ETL builder API
type Handler struct {
	db        *store.DB
	files     *rawstore.FileStore
	ws        *workspace.Workspace
	pipelines *pipeline.Store
	recorder  *pipeline.Recorder
	replayer  *pipeline.Replayer
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	maxUpload int64
}

// New wires a handler from its dependencies
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	loader := rawstore.NewLoader(d.Files, d.DB)
	return &Handler{
		db:        d.DB,
		files:     d.Files,
		ws:        d.Workspace,
		pipelines: d.Pipelines,
		recorder:  pipeline.NewRecorder(d.Pipelines, d.Workspace, logger, d.Metrics),
		replayer:  pipeline.NewReplayer(d.Pipelines, loader, d.Workspace, logger, d.Metrics),
		logger:    logger,
		metrics:   d.Metrics,
		maxUpload: maxUpload,
	}
}

// Preview is the first rows of a dataset plus its shape
type Preview struct {
	SourceID *int64                `json:"source_id,omitempty"`
	Filename string                `json:"filename,omitempty"`
	Message  string                `json:"message,omitempty"`
	Rows     int                   `json:"rows"`
	Columns  []string              `json:"columns"`
	Records  []model.GenericRecord `json:"records"`
}

func newPreview(sourceID int64, ds *model.Dataset, message string) Preview {
	head := ds.Head(previewRows)
	return Preview{
		SourceID: &sourceID,
		Message:  message,
		Rows:     ds.NumRows(),
		Columns:  ds.ColumnNames(),
		Records:  head.Records(),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned when a request succeeded without changing anything
type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeBody reads an optional JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// sourceID reads the source ID from the first path wildcard
func (h *Handler) sourceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := router.Param(r, 0)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid source id %q", raw))
		return 0, false
	}
	return id, true
}

// currentDataset returns the source's workspace dataset, regenerating it from raw
// data and the recorded steps when the workspace does not hold it.
func (h *Handler) currentDataset(ctx context.Context, id int64) (*model.Dataset, error) {
	if ds, ok := h.ws.Lookup(id); ok {
		return ds, nil
	}
	if _, err := h.db.GetSource(ctx, id); err != nil {
		return nil, err
	}
	res, err := h.replayer.Replay(ctx, id)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// datasetError maps lookup failures to a status code
func (h *Handler) datasetError(w http.ResponseWriter, id int64, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("source %d not found", id))
	case errors.Is(err, pipeline.ErrRawDataUnavailable):
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("raw data unavailable for source %d", id))
	default:
		h.logger.WithError(err).WithField("source_id", id).Error("Failed to load dataset")
		h.writeError(w, http.StatusInternalServerError, "failed to load dataset")
	}
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
