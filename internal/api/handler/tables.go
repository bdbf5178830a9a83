package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go-etl-builder/internal/inspect"
	"go-etl-builder/internal/model"
	"go-etl-builder/internal/store"
	"go-etl-builder/pkg/router"
)

// queryLimit reads ?limit= within [min, max], defaulting to def
func queryLimit(r *http.Request, def, min, max int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("limit must be an integer between %d and %d", min, max)
	}
	return n, nil
}

func (h *Handler) readTable(w http.ResponseWriter, r *http.Request, limit int) (string, *model.Dataset, bool) {
	table := router.Param(r, 0)
	ds, err := h.db.ReadTable(r.Context(), table, limit)
	switch {
	case err == nil:
		return table, ds, true
	case errors.Is(err, store.ErrInvalidTableName):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("table %s not found", table))
	default:
		h.logger.WithError(err).WithField("table", table).Error("Failed to read table")
		h.writeError(w, http.StatusInternalServerError, "failed to read table")
	}
	return table, nil, false
}

// TableResponse holds rows read from a table
type TableResponse struct {
	Table   string                `json:"table"`
	Columns []string              `json:"columns"`
	Rows    int                   `json:"rows"`
	Records []model.GenericRecord `json:"records"`
}

func newTableResponse(table string, ds *model.Dataset) TableResponse {
	return TableResponse{
		Table:   table,
		Columns: ds.ColumnNames(),
		Rows:    ds.NumRows(),
		Records: ds.Records(),
	}
}

// ListTables lists the user tables in the database
// @Summary List tables
// @Tags tables
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} ErrorResponse
// @Router /tables [get]
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.db.ListTables(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tables")
		h.writeError(w, http.StatusInternalServerError, "failed to list tables")
		return
	}
	h.writeJSON(w, http.StatusOK, tables)
}

// TablePreview returns the first rows of a table
// @Summary Preview a table
// @Tags tables
// @Produce json
// @Param name path string true "Table name"
// @Param limit query int false "Rows (1-10000, default 10)"
// @Success 200 {object} TableResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/preview [get]
func (h *Handler) TablePreview(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 10, 1, 10000)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if table, ds, ok := h.readTable(w, r, limit); ok {
		h.writeJSON(w, http.StatusOK, newTableResponse(table, ds))
	}
}

// TableRecords returns table rows as JSON records
// @Summary Read a table
// @Tags tables
// @Produce json
// @Param name path string true "Table name"
// @Param limit query int false "Rows (1-10000, default 100)"
// @Success 200 {object} TableResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name} [get]
func (h *Handler) TableRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 100, 1, 10000)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if table, ds, ok := h.readTable(w, r, limit); ok {
		h.writeJSON(w, http.StatusOK, newTableResponse(table, ds))
	}
}

// VisualizeResponse is the chart data of a table
type VisualizeResponse struct {
	Table string `json:"table"`
	inspect.Summary
}

// TableVisualize summarizes a table for charts
// @Summary Visualize a table
// @Description Up to three numeric columns with their values and up to two categorical columns with their top ten counts
// @Tags tables
// @Produce json
// @Param name path string true "Table name"
// @Param limit query int false "Rows sampled (100-20000, default 2000)"
// @Success 200 {object} VisualizeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tables/{name}/visualize [get]
func (h *Handler) TableVisualize(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 2000, 100, 20000)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if table, ds, ok := h.readTable(w, r, limit); ok {
		h.writeJSON(w, http.StatusOK, VisualizeResponse{Table: table, Summary: inspect.Summarize(ds)})
	}
}
