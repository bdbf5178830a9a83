// Package export writes datasets out as CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-etl-builder/internal/model"
	"go-etl-builder/pkg/utils"
)

// Result describes one finished export
type Result struct {
	Format      string    `json:"format"` // "csv", "json"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ------------------- Writers -------------------

// WriteCSV writes the header and every row of ds, in column order.
// Absent cells are written as empty fields.
func WriteCSV(w io.Writer, ds *model.Dataset) (int, error) {
	writer := csv.NewWriter(w)

	if err := writer.Write(ds.ColumnNames()); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rows := ds.NumRows()
	record := make([]string, ds.NumColumns())
	for i := 0; i < rows; i++ {
		for j, col := range ds.Columns {
			record[j] = utils.FormatValue(col.Values[i])
		}
		if err := writer.Write(record); err != nil {
			return i, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rows, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return rows, nil
}

// WriteJSON writes ds as an array of objects with keys in column order
func WriteJSON(w io.Writer, ds *model.Dataset) (int, error) {
	rows := ds.NumRows()

	if _, err := io.WriteString(w, "[\n"); err != nil {
		return 0, err
	}
	for i := 0; i < rows; i++ {
		var b strings.Builder
		b.WriteString("  {")
		for j, col := range ds.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			key, err := json.Marshal(col.Name)
			if err != nil {
				return i, err
			}
			value, err := json.Marshal(jsonCell(col.Values[i]))
			if err != nil {
				return i, fmt.Errorf("failed to encode row %d column %s: %w", i, col.Name, err)
			}
			b.Write(key)
			b.WriteString(": ")
			b.Write(value)
		}
		b.WriteString("}")
		if i < rows-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return i, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if _, err := io.WriteString(w, "]\n"); err != nil {
		return rows, err
	}
	return rows, nil
}

// jsonCell maps NaN, which JSON cannot carry, to null
func jsonCell(v interface{}) interface{} {
	if model.IsNull(v) {
		return nil
	}
	return v
}

// ------------------- Files -------------------

// ToFile writes ds to path, picking the format from the extension (CSV unless .json)
func ToFile(path string, ds *model.Dataset) (*Result, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write next to the target and rename so readers never see a half-written file
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	format := "csv"
	var count int
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
		count, err = WriteJSON(tmp, ds)
	} else {
		count, err = WriteCSV(tmp, ds)
	}
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to move export into place: %w", err)
	}

	return &Result{
		Format:      format,
		Path:        path,
		RecordCount: count,
		ExportedAt:  time.Now(),
	}, nil
}
