package model

import "time"

// Source types accepted at upload
const (
	SourceTypeCSV  = "csv"
	SourceTypeJSON = "json"
)

// DataSource is the metadata row kept for every uploaded dataset
type DataSource struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SourceType   string    `json:"source_type"`             // csv, json
	OriginalName *string   `json:"original_name,omitempty"` // file name as uploaded
	FilePath     *string   `json:"file_path,omitempty"`     // raw file on disk
	SkipRows     int       `json:"skip_rows"`               // leading lines skipped when parsing the raw file
	RowCount     *int      `json:"row_count,omitempty"`
	ColumnCount  *int      `json:"column_count,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDataSource describes a freshly ingested dataset before it gets an ID
type NewDataSource struct {
	Name         string
	SourceType   string
	OriginalName *string
	FilePath     *string
	SkipRows     int
	RowCount     *int
	ColumnCount  *int
	Status       string
}
