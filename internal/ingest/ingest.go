// Package ingest turns uploaded CSV and JSON files into datasets.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go-etl-builder/internal/model"
)

// DetectSourceType picks the reader for an uploaded file name; CSV unless it ends in .json
func DetectSourceType(fileName string) string {
	if strings.EqualFold(filepath.Ext(fileName), ".json") {
		return model.SourceTypeJSON
	}
	return model.SourceTypeCSV
}

// Read parses r according to the source type
func Read(r io.Reader, sourceType string, opts Options) (*model.Dataset, error) {
	switch strings.ToLower(sourceType) {
	case model.SourceTypeCSV:
		return ReadCSV(r, opts)
	case model.SourceTypeJSON:
		return ReadJSON(r)
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
}
