package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go-etl-builder/internal/model"
	"go-etl-builder/pkg/utils"
)

// Options tunes how a raw upload is read
type Options struct {
	// SkipRows discards this many leading lines before the header
	SkipRows int
}

// ------------------- CSV Ingestion -------------------

// ReadCSV parses a CSV stream into a dataset. The first (non-skipped) record is the header.
func ReadCSV(r io.Reader, opts Options) (*model.Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := csvReader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("skip_rows=%d exceeds the number of lines", opts.SkipRows)
			}
			return nil, fmt.Errorf("failed to skip CSV row %d: %w", i+1, err)
		}
	}

	headers, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV has no header row")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	ds := model.NewDataset(cleanHeaders(headers)...)
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}
		line++

		if len(record) > len(headers) {
			return nil, fmt.Errorf("CSV row %d has %d fields, header has %d", line, len(record), len(headers))
		}
		// Blank lines come through as a single empty field
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && len(headers) > 1 {
			continue
		}

		row := make([]interface{}, len(headers))
		for i := range headers {
			if i < len(record) {
				row[i] = utils.ParseValue(record[i])
			}
		}
		if err := ds.AppendRow(row...); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// cleanHeaders trims names, strips quotes and a UTF-8 BOM, names blank headers
// and suffixes duplicates so every column name is unique
func cleanHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	names := make([]string, len(headers))
	for i, h := range headers {
		name := strings.TrimPrefix(h, "\ufeff")
		name = strings.TrimSpace(name)
		name = strings.ReplaceAll(name, `"`, "")
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}
