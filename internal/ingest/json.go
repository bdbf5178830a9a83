package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go-etl-builder/internal/model"
)

// ------------------- JSON Ingestion -------------------

// ReadJSON parses a JSON array of objects (or a single object) into a dataset.
// Columns appear in first-seen key order; keys missing from a row are absent cells.
func ReadJSON(r io.Reader) (*model.Dataset, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON body: %w", err)
	}

	trimmed := bytes.TrimSpace(bodyBytes)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty JSON document")
	}

	var items []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	case '{':
		items = []json.RawMessage{trimmed}
	default:
		return nil, fmt.Errorf("unexpected JSON structure")
	}

	ds := model.NewDataset()
	for i, item := range items {
		keys, values, err := decodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		row := make([]interface{}, ds.NumColumns())
		for k, key := range keys {
			idx := ds.ColumnIndex(key)
			if idx < 0 {
				// backfill a column first seen in this record
				ds.Columns = append(ds.Columns, model.Column{Name: key, Values: make([]interface{}, i)})
				row = append(row, nil)
				idx = len(ds.Columns) - 1
			}
			row[idx] = values[k]
		}
		if err := ds.AppendRow(row...); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// decodeObject walks one JSON object keeping its key order
func decodeObject(raw json.RawMessage) ([]string, []interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object")
	}

	var keys []string
	var values []interface{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode JSON key: %w", err)
		}
		key, _ := keyTok.(string)

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("failed to decode JSON value for %q: %w", key, err)
		}
		keys = append(keys, key)
		values = append(values, normalizeJSONValue(value))
	}
	return keys, values, nil
}

// normalizeJSONValue maps decoded JSON onto the dataset cell types.
// Nested objects and arrays are kept as their JSON text.
func normalizeJSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, bool, string:
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
