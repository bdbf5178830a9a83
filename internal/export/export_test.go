package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-builder/internal/ingest"
	"go-etl-builder/internal/model"
)

func sample(t *testing.T) *model.Dataset {
	t.Helper()
	ds := model.NewDataset("id", "value", "flag", "name")
	require.NoError(t, ds.AppendRow(int64(1), 10.5, true, "a, b"))
	require.NoError(t, ds.AppendRow(int64(2), nil, false, "c"))
	require.NoError(t, ds.AppendRow(int64(3), 30.0, true, nil))
	return ds
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteCSV(&buf, sample(t))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "id,value,flag,name\n1,10.5,True,\"a, b\"\n2,,False,c\n3,30.0,True,\n", buf.String())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := sample(t)
	var buf bytes.Buffer
	_, err := WriteCSV(&buf, ds)
	require.NoError(t, err)

	back, err := ingest.ReadCSV(&buf, ingest.Options{})
	require.NoError(t, err)
	assert.Equal(t, ds.ColumnNames(), back.ColumnNames())
	assert.Equal(t, ds.Records(), back.Records())
}

func TestWriteJSON(t *testing.T) {
	ds := model.NewDataset("b", "a")
	require.NoError(t, ds.AppendRow(int64(1), math.NaN()))
	require.NoError(t, ds.AppendRow(int64(2), "x"))

	var buf bytes.Buffer
	n, err := WriteJSON(&buf, ds)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.JSONEq(t, `[{"b": 1, "a": null}, {"b": 2, "a": "x"}]`, buf.String())
	// keys keep column order
	assert.Contains(t, buf.String(), `{"b": 1, "a": null}`)

	var empty bytes.Buffer
	_, err = WriteJSON(&empty, model.NewDataset("a"))
	require.NoError(t, err)
	var decoded []interface{}
	require.NoError(t, json.Unmarshal(empty.Bytes(), &decoded))
	assert.Empty(t, decoded)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()

	res, err := ToFile(filepath.Join(dir, "out", "clean.csv"), sample(t))
	require.NoError(t, err)
	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, 3, res.RecordCount)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id,value,flag,name")

	res, err = ToFile(filepath.Join(dir, "clean.json"), sample(t))
	require.NoError(t, err)
	assert.Equal(t, "json", res.Format)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}
