package store

import (
	"context"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-builder/internal/model"
	"go-etl-builder/internal/pipeline"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	db, err := Open(filepath.Join(t.TempDir(), "db", "etl.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestSourcesCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.InsertSource(ctx, model.NewDataSource{
		Name:         "sales.csv",
		SourceType:   model.SourceTypeCSV,
		OriginalName: strPtr("sales.csv"),
		SkipRows:     2,
		RowCount:     intPtr(10),
		ColumnCount:  intPtr(3),
	})
	require.NoError(t, err)
	second, err := db.InsertSource(ctx, model.NewDataSource{Name: "b.json", SourceType: model.SourceTypeJSON})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	src, err := db.GetSource(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", src.Name)
	assert.Equal(t, "ready", src.Status)
	assert.Equal(t, 2, src.SkipRows)
	require.NotNil(t, src.RowCount)
	assert.Equal(t, 10, *src.RowCount)
	assert.Nil(t, src.FilePath)
	assert.False(t, src.CreatedAt.IsZero())

	require.NoError(t, db.UpdateFilePath(ctx, first, "data/source_1.csv"))
	require.NoError(t, db.UpdateShape(ctx, first, 8, 2))
	src, err = db.GetSource(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, src.FilePath)
	assert.Equal(t, "data/source_1.csv", *src.FilePath)
	assert.Equal(t, 8, *src.RowCount)
	assert.Equal(t, 2, *src.ColumnCount)

	list, err := db.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID, "newest first")

	n, err := db.DeleteSources(ctx, []int64{first, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = db.GetSource(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.UpdateShape(ctx, first, 1, 1), ErrNotFound)
}

func sample(t *testing.T) *model.Dataset {
	t.Helper()
	ds := model.NewDataset("id", "value", "flag", "name")
	require.NoError(t, ds.AppendRow(int64(1), 10.5, true, "a"))
	require.NoError(t, ds.AppendRow(int64(2), int64(7), false, nil))
	require.NoError(t, ds.AppendRow(int64(3), nil, true, "c"))
	return ds
}

func TestLoadAndReadTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.LoadDataset(ctx, sample(t), "sales_clean", pipeline.ModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ds, err := db.ReadTable(ctx, "sales_clean", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "value", "flag", "name"}, ds.ColumnNames())
	assert.Equal(t, model.GenericRecord{"id": int64(1), "value": 10.5, "flag": true, "name": "a"}, ds.Row(0))
	assert.Equal(t, model.GenericRecord{"id": int64(2), "value": 7.0, "flag": false, "name": nil}, ds.Row(1))
	assert.Nil(t, ds.Row(2)["value"])

	head, err := db.ReadTable(ctx, "sales_clean", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, head.NumRows())

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales_clean"}, tables)
}

func TestLoadModes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.LoadDataset(ctx, sample(t), "t", pipeline.ModeOverwrite)
	require.NoError(t, err)
	_, err = db.LoadDataset(ctx, sample(t), "t", pipeline.ModeAppend)
	require.NoError(t, err)
	ds, err := db.ReadTable(ctx, "t", 100)
	require.NoError(t, err)
	assert.Equal(t, 6, ds.NumRows())

	_, err = db.LoadDataset(ctx, sample(t), "t", pipeline.ModeOverwrite)
	require.NoError(t, err)
	ds, err = db.ReadTable(ctx, "t", 100)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumRows())

	_, err = db.LoadDataset(ctx, sample(t), "fresh", pipeline.ModeAppend)
	require.NoError(t, err)
	ds, err = db.ReadTable(ctx, "fresh", 100)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumRows())
}

func TestLoadEmptyDatasetIsNoOp(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.LoadDataset(ctx, model.NewDataset("a"), "empty", pipeline.ModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = db.ReadTable(ctx, "empty", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTableNames(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"bad-name", "x; DROP TABLE data_sources", "", "data_sources", "sqlite_master"} {
		_, err := db.LoadDataset(ctx, sample(t), name, pipeline.ModeOverwrite)
		assert.ErrorIs(t, err, ErrInvalidTableName, name)
	}
	assert.NoError(t, ValidateTableName("Sales_2024"))

	_, err := db.ReadTable(ctx, "missing_table", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
