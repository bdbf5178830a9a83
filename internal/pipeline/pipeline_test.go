package pipeline

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-builder/internal/metrics"
	"go-etl-builder/internal/model"
)

func sampleRaw(t *testing.T) *model.Dataset {
	t.Helper()
	ds := model.NewDataset("id", "value", "flag")
	require.NoError(t, ds.AppendRow(int64(1), 10.5, true))
	require.NoError(t, ds.AppendRow(int64(2), nil, false))
	require.NoError(t, ds.AppendRow(int64(3), 30.0, true))
	return ds
}

func columnValues(t *testing.T, ds *model.Dataset, name string) []interface{} {
	t.Helper()
	col, ok := ds.Column(name)
	require.True(t, ok, "column %s missing", name)
	return col.Values
}

func TestRecord(t *testing.T) {
	t.Run("drop columns copies its input", func(t *testing.T) {
		cols := []string{"a", "b"}
		step, err := Record(KindDropColumns, Params{Columns: cols})
		require.NoError(t, err)
		cols[0] = "z"
		assert.Equal(t, DropColumns{Columns: []string{"a", "b"}}, step)
	})

	t.Run("empty drop columns is a no-op", func(t *testing.T) {
		step, err := Record(KindDropColumns, Params{})
		assert.ErrorIs(t, err, ErrNoOp)
		assert.Nil(t, step)
	})

	t.Run("drop rows without subset applies to all columns", func(t *testing.T) {
		step, err := Record(KindDropRowsWithNulls, Params{Subset: []string{}})
		require.NoError(t, err)
		assert.Equal(t, DropRowsWithNulls{}, step)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Record(StepKind("fill_nulls"), Params{})
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestNoOpRecordingKeepsPipelineLength(t *testing.T) {
	store := NewStore()
	store.Append(1, NewDropRowsWithNulls(nil))

	for i := 0; i < 3; i++ {
		step, err := Record(KindDropColumns, Params{Columns: []string{}})
		if err == nil {
			store.Append(1, step)
		}
	}
	assert.Equal(t, 1, store.Len(1))
}

func TestStoreOrderAndIsolation(t *testing.T) {
	store := NewStore()
	var want []Step
	for _, name := range []string{"a", "b", "c", "d"} {
		step, err := NewDropColumns([]string{name})
		require.NoError(t, err)
		store.Append(7, step)
		want = append(want, step)
	}
	assert.Equal(t, want, store.Get(7))

	got := store.Get(7)
	got[0] = DropRowsWithNulls{}
	assert.Equal(t, want, store.Get(7), "Get must return a copy")

	unknown := store.Get(99)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
	assert.Equal(t, 0, store.Len(99))

	store.Append(7, nil)
	assert.Equal(t, 4, store.Len(7))

	store.Reset(7)
	assert.Empty(t, store.Get(7))

	store.Append(8, DropRowsWithNulls{})
	store.Delete(7)
	assert.Equal(t, []int64{8}, store.Sources())
}

func TestStoreConcurrentSources(t *testing.T) {
	store := NewStore()
	const sources, perSource = 8, 200

	var wg sync.WaitGroup
	for s := int64(0); s < sources; s++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < perSource; i++ {
				store.Append(id, DropRowsWithNulls{})
				_ = store.Get(id)
			}
		}(s)
	}
	wg.Wait()

	for s := int64(0); s < sources; s++ {
		assert.Equal(t, perSource, store.Len(s))
	}
}

func TestApplyDropRowsWithNulls(t *testing.T) {
	raw := sampleRaw(t)
	out := Apply(raw, []Step{NewDropRowsWithNulls(nil)})

	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []interface{}{int64(1), int64(3)}, columnValues(t, out, "id"))
	assert.Equal(t, 3, raw.NumRows(), "raw must not change")
}

func TestApplyDropRowsSubset(t *testing.T) {
	raw := sampleRaw(t)

	out := Apply(raw, []Step{NewDropRowsWithNulls([]string{"flag"})})
	assert.Equal(t, 3, out.NumRows())

	out = Apply(raw, []Step{NewDropRowsWithNulls([]string{"value", "missing"})})
	assert.Equal(t, []interface{}{int64(1), int64(3)}, columnValues(t, out, "id"))
}

func TestApplyDropColumns(t *testing.T) {
	raw := sampleRaw(t)
	step, err := NewDropColumns([]string{"flag"})
	require.NoError(t, err)

	out := Apply(raw, []Step{step})
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, []string{"id", "value"}, out.ColumnNames())
	assert.Equal(t, []string{"id", "value", "flag"}, raw.ColumnNames())

	missing, err := NewDropColumns([]string{"nope", "value"})
	require.NoError(t, err)
	out = Apply(raw, []Step{missing})
	assert.Equal(t, []string{"id", "flag"}, out.ColumnNames())
}

func TestApplyCombined(t *testing.T) {
	raw := sampleRaw(t)
	dropFlag, err := NewDropColumns([]string{"flag"})
	require.NoError(t, err)

	out := Apply(raw, []Step{NewDropRowsWithNulls(nil), dropFlag})
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"id", "value"}, out.ColumnNames())
	assert.Equal(t, []interface{}{10.5, 30.0}, columnValues(t, out, "value"))
}

func TestApplyIsStepByStep(t *testing.T) {
	raw := sampleRaw(t)
	dropValue, err := NewDropColumns([]string{"value"})
	require.NoError(t, err)

	// Dropping "value" first means the null in it can no longer remove a row.
	out := Apply(raw, []Step{dropValue, NewDropRowsWithNulls(nil)})
	assert.Equal(t, 3, out.NumRows())

	out = Apply(raw, []Step{NewDropRowsWithNulls(nil), dropValue})
	assert.Equal(t, 2, out.NumRows())
}

func TestApplyDeterministic(t *testing.T) {
	raw := sampleRaw(t)
	dropFlag, err := NewDropColumns([]string{"flag"})
	require.NoError(t, err)
	steps := []Step{NewDropRowsWithNulls([]string{"value"}), dropFlag}

	assert.Equal(t, Apply(raw, steps), Apply(raw, steps))
}

func TestApplyDropEveryColumn(t *testing.T) {
	step, err := NewDropColumns([]string{"id", "value", "flag"})
	require.NoError(t, err)

	out := Apply(sampleRaw(t), []Step{step})
	rows, cols := out.Shape()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 0, cols)
}

func TestApplySkipsUnknownKind(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	m := metrics.New()
	applier := NewApplier(logger, m)

	dropFlag, err := NewDropColumns([]string{"flag"})
	require.NoError(t, err)
	steps := []Step{
		UnknownStep{Op: "fill_nulls", Params: map[string]interface{}{"value": 0.0}},
		dropFlag,
	}

	var out *model.Dataset
	var report Report
	require.NotPanics(t, func() { out, report = applier.Apply(sampleRaw(t), steps) })

	assert.Equal(t, []string{"id", "value"}, out.ColumnNames())
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Steps, 2)
	assert.True(t, report.Steps[0].Skipped)
	assert.True(t, report.Steps[1].Applied)
	assert.Equal(t, 3, report.Steps[1].ColsBefore)
	assert.Equal(t, 2, report.Steps[1].ColsAfter)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["diagnostic"] == "unknown_step_kind" {
			warned = true
		}
	}
	assert.True(t, warned, "skipped step must be logged as a warning")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsSkipped.WithLabelValues("fill_nulls")))
}

func TestBuildConfigFidelity(t *testing.T) {
	dropFlag, err := NewDropColumns([]string{"flag"})
	require.NoError(t, err)
	steps := []Step{NewDropRowsWithNulls(nil), dropFlag, NewDropRowsWithNulls([]string{"id"})}
	name := "my_source.csv"

	doc := BuildConfig(42, &name, steps)

	assert.Equal(t, "my_source.csv", doc.PipelineName)
	assert.Equal(t, int64(42), doc.Source.SourceID)
	require.NotNil(t, doc.Source.Name)
	assert.Equal(t, "my_source.csv", *doc.Source.Name)
	assert.Equal(t, StepList(steps), doc.Steps)
	assert.Equal(t, DefaultTargetDB, doc.Load.TargetDB)
	assert.Nil(t, doc.Load.TargetTable)
	assert.Equal(t, ModeOverwrite, doc.Load.Mode)
}

func TestBuildConfigDerivedName(t *testing.T) {
	doc := BuildConfig(7, nil, nil)
	assert.Equal(t, "source_7_pipeline", doc.PipelineName)
	assert.Nil(t, doc.Source.Name)
	assert.NotNil(t, doc.Steps)

	empty := ""
	assert.Equal(t, "source_7_pipeline", BuildConfig(7, &empty, nil).PipelineName)
}

func TestConfigJSONShape(t *testing.T) {
	dropFlag, err := NewDropColumns([]string{"flag"})
	require.NoError(t, err)
	name := "sales.csv"
	doc := BuildConfig(3, &name, []Step{NewDropRowsWithNulls(nil), NewDropRowsWithNulls([]string{"id"}), dropFlag})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pipeline_name": "sales.csv",
		"source": {"source_id": 3, "name": "sales.csv"},
		"steps": [
			{"op": "drop_rows_with_nulls"},
			{"op": "drop_rows_with_nulls", "subset": ["id"]},
			{"op": "drop_columns", "columns": ["flag"]}
		],
		"load": {"target_db": "default", "target_table": null, "mode": "overwrite"}
	}`, string(data))

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, doc, *parsed)
}

func TestParseConfigUnknownStepRoundTrip(t *testing.T) {
	input := `{
		"pipeline_name": "p",
		"source": {"source_id": 1, "name": null},
		"steps": [
			{"op": "fill_nulls", "value": 0, "columns": ["a"]},
			{"op": "drop_columns", "columns": ["b"]}
		],
		"load": {"target_db": "default", "target_table": "t", "mode": "append"}
	}`

	doc, err := ParseConfig([]byte(input))
	require.NoError(t, err)
	require.Len(t, doc.Steps, 2)
	assert.Equal(t, StepKind("fill_nulls"), doc.Steps[0].Kind())
	assert.IsType(t, UnknownStep{}, doc.Steps[0])
	assert.Equal(t, DropColumns{Columns: []string{"b"}}, doc.Steps[1])
	assert.Equal(t, ModeAppend, doc.Load.Mode)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestParseConfigRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		steps string
	}{
		{"missing op", `[{"columns": ["a"]}]`},
		{"op not a string", `[{"op": 3}]`},
		{"empty drop columns", `[{"op": "drop_columns", "columns": []}]`},
		{"columns not a list", `[{"op": "drop_columns", "columns": "a"}]`},
		{"subset with numbers", `[{"op": "drop_rows_with_nulls", "subset": [1]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(`{"pipeline_name": "p", "steps": ` + tt.steps + `}`))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedStep), "got %v", err)
		})
	}

	_, err := ParseConfig([]byte(`{"steps": [], "load": {"mode": "upsert"}}`))
	assert.Error(t, err)
}

func TestParseWriteMode(t *testing.T) {
	tests := []struct {
		in   string
		want WriteMode
		ok   bool
	}{
		{"", ModeOverwrite, true},
		{"overwrite", ModeOverwrite, true},
		{" APPEND ", ModeAppend, true},
		{"replace", ModeOverwrite, false},
	}
	for _, tt := range tests {
		got, ok := ParseWriteMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
