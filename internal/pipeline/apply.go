package pipeline

import (
	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/metrics"
	"go-etl-builder/internal/model"
)

var globalLogger = logrus.New() // package default, overridable by the application

// SetGlobalLogger changes the logger used by components created without one
func SetGlobalLogger(l *logrus.Logger) {
	if l != nil {
		globalLogger = l
	}
}

// StepOutcome describes what one step did to the dataset
type StepOutcome struct {
	Index      int      `json:"index"`
	Op         StepKind `json:"op"`
	Applied    bool     `json:"applied"`
	Skipped    bool     `json:"skipped"`
	RowsBefore int      `json:"rows_before"`
	RowsAfter  int      `json:"rows_after"`
	ColsBefore int      `json:"cols_before"`
	ColsAfter  int      `json:"cols_after"`
}

// Report is the step-by-step account of one Apply call
type Report struct {
	Steps   []StepOutcome `json:"steps"`
	Skipped int           `json:"skipped"`
}

// Applier replays step sequences against datasets
type Applier struct {
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewApplier creates an applier; nil logger and metrics are allowed
func NewApplier(logger *logrus.Logger, m *metrics.Metrics) *Applier {
	if logger == nil {
		logger = globalLogger
	}
	return &Applier{logger: logger, metrics: m}
}

// Apply derives a new dataset from raw by running steps strictly left to right.
// raw is never modified. Unrecognized steps are skipped and reported, never fatal.
func (a *Applier) Apply(raw *model.Dataset, steps []Step) (*model.Dataset, Report) {
	result := raw.Clone()
	if result == nil {
		result = model.NewDataset()
	}

	report := Report{Steps: make([]StepOutcome, 0, len(steps))}
	for i, step := range steps {
		if step == nil {
			continue
		}
		outcome := StepOutcome{Index: i, Op: step.Kind()}
		outcome.RowsBefore, outcome.ColsBefore = result.Shape()

		switch s := step.(type) {
		case DropRowsWithNulls:
			result = dropRowsWithNulls(result, s.Subset)
			outcome.Applied = true
		case DropColumns:
			result = dropColumns(result, s.Columns)
			outcome.Applied = true
		default:
			outcome.Skipped = true
			report.Skipped++
			a.metrics.StepSkipped(string(step.Kind()))
			a.logger.WithFields(logrus.Fields{
				"diagnostic": "unknown_step_kind",
				"op":         step.Kind(),
				"step_index": i,
			}).Warn("Skipping step of unrecognized kind")
		}

		outcome.RowsAfter, outcome.ColsAfter = result.Shape()
		report.Steps = append(report.Steps, outcome)

		if outcome.Applied {
			a.logger.WithFields(logrus.Fields{
				"op":          step.Kind(),
				"step_index":  i,
				"rows_before": outcome.RowsBefore,
				"rows_after":  outcome.RowsAfter,
				"cols_after":  outcome.ColsAfter,
			}).Debug("Applied step")
		}
	}

	return result, report
}

// Apply runs steps with the package default applier
func Apply(raw *model.Dataset, steps []Step) *model.Dataset {
	ds, _ := NewApplier(nil, nil).Apply(raw, steps)
	return ds
}

// dropRowsWithNulls keeps the rows that have a value in every checked column.
// Subset names missing from the dataset are ignored.
func dropRowsWithNulls(ds *model.Dataset, subset []string) *model.Dataset {
	var checked []int
	if len(subset) == 0 {
		for i := range ds.Columns {
			checked = append(checked, i)
		}
	} else {
		for _, name := range subset {
			if idx := ds.ColumnIndex(name); idx >= 0 {
				checked = append(checked, idx)
			}
		}
	}

	rows := ds.NumRows()
	keep := make([]int, 0, rows)
	for r := 0; r < rows; r++ {
		hasNull := false
		for _, c := range checked {
			if model.IsNull(ds.Columns[c].Values[r]) {
				hasNull = true
				break
			}
		}
		if !hasNull {
			keep = append(keep, r)
		}
	}

	out := &model.Dataset{Columns: make([]model.Column, len(ds.Columns))}
	for i, col := range ds.Columns {
		values := make([]interface{}, len(keep))
		for j, r := range keep {
			values[j] = col.Values[r]
		}
		out.Columns[i] = model.Column{Name: col.Name, Values: values}
	}
	return out
}

// dropColumns removes the named columns and keeps the rest in their original order
func dropColumns(ds *model.Dataset, columns []string) *model.Dataset {
	drop := make(map[string]bool, len(columns))
	for _, name := range columns {
		drop[name] = true
	}

	out := &model.Dataset{Columns: make([]model.Column, 0, len(ds.Columns))}
	for _, col := range ds.Columns {
		if !drop[col.Name] {
			out.Columns = append(out.Columns, col)
		}
	}
	return out
}
