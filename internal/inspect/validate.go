// Package inspect profiles datasets: per-column validation reports and the
// summaries behind table visualizations.
package inspect

import (
	"fmt"
	"math"

	"go-etl-builder/internal/model"
	"go-etl-builder/pkg/utils"
)

// sampleSize is how many distinct non-null values a column report shows
const sampleSize = 3

// ColumnReport describes one column of a dataset
type ColumnReport struct {
	Name         string   `json:"name"`
	Dtype        string   `json:"dtype"`
	NullCount    int      `json:"null_count"`
	NullPct      float64  `json:"null_pct"`
	SampleValues []string `json:"sample_values"`
}

// Report is the validation result of a whole dataset
type Report struct {
	RowCount       int            `json:"row_count"`
	Columns        []ColumnReport `json:"columns"`
	MissingColumns []string       `json:"missing_columns,omitempty"`
	Valid          bool           `json:"valid"`
}

// ProfileDataset reports dtype, null count, null percentage and a few sample values per column
func ProfileDataset(ds *model.Dataset) Report {
	report := Report{
		RowCount: ds.NumRows(),
		Columns:  make([]ColumnReport, 0, ds.NumColumns()),
		Valid:    true,
	}
	if ds == nil {
		return report
	}

	for _, col := range ds.Columns {
		report.Columns = append(report.Columns, profileColumn(col))
	}
	return report
}

func profileColumn(col model.Column) ColumnReport {
	cr := ColumnReport{
		Name:         col.Name,
		Dtype:        model.InferKind(col.Values),
		SampleValues: []string{},
	}

	seen := make(map[string]bool, sampleSize)
	for _, v := range col.Values {
		if model.IsNull(v) {
			cr.NullCount++
			continue
		}
		if len(cr.SampleValues) < sampleSize {
			s := utils.FormatValue(v)
			if !seen[s] {
				seen[s] = true
				cr.SampleValues = append(cr.SampleValues, s)
			}
		}
	}

	if total := len(col.Values); total > 0 {
		cr.NullPct = math.Round(float64(cr.NullCount)/float64(total)*100*100) / 100
	}
	return cr
}

// CheckRequiredColumns returns the required names absent from the dataset, in the order given
func CheckRequiredColumns(ds *model.Dataset, required []string) []string {
	missing := []string{}
	for _, name := range required {
		if ds.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Validate profiles the dataset and checks column presence
func Validate(ds *model.Dataset, required []string) (Report, error) {
	if ds == nil {
		return Report{}, fmt.Errorf("no dataset to validate")
	}
	report := ProfileDataset(ds)
	if len(required) > 0 {
		report.MissingColumns = CheckRequiredColumns(ds, required)
		report.Valid = len(report.MissingColumns) == 0
	}
	return report, nil
}
