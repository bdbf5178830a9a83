package inspect

import (
	"sort"

	"go-etl-builder/internal/model"
	"go-etl-builder/pkg/utils"
)

const (
	maxNumericColumns     = 3
	maxCategoricalColumns = 2
	topCategories         = 10
)

// NumericSeries holds the non-null values of a numeric column
type NumericSeries struct {
	Column string    `json:"col"`
	Values []float64 `json:"values"`
}

// CategoryCounts holds the most frequent values of a categorical column
type CategoryCounts struct {
	Column string   `json:"col"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Summary is the data behind a table visualization
type Summary struct {
	Numeric     []NumericSeries  `json:"numeric"`
	Categorical []CategoryCounts `json:"categorical"`
}

// Summarize picks up to three numeric columns (for histograms) and up to two
// categorical columns (for bar charts of their top ten values).
// Columns with no non-null values are left out.
func Summarize(ds *model.Dataset) Summary {
	summary := Summary{
		Numeric:     []NumericSeries{},
		Categorical: []CategoryCounts{},
	}
	if ds == nil {
		return summary
	}

	var numericCols, categoricalCols []model.Column
	for _, col := range ds.Columns {
		switch model.InferKind(col.Values) {
		case model.KindInt64, model.KindFloat64:
			numericCols = append(numericCols, col)
		default:
			categoricalCols = append(categoricalCols, col)
		}
	}

	for i, col := range numericCols {
		if i >= maxNumericColumns {
			break
		}
		values := make([]float64, 0, len(col.Values))
		for _, v := range col.Values {
			if f, ok := utils.Numeric(v); ok {
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			continue
		}
		summary.Numeric = append(summary.Numeric, NumericSeries{Column: col.Name, Values: values})
	}

	for i, col := range categoricalCols {
		if i >= maxCategoricalColumns {
			break
		}
		if counts := countValues(col.Values, topCategories); len(counts.Labels) > 0 {
			counts.Column = col.Name
			summary.Categorical = append(summary.Categorical, counts)
		}
	}
	return summary
}

// countValues returns the n most frequent non-null values, ties broken by first appearance
func countValues(values []interface{}, n int) CategoryCounts {
	type bucket struct {
		label string
		count int
		first int
	}
	buckets := make(map[string]*bucket)
	for i, v := range values {
		if model.IsNull(v) {
			continue
		}
		label := utils.FormatValue(v)
		if b, ok := buckets[label]; ok {
			b.count++
		} else {
			buckets[label] = &bucket{label: label, count: 1, first: i}
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].first < ordered[j].first
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}

	out := CategoryCounts{Labels: make([]string, len(ordered)), Values: make([]int, len(ordered))}
	for i, b := range ordered {
		out.Labels[i] = b.label
		out.Values[i] = b.count
	}
	return out
}
