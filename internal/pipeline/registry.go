package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOp means the request carried nothing to record. Callers treat it as "no change".
	ErrNoOp = errors.New("empty step request, nothing recorded")
	// ErrUnknownKind is returned when recording a kind outside the vocabulary
	ErrUnknownKind = errors.New("unknown step kind")
	// ErrMalformedStep is returned when a serialized step of a known kind has invalid parameters
	ErrMalformedStep = errors.New("malformed step")
)

// Params is the request shape for recording a step. Each kind reads only its own field.
type Params struct {
	Subset  []string `json:"subset,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// Record shapes a step request into a well-formed Step.
// Column names are not checked against any dataset; that happens at apply time.
func Record(kind StepKind, params Params) (Step, error) {
	switch kind {
	case KindDropRowsWithNulls:
		return NewDropRowsWithNulls(params.Subset), nil
	case KindDropColumns:
		return NewDropColumns(params.Columns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NewDropRowsWithNulls records a null-row drop. An empty subset means every column.
func NewDropRowsWithNulls(subset []string) Step {
	if len(subset) == 0 {
		return DropRowsWithNulls{}
	}
	return DropRowsWithNulls{Subset: copyStrings(subset)}
}

// NewDropColumns records a column drop. An empty list is rejected with ErrNoOp.
func NewDropColumns(columns []string) (Step, error) {
	if len(columns) == 0 {
		return nil, ErrNoOp
	}
	return DropColumns{Columns: copyStrings(columns)}, nil
}

// copyStrings detaches a step from the caller's slice so recorded steps never change
func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
