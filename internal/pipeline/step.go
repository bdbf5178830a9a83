package pipeline

import (
	"encoding/json"
	"fmt"
)

// StepKind names a recordable operation. It is the "op" field of a serialized step.
type StepKind string

const (
	KindDropRowsWithNulls StepKind = "drop_rows_with_nulls"
	KindDropColumns       StepKind = "drop_columns"
)

// KnownKinds lists the vocabulary this version can record and replay
var KnownKinds = []StepKind{KindDropRowsWithNulls, KindDropColumns}

// IsKnown reports whether the kind belongs to the recorded vocabulary
func (k StepKind) IsKnown() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Step is one recorded transformation. The set of implementations is closed:
// DropRowsWithNulls, DropColumns and UnknownStep.
type Step interface {
	Kind() StepKind
	isStep()
}

// DropRowsWithNulls removes rows holding an absent value in any Subset column,
// or in any column at all when Subset is empty.
type DropRowsWithNulls struct {
	Subset []string
}

// DropColumns removes the named columns
type DropColumns struct {
	Columns []string
}

// UnknownStep carries a step whose op this version does not recognize.
// It is only produced by decoding and is skipped at apply time.
type UnknownStep struct {
	Op     StepKind
	Params map[string]interface{}
}

func (DropRowsWithNulls) Kind() StepKind { return KindDropRowsWithNulls }
func (DropColumns) Kind() StepKind       { return KindDropColumns }
func (u UnknownStep) Kind() StepKind     { return u.Op }

func (DropRowsWithNulls) isStep() {}
func (DropColumns) isStep()       {}
func (UnknownStep) isStep()       {}

// MarshalJSON writes the flat form {"op": "drop_rows_with_nulls", "subset": [...]}.
// subset is omitted when the step applies to every column.
func (s DropRowsWithNulls) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Op     StepKind `json:"op"`
		Subset []string `json:"subset,omitempty"`
	}{s.Kind(), s.Subset})
}

// MarshalJSON writes the flat form {"op": "drop_columns", "columns": [...]}
func (s DropColumns) MarshalJSON() ([]byte, error) {
	columns := s.Columns
	if columns == nil {
		columns = []string{}
	}
	return json.Marshal(struct {
		Op      StepKind `json:"op"`
		Columns []string `json:"columns"`
	}{s.Kind(), columns})
}

// MarshalJSON writes the op back with its parameters untouched
func (u UnknownStep) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(u.Params)+1)
	for k, v := range u.Params {
		fields[k] = v
	}
	fields["op"] = u.Op
	return json.Marshal(fields)
}

// StepList is an ordered step sequence with a flat JSON encoding
type StepList []Step

// MarshalJSON encodes every step in order; a nil list encodes as []
func (l StepList) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, len(l))
	for i, step := range l {
		b, err := json.Marshal(step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		raw[i] = b
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes flat steps. Unknown ops become UnknownStep;
// a known op with malformed parameters fails with ErrMalformedStep.
func (l *StepList) UnmarshalJSON(data []byte) error {
	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to decode steps: %w", err)
	}

	steps := make(StepList, 0, len(items))
	for i, fields := range items {
		step, err := DecodeStep(fields)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	*l = steps
	return nil
}

// DecodeStep builds a step from its flat field map
func DecodeStep(fields map[string]interface{}) (Step, error) {
	opValue, ok := fields["op"]
	if !ok {
		return nil, fmt.Errorf("%w: missing op", ErrMalformedStep)
	}
	op, ok := opValue.(string)
	if !ok || op == "" {
		return nil, fmt.Errorf("%w: op must be a non-empty string", ErrMalformedStep)
	}

	kind := StepKind(op)
	if !kind.IsKnown() {
		params := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			if k != "op" {
				params[k] = v
			}
		}
		return UnknownStep{Op: kind, Params: params}, nil
	}

	var params Params
	var err error
	switch kind {
	case KindDropRowsWithNulls:
		params.Subset, err = stringList(fields, "subset")
	case KindDropColumns:
		params.Columns, err = stringList(fields, "columns")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedStep, kind, err)
	}

	step, err := Record(kind, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedStep, kind, err)
	}
	return step, nil
}

// stringList reads an optional list of strings; absent and null read as nil
func stringList(fields map[string]interface{}, key string) ([]string, error) {
	value, ok := fields[key]
	if !ok || value == nil {
		return nil, nil
	}
	items, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be a list of column names", key)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}
