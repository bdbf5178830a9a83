package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WriteMode says how a load treats an existing target table
type WriteMode string

const (
	ModeOverwrite WriteMode = "overwrite"
	ModeAppend    WriteMode = "append"
)

// DefaultTargetDB is the placeholder target written into exported documents
const DefaultTargetDB = "default"

// ParseWriteMode normalizes user input; ok is false when the input was not a known mode
// and the overwrite default was used instead.
func ParseWriteMode(s string) (WriteMode, bool) {
	switch WriteMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeOverwrite, "":
		return ModeOverwrite, true
	case ModeAppend:
		return ModeAppend, true
	default:
		return ModeOverwrite, false
	}
}

// SourceRef identifies the source a document was built from
type SourceRef struct {
	SourceID int64   `json:"source_id"`
	Name     *string `json:"name"`
}

// LoadTarget describes where the replayed dataset should be written
type LoadTarget struct {
	TargetDB    string    `json:"target_db"`
	TargetTable *string   `json:"target_table"`
	Mode        WriteMode `json:"mode"`
}

// Document is the exported, self-describing form of a source's pipeline.
// It is derived data; the Store stays authoritative.
type Document struct {
	PipelineName string     `json:"pipeline_name"`
	Source       SourceRef  `json:"source"`
	Steps        StepList   `json:"steps"`
	Load         LoadTarget `json:"load"`
}

// PipelineName derives the document name from the source name or its ID
func PipelineName(sourceID int64, sourceName *string) string {
	if sourceName != nil && *sourceName != "" {
		return *sourceName
	}
	return fmt.Sprintf("source_%d_pipeline", sourceID)
}

// BuildConfig wraps a source's steps with metadata. Steps are kept exactly as given.
func BuildConfig(sourceID int64, sourceName *string, steps []Step) Document {
	list := make(StepList, len(steps))
	copy(list, steps)

	var name *string
	if sourceName != nil {
		n := *sourceName
		name = &n
	}

	return Document{
		PipelineName: PipelineName(sourceID, sourceName),
		Source: SourceRef{
			SourceID: sourceID,
			Name:     name,
		},
		Steps: list,
		Load: LoadTarget{
			TargetDB:    DefaultTargetDB,
			TargetTable: nil,
			Mode:        ModeOverwrite,
		},
	}
}

// ParseConfig decodes an exported document
func ParseConfig(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}
	if doc.Steps == nil {
		doc.Steps = StepList{}
	}
	if doc.Load.Mode == "" {
		doc.Load.Mode = ModeOverwrite
	}
	if doc.Load.Mode != ModeOverwrite && doc.Load.Mode != ModeAppend {
		return nil, fmt.Errorf("invalid load mode %q", doc.Load.Mode)
	}
	return &doc, nil
}

// MarshalIndent renders the document the way it is shown to users
func (d Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
