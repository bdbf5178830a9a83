package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/metrics"
	"go-etl-builder/internal/model"
)

// ErrRawDataUnavailable means the originally ingested dataset could not be loaded for replay
var ErrRawDataUnavailable = errors.New("raw data unavailable")

// RawLoader retrieves the originally ingested dataset of a source
type RawLoader interface {
	LoadRaw(ctx context.Context, sourceID int64) (*model.Dataset, error)
}

// Workspace holds the current dataset of every open source
type Workspace interface {
	Lookup(sourceID int64) (*model.Dataset, bool)
	Put(sourceID int64, ds *model.Dataset)
}

// ReplayResult is what a successful replay produced
type ReplayResult struct {
	SourceID int64          `json:"source_id"`
	Steps    int            `json:"steps"`
	Dataset  *model.Dataset `json:"-"`
	Report   Report         `json:"report"`
	Duration time.Duration  `json:"duration"`
}

// Replayer regenerates a source's current dataset from its raw data and recorded steps
type Replayer struct {
	store     *Store
	loader    RawLoader
	workspace Workspace
	applier   *Applier
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

// NewReplayer wires a replayer; logger and metrics may be nil
func NewReplayer(store *Store, loader RawLoader, ws Workspace, logger *logrus.Logger, m *metrics.Metrics) *Replayer {
	if logger == nil {
		logger = globalLogger
	}
	return &Replayer{
		store:     store,
		loader:    loader,
		workspace: ws,
		applier:   NewApplier(logger, m),
		logger:    logger,
		metrics:   m,
	}
}

// Replay applies every recorded step of the source to its raw dataset and,
// only once that succeeded, replaces the source's current dataset in the workspace.
func (r *Replayer) Replay(ctx context.Context, sourceID int64) (*ReplayResult, error) {
	start := time.Now()
	steps := r.store.Get(sourceID)
	log := r.logger.WithField("source_id", sourceID)

	raw, err := r.loader.LoadRaw(ctx, sourceID)
	if err == nil && raw == nil {
		err = errors.New("loader returned no dataset")
	}
	if err != nil {
		r.metrics.ReplayFinished(metrics.OutcomeRawUnavailable, time.Since(start))
		log.WithError(err).Error("Replay failed, raw data unavailable")
		return nil, fmt.Errorf("%w: source %d: %v", ErrRawDataUnavailable, sourceID, err)
	}

	ds, report := r.applier.Apply(raw, steps)
	r.workspace.Put(sourceID, ds)

	elapsed := time.Since(start)
	r.metrics.ReplayFinished(metrics.OutcomeSuccess, elapsed)

	rows, cols := ds.Shape()
	log.WithFields(logrus.Fields{
		"steps":   len(steps),
		"skipped": report.Skipped,
		"rows":    rows,
		"columns": cols,
	}).Infof("Replayed pipeline in %v", elapsed)

	return &ReplayResult{
		SourceID: sourceID,
		Steps:    len(steps),
		Dataset:  ds,
		Report:   report,
		Duration: elapsed,
	}, nil
}

// Recorder applies a step to the source's current dataset and records it.
// It is the interactive path: the recorded step is applied exactly the way replay applies it.
type Recorder struct {
	store     *Store
	workspace Workspace
	applier   *Applier
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

// NewRecorder wires a recorder; logger and metrics may be nil
func NewRecorder(store *Store, ws Workspace, logger *logrus.Logger, m *metrics.Metrics) *Recorder {
	if logger == nil {
		logger = globalLogger
	}
	return &Recorder{
		store:     store,
		workspace: ws,
		applier:   NewApplier(logger, m),
		logger:    logger,
		metrics:   m,
	}
}

// ErrNoDataset is returned when the source has no current dataset to work on
var ErrNoDataset = errors.New("source has no dataset in the workspace")

// Execute shapes the request into a step, applies it to the current dataset,
// stores the result and appends the step. ErrNoOp leaves everything untouched.
func (r *Recorder) Execute(sourceID int64, kind StepKind, params Params) (*model.Dataset, Step, error) {
	current, ok := r.workspace.Lookup(sourceID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: source %d", ErrNoDataset, sourceID)
	}

	step, err := Record(kind, params)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, ErrNoOp) {
			reason = "empty"
		}
		r.metrics.StepRejected(string(kind), reason)
		r.logger.WithFields(logrus.Fields{
			"source_id": sourceID,
			"op":        kind,
		}).WithError(err).Info("Step request rejected")
		return current, nil, err
	}

	ds, _ := r.applier.Apply(current, []Step{step})
	r.workspace.Put(sourceID, ds)
	r.store.Append(sourceID, step)
	r.metrics.StepRecorded(string(kind))

	r.logger.WithFields(logrus.Fields{
		"source_id":  sourceID,
		"op":         kind,
		"step_index": r.store.Len(sourceID) - 1,
	}).Info("Recorded step")
	return ds, step, nil
}
