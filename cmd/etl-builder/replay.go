package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-etl-builder/internal/config"
	"go-etl-builder/internal/export"
	"go-etl-builder/internal/ingest"
	"go-etl-builder/internal/logging"
	"go-etl-builder/internal/pipeline"
	"go-etl-builder/internal/store"
)

// replayOptions are the inputs of an offline replay
type replayOptions struct {
	PipelinePath string
	RawPath      string
	SkipRows     int
	OutPath      string
	// Load writes the result to the table named in the document's load section
	Load bool
}

// replayOutcome summarizes an offline replay
type replayOutcome struct {
	Document   *pipeline.Document
	Report     pipeline.Report
	Export     *export.Result
	RowsLoaded int
}

func replayCmd(configPath *string) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply an exported pipeline config to a raw file",
		Long: `Replay reads a pipeline configuration exported by the API, applies its
steps to the given raw CSV or JSON file and writes the result. With --load
the result is also written to the table named in the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, closer, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer closer.Close()
			pipeline.SetGlobalLogger(logger)

			out, err := runReplay(cmd.Context(), cfg, opts, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %s: %d steps (%d skipped), %d records written to %s\n",
				out.Document.PipelineName, len(out.Document.Steps), out.Report.Skipped,
				out.Export.RecordCount, out.Export.Path)
			if opts.Load {
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s\n", out.RowsLoaded, *out.Document.Load.TargetTable)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.PipelinePath, "pipeline", "p", "", "Exported pipeline config (JSON)")
	cmd.Flags().StringVarP(&opts.RawPath, "raw", "r", "", "Raw CSV or JSON file")
	cmd.Flags().IntVar(&opts.SkipRows, "skip-rows", 0, "Leading lines to skip before the CSV header")
	cmd.Flags().StringVarP(&opts.OutPath, "out", "o", "", "Output file (.csv or .json)")
	cmd.Flags().BoolVar(&opts.Load, "load", false, "Also load into the table named in the config")
	_ = cmd.MarkFlagRequired("pipeline")
	_ = cmd.MarkFlagRequired("raw")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runReplay(ctx context.Context, cfg *config.Config, opts replayOptions, logger *logrus.Logger) (*replayOutcome, error) {
	data, err := os.ReadFile(opts.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	doc, err := pipeline.ParseConfig(data)
	if err != nil {
		return nil, err
	}
	if opts.Load && (doc.Load.TargetTable == nil || *doc.Load.TargetTable == "") {
		return nil, fmt.Errorf("pipeline %s has no load.target_table", doc.PipelineName)
	}

	f, err := os.Open(opts.RawPath)
	if err != nil {
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	defer f.Close()
	raw, err := ingest.Read(f, ingest.DetectSourceType(opts.RawPath), ingest.Options{SkipRows: opts.SkipRows})
	if err != nil {
		return nil, fmt.Errorf("read raw file: %w", err)
	}

	ds, report := pipeline.NewApplier(logger, nil).Apply(raw, doc.Steps)
	rows, cols := ds.Shape()
	logger.WithFields(logrus.Fields{
		"pipeline": doc.PipelineName,
		"steps":    len(doc.Steps),
		"skipped":  report.Skipped,
		"rows":     rows,
		"columns":  cols,
	}).Info("Applied pipeline")

	res, err := export.ToFile(opts.OutPath, ds)
	if err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	out := &replayOutcome{Document: doc, Report: report, Export: res}

	if opts.Load {
		db, err := store.Open(cfg.Database.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if out.RowsLoaded, err = db.LoadDataset(ctx, ds, *doc.Load.TargetTable, doc.Load.Mode); err != nil {
			return nil, fmt.Errorf("load %s: %w", *doc.Load.TargetTable, err)
		}
	}
	return out, nil
}
