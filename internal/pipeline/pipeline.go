// Package pipeline runs a full conversion: parse, fold, materialize and
// optionally write to a sink.
package pipeline

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/fold"
	"github.com/itsmostafa/bomfold/internal/materialize"
	"github.com/itsmostafa/bomfold/internal/metrics"
	"github.com/itsmostafa/bomfold/internal/parse"
	"github.com/itsmostafa/bomfold/internal/rules"
	"github.com/itsmostafa/bomfold/internal/sink"
)

// Request describes one conversion. Exactly one of Table, Path or Reader
// supplies the input.
type Request struct {
	// Table skips parsing entirely.
	Table *flat.Table
	// Path is read by extension.
	Path string
	// Reader is read as Format.
	Reader io.Reader
	Format parse.Format
	// Sheet selects the worksheet for xlsx input.
	Sheet string

	// Rules defaults to rules.Default when nil.
	Rules *rules.Rules
	// Sink is optional.
	Sink sink.Writer
}

// Stats summarizes a run.
type Stats struct {
	Rows     int
	Roots    int
	Nodes    int
	Depth    int
	BOMs     int
	Entries  int
	Duration float64 // seconds
}

// Result is everything a run produced.
type Result struct {
	RunID  string
	Table  *flat.Table
	Forest *fold.Forest
	Output *materialize.Output
	Stats  Stats
}

// Runner executes requests. The zero value is usable.
type Runner struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Run executes the request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	timer := metrics.NewTimer()

	result, err := r.run(ctx, logger, req)
	duration := timer.Duration()

	if err != nil {
		r.Metrics.RecordRun(0, 0, 0, duration, err)
		logger.Error("conversion failed",
			zap.String("code", string(bomerr.CodeOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	result.RunID = runID
	result.Stats.Duration = duration.Seconds()
	r.Metrics.RecordRun(result.Stats.Rows, result.Stats.BOMs, result.Stats.Entries, duration, nil)
	logger.Info("conversion complete",
		zap.Int("rows", result.Stats.Rows),
		zap.Int("boms", result.Stats.BOMs),
		zap.Int("entries", result.Stats.Entries),
		zap.Duration("duration", duration),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger *zap.Logger, req Request) (*Result, error) {
	rs := req.Rules
	if rs == nil {
		rs = rules.Default()
	}
	logger.Debug("rules resolved", zap.Stringer("rules", rs))

	// * read input
	table, err := load(req, rs)
	if err != nil {
		return nil, err
	}
	logger.Debug("input parsed", zap.Int("rows", len(table.Records)), zap.Strings("keys", table.Keys))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// * fold records into a forest
	forest, err := fold.Transform(table, rs.Policy)
	if err != nil {
		return nil, err
	}
	logger.Debug("records folded",
		zap.Int("roots", len(forest.TopLevelNodes)),
		zap.Int("depth", forest.Depth()),
	)

	// * materialize item sync records
	out, err := materialize.Materialize(forest, rs.Output)
	if err != nil {
		return nil, err
	}

	// * write to sink
	if req.Sink != nil {
		if err := req.Sink.Write(ctx, out); err != nil {
			return nil, err
		}
		logger.Debug("output written", zap.String("sink", sinkName(req.Sink)))
	}

	return &Result{
		Table:  table,
		Forest: forest,
		Output: out,
		Stats: Stats{
			Rows:    len(table.Records),
			Roots:   len(forest.TopLevelNodes),
			Nodes:   forest.Size(),
			Depth:   forest.Depth(),
			BOMs:    len(out.BOMs),
			Entries: len(out.BOMEntries),
		},
	}, nil
}

func load(req Request, rs *rules.Rules) (*flat.Table, error) {
	opts := parse.Options{Sheet: req.Sheet, Mapping: rs.TypeMapping}
	switch {
	case req.Table != nil:
		return req.Table, nil
	case req.Path != "":
		return parse.File(req.Path, opts)
	case req.Reader != nil:
		return parse.Read(req.Reader, req.Format, opts)
	default:
		return nil, bomerr.InvalidArgument("no input given")
	}
}

func sinkName(w sink.Writer) string {
	switch s := w.(type) {
	case *sink.CSVDir:
		return "csv:" + s.Dir
	case *sink.XLSX:
		return "xlsx:" + s.Path
	case *sink.JSONFile:
		return "json:" + s.Path
	case *sink.Arrow:
		return "arrow:" + s.Dir
	case *sink.ObjectStore:
		return "s3://" + s.Bucket + "/" + s.Prefix
	default:
		return "writer"
	}
}
