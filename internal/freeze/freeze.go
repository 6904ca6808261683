// Package freeze is the run orchestrator: it plans a request into
// partitions, skips whatever the sink already has on disk, collects and
// writes everything else under a bounded concurrency limit, and produces
// the run's report.
package freeze

import (
	"context"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/crypto-data/freeze/internal/planner"
	"github.com/crypto-data/freeze/internal/report"
	"github.com/crypto-data/freeze/internal/runner"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/sink"
	"github.com/crypto-data/freeze/internal/source"
)

// Options bundles everything a run needs beyond the planner.Request
// itself: where to read/write from, and what to echo into the report.
type Options struct {
	Source        *source.Source
	Tables        map[schema.Datatype]*schema.Table
	Sink          *sink.FileSink
	ReportDir     string
	Timestamp     string // caller-supplied so the package never calls time.Now
	EngineVersion string
	CLIArgv       []string
	ParsedArgs    map[string]any
	Progress      bool
}

// Summary is the outcome handed back to the CLI layer for exit-code
// purposes: non-empty Errored means some partitions failed, even though
// the run as a whole completed.
type Summary struct {
	Completed []string
	Errored   []report.ErroredPath
	NSkipped  int
}

// partitionFiles is the set of output paths one planned Work item would
// produce, one per its datatypes.
type partitionFiles struct {
	work  planner.Work
	stub  string
	paths map[schema.Datatype]string
}

// Run plans req, skips any partition whose every output file already
// exists (unless Sink.Overwrite), collects and writes the rest under a
// semaphore bounded by Source.MaxConcurrentChunks, and writes the JSON
// report before and after.
func Run(ctx context.Context, req planner.Request, opts Options) (Summary, error) {
	work, err := planner.Plan(ctx, opts.Source, req)
	if err != nil {
		return Summary{}, err
	}

	all := make([]partitionFiles, 0, len(work))
	for _, w := range work {
		stub, err := w.Partition.Stub()
		if err != nil {
			return Summary{}, err
		}
		paths := make(map[schema.Datatype]string, len(w.Datatypes))
		for _, dt := range w.Datatypes {
			id, err := opts.Sink.ID(dt, stub, "")
			if err != nil {
				return Summary{}, err
			}
			paths[dt] = id
		}
		all = append(all, partitionFiles{work: w, stub: stub, paths: paths})
	}

	pending := make([]partitionFiles, 0, len(all))
	summary := Summary{}
	for _, pf := range all {
		complete := true
		if !opts.Sink.Overwrite {
			for _, path := range pf.paths {
				exists, err := opts.Sink.Exists(path)
				if err != nil {
					return Summary{}, err
				}
				if !exists {
					complete = false
					break
				}
			}
		} else {
			complete = false
		}
		if complete {
			summary.NSkipped += len(pf.paths)
			continue
		}
		pending = append(pending, pf)
	}

	var incompletePath string
	if len(pending) > 0 {
		incompletePath, err = report.WriteIncomplete(opts.ReportDir, opts.Timestamp, report.Report{
			EngineVersion: opts.EngineVersion,
			Command:       opts.CLIArgv,
			ParsedArgs:    opts.ParsedArgs,
			NSkipped:      summary.NSkipped,
		})
		if err != nil {
			return Summary{}, err
		}
	}

	var bar *progressbar.ProgressBar
	if opts.Progress && len(pending) > 0 {
		bar = progressbar.Default(int64(len(pending)), "collecting")
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(opts.Source.MaxConcurrentChunks)
	g, gctx := errgroup.WithContext(ctx)
	for _, pf := range pending {
		pf := pf
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			frames, err := runner.CollectPartition(gctx, opts.Source, pf.work, opts.Tables)
			mu.Lock()
			defer mu.Unlock()
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				for _, path := range pf.paths {
					summary.Errored = append(summary.Errored, report.ErroredPath{Path: path, Error: err.Error()})
				}
				return nil
			}
			for dt, path := range pf.paths {
				frames[dt].FillConstant("chain_id", opts.Source.ChainID)
				if werr := opts.Sink.Write(gctx, frames[dt], path); werr != nil {
					summary.Errored = append(summary.Errored, report.ErroredPath{Path: path, Error: werr.Error()})
					continue
				}
				summary.Completed = append(summary.Completed, path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	if err := report.WriteFinal(opts.ReportDir, opts.Timestamp, report.Report{
		EngineVersion: opts.EngineVersion,
		Command:       opts.CLIArgv,
		ParsedArgs:    opts.ParsedArgs,
		Completed:     summary.Completed,
		Errored:       summary.Errored,
		NSkipped:      summary.NSkipped,
	}, incompletePath); err != nil {
		return summary, err
	}
	return summary, nil
}
