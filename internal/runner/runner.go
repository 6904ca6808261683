// Package runner executes one planned partition: it drives a datatype's
// (or MetaCollector's) Extract/Transform pair across every block or
// transaction in the partition and returns the populated Frames.
//
// Extract and Transform run as a two-stage pipeline connected by a
// channel of capacity one, mirroring the source engine's block collection
// loop: one goroutine issues RPC calls ahead of the frame-building
// goroutine, but never more than a single result ahead of it, bounding
// how much decoded-but-not-yet-pushed data can pile up in memory.
package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/planner"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// CollectPartition runs w's collector(s) against src and returns one Frame
// per requested datatype, each built against the caller-resolved Table for
// that datatype.
func CollectPartition(ctx context.Context, src *source.Source, w planner.Work, tables map[schema.Datatype]*schema.Table) (map[schema.Datatype]*dataframe.Frame, error) {
	frames := make(map[schema.Datatype]*dataframe.Frame, len(w.Datatypes))
	for _, dt := range w.Datatypes {
		t, ok := tables[dt]
		if !ok {
			return nil, errs.Collect("no resolved table for requested datatype")
		}
		frames[dt] = dataframe.New(t)
	}

	var err error
	switch {
	case w.Fused != nil:
		err = collectFusedByBlock(ctx, src, w, frames)
	case len(w.Datatypes) == 1:
		err = collectSingle(ctx, src, w, frames[w.Datatypes[0]])
	default:
		err = errs.Collect("multiple datatypes requested without a fusing MetaCollector")
	}
	if err != nil {
		return nil, err
	}
	for dt, f := range frames {
		if verr := f.Validate(); verr != nil {
			return nil, errs.DataFrame(schemaName(dt) + ": " + verr.Error())
		}
	}
	return frames, nil
}

func schemaName(dt schema.Datatype) string {
	if d, err := schema.Lookup(dt); err == nil {
		return d.Name
	}
	return "unknown datatype"
}

func collectSingle(ctx context.Context, src *source.Source, w planner.Work, f *dataframe.Frame) error {
	dt := w.Datatypes[0]
	c := collect.Lookup(dt)
	if c == nil {
		return errs.Collect("no collector registered for " + schemaName(dt))
	}
	switch {
	case c.ByRangeImpl != nil:
		resp, err := c.ByRangeImpl.Extract(ctx, src, w.Partition)
		if err != nil {
			return err
		}
		return c.ByRangeImpl.Transform(f, w.Partition, resp)
	case c.ByTxImpl != nil && (w.Partition.Transactions != nil || c.ByBlockImpl == nil):
		return collectByTransaction(ctx, src, w, c, f)
	case c.ByBlockImpl != nil:
		return collectByBlock(ctx, src, w, c, f)
	default:
		return errs.Collect(schemaName(dt) + " has no collection strategy registered")
	}
}

type blockResult struct {
	blockNumber uint64
	response    any
	err         error
}

func collectByBlock(ctx context.Context, src *source.Source, w planner.Work, c *collect.Collector, f *dataframe.Frame) error {
	blocks := w.Partition.BlockNumbers()
	ch := make(chan blockResult, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		for _, bn := range blocks {
			resp, err := c.ByBlockImpl.Extract(gctx, src, w.Partition, bn)
			select {
			case ch <- blockResult{blockNumber: bn, response: resp, err: err}:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err != nil && !c.Lenient {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for r := range ch {
			if r.err != nil {
				if c.Lenient {
					continue
				}
				return r.err
			}
			if err := c.ByBlockImpl.Transform(f, w.Partition, r.blockNumber, r.response); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

type txResult struct {
	hash     []byte
	response any
	err      error
}

func collectByTransaction(ctx context.Context, src *source.Source, w planner.Work, c *collect.Collector, f *dataframe.Frame) error {
	hashes := w.Partition.TransactionHashes()
	ch := make(chan txResult, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		for _, h := range hashes {
			resp, err := c.ByTxImpl.Extract(gctx, src, w.Partition, h)
			select {
			case ch <- txResult{hash: h, response: resp, err: err}:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err != nil && !c.Lenient {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for r := range ch {
			if r.err != nil {
				if c.Lenient {
					continue
				}
				return r.err
			}
			if err := c.ByTxImpl.Transform(f, w.Partition, r.hash, r.response); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

func collectFusedByBlock(ctx context.Context, src *source.Source, w planner.Work, frames map[schema.Datatype]*dataframe.Frame) error {
	blocks := w.Partition.BlockNumbers()
	ch := make(chan blockResult, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		for _, bn := range blocks {
			resp, err := w.Fused.Extract(gctx, src, w.Partition, bn)
			select {
			case ch <- blockResult{blockNumber: bn, response: resp, err: err}:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for r := range ch {
			if r.err != nil {
				return r.err
			}
			if err := w.Fused.Transform(frames, w.Partition, r.blockNumber, r.response); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
