// SPDX-License-Identifier: MIT
// Package: simulation
//
// sweep.go — independent markets run concurrently.
//
// Each job builds, owns and steps its own Market inside a single goroutine;
// nothing is shared between jobs except the logger. Market failures are
// per-job outcomes, reported in JobResult.Err. Only context cancellation
// aborts the whole sweep.

package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/prdyn/market"
)

// Job describes one market to simulate.
type Job struct {
	Name    string
	Build   func() (*market.Market, error)
	Rounds  int
	Options []Option // per-job options, applied after the sweep-wide ones
}

// JobResult is the outcome of one Job; results keep the order of jobs.
type JobResult struct {
	Name   string
	Result Result
	Final  market.Snapshot
	Err    error
}

// Sweep runs jobs with at most workers goroutines (workers < 1 means one per
// job). opts apply to every job. It returns ctx's error if the context ends
// before all jobs are done; results of finished jobs are still filled in.
func Sweep(ctx context.Context, jobs []Job, workers int, opts ...Option) ([]JobResult, error) {
	start := time.Now()
	log := gatherOptions(opts...).logger
	out := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for idx := range jobs {
		if gctx.Err() != nil {
			break
		}
		job := jobs[idx]
		out[idx].Name = job.Name
		g.Go(func() error {
			out[idx] = runJob(gctx, job, opts)
			if isContextErr(out[idx].Err) {
				return out[idx].Err
			}
			return nil
		})
	}
	err := g.Wait()

	var failed int
	for _, r := range out {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("sweep complete", "jobs", len(jobs), "failed", failed, "duration", time.Since(start))

	if err != nil {
		return out, err
	}
	return out, ctx.Err()
}

func runJob(ctx context.Context, job Job, opts []Option) JobResult {
	res := JobResult{Name: job.Name}
	if job.Build == nil {
		res.Err = fmt.Errorf("job %q: no builder: %w", job.Name, ErrNilMarket)
		return res
	}
	mk, err := job.Build()
	if err != nil {
		res.Err = fmt.Errorf("job %q: build: %w", job.Name, err)
		return res
	}

	all := append(append([]Option(nil), opts...), job.Options...)
	sim, err := New(mk, all...)
	if err != nil {
		res.Err = fmt.Errorf("job %q: %w", job.Name, err)
		return res
	}
	sim.cfg.logger = sim.cfg.logger.With(logAttrs(job.Name, mk)...)

	res.Result, err = sim.Run(ctx, job.Rounds)
	res.Final = sim.Last()
	if err != nil {
		res.Err = fmt.Errorf("job %q: %w", job.Name, err)
	}

	return res
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// logAttrs is the common attribute set for per-job log lines.
func logAttrs(name string, mk *market.Market) []any {
	return []any{slog.String("job", name), slog.Int("buyers", mk.Buyers()), slog.Int("goods", mk.Goods())}
}
