// SPDX-License-Identifier: MIT
// Package: simulation
//
// simulation.go — the round loop and its history.
//
// Recording contract:
//   history[0] is taken in New; history[k] after the k-th successful Step
//   driven by this Simulation. A failing Step appends nothing. Snapshots are
//   forwarded to the Recorder in order, each exactly once; snapshot 0 is
//   forwarded at the start of the first Run, since New takes no context.

package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/katalvlaran/prdyn/market"
)

// Recorder receives every snapshot a Simulation takes.
type Recorder interface {
	Record(ctx context.Context, s market.Snapshot) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, s market.Snapshot) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, s market.Snapshot) error { return f(ctx, s) }

// StopReason says why Run returned.
type StopReason string

const (
	StopRounds    StopReason = "rounds"    // requested round count reached
	StopConverged StopReason = "converged" // PriceDrift fell below tolerance
	StopFailed    StopReason = "failed"    // the market failed
	StopCanceled  StopReason = "canceled"  // context ended
	StopRecorder  StopReason = "recorder"  // the Recorder returned an error
)

// Result summarizes one Run call.
type Result struct {
	Rounds   int           // successful rounds in this call
	Time     int           // market time on return
	Drift    float64       // PriceDrift of the last snapshot
	Stop     StopReason    // why Run returned
	Elapsed  time.Duration // wall time spent in Run
	Spending []float64     // per-buyer total bid after the last round
}

// Simulation drives one Market. Not safe for concurrent use.
type Simulation struct {
	mk      *market.Market
	cfg     config
	history []market.Snapshot
	flushed int // history[:flushed] already handed to the Recorder
}

// New wraps mk and records its current state as snapshot 0. A market whose
// time is not 0 is accepted with a warning; history indices are then offsets
// from that starting time.
func New(mk *market.Market, opts ...Option) (*Simulation, error) {
	if mk == nil {
		return nil, ErrNilMarket
	}
	if mk.State() != market.Ready {
		return nil, fmt.Errorf("state %s: %w", mk.State(), ErrNotReady)
	}

	sim := &Simulation{mk: mk, cfg: gatherOptions(opts...)}
	if t := mk.Time(); t != 0 {
		sim.cfg.logger.Warn("market does not start at time 0", "time", t)
	}
	sim.history = append(sim.history, mk.Snapshot())

	return sim, nil
}

// Market returns the driven market.
func (sim *Simulation) Market() *market.Market { return sim.mk }

// Run steps the market up to rounds times.
//
// It returns early, with a nil error, when the tolerance check passes. It
// returns a non-nil error when the market fails (the error from Step,
// matching market sentinels), the Recorder fails (ErrRecorder) or ctx ends.
// A Recorder error that wraps a context error stops the run as StopCanceled.
// The Result is meaningful in every case.
func (sim *Simulation) Run(ctx context.Context, rounds int) (Result, error) {
	log := sim.cfg.logger.With("rule", sim.mk.Rule().String())
	start := time.Now()
	res := Result{Stop: StopRounds}
	finish := func(reason StopReason, err error) (Result, error) {
		last := sim.history[len(sim.history)-1]
		res.Stop = reason
		res.Time = sim.mk.Time()
		res.Drift = PriceDrift(last)
		res.Spending = Spending(last.Bid)
		res.Elapsed = time.Since(start)
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return finish(StopCanceled, err)
	}
	if err := sim.flush(ctx); err != nil {
		return finish(recorderStop(err), err)
	}
	log.Debug("run started", "rounds", rounds, "time", sim.mk.Time(),
		"buyers", sim.mk.Buyers(), "goods", sim.mk.Goods())

	for r := 0; r < rounds; r++ {
		if err := ctx.Err(); err != nil {
			log.Info("run canceled", "time", sim.mk.Time(), "err", err)
			return finish(StopCanceled, err)
		}
		if err := sim.mk.Step(); err != nil {
			log.Error("market failed", "time", sim.mk.Time(), "err", err)
			return finish(StopFailed, fmt.Errorf("round %d: %w", r+1, err))
		}
		res.Rounds++
		sim.history = append(sim.history, sim.mk.Snapshot())
		if err := sim.flush(ctx); err != nil {
			log.Error("recorder failed", "time", sim.mk.Time(), "err", err)
			return finish(recorderStop(err), err)
		}

		if res.Rounds%sim.cfg.checkEvery != 0 {
			continue
		}
		drift := PriceDrift(sim.history[len(sim.history)-1])
		log.Debug("round", "time", sim.mk.Time(), "drift", drift)
		if sim.cfg.tolerance > 0 && drift < sim.cfg.tolerance {
			log.Info("converged", "time", sim.mk.Time(), "drift", drift, "tolerance", sim.cfg.tolerance)
			return finish(StopConverged, nil)
		}
	}

	res, err := finish(StopRounds, nil)
	log.Info("run finished", "time", res.Time, "rounds", res.Rounds, "drift", res.Drift, "elapsed", res.Elapsed)

	return res, err
}

// recorderStop classifies a flush error: a recorder that gave up because the
// context ended reports a cancellation, anything else a recorder failure.
func recorderStop(err error) StopReason {
	if isContextErr(err) {
		return StopCanceled
	}
	return StopRecorder
}

// flush hands every not-yet-recorded snapshot to the Recorder.
func (sim *Simulation) flush(ctx context.Context) error {
	if sim.cfg.recorder == nil {
		sim.flushed = len(sim.history)
		return nil
	}
	for ; sim.flushed < len(sim.history); sim.flushed++ {
		s := sim.history[sim.flushed]
		if err := sim.cfg.recorder.Record(ctx, s); err != nil {
			return fmt.Errorf("%w: time %d: %w", ErrRecorder, s.Time, err)
		}
	}

	return nil
}

// Len returns the number of snapshots (rounds run + 1).
func (sim *Simulation) Len() int { return len(sim.history) }

// Snapshot returns history[t]. The returned value shares storage with the
// history and must not be modified.
func (sim *Simulation) Snapshot(t int) (market.Snapshot, bool) {
	if t < 0 || t >= len(sim.history) {
		return market.Snapshot{}, false
	}
	return sim.history[t], true
}

// Last returns the most recent snapshot.
func (sim *Simulation) Last() market.Snapshot { return sim.history[len(sim.history)-1] }

// The series accessors below return one entry per snapshot; inner slices are
// shared with the history and must not be modified.

// Prices returns the price vector of every snapshot.
func (sim *Simulation) Prices() [][]float64 {
	out := make([][]float64, len(sim.history))
	for t, s := range sim.history {
		out[t] = s.Price
	}
	return out
}

// Quantities returns the allocation matrix of every snapshot.
func (sim *Simulation) Quantities() [][][]float64 {
	out := make([][][]float64, len(sim.history))
	for t, s := range sim.history {
		out[t] = s.Quantity
	}
	return out
}

// Bids returns the bid matrix of every snapshot.
func (sim *Simulation) Bids() [][][]float64 {
	out := make([][][]float64, len(sim.history))
	for t, s := range sim.history {
		out[t] = s.Bid
	}
	return out
}

// Utilities returns the per-buyer utilities of every snapshot.
func (sim *Simulation) Utilities() [][]float64 {
	out := make([][]float64, len(sim.history))
	for t, s := range sim.history {
		out[t] = s.Utility
	}
	return out
}

// Times returns the market time of every snapshot.
func (sim *Simulation) Times() []int {
	out := make([]int, len(sim.history))
	for t, s := range sim.history {
		out[t] = s.Time
	}
	return out
}
