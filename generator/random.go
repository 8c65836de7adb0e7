// SPDX-License-Identifier: MIT
// Package: generator
//
// random.go — seeded random instance constructors.
//
// Every constructor follows the same two stages:
//   Stage 1: validate (n, m, params, rng presence), in that order.
//   Stage 2: draw utility rows, normalize each to sum 1, derive bids as
//            budget·w / (slack·Σw).
//
// Draw order is row-major, so a given seed always yields the same instance.

package generator

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/prdyn/matrix"
)

// LinearUniform draws utility weights from Unif[0,1), normalized per row.
// Complexity: O(n·m).
func LinearUniform(n, m int, opts ...Option) (Instance, error) {
	cfg := newGenConfig(opts...)
	if err := checkSize(n, m, cfg); err != nil {
		return Instance{}, fmt.Errorf("LinearUniform: %w", err)
	}

	return cfg.build(n, m, func(r *rand.Rand) float64 { return r.Float64() })
}

// LinearDiscrete draws integer utility weights from {0,…,high-1}. A row that
// comes out all zero gets a 1 at a random position. Rows are then normalized.
// high=2 yields 0/1 weights with equal probability.
// Complexity: O(n·m).
func LinearDiscrete(n, m, high int, opts ...Option) (Instance, error) {
	cfg := newGenConfig(opts...)
	if high < 1 {
		return Instance{}, fmt.Errorf("LinearDiscrete: high=%d < 1: %w", high, ErrBadParameter)
	}
	if err := checkSize(n, m, cfg); err != nil {
		return Instance{}, fmt.Errorf("LinearDiscrete: %w", err)
	}

	return cfg.build(n, m, func(r *rand.Rand) float64 { return float64(r.Intn(high)) })
}

// CobbDouglas draws Cobb-Douglas exponents; each row sums to 1.
// Complexity: O(n·m).
func CobbDouglas(n, m int, opts ...Option) (Instance, error) {
	cfg := newGenConfig(opts...)
	if err := checkSize(n, m, cfg); err != nil {
		return Instance{}, fmt.Errorf("CobbDouglas: %w", err)
	}

	// Exponents stay strictly positive.
	return cfg.build(n, m, func(r *rand.Rand) float64 { return r.Float64() + 1e-3 })
}

func checkSize(n, m int, cfg genConfig) error {
	if n < 1 {
		return fmt.Errorf("n=%d: %w", n, ErrTooFewBuyers)
	}
	if m < 1 {
		return fmt.Errorf("m=%d: %w", m, ErrTooFewGoods)
	}
	if cfg.rng == nil {
		return ErrNeedRandSource
	}

	return nil
}

// build fills an instance using draw for each weight. The weight matrix is
// drawn into a Dense, normalized with NormalizeRowsL1 and scaled into bids.
func (cfg genConfig) build(n, m int, draw func(*rand.Rand) float64) (Instance, error) {
	w, err := matrix.NewDense(n, m)
	if err != nil {
		return Instance{}, err
	}

	var i, j int
	for i = 0; i < n; i++ {
		var s float64
		for j = 0; j < m; j++ {
			v := draw(cfg.rng)
			if err = w.Set(i, j, v); err != nil {
				return Instance{}, err
			}
			s += v
		}
		if s == 0 {
			if err = w.Set(i, cfg.rng.Intn(m), 1); err != nil {
				return Instance{}, err
			}
		}
	}
	w.NormalizeRowsL1()

	bids := w.Clone()
	for i = 0; i < n; i++ {
		row := bids.RowView(i)
		for j = range row {
			row[j] = cfg.budget * row[j] / cfg.bidSlack
		}
	}

	in := Instance{
		Budget:  make([]float64, n),
		Bids:    bids.ToRows(),
		Utility: w.ToRows(),
	}
	for i = range in.Budget {
		in.Budget[i] = cfg.budget
	}

	return in, nil
}
