// SPDX-License-Identifier: MIT
// Package: generator
//
// errors.go — sentinel errors for the generator package.
//
// Callers branch with errors.Is; constructors add context with %w.

package generator

import "errors"

// ErrTooFewBuyers indicates n < 1.
var ErrTooFewBuyers = errors.New("generator: need at least one buyer")

// ErrTooFewGoods indicates m < 1.
var ErrTooFewGoods = errors.New("generator: need at least one good")

// ErrNeedRandSource indicates a random constructor was called without
// WithSeed or WithRand.
var ErrNeedRandSource = errors.New("generator: rng is required")

// ErrBadParameter indicates a malformed instance or a parameter outside its
// domain (e.g. high < 1 for LinearDiscrete, ragged rows in a YAML file).
var ErrBadParameter = errors.New("generator: bad parameter")
