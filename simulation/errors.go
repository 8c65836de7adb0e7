// SPDX-License-Identifier: MIT
// Package: simulation
//
// errors.go — sentinel errors for the simulation harness.

package simulation

import "errors"

var (
	// ErrNilMarket indicates New was given a nil *market.Market.
	ErrNilMarket = errors.New("simulation: market is nil")

	// ErrNotReady indicates New was given a market that cannot Step
	// (uninitialized or already failed).
	ErrNotReady = errors.New("simulation: market is not ready")

	// ErrRecorder wraps failures returned by a Recorder.
	ErrRecorder = errors.New("simulation: recorder failed")
)
