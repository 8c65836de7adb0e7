// Package simulation drives a market.Market for a number of rounds and keeps
// the full trajectory.
//
// A Simulation records snapshot 0 when it is created and one snapshot per
// successful round after that, so history index t is market time t (for a
// market that starts at time 0). Each snapshot is optionally forwarded to a
// Recorder, which is how the store package persists runs.
//
//	sim, err := simulation.New(mk, simulation.WithLogger(log), simulation.WithTolerance(1e-9))
//	res, err := sim.Run(ctx, 1000)
//	prices := sim.Prices() // len res.Rounds+1
//
// Sweep runs many independent markets concurrently, one goroutine per market.
package simulation
