// Package prdyn simulates proportional response dynamics in Fisher markets.
//
// 🚀 What is in the box?
//
//	A deterministic, allocation-light market core plus the tooling to drive it:
//		• matrix/     — row-major dense float64 matrix, reductions, validators
//		• market/     — Market state machine and the seven update rules
//		• generator/  — seeded random instances and YAML instance files
//		• simulation/ — round loop with history, convergence stop, concurrent sweeps
//		• store/      — SQLite persistence of runs and rounds
//		• cmd/prdyn   — CLI: run, sweep, generate, history
//
// ✨ Update rules:
//
//	Linear, Cobb-Douglas, quasi-linear (utility and gradient forms), CES,
//	CES with one linear buyer, grouped quasi-linear.
//
// ⚙️ Quick start:
//
//	inst, _ := generator.LinearUniform(20, 5, generator.WithSeed(1))
//	mk, _ := inst.Market(market.CES(0.5))
//	sim, _ := simulation.New(mk, simulation.WithTolerance(1e-9))
//	res, err := sim.Run(ctx, 1000)
//
// The market core performs no I/O and no logging; failures are returned as
// errors matching the sentinels in market/errors.go.
package prdyn
