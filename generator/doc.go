// Package generator builds Fisher-market instances: budgets, starting bids
// and utility parameters ready for market.New.
//
// Random constructors are deterministic: they draw only from the *rand.Rand
// supplied via WithSeed or WithRand and fail with ErrNeedRandSource when
// neither is given. No global source is ever touched.
//
//	inst, err := generator.LinearUniform(50, 20, generator.WithSeed(7))
//	if err != nil { ... }
//	mk, err := inst.Market(market.CES(0.5))
//
// Hand-authored instances are read from YAML:
//
//	budget:  [1, 2]
//	utility: [[2, 1], [1, 2]]
//	bids:    [[0.5, 0.5], [1, 1]]   # optional; equal split when omitted
package generator
