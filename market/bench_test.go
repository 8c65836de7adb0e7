// SPDX-License-Identifier: MIT
package market_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/prdyn/market"
)

// benchmarkStep builds an n×m market with strictly positive random weights
// and measures Step. Setup is excluded from timing.
func benchmarkStep(b *testing.B, n, m int, rule market.UpdateRule, opts ...market.Option) {
	rng := rand.New(rand.NewSource(1))
	budget := make([]float64, n)
	utility := make([][]float64, n)
	for i := 0; i < n; i++ {
		budget[i] = 1
		utility[i] = make([]float64, m)
		var s float64
		for j := 0; j < m; j++ {
			utility[i][j] = rng.Float64() + 0.01
			s += utility[i][j]
		}
		for j := 0; j < m; j++ {
			utility[i][j] /= s // keep rows valid as Cobb-Douglas exponents
		}
	}
	mk, err := market.New(budget, positiveBids(budget, m), utility, rule, opts...)
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err = mk.Step(); err != nil {
			b.Fatalf("Step failed: %v", err)
		}
	}
}

// BenchmarkStep_Linear100 benchmarks the linear rule on 100×100.
func BenchmarkStep_Linear100(b *testing.B) {
	benchmarkStep(b, 100, 100, market.Linear())
}

// BenchmarkStep_CES100 benchmarks the CES rule (math.Pow per entry) on 100×100.
func BenchmarkStep_CES100(b *testing.B) {
	benchmarkStep(b, 100, 100, market.CES(0.5))
}

// BenchmarkStep_CobbDouglas100 benchmarks the gradient-normalized path.
func BenchmarkStep_CobbDouglas100(b *testing.B) {
	benchmarkStep(b, 100, 100, market.CobbDouglas())
}

// BenchmarkStep_CES500Workers4 benchmarks the per-buyer fan-out on 500×500.
func BenchmarkStep_CES500Workers4(b *testing.B) {
	benchmarkStep(b, 500, 500, market.CES(0.5), market.WithWorkers(4))
}
