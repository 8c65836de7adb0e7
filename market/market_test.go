// SPDX-License-Identifier: MIT
package market_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/prdyn/market"
)

const tol = 1e-12

// scenario returns the four-buyer, three-good linear fixture.
func scenario() (budget []float64, bids, utility [][]float64) {
	budget = []float64{1, 2, 3, 4}
	utility = [][]float64{
		{0, 2, 5},
		{2, 3, 4},
		{10, 4, 5},
		{2, 20, 3},
	}
	bids = [][]float64{
		{0, 1, 0},
		{0, 0, 2},
		{0, 3, 0},
		{1, 1, 2},
	}

	return budget, bids, utility
}

// mustMarket builds a market or fails the test.
func mustMarket(t *testing.T, budget []float64, bids, utility [][]float64, rule market.UpdateRule, opts ...market.Option) *market.Market {
	t.Helper()
	mk, err := market.New(budget, bids, utility, rule, opts...)
	require.NoError(t, err)

	return mk
}

// assertRoundInvariants checks positivity of prices and that every quantity
// column sums to one.
func assertRoundInvariants(t *testing.T, mk *market.Market) {
	t.Helper()
	price := mk.Price()
	qty := mk.Quantity()
	for j, p := range price {
		assert.Greater(t, p, 0.0, "price[%d] must stay positive", j)
		var col float64
		for i := range qty {
			col += qty[i][j]
		}
		assert.InDelta(t, 1.0, col, 1e-9, "quantity column %d must sum to 1", j)
	}
}

// TestNew_InitialState verifies derived prices/quantities and zero utilities.
func TestNew_InitialState(t *testing.T) {
	budget, bids, utility := scenario()
	mk := mustMarket(t, budget, bids, utility, market.Linear())

	assert.Equal(t, market.Ready, mk.State())
	assert.Equal(t, 0, mk.Time())
	assert.Equal(t, 4, mk.Buyers())
	assert.Equal(t, 3, mk.Goods())
	assert.Equal(t, []float64{1, 5, 4}, mk.Price())
	assert.Equal(t, []float64{0, 0, 0, 0}, mk.IndividualUtility())
	assert.InDelta(t, 0.6, mk.Quantity()[2][1], tol)
	assertRoundInvariants(t, mk)
}

// TestStep_LinearScenario runs five rounds of the reference fixture and pins
// the first round against hand-computed values.
func TestStep_LinearScenario(t *testing.T) {
	budget, bids, utility := scenario()
	mk := mustMarket(t, budget, bids, utility, market.Linear())

	require.NoError(t, mk.Step())
	assert.Equal(t, 1, mk.Time())
	assert.InDeltaSlice(t, []float64{0.4, 2, 2.4, 7.5}, mk.IndividualUtility(), tol)
	assert.InDeltaSlice(t, []float64{16.0 / 15, 32.0 / 15, 0.8}, mk.Bid()[3], tol)

	for r := 1; r < 5; r++ {
		require.NoError(t, mk.Step(), "round %d", r)
		assertRoundInvariants(t, mk)
	}
	assert.Equal(t, 5, mk.Time())
	// Price after round 5 is the column sum of the round-4 bids.
	assert.InDeltaSlice(t, []float64{0.7309106279096262, 7.185011006444611, 2.0840783656457624}, mk.Price(), 1e-9)
}

// TestStep_LinearBudgetConservation checks Σ_j bid[i][j] == budget[i] after
// every round for the linear rule.
func TestStep_LinearBudgetConservation(t *testing.T) {
	budget, bids, utility := scenario()
	mk := mustMarket(t, budget, bids, utility, market.Linear())

	for r := 0; r < 20; r++ {
		require.NoError(t, mk.Step())
		for i, row := range mk.Bid() {
			var s float64
			for _, b := range row {
				s += b
			}
			assert.InDelta(t, budget[i], s, 1e-9, "round %d buyer %d", r, i)
		}
		var total float64
		for _, p := range mk.Price() {
			total += p
		}
		assert.InDelta(t, 10.0, total, 1e-9, "prices sum to total budget")
	}
}

// TestStep_ZeroQuantityStaysZero checks the zero-quantity convention: buyer 0
// never bid on good 0 and values it at 0, so its bid there stays exactly 0.
func TestStep_ZeroQuantityStaysZero(t *testing.T) {
	budget, bids, utility := scenario()
	mk := mustMarket(t, budget, bids, utility, market.Linear())
	for r := 0; r < 5; r++ {
		require.NoError(t, mk.Step())
		assert.Equal(t, 0.0, mk.Bid()[0][0])
		assert.Equal(t, 0.0, mk.Bid()[1][1])
	}
}

// TestStep_DegenerateUtility places buyer 0's whole bid on good 0, which it
// weights at zero, and expects the first Step to fail for buyer 0.
func TestStep_DegenerateUtility(t *testing.T) {
	budget, _, utility := scenario()
	bids := [][]float64{
		{1, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{1, 0, 0},
	}
	mk := mustMarket(t, budget, bids, utility, market.Linear())
	before := mk.Snapshot()

	err := mk.Step()
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrDegenerateUtility)

	var de *market.DegenerateUtilityError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Buyer)
	assert.Equal(t, 0, de.Time)

	// Nothing was committed.
	assert.Equal(t, market.Failed, mk.State())
	assert.Equal(t, before, mk.Snapshot())
	assert.Equal(t, err, mk.Err())

	// Failed is terminal and keeps the cause visible.
	err = mk.Step()
	assert.ErrorIs(t, err, market.ErrMarketFailed)
	assert.ErrorIs(t, err, market.ErrDegenerateUtility)
}

// TestNew_Errors is a table of construction failures and their sentinels.
func TestNew_Errors(t *testing.T) {
	budget, bids, utility := scenario()

	tests := []struct {
		name    string
		budget  []float64
		bids    [][]float64
		utility [][]float64
		rule    market.UpdateRule
		want    error
	}{
		{"budget length", []float64{1, 2, 3}, bids, utility, market.Linear(), market.ErrDimension},
		{"bid rows", budget, bids[:3], utility, market.Linear(), market.ErrDimension},
		{"bid cols", budget, [][]float64{{0, 1}, {0, 2}, {3, 0}, {1, 1}}, utility, market.Linear(), market.ErrDimension},
		{"ragged utility", budget, bids, [][]float64{{0, 2, 5}, {2, 3}, {10, 4, 5}, {2, 20, 3}}, market.Linear(), market.ErrDimension},
		{"empty utility", nil, nil, nil, market.Linear(), market.ErrDimension},
		{"negative budget", []float64{-1, 2, 3, 4}, bids, utility, market.Linear(), market.ErrInvalidValue},
		{"nan bid", budget, [][]float64{{0, math.NaN(), 0}, {0, 0, 2}, {0, 3, 0}, {1, 1, 2}}, utility, market.Linear(), market.ErrInvalidValue},
		{"negative utility", budget, bids, [][]float64{{0, -2, 5}, {2, 3, 4}, {10, 4, 5}, {2, 20, 3}}, market.Linear(), market.ErrInvalidValue},
		{"over budget", []float64{1, 2, 3, 3.5}, bids, utility, market.Linear(), market.ErrBudgetViolation},
		{"zero alpha", budget, bids, utility, market.CES(0), market.ErrInvalidRule},
		{"alpha above one", budget, bids, utility, market.QuasiLinearGradient(1.5), market.ErrInvalidRule},
		{"grouped k > m", budget, bids, utility, market.GroupedQuasiLinear(0.5, 4), market.ErrInvalidRule},
		{"unknown kind", budget, bids, utility, market.UpdateRule{Kind: 200}, market.ErrInvalidRule},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mk, err := market.New(tc.budget, tc.bids, tc.utility, tc.rule)
			assert.Nil(t, mk)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// TestNew_BudgetViolationCarriesBuyer checks the typed error payload.
func TestNew_BudgetViolationCarriesBuyer(t *testing.T) {
	_, bids, utility := scenario()
	_, err := market.New([]float64{1, 2, 2.5, 4}, bids, utility, market.Linear())

	var bv *market.BudgetViolationError
	require.True(t, errors.As(err, &bv))
	assert.Equal(t, 2, bv.Buyer)
	assert.Equal(t, 3.0, bv.Total)
	assert.Equal(t, 2.5, bv.Budget)
}

// TestNew_ZeroStartingPrice rejects a good nobody bids on before any round.
func TestNew_ZeroStartingPrice(t *testing.T) {
	budget, _, utility := scenario()
	bids := [][]float64{
		{0, 1, 0},
		{0, 0, 2},
		{0, 3, 0},
		{0, 1, 2},
	}
	_, err := market.New(budget, bids, utility, market.Linear())
	require.ErrorIs(t, err, market.ErrDegeneratePrice)

	var dp *market.DegeneratePriceError
	require.True(t, errors.As(err, &dp))
	assert.Equal(t, 0, dp.Good)
	assert.Equal(t, 0, dp.Time)
}

// TestStep_DegeneratePriceAtRuntime drives a good to zero price: the only
// holder of good 1 values it at zero, so its next bid there vanishes and the
// following round finds good 1 unpriced.
func TestStep_DegeneratePriceAtRuntime(t *testing.T) {
	mk := mustMarket(t, []float64{1}, [][]float64{{0.5, 0.5}}, [][]float64{{1, 0}}, market.Linear())

	require.NoError(t, mk.Step())
	assert.Equal(t, [][]float64{{1, 0}}, mk.Bid())

	err := mk.Step()
	var dp *market.DegeneratePriceError
	require.True(t, errors.As(err, &dp))
	assert.Equal(t, 1, dp.Good)
	assert.Equal(t, 1, dp.Time)
	assert.Equal(t, market.Failed, mk.State())
	assert.Equal(t, 1, mk.Time())
	assert.Equal(t, []float64{0.5, 0.5}, mk.Price(), "failed round must not commit prices")
}

// TestStep_DegenerateUtilityLaterBuyer reports the lowest failing buyer index.
func TestStep_DegenerateUtilityLaterBuyer(t *testing.T) {
	budget := []float64{1, 0.5}
	utility := [][]float64{{1, 0}, {1, 0}}
	bids := [][]float64{{0.5, 0}, {0, 0.5}}
	mk := mustMarket(t, budget, bids, utility, market.Linear(), market.WithWorkers(2))

	err := mk.Step()
	var de *market.DegenerateUtilityError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Buyer)
}

// TestStep_Uninitialized guards the zero-value Market.
func TestStep_Uninitialized(t *testing.T) {
	var mk market.Market
	assert.ErrorIs(t, mk.Step(), market.ErrUninitialized)
	assert.Equal(t, market.Uninitialized, mk.State())
	assert.Nil(t, mk.Price())
	assert.Nil(t, mk.Bid())
}

// TestAccessors_CopyOut ensures neither inputs nor returned slices alias state.
func TestAccessors_CopyOut(t *testing.T) {
	budget, bids, utility := scenario()
	mk := mustMarket(t, budget, bids, utility, market.Linear())

	// Mutating the caller's inputs after New has no effect.
	budget[0] = 100
	bids[0][1] = 100
	utility[0][0] = 100
	assert.Equal(t, []float64{1, 2, 3, 4}, mk.Budget())
	assert.Equal(t, 1.0, mk.Bid()[0][1])
	assert.Equal(t, 0.0, mk.Utility()[0][0])

	// Mutating returned views has no effect.
	p := mk.Price()
	p[0] = -1
	b := mk.Bid()
	b[3][0] = -1
	q := mk.Quantity()
	q[0][1] = -1
	assert.Equal(t, []float64{1, 5, 4}, mk.Price())
	assert.Equal(t, 1.0, mk.Bid()[3][0])
	assert.Equal(t, 0.2, mk.Quantity()[0][1])
}

// TestStep_Determinism runs two identical markets and a fanned-out one and
// requires bit-identical trajectories.
func TestStep_Determinism(t *testing.T) {
	budget, _, utility := scenario()
	for _, rule := range allRules() {
		t.Run(rule.String(), func(t *testing.T) {
			cdUtil := utilityFor(rule, utility)
			start := positiveBids(budget, len(utility[0]))
			a := mustMarket(t, budget, start, cdUtil, rule)
			b := mustMarket(t, budget, start, cdUtil, rule)
			c := mustMarket(t, budget, start, cdUtil, rule, market.WithWorkers(3))
			for r := 0; r < 15; r++ {
				require.NoError(t, a.Step())
				require.NoError(t, b.Step())
				require.NoError(t, c.Step())
				assert.Equal(t, a.Snapshot(), b.Snapshot())
				assert.Equal(t, a.Snapshot(), c.Snapshot())
			}
		})
	}
}

// TestRun_Context stops on a cancelled context before stepping.
func TestRun_Context(t *testing.T) {
	budget, bids, utility := scenario()
	mk := mustMarket(t, budget, bids, utility, market.Linear())

	require.NoError(t, mk.Run(context.Background(), 3))
	assert.Equal(t, 3, mk.Time())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mk.Run(ctx, 3), context.Canceled)
	assert.Equal(t, 3, mk.Time())
}

// TestOptions_Panics checks option constructors reject nonsense eagerly.
func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { market.WithWorkers(0) })
	assert.Panics(t, func() { market.WithBudgetAudit(-1) })
	assert.Panics(t, func() { market.WithBudgetAudit(math.NaN()) })
	assert.NotPanics(t, func() { market.WithBudgetAudit(0) })
}

// TestState_String covers the state names.
func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", market.Uninitialized.String())
	assert.Equal(t, "ready", market.Ready.String())
	assert.Equal(t, "failed", market.Failed.String())
	assert.Equal(t, "state(9)", market.State(9).String())
}
