// SPDX-License-Identifier: MIT
package simulation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/prdyn/generator"
	"github.com/katalvlaran/prdyn/market"
	"github.com/katalvlaran/prdyn/simulation"
)

func generatedJob(seed int64, rule market.UpdateRule) simulation.Job {
	return simulation.Job{
		Name:   fmt.Sprintf("seed-%d", seed),
		Rounds: 20,
		Build: func() (*market.Market, error) {
			in, err := generator.LinearUniform(8, 5, generator.WithSeed(seed))
			if err != nil {
				return nil, err
			}
			return in.Market(rule)
		},
	}
}

// TestSweep_MatchesSequential: concurrent jobs reproduce the trajectory a
// single sequential run produces, and failures stay local to their job.
func TestSweep_MatchesSequential(t *testing.T) {
	jobs := []simulation.Job{
		generatedJob(1, market.CES(0.5)),
		{Name: "broken", Rounds: 5, Build: func() (*market.Market, error) { return degenerateMarket(t), nil }},
		generatedJob(2, market.Linear()),
		{Name: "no-builder"},
		generatedJob(3, market.QuasiLinearGradient(0.5)),
	}

	out, err := simulation.Sweep(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, out, len(jobs))

	for i, job := range jobs {
		assert.Equal(t, job.Name, out[i].Name)
	}
	assert.ErrorIs(t, out[1].Err, market.ErrDegenerateUtility)
	assert.ErrorIs(t, out[3].Err, simulation.ErrNilMarket)

	for _, i := range []int{0, 2, 4} {
		require.NoError(t, out[i].Err, jobs[i].Name)
		assert.Equal(t, 20, out[i].Result.Rounds)

		mk, err := jobs[i].Build()
		require.NoError(t, err)
		require.NoError(t, mk.Run(context.Background(), 20))
		assert.Equal(t, mk.Snapshot(), out[i].Final, jobs[i].Name)
	}
}

func TestSweep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simulation.Sweep(ctx, []simulation.Job{generatedJob(1, market.Linear())}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
