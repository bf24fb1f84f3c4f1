package ensemble

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/domain/genetic"
	"github.com/drawlab/sorteo/internal/domain/learner"
)

func testInputs(t *testing.T, histLen int, seed int64) (features.Set, []genetic.ScoredCombination, draw.Game) {
	t.Helper()
	game, err := draw.GameByKey("primitiva")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(seed))
	hist := make(draw.History, 0, histLen)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < histLen; i++ {
		seen := map[int]bool{}
		nums := make([]int, 0, game.PerDraw)
		for len(nums) < game.PerDraw {
			v := rng.Intn(game.MaxNumber) + 1
			if !seen[v] {
				seen[v] = true
				nums = append(nums, v)
			}
		}
		hist = append(hist, draw.NewDraw(date.AddDate(0, 0, -3*i), nums, nil))
	}
	fs := features.Extract(hist, game, nil)

	result, err := genetic.Optimize(fs, learner.UniformWeights(learner.FeatureNames),
		genetic.Config{PopulationMin: 40, PopulationMax: 60, Generations: 8},
		rand.New(rand.NewSource(seed+1)), 5)
	require.NoError(t, err)

	return fs, result.Combinations, game
}

func TestVote_OutcomeShape(t *testing.T) {
	fs, combos, game := testInputs(t, 200, 7)
	weights := learner.UniformWeights(learner.StrategyNames)

	outcome := Vote(&fs, combos, weights)

	assert.True(t, game.ValidCombination(outcome.Numbers), "principal %v", outcome.Numbers)
	assert.Len(t, outcome.NextByVotes, game.PerDraw)
	assert.Len(t, outcome.TopConsensus, game.PerDraw)
	assert.Len(t, outcome.Blend, game.PerDraw)
	assert.Len(t, outcome.Pool, balancedPoolSize)
	assert.GreaterOrEqual(t, outcome.Confidence, 0.0)
	assert.LessOrEqual(t, outcome.Confidence, 1.0)
	assert.NotEmpty(t, outcome.Tallies)
}

func TestVote_TalliesOrderedAndBounded(t *testing.T) {
	fs, combos, _ := testInputs(t, 200, 11)
	weights := learner.UniformWeights(learner.StrategyNames)

	outcome := Vote(&fs, combos, weights)

	for i := 1; i < len(outcome.Tallies); i++ {
		a, b := outcome.Tallies[i-1], outcome.Tallies[i]
		assert.GreaterOrEqual(t, a.Votes*a.Consensus, b.Votes*b.Consensus)
	}
	for _, tally := range outcome.Tallies {
		assert.GreaterOrEqual(t, tally.Consensus, 0.0)
		assert.LessOrEqual(t, tally.Consensus, 1.0)
		assert.NotEmpty(t, tally.Strategies)
	}
}

func TestVote_Deterministic(t *testing.T) {
	fs, combos, _ := testInputs(t, 150, 13)
	weights := learner.UniformWeights(learner.StrategyNames)

	first := Vote(&fs, combos, weights)
	for trial := 0; trial < 20; trial++ {
		again := Vote(&fs, combos, weights)
		require.Equal(t, first.Numbers, again.Numbers, "trial %d", trial)
		require.Equal(t, first.Pool, again.Pool, "trial %d", trial)
		require.Equal(t, first.Tallies, again.Tallies, "trial %d", trial)
	}
}

func TestVote_ConsensusOrdering(t *testing.T) {
	// Broader strategy agreement at an equal-or-better mean rank can
	// never yield a lower consensus score.
	fs, combos, _ := testInputs(t, 200, 7)
	weights := learner.UniformWeights(learner.StrategyNames)

	outcome := Vote(&fs, combos, weights)
	require.NotEmpty(t, outcome.Tallies)

	for _, a := range outcome.Tallies {
		for _, b := range outcome.Tallies {
			if a.Strategies >= b.Strategies && a.MeanRank <= b.MeanRank {
				assert.GreaterOrEqual(t, a.Consensus, b.Consensus,
					"number %d (%d strategies, rank %.2f) vs number %d (%d strategies, rank %.2f)",
					a.Number, a.Strategies, a.MeanRank, b.Number, b.Strategies, b.MeanRank)
			}
		}
	}
}

func TestStrategyCorrelation_StableAcrossInvocations(t *testing.T) {
	// Correlation ballots sum several phi terms per number; the totals
	// must not depend on the accumulation order.
	fs, _, _ := testInputs(t, 200, 13)
	require.NotEmpty(t, fs.Correlation)

	first := strategyCorrelation(&fs)
	for trial := 0; trial < 20; trial++ {
		require.Equal(t, first, strategyCorrelation(&fs), "trial %d", trial)
	}
}

func TestVote_PrincipalIsBalanced(t *testing.T) {
	fs, combos, game := testInputs(t, 250, 17)
	weights := learner.UniformWeights(learner.StrategyNames)

	outcome := Vote(&fs, combos, weights)

	even, low := 0, 0
	for _, n := range outcome.Numbers {
		if n%2 == 0 {
			even++
		}
		if n <= game.MaxNumber/2 {
			low++
		}
	}
	assert.Greater(t, even, 0, "all-odd selection %v", outcome.Numbers)
	assert.Less(t, even, game.PerDraw, "all-even selection %v", outcome.Numbers)
	assert.Greater(t, low, 0, "all-high selection %v", outcome.Numbers)
	assert.Less(t, low, game.PerDraw, "all-low selection %v", outcome.Numbers)
}

func TestVote_AlternatesDisjointFromPrincipal(t *testing.T) {
	fs, combos, _ := testInputs(t, 200, 19)
	weights := learner.UniformWeights(learner.StrategyNames)

	outcome := Vote(&fs, combos, weights)

	principal := map[int]bool{}
	for _, n := range outcome.Numbers {
		principal[n] = true
	}
	for _, n := range outcome.NextByVotes {
		assert.False(t, principal[n], "next-by-votes reuses %d", n)
	}
}

func TestVote_WeightsShiftTheOutcome(t *testing.T) {
	fs, combos, _ := testInputs(t, 250, 23)

	uniform := Vote(&fs, combos, learner.UniformWeights(learner.StrategyNames))

	skewed := map[string]float64{}
	for _, name := range learner.StrategyNames {
		skewed[name] = 0.02
	}
	skewed["frequency"] = 0.60
	rest := (1.0 - 0.60 - 0.02*float64(len(learner.StrategyNames)-1)) / float64(len(learner.StrategyNames)-1)
	for _, name := range learner.StrategyNames {
		if name != "frequency" {
			skewed[name] = 0.02 + rest
		}
	}
	biased := Vote(&fs, combos, skewed)

	// The tally of the top frequency pick must not shrink when the
	// frequency strategy dominates.
	topFreq := topNumbers(toFloat(fs.Frequency), 1)[0]
	assert.GreaterOrEqual(t, tallyVotes(biased, topFreq), tallyVotes(uniform, topFreq))
}

func tallyVotes(o Outcome, n int) float64 {
	for _, t := range o.Tallies {
		if t.Number == n {
			return t.Votes
		}
	}
	return 0
}

func toFloat(m map[int]int) map[int]float64 {
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

func TestStrategyPicks_AllStrategiesPresent(t *testing.T) {
	fs, combos, game := testInputs(t, 200, 29)

	picks := StrategyPicks(&fs, combos, game.PerDraw)

	require.Len(t, picks, len(learner.StrategyNames))
	for _, name := range learner.StrategyNames {
		nums, ok := picks[name]
		require.True(t, ok, "missing strategy %s", name)
		assert.LessOrEqual(t, len(nums), game.PerDraw, name)
		seen := map[int]bool{}
		for _, n := range nums {
			assert.False(t, seen[n], "%s repeats %d", name, n)
			seen[n] = true
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, game.MaxNumber)
		}
	}
}

func TestMinMax_FlatScoresGoToZero(t *testing.T) {
	flat := map[int]float64{1: 2.0, 2: 2.0, 3: 2.0}
	norm := minMax(flat)
	for _, v := range norm {
		assert.Zero(t, v)
	}

	spread := minMax(map[int]float64{1: 0, 2: 5, 3: 10})
	assert.InDelta(t, 0.0, spread[1], 1e-12)
	assert.InDelta(t, 0.5, spread[2], 1e-12)
	assert.InDelta(t, 1.0, spread[3], 1e-12)
}
