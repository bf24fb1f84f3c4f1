package genetic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/domain/learner"
	"github.com/drawlab/sorteo/internal/ports"
)

func testFeatures(t *testing.T, histLen int, seed int64) (features.Set, draw.Game) {
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
	return features.Extract(hist, game, nil), game
}

func lightConfig() Config {
	return Config{
		PopulationMin: 40,
		PopulationMax: 60,
		Generations:   10,
	}
}

func TestOptimize_ReturnsValidDistinctCombinations(t *testing.T) {
	fs, game := testFeatures(t, 200, 7)
	weights := learner.UniformWeights(learner.FeatureNames)
	rng := rand.New(rand.NewSource(42))

	result, err := Optimize(fs, weights, lightConfig(), rng, 5)
	require.NoError(t, err)
	require.Len(t, result.Combinations, 5)

	seen := map[string]bool{}
	for _, c := range result.Combinations {
		assert.True(t, game.ValidCombination(c.Numbers), "invalid combination %v", c.Numbers)
		assert.IsIncreasing(t, c.Numbers)
		key := geneKey(c.Numbers)
		assert.False(t, seen[key], "duplicate combination %v", c.Numbers)
		seen[key] = true
		assert.Greater(t, c.Fitness, 0.0)
	}
}

func TestOptimize_RankedByFitness(t *testing.T) {
	fs, _ := testFeatures(t, 200, 11)
	weights := learner.UniformWeights(learner.FeatureNames)
	rng := rand.New(rand.NewSource(1))

	result, err := Optimize(fs, weights, lightConfig(), rng, 8)
	require.NoError(t, err)

	for i := 1; i < len(result.Combinations); i++ {
		assert.GreaterOrEqual(t,
			result.Combinations[i-1].Fitness, result.Combinations[i].Fitness)
	}
}

func TestOptimize_DeterministicForSeed(t *testing.T) {
	fs, _ := testFeatures(t, 150, 13)
	weights := learner.UniformWeights(learner.FeatureNames)

	a, err := Optimize(fs, weights, lightConfig(), rand.New(rand.NewSource(99)), 4)
	require.NoError(t, err)
	b, err := Optimize(fs, weights, lightConfig(), rand.New(rand.NewSource(99)), 4)
	require.NoError(t, err)

	require.Len(t, b.Combinations, len(a.Combinations))
	for i := range a.Combinations {
		assert.Equal(t, a.Combinations[i].Numbers, b.Combinations[i].Numbers)
		assert.InDelta(t, a.Combinations[i].Fitness, b.Combinations[i].Fitness, 1e-12)
	}
	assert.Equal(t, a.Contributions, b.Contributions)
}

func TestOptimize_BestFitnessNeverRegresses(t *testing.T) {
	// Elites carry over untouched, so the best fitness of each
	// generation is at least the best of the one before.
	fs, _ := testFeatures(t, 200, 7)
	weights := learner.UniformWeights(learner.FeatureNames)
	rng := rand.New(rand.NewSource(42))

	cfg := lightConfig()
	cfg.Generations = 25
	var trace []float64
	cfg.Trace = func(generation int, best float64) {
		trace = append(trace, best)
	}

	_, err := Optimize(fs, weights, cfg, rng, 1)
	require.NoError(t, err)
	require.Len(t, trace, cfg.Generations)
	for g := 1; g < len(trace); g++ {
		assert.GreaterOrEqual(t, trace[g], trace[g-1], "generation %d", g)
	}
}

func TestOptimize_CountValidation(t *testing.T) {
	fs, _ := testFeatures(t, 100, 17)
	weights := learner.UniformWeights(learner.FeatureNames)
	rng := rand.New(rand.NewSource(3))

	_, err := Optimize(fs, weights, lightConfig(), rng, 0)
	require.Error(t, err)

	_, err = Optimize(fs, weights, lightConfig(), rng, 20000000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrTooManyCombinations)
}

func TestOptimize_ContributionsCoverFeatures(t *testing.T) {
	fs, _ := testFeatures(t, 200, 19)
	weights := learner.UniformWeights(learner.FeatureNames)
	rng := rand.New(rand.NewSource(5))

	result, err := Optimize(fs, weights, lightConfig(), rng, 3)
	require.NoError(t, err)

	for _, name := range learner.FeatureNames {
		_, ok := result.Contributions[name]
		assert.True(t, ok, "missing contribution for %s", name)
	}
}

func TestEvaluate_PenalizesDegenerateShapes(t *testing.T) {
	fs, _ := testFeatures(t, 300, 23)
	weights := learner.UniformWeights(learner.FeatureNames)

	// Six consecutive numbers in one decade, all low: every shape check
	// trips, so the penalty floor applies.
	fitness, _ := evaluate([]int{1, 2, 3, 4, 5, 6}, &fs, weights)
	assert.InDelta(t, PenaltyFloor, fitness, 1e-12)

	balanced := []int{4, 13, 22, 29, 37, 46}
	normal, scores := evaluate(balanced, &fs, weights)
	assert.Greater(t, normal, PenaltyFloor)
	assert.Len(t, scores, len(learner.FeatureNames))
	for name, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0, name)
		assert.LessOrEqual(t, s, 1.0, name)
	}
}

func TestDynamicPopulationSize(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.PopulationMin, dynamicPopulationSize(10, cfg))
	assert.Equal(t, 110, dynamicPopulationSize(200, cfg)) // 60 + 200/4
	assert.Equal(t, cfg.PopulationMax, dynamicPopulationSize(10000, cfg))
}

func TestMutationRate_DecaysLinearly(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, cfg.MutationInitial, mutationRate(0, cfg), 1e-12)
	assert.InDelta(t, cfg.MutationFinal, mutationRate(cfg.Generations-1, cfg), 1e-12)
	assert.Greater(t, mutationRate(5, cfg), mutationRate(30, cfg))
}

func TestOperators_PreserveValidity(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	game, err := draw.GameByKey("primitiva")
	require.NoError(t, err)

	a := []int{1, 5, 12, 23, 34, 45}
	b := []int{2, 5, 13, 24, 35, 46}

	for i := 0; i < 100; i++ {
		child := crossoverUniform(rng, a, b, game.MaxNumber)
		assert.True(t, game.ValidCombination(child), "uniform crossover %v", child)

		child = crossoverUnion(rng, a, b, game.MaxNumber)
		assert.True(t, game.ValidCombination(child), "union crossover %v", child)

		mutated := mutate(rng, a, 0.5, game.MaxNumber)
		assert.True(t, game.ValidCombination(mutated), "mutate %v", mutated)
	}
}

func TestTournament_FavorsFitness(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	pop := []Individual{
		{Genes: []int{1, 2, 3, 4, 5, 6}, Fitness: 0.1},
		{Genes: []int{7, 8, 9, 10, 11, 12}, Fitness: 0.9},
	}

	wins := 0
	for i := 0; i < 200; i++ {
		if tournament(rng, pop, 2).Fitness > 0.5 {
			wins++
		}
	}
	// With k=2 the stronger individual wins every bout it enters.
	assert.Greater(t, wins, 140)
}
