package genetic

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/ports"
)

// Optimize evolves a population against the feature snapshot and returns
// the top count distinct combinations. The caller supplies the seeded RNG
// (see engine.Seed); equal inputs always produce equal outputs.
//
// The optimizer never touches the weight store — learning happens in the
// learner package after an external evaluation.
func Optimize(fs features.Set, weights map[string]float64, cfg Config, rng *rand.Rand, count int) (Result, error) {
	cfg = cfg.withDefaults()
	game := fs.Game

	if count < 1 {
		return Result{}, fmt.Errorf("combination count must be positive, got %d", count)
	}
	if uint64(count) > game.Combinations() {
		return Result{}, fmt.Errorf("%w: %d requested, C(%d,%d)=%d possible",
			ports.ErrTooManyCombinations, count, game.MaxNumber, game.PerDraw, game.Combinations())
	}

	popSize := dynamicPopulationSize(fs.HistoryLen, cfg)
	pop := initPopulation(rng, &fs, popSize)
	for i := range pop {
		pop[i].Fitness, _ = evaluate(pop[i].Genes, &fs, weights)
	}
	sortByFitness(pop)

	eliteCount := int(cfg.ElitismFraction * float64(popSize))
	if eliteCount < 1 {
		eliteCount = 1
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		rate := mutationRate(gen, cfg)
		next := make([]Individual, 0, popSize)

		// Elites carry over untouched, so best fitness never regresses.
		for i := 0; i < eliteCount && i < len(pop); i++ {
			next = append(next, Individual{Genes: cloneGenes(pop[i].Genes), Fitness: pop[i].Fitness})
		}

		for len(next) < popSize {
			parentA := tournament(rng, pop, cfg.TournamentSize)
			parentB := tournament(rng, pop, cfg.TournamentSize)

			child := cloneGenes(parentA.Genes)
			if rng.Float64() < cfg.CrossoverRate {
				if cfg.UnionCrossover {
					child = crossoverUnion(rng, parentA.Genes, parentB.Genes, game.MaxNumber)
				} else {
					child = crossoverUniform(rng, parentA.Genes, parentB.Genes, game.MaxNumber)
				}
			}
			if rng.Float64() < rate {
				child = mutate(rng, child, rate, game.MaxNumber)
			}

			fitness, _ := evaluate(child, &fs, weights)
			next = append(next, Individual{Genes: child, Fitness: fitness})
		}

		pop = next
		sortByFitness(pop)
		if cfg.Trace != nil {
			cfg.Trace(gen, pop[0].Fitness)
		}
	}

	return collectResults(rng, &fs, weights, pop, count), nil
}

// collectResults dedupes the final population by gene set, tops the list
// up from the seed pools and then pure random sampling, and accumulates
// the returned combinations' feature contributions.
func collectResults(rng *rand.Rand, fs *features.Set, weights map[string]float64, pop []Individual, count int) Result {
	seen := make(map[string]bool, count)
	picked := make([]Individual, 0, count)

	for _, ind := range pop {
		if len(picked) == count {
			break
		}
		key := geneKey(ind.Genes)
		if !seen[key] {
			seen[key] = true
			picked = append(picked, ind)
		}
	}

	// Top up from the seed pools first, then pure random, then a
	// systematic sweep as the guaranteed terminator.
	builders := seedPools()
	attempts := 0
	for len(picked) < count && attempts < 200*count {
		var genes []int
		if attempts < 50*count {
			genes = builders[attempts%len(builders)](rng, fs)
		} else {
			genes = sampleDistinct(rng, nil, fs.Game.PerDraw, fs.Game.MaxNumber)
		}
		attempts++
		key := geneKey(genes)
		if seen[key] {
			continue
		}
		seen[key] = true
		fitness, _ := evaluate(genes, fs, weights)
		picked = append(picked, Individual{Genes: genes, Fitness: fitness})
	}
	if len(picked) < count {
		picked = fillSystematic(fs, weights, seen, picked, count)
	}

	sortByFitness(picked)

	contributions := make(map[string]float64, len(weights))
	combos := make([]ScoredCombination, len(picked))
	for i, ind := range picked {
		_, scores := evaluate(ind.Genes, fs, weights)
		for name, score := range scores {
			contributions[name] += weights[name] * score
		}
		combos[i] = ScoredCombination{
			Numbers:       cloneGenes(ind.Genes),
			Fitness:       ind.Fitness,
			FeatureScores: scores,
		}
	}
	return Result{Combinations: combos, Contributions: contributions}
}

// fillSystematic enumerates combinations lexicographically until the
// request is met. Only reachable when random sampling keeps colliding,
// i.e. count is close to C(N,k); enumeration makes the "never return
// fewer than requested" guarantee unconditional.
func fillSystematic(fs *features.Set, weights map[string]float64, seen map[string]bool, picked []Individual, count int) []Individual {
	k := fs.Game.PerDraw
	n := fs.Game.MaxNumber
	genes := make([]int, k)
	for i := range genes {
		genes[i] = i + 1
	}
	for {
		key := geneKey(genes)
		if !seen[key] {
			seen[key] = true
			fitness, _ := evaluate(genes, fs, weights)
			picked = append(picked, Individual{Genes: cloneGenes(genes), Fitness: fitness})
			if len(picked) == count {
				return picked
			}
		}
		// Next lexicographic combination.
		i := k - 1
		for i >= 0 && genes[i] == n-(k-1-i) {
			i--
		}
		if i < 0 {
			return picked
		}
		genes[i]++
		for j := i + 1; j < k; j++ {
			genes[j] = genes[j-1] + 1
		}
	}
}

func sortByFitness(pop []Individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		if pop[i].Fitness != pop[j].Fitness {
			return pop[i].Fitness > pop[j].Fitness
		}
		// Deterministic order among equals keeps runs reproducible.
		return lessGenes(pop[i].Genes, pop[j].Genes)
	})
}

func lessGenes(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
