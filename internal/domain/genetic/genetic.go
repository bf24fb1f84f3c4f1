// Package genetic evolves candidate combinations against the feature
// snapshot. The optimizer is fully deterministic for a given seeded RNG:
// initialization, selection, crossover, and mutation all draw from the
// one *rand.Rand the caller injects — never the global source.
package genetic

import (
	"math/rand"
)

// PenaltyFloor is the fitness assigned to statistically invalid
// combinations. They stay in the population for diversity but cannot win
// selection against any normally-scored individual.
const PenaltyFloor = 0.01

// Config holds the evolution tunables. Zero fields take the defaults.
type Config struct {
	PopulationMin   int     // default 80
	PopulationMax   int     // default 200
	Generations     int     // default 40
	CrossoverRate   float64 // default 0.85
	MutationInitial float64 // default 0.25, decays to MutationFinal
	MutationFinal   float64 // default 0.05
	ElitismFraction float64 // default 0.10
	TournamentSize  int     // default 4

	// UnionCrossover switches from uniform (per-position) crossover to
	// union-shuffle-truncate crossover.
	UnionCrossover bool

	// Trace, when set, receives the best fitness after each generation.
	Trace func(generation int, bestFitness float64)
}

// DefaultConfig returns the calibrated evolution defaults.
func DefaultConfig() Config {
	return Config{
		PopulationMin:   80,
		PopulationMax:   200,
		Generations:     40,
		CrossoverRate:   0.85,
		MutationInitial: 0.25,
		MutationFinal:   0.05,
		ElitismFraction: 0.10,
		TournamentSize:  4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PopulationMin == 0 {
		c.PopulationMin = d.PopulationMin
	}
	if c.PopulationMax == 0 {
		c.PopulationMax = d.PopulationMax
	}
	if c.Generations == 0 {
		c.Generations = d.Generations
	}
	if c.CrossoverRate == 0 {
		c.CrossoverRate = d.CrossoverRate
	}
	if c.MutationInitial == 0 {
		c.MutationInitial = d.MutationInitial
	}
	if c.MutationFinal == 0 {
		c.MutationFinal = d.MutationFinal
	}
	if c.ElitismFraction == 0 {
		c.ElitismFraction = d.ElitismFraction
	}
	if c.TournamentSize == 0 {
		c.TournamentSize = d.TournamentSize
	}
	return c
}

// Individual is one candidate combination: sorted, duplicate-free genes
// plus the cached fitness.
type Individual struct {
	Genes   []int
	Fitness float64
}

// ScoredCombination is one returned result with its per-feature breakdown.
type ScoredCombination struct {
	Numbers       []int
	Fitness       float64
	FeatureScores map[string]float64
}

// Result is what Optimize hands back: the ranked distinct combinations
// and the per-feature contribution totals accumulated while scoring them.
// Contributions are an explicit return value — the optimizer keeps no
// cross-call state.
type Result struct {
	Combinations  []ScoredCombination
	Contributions map[string]float64
}

// dynamicPopulationSize grows the population with the history so richer
// feature sets get a wider search, clamped to the configured bounds.
func dynamicPopulationSize(historyLen int, cfg Config) int {
	size := 60 + historyLen/4
	if size < cfg.PopulationMin {
		size = cfg.PopulationMin
	}
	if size > cfg.PopulationMax {
		size = cfg.PopulationMax
	}
	return size
}

// mutationRate decays linearly from the initial (exploration) to the
// final (exploitation) rate across the generation count.
func mutationRate(generation int, cfg Config) float64 {
	if cfg.Generations <= 1 {
		return cfg.MutationFinal
	}
	t := float64(generation) / float64(cfg.Generations-1)
	return cfg.MutationInitial + (cfg.MutationFinal-cfg.MutationInitial)*t
}

// geneKey builds a dedup key from sorted genes.
func geneKey(genes []int) string {
	// Genes are ≤ 64 small ints; a byte string is cheap and exact.
	b := make([]byte, 0, len(genes)*2)
	for _, g := range genes {
		b = append(b, byte(g>>8), byte(g))
	}
	return string(b)
}

// sampleDistinct draws k distinct values from pool using rng, falling back
// to the full number range when the pool is too small.
func sampleDistinct(rng *rand.Rand, pool []int, k, maxNumber int) []int {
	seen := make(map[int]bool, k)
	out := make([]int, 0, k)
	// Shuffled copy of the pool first.
	shuffled := make([]int, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, v := range shuffled {
		if len(out) == k {
			break
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for len(out) < k {
		v := rng.Intn(maxNumber) + 1
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sortInts(out)
	return out
}

func sortInts(a []int) {
	// Insertion sort: gene slices are tiny and this avoids pulling sort
	// into the hot evaluation path.
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
