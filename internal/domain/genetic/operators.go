package genetic

import (
	"math/rand"
)

// tournament picks the best of TournamentSize random individuals.
func tournament(rng *rand.Rand, pop []Individual, size int) Individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		c := pop[rng.Intn(len(pop))]
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best
}

// crossoverUniform inherits each position independently from either
// parent, dedupes, and backfills with unused random numbers.
func crossoverUniform(rng *rand.Rand, a, b []int, maxNumber int) []int {
	k := len(a)
	seen := make(map[int]bool, k)
	child := make([]int, 0, k)
	for i := 0; i < k; i++ {
		gene := a[i]
		if rng.Intn(2) == 1 {
			gene = b[i]
		}
		if !seen[gene] {
			seen[gene] = true
			child = append(child, gene)
		}
	}
	for len(child) < k {
		v := rng.Intn(maxNumber) + 1
		if !seen[v] {
			seen[v] = true
			child = append(child, v)
		}
	}
	sortInts(child)
	return child
}

// crossoverUnion shuffles the union of both parents' genes and truncates
// to k, backfilling only if the union itself was short.
func crossoverUnion(rng *rand.Rand, a, b []int, maxNumber int) []int {
	k := len(a)
	seen := make(map[int]bool, k*2)
	union := make([]int, 0, k*2)
	for _, g := range a {
		if !seen[g] {
			seen[g] = true
			union = append(union, g)
		}
	}
	for _, g := range b {
		if !seen[g] {
			seen[g] = true
			union = append(union, g)
		}
	}
	rng.Shuffle(len(union), func(i, j int) { union[i], union[j] = union[j], union[i] })
	if len(union) > k {
		union = union[:k]
	}
	for len(union) < k {
		v := rng.Intn(maxNumber) + 1
		if !seen[v] {
			seen[v] = true
			union = append(union, v)
		}
	}
	sortInts(union)
	return union
}

// mutate replaces one gene with an unused random number — two genes when
// a second roll lands under the current rate, so exploration widens
// exactly when the schedule says it should.
func mutate(rng *rand.Rand, genes []int, rate float64, maxNumber int) []int {
	out := make([]int, len(genes))
	copy(out, genes)
	seen := make(map[int]bool, len(out))
	for _, g := range out {
		seen[g] = true
	}

	mutations := 1
	if rng.Float64() < rate {
		mutations = 2
	}
	for m := 0; m < mutations; m++ {
		pos := rng.Intn(len(out))
		for {
			v := rng.Intn(maxNumber) + 1
			if !seen[v] {
				delete(seen, out[pos])
				seen[v] = true
				out[pos] = v
				break
			}
		}
	}
	sortInts(out)
	return out
}

// cloneGenes copies a gene slice; elites must survive generations
// untouched by later mutation of shared backing arrays.
func cloneGenes(genes []int) []int {
	out := make([]int, len(genes))
	copy(out, genes)
	return out
}
