package genetic

import (
	"math/rand"
	"sort"

	"github.com/drawlab/sorteo/internal/domain/features"
)

// poolBuilder produces one seeded individual from a feature-derived
// candidate pool. Init splits the population evenly across the builders
// and pads with pure random individuals when a pool runs short.
type poolBuilder func(rng *rand.Rand, fs *features.Set) []int

// seedPools is the fixed builder roster: frequency leaders, longest gaps,
// recent trend, overdue cycles, two blends, a companion-graph walk, and
// pure random.
func seedPools() []poolBuilder {
	return []poolBuilder{
		poolTopFrequency,
		poolTopGap,
		poolTopTrend,
		poolTopCycle,
		poolCycleFrequency,
		poolFrequencyCold,
		poolCompanionWalk,
		poolRandom,
	}
}

// initPopulation fills a population of size from the seed pools.
func initPopulation(rng *rand.Rand, fs *features.Set, size int) []Individual {
	builders := seedPools()
	pop := make([]Individual, 0, size)
	perPool := size / len(builders)
	if perPool < 1 {
		perPool = 1
	}
	for _, build := range builders {
		for i := 0; i < perPool && len(pop) < size; i++ {
			pop = append(pop, Individual{Genes: build(rng, fs)})
		}
	}
	for len(pop) < size {
		pop = append(pop, Individual{Genes: poolRandom(rng, fs)})
	}
	return pop
}

// rankedByInt returns all numbers ordered by an int-valued metric,
// descending, lower number first on ties.
func rankedByInt(metric map[int]int, maxNumber int) []int {
	nums := numberRange(maxNumber)
	sort.Slice(nums, func(i, j int) bool {
		if metric[nums[i]] != metric[nums[j]] {
			return metric[nums[i]] > metric[nums[j]]
		}
		return nums[i] < nums[j]
	})
	return nums
}

func rankedByFloat(metric map[int]float64, maxNumber int) []int {
	nums := numberRange(maxNumber)
	sort.Slice(nums, func(i, j int) bool {
		if metric[nums[i]] != metric[nums[j]] {
			return metric[nums[i]] > metric[nums[j]]
		}
		return nums[i] < nums[j]
	})
	return nums
}

func numberRange(maxNumber int) []int {
	nums := make([]int, maxNumber)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// candidateWidth is how deep into a ranking a pool samples: wide enough
// for variety, narrow enough to stay on-signal.
func candidateWidth(fs *features.Set) int {
	w := fs.Game.PerDraw * 3
	if w > fs.Game.MaxNumber {
		w = fs.Game.MaxNumber
	}
	return w
}

func poolTopFrequency(rng *rand.Rand, fs *features.Set) []int {
	ranked := rankedByInt(fs.Frequency, fs.Game.MaxNumber)
	return sampleDistinct(rng, ranked[:candidateWidth(fs)], fs.Game.PerDraw, fs.Game.MaxNumber)
}

func poolTopGap(rng *rand.Rand, fs *features.Set) []int {
	ranked := rankedByInt(fs.Gap, fs.Game.MaxNumber)
	return sampleDistinct(rng, ranked[:candidateWidth(fs)], fs.Game.PerDraw, fs.Game.MaxNumber)
}

func poolTopTrend(rng *rand.Rand, fs *features.Set) []int {
	ranked := rankedByInt(fs.Trend, fs.Game.MaxNumber)
	return sampleDistinct(rng, ranked[:candidateWidth(fs)], fs.Game.PerDraw, fs.Game.MaxNumber)
}

func poolTopCycle(rng *rand.Rand, fs *features.Set) []int {
	ranked := rankedByFloat(fs.CycleScr, fs.Game.MaxNumber)
	return sampleDistinct(rng, ranked[:candidateWidth(fs)], fs.Game.PerDraw, fs.Game.MaxNumber)
}

// poolCycleFrequency blends overdue numbers with frequency leaders.
func poolCycleFrequency(rng *rand.Rand, fs *features.Set) []int {
	w := candidateWidth(fs)
	cyc := rankedByFloat(fs.CycleScr, fs.Game.MaxNumber)[:w]
	frq := rankedByInt(fs.Frequency, fs.Game.MaxNumber)[:w]
	return sampleDistinct(rng, append(append([]int{}, cyc...), frq...), fs.Game.PerDraw, fs.Game.MaxNumber)
}

// poolFrequencyCold blends frequency leaders with the coldest numbers —
// the original's frequency/cold mix.
func poolFrequencyCold(rng *rand.Rand, fs *features.Set) []int {
	w := candidateWidth(fs)
	ranked := rankedByInt(fs.Frequency, fs.Game.MaxNumber)
	hot := ranked[:w]
	cold := ranked[len(ranked)-w:]
	return sampleDistinct(rng, append(append([]int{}, hot...), cold...), fs.Game.PerDraw, fs.Game.MaxNumber)
}

// poolCompanionWalk starts from a random frequent number and follows the
// companion graph, falling back to random genes when the walk dead-ends.
func poolCompanionWalk(rng *rand.Rand, fs *features.Set) []int {
	k := fs.Game.PerDraw
	seen := make(map[int]bool, k)
	out := make([]int, 0, k)

	ranked := rankedByInt(fs.Frequency, fs.Game.MaxNumber)
	start := ranked[rng.Intn(candidateWidth(fs))]
	out = append(out, start)
	seen[start] = true

	current := start
	for len(out) < k {
		next := 0
		for _, c := range fs.Companions[current] {
			if !seen[c] {
				next = c
				break
			}
		}
		if next == 0 {
			for {
				v := rng.Intn(fs.Game.MaxNumber) + 1
				if !seen[v] {
					next = v
					break
				}
			}
		}
		out = append(out, next)
		seen[next] = true
		current = next
	}
	sortInts(out)
	return out
}

func poolRandom(rng *rand.Rand, fs *features.Set) []int {
	return sampleDistinct(rng, nil, fs.Game.PerDraw, fs.Game.MaxNumber)
}
