package features

import (
	"math"
	"sort"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

// correlationTopN bounds how many numbers enter the pairwise phi pass.
// Restricting to the most frequent numbers keeps the pair count at
// C(30,2) = 435 instead of C(49,2) = 1176 of mostly-noise pairs.
const correlationTopN = 30

// phiThreshold drops pairs whose co-occurrence is indistinguishable from
// chance.
const phiThreshold = 0.1

// phiCorrelations computes the phi coefficient for every pair of the
// top-frequency numbers, keeping only |phi| > phiThreshold. Caller has
// already checked the history is long enough.
func phiCorrelations(hist draw.History, freq map[int]int, game draw.Game) map[Pair]float64 {
	top := topByFrequency(freq, game.MaxNumber, correlationTopN)

	// Presence bitmap per candidate number, one bool per draw.
	present := make(map[int][]bool, len(top))
	for _, v := range top {
		row := make([]bool, len(hist))
		for i, d := range hist {
			row[i] = d.Contains(v)
		}
		present[v] = row
	}

	out := map[Pair]float64{}
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			a, b := top[i], top[j]
			if a > b {
				a, b = b, a
			}
			phi := phiCoefficient(present[top[i]], present[top[j]])
			if math.Abs(phi) > phiThreshold {
				out[Pair{A: a, B: b}] = phi
			}
		}
	}
	return out
}

// phiCoefficient correlates two binary appeared/did-not series.
// phi = (n11·n00 − n10·n01) / sqrt(r1·r0·c1·c0), 0 when any margin is empty.
func phiCoefficient(xs, ys []bool) float64 {
	var n11, n10, n01, n00 float64
	for i := range xs {
		switch {
		case xs[i] && ys[i]:
			n11++
		case xs[i] && !ys[i]:
			n10++
		case !xs[i] && ys[i]:
			n01++
		default:
			n00++
		}
	}
	denom := (n11 + n10) * (n01 + n00) * (n11 + n01) * (n10 + n00)
	if denom <= 0 {
		return 0
	}
	return (n11*n00 - n10*n01) / math.Sqrt(denom)
}

// companionNumbers finds, for each number with at least MinCompanionDraws
// appearances, the five numbers it most often shares a draw with.
func companionNumbers(hist draw.History, appearances map[int][]int, game draw.Game) map[int][]int {
	out := map[int][]int{}
	for v := 1; v <= game.MaxNumber; v++ {
		idxs := appearances[v]
		if len(idxs) < MinCompanionDraws {
			continue
		}
		co := make(map[int]int)
		for _, i := range idxs {
			for _, other := range hist[i].Numbers {
				if other != v {
					co[other]++
				}
			}
		}
		out[v] = topCompanions(co, 5)
	}
	return out
}

func topCompanions(co map[int]int, n int) []int {
	type pairCount struct {
		num, count int
	}
	ranked := make([]pairCount, 0, len(co))
	for num, count := range co {
		ranked = append(ranked, pairCount{num, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].num < ranked[j].num // deterministic ties
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]int, len(ranked))
	for i, pc := range ranked {
		out[i] = pc.num
	}
	return out
}

// topByFrequency returns the n most frequent numbers in [1, maxNumber],
// ties broken by the lower number for determinism.
func topByFrequency(freq map[int]int, maxNumber, n int) []int {
	all := make([]int, 0, maxNumber)
	for v := 1; v <= maxNumber; v++ {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		if freq[all[i]] != freq[all[j]] {
			return freq[all[i]] > freq[all[j]]
		}
		return all[i] < all[j]
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
