// Package ensemble runs the independent scoring strategies and reconciles
// their votes into one consensus-ranked combination. Every strategy is a
// pure function of the feature snapshot (the genetic strategy consumes the
// optimizer result the engine already computed); the voter owns all
// aggregation.
package ensemble

import (
	"sort"

	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/domain/genetic"
)

// ballot is one strategy's opinion on one number. Rank is 1-based within
// the strategy's own list; Score is the strategy's internal scale.
type ballot struct {
	Strategy string
	Number   int
	Score    float64
	Rank     int
}

// poolSize is how many numbers each strategy nominates.
func poolSize(game gameDims) int {
	return game.perDraw * 3
}

type gameDims struct {
	maxNumber int
	perDraw   int
}

func dims(fs *features.Set) gameDims {
	return gameDims{maxNumber: fs.Game.MaxNumber, perDraw: fs.Game.PerDraw}
}

// rankedVotes turns a per-number score map into a sorted, ranked vote
// list for one strategy. Ties break on the lower number so equal inputs
// always vote identically.
func rankedVotes(strategy string, scores map[int]float64, limit int) []ballot {
	nums := make([]int, 0, len(scores))
	for n, s := range scores {
		if s > 0 {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool {
		if scores[nums[i]] != scores[nums[j]] {
			return scores[nums[i]] > scores[nums[j]]
		}
		return nums[i] < nums[j]
	})
	if len(nums) > limit {
		nums = nums[:limit]
	}
	votes := make([]ballot, len(nums))
	for i, n := range nums {
		votes[i] = ballot{Strategy: strategy, Number: n, Score: scores[n], Rank: i + 1}
	}
	return votes
}

// minMax rescales a score map to [0,1]. Flat maps come back all-zero so
// a signal with no spread casts no votes.
func minMax(scores map[int]float64) map[int]float64 {
	lo, hi := 0.0, 0.0
	first := true
	for _, v := range scores {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	spread := hi - lo
	out := make(map[int]float64, len(scores))
	if spread < 1e-9 {
		return out
	}
	for n, v := range scores {
		out[n] = (v - lo) / spread
	}
	return out
}

// strategyFrequency votes the all-time frequency leaders.
func strategyFrequency(fs *features.Set) []ballot {
	d := dims(fs)
	maxFreq := 1
	for _, c := range fs.Frequency {
		if c > maxFreq {
			maxFreq = c
		}
	}
	scores := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		scores[n] = float64(fs.Frequency[n]) / float64(maxFreq)
	}
	return rankedVotes("frequency", scores, poolSize(d))
}

// strategyTrend votes the recent-window leaders.
func strategyTrend(fs *features.Set) []ballot {
	d := dims(fs)
	maxTrend := 1
	for _, c := range fs.Trend {
		if c > maxTrend {
			maxTrend = c
		}
	}
	scores := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		scores[n] = float64(fs.Trend[n]) / float64(maxTrend)
	}
	return rankedVotes("trend", scores, poolSize(d))
}

// strategyEquilibrium votes the statistically "due" numbers — longest
// current gaps weighted against each number's own cadence.
func strategyEquilibrium(fs *features.Set) []ballot {
	d := dims(fs)
	maxGap := 1
	for _, g := range fs.Gap {
		if g > maxGap {
			maxGap = g
		}
	}
	scores := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		gapNorm := float64(fs.Gap[n]) / float64(maxGap)
		cycleNorm := fs.CycleScr[n] / features.CycleScoreCap
		scores[n] = 0.5*gapNorm + 0.5*cycleNorm
	}
	return rankedVotes("equilibrium", scores, poolSize(d))
}

// strategyCycle votes purely on the overdue ratio.
func strategyCycle(fs *features.Set) []ballot {
	d := dims(fs)
	scores := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		scores[n] = fs.CycleScr[n] / features.CycleScoreCap
	}
	return rankedVotes("cycle", scores, poolSize(d))
}

// strategyHotCold is the 15/70/15 frequency/hot/due mix. The split is
// calibrated, not derived.
func strategyHotCold(fs *features.Set) []ballot {
	d := dims(fs)
	freq := make(map[int]float64, d.maxNumber)
	hot := make(map[int]float64, d.maxNumber)
	due := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		freq[n] = float64(fs.Frequency[n])
		hot[n] = float64(fs.Trend[n])
		due[n] = float64(fs.Gap[n])
	}
	nf, nh, nd := minMax(freq), minMax(hot), minMax(due)
	scores := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		scores[n] = 0.15*nf[n] + 0.70*nh[n] + 0.15*nd[n]
	}
	return rankedVotes("hotcold", scores, poolSize(d))
}

// strategyCorrelation votes numbers with strong positive pair
// correlations and companion backing. Pairs are accumulated in sorted
// key order: a number collects several phi terms, and float addition is
// not associative, so map iteration order would leak into the totals.
func strategyCorrelation(fs *features.Set) []ballot {
	d := dims(fs)
	pairs := make([]features.Pair, 0, len(fs.Correlation))
	for pair := range fs.Correlation {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	scores := make(map[int]float64, d.maxNumber)
	for _, pair := range pairs {
		if phi := fs.Correlation[pair]; phi > 0 {
			scores[pair.A] += phi
			scores[pair.B] += phi
		}
	}
	// Companion credit lands once per number, so order cannot matter here.
	for n, companions := range fs.Companions {
		scores[n] += 0.05 * float64(len(companions))
	}
	return rankedVotes("correlation", minMax(scores), poolSize(d))
}

// highConfidenceSignals is how many independent signals the multi-signal
// scorer consults; highConfidenceMinAgree is the agreement threshold a
// number must clear to be voted at all.
const (
	highConfidenceSignals  = 5
	highConfidenceMinAgree = 3
)

// strategyHighConfidence votes only numbers that sit in the top pool of
// at least highConfidenceMinAgree of five independent signals (frequency,
// trend, EMA, cycle, streak). Score blends agreement with signal
// strength 70/30 — calibrated, not derived.
func strategyHighConfidence(fs *features.Set) []ballot {
	d := dims(fs)
	w := poolSize(d)

	freq := make(map[int]float64, d.maxNumber)
	trend := make(map[int]float64, d.maxNumber)
	ema := make(map[int]float64, d.maxNumber)
	cycle := make(map[int]float64, d.maxNumber)
	streak := make(map[int]float64, d.maxNumber)
	for n := 1; n <= d.maxNumber; n++ {
		freq[n] = float64(fs.Frequency[n])
		trend[n] = float64(fs.Trend[n])
		ema[n] = fs.EMA[n]
		cycle[n] = fs.CycleScr[n]
		if fs.Streaks[n].Class == features.StreakHot {
			streak[n] = 1 + fs.Streaks[n].Intensity
		}
	}

	signals := []map[int]float64{freq, trend, ema, cycle, streak}
	agreement := make(map[int]int, d.maxNumber)
	strength := make(map[int]float64, d.maxNumber)
	for _, signal := range signals {
		norm := minMax(signal)
		for _, n := range topNumbers(norm, w) {
			agreement[n]++
			strength[n] += norm[n]
		}
	}

	scores := make(map[int]float64, d.maxNumber)
	for n, agree := range agreement {
		if agree < highConfidenceMinAgree {
			continue
		}
		agreeScore := float64(agree) / float64(highConfidenceSignals)
		strengthScore := strength[n] / float64(agree)
		scores[n] = 0.7*agreeScore + 0.3*strengthScore
	}
	return rankedVotes("highconfidence", scores, poolSize(d))
}

// strategyGenetic projects the optimizer's combinations onto per-number
// scores: each number accumulates the fitness of every combination that
// contains it.
func strategyGenetic(fs *features.Set, combos []genetic.ScoredCombination) []ballot {
	d := dims(fs)
	scores := make(map[int]float64, d.maxNumber)
	for _, combo := range combos {
		for _, n := range combo.Numbers {
			scores[n] += combo.Fitness
		}
	}
	return rankedVotes("genetic", minMax(scores), poolSize(d))
}

// StrategyPicks returns each strategy's top-k nominations, keyed by
// strategy ID. The backtester replays these against real draws to build
// the per-strategy evaluation feed.
func StrategyPicks(fs *features.Set, combos []genetic.ScoredCombination, k int) map[string][]int {
	all := [][]ballot{
		strategyGenetic(fs, combos),
		strategyHighConfidence(fs),
		strategyHotCold(fs),
		strategyEquilibrium(fs),
		strategyCycle(fs),
		strategyCorrelation(fs),
		strategyFrequency(fs),
		strategyTrend(fs),
	}
	out := make(map[string][]int, len(all))
	for _, votes := range all {
		if len(votes) == 0 {
			continue
		}
		picks := make([]int, 0, k)
		for _, v := range votes {
			if len(picks) == k {
				break
			}
			picks = append(picks, v.Number)
		}
		out[votes[0].Strategy] = picks
	}
	return out
}

// topNumbers returns the n highest-scored numbers, ties to the lower
// number.
func topNumbers(scores map[int]float64, n int) []int {
	nums := make([]int, 0, len(scores))
	for num, s := range scores {
		if s > 0 {
			nums = append(nums, num)
		}
	}
	sort.Slice(nums, func(i, j int) bool {
		if scores[nums[i]] != scores[nums[j]] {
			return scores[nums[i]] > scores[nums[j]]
		}
		return nums[i] < nums[j]
	})
	if len(nums) > n {
		nums = nums[:n]
	}
	return nums
}
