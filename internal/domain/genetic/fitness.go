package genetic

import (
	"math"

	"github.com/drawlab/sorteo/internal/domain/features"
)

// evaluate scores an individual: the weighted sum of normalized feature
// scores, or PenaltyFloor when the combination's distribution profile is
// statistically invalid. The per-feature scores come back as an explicit
// map so callers can accumulate contributions without shared state.
func evaluate(genes []int, fs *features.Set, weights map[string]float64) (float64, map[string]float64) {
	scores := scoreFeatures(genes, fs)
	if invalidDistribution(genes, fs) {
		return PenaltyFloor, scores
	}
	fitness := 0.0
	for name, score := range scores {
		fitness += weights[name] * score
	}
	return fitness, scores
}

// invalidDistribution applies the reject-by-penalty rules: all one parity,
// all in one decade, sum z-score beyond 3, or consecutive runs covering
// half the combination.
func invalidDistribution(genes []int, fs *features.Set) bool {
	if len(genes) == 0 {
		return true
	}
	evens := 0
	decade := genes[0] / 10
	sameDecade := true
	consecutive := 0
	for i, g := range genes {
		if g%2 == 0 {
			evens++
		}
		if g/10 != decade {
			sameDecade = false
		}
		if i > 0 && g == genes[i-1]+1 {
			consecutive++
		}
	}
	if evens == 0 || evens == len(genes) {
		return true
	}
	if sameDecade {
		return true
	}
	if consecutive >= len(genes)/2 {
		return true
	}
	if z := fs.Distribution.SumZScore(genes); math.Abs(z) > 3 {
		return true
	}
	return false
}

// scoreFeatures computes every normalized feature score in [0, 1] for a
// combination. The map is total over learner.FeatureNames.
func scoreFeatures(genes []int, fs *features.Set) map[string]float64 {
	k := float64(len(genes))
	if k == 0 {
		return map[string]float64{}
	}

	maxFreq := maxIntValue(fs.Frequency)
	maxGap := maxIntValue(fs.Gap)
	maxTrend := maxIntValue(fs.Trend)
	maxEMA := maxFloatValue(fs.EMA)
	maxMem := maxFloatValue(fs.SuccessMemory)

	var freqSum, gapSum, trendSum, emaSum, cycleSum, streakSum, memSum float64
	for _, g := range genes {
		freqSum += float64(fs.Frequency[g]) / maxFreq
		gapSum += float64(fs.Gap[g]) / maxGap
		trendSum += float64(fs.Trend[g]) / maxTrend
		emaSum += fs.EMA[g] / maxEMA
		cycleSum += fs.CycleScr[g] / features.CycleScoreCap
		streakSum += streakScore(fs.Streaks[g])
		if maxMem > 0 {
			memSum += fs.SuccessMemory[g] / maxMem
		}
	}

	return map[string]float64{
		"frequency":    clamp01(freqSum / k),
		"gap":          clamp01(gapSum / k),
		"trend":        clamp01(trendSum / k),
		"ema":          clamp01(emaSum / k),
		"cycle":        clamp01(cycleSum / k),
		"correlation":  correlationScore(genes, fs),
		"companions":   companionScore(genes, fs),
		"distribution": distributionScore(genes, fs),
		"streak":       clamp01(streakSum / k),
		"memory":       clamp01(memSum / k),
	}
}

// correlationScore rewards combinations whose pairs co-occur more than
// chance. Positive phi up to 0.5 maps linearly to 1; pairs without a
// significant correlation contribute nothing.
func correlationScore(genes []int, fs *features.Set) float64 {
	if len(fs.Correlation) == 0 || len(genes) < 2 {
		return 0
	}
	pairs := 0
	total := 0.0
	for i := 0; i < len(genes); i++ {
		for j := i + 1; j < len(genes); j++ {
			a, b := genes[i], genes[j]
			if a > b {
				a, b = b, a
			}
			pairs++
			if phi, ok := fs.Correlation[features.Pair{A: a, B: b}]; ok && phi > 0 {
				total += math.Min(phi, 0.5) / 0.5
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return clamp01(total / float64(pairs))
}

// companionScore is the fraction of pairs where one number sits in the
// other's top-5 companion list.
func companionScore(genes []int, fs *features.Set) float64 {
	if len(fs.Companions) == 0 || len(genes) < 2 {
		return 0
	}
	pairs := 0
	hits := 0
	for i := 0; i < len(genes); i++ {
		for j := i + 1; j < len(genes); j++ {
			pairs++
			if containsInt(fs.Companions[genes[i]], genes[j]) || containsInt(fs.Companions[genes[j]], genes[i]) {
				hits++
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(hits) / float64(pairs)
}

// distributionScore measures how typical the combination's shape is
// against the historical distribution stats. Neutral 0.5 when the history
// is too short for stats.
func distributionScore(genes []int, fs *features.Set) float64 {
	ds := fs.Distribution
	if !ds.Valid {
		return 0.5
	}
	k := float64(len(genes))

	z := math.Abs(ds.SumZScore(genes))
	sumTyp := 1 - math.Min(z/3, 1)

	evens := 0.0
	lows := 0.0
	low := fs.Game.MaxNumber / 2
	for _, g := range genes {
		if g%2 == 0 {
			evens++
		}
		if g <= low {
			lows++
		}
	}
	evenTyp := 1 - math.Min(math.Abs(evens-ds.EvenMean)/k, 1)
	lowTyp := 1 - math.Min(math.Abs(lows-ds.LowMean)/k, 1)

	return clamp01((sumTyp + evenTyp + lowTyp) / 3)
}

// streakScore rewards hot numbers and discounts cold ones around a 0.5
// neutral midpoint.
func streakScore(s features.Streak) float64 {
	switch s.Class {
	case features.StreakHot:
		return clamp01(0.6 + 0.4*s.Intensity)
	case features.StreakCold:
		return clamp01(0.4 - 0.3*s.Intensity)
	default:
		return 0.5
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func maxIntValue(m map[int]int) float64 {
	max := 1
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return float64(max)
}

func maxFloatValue(m map[int]float64) float64 {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return 1
	}
	return max
}
