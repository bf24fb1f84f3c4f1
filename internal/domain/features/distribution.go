package features

import (
	"math"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

// distributionStats summarizes the historical draw shape: sum, range,
// parity, low/high split, and consecutive pairs. Caller has already
// checked the history is at least MinCorrelationHistory draws.
func distributionStats(hist draw.History, game draw.Game) DistributionStats {
	n := float64(len(hist))
	if n == 0 {
		return DistributionStats{}
	}

	var sumTotal, sumSq, rangeTotal, evenTotal, lowTotal, consecTotal float64
	low := game.MaxNumber / 2
	for _, d := range hist {
		sum := 0
		evens := 0
		lows := 0
		consec := 0
		for i, v := range d.Numbers {
			sum += v
			if v%2 == 0 {
				evens++
			}
			if v <= low {
				lows++
			}
			if i > 0 && v == d.Numbers[i-1]+1 {
				consec++
			}
		}
		spread := 0
		if len(d.Numbers) > 0 {
			spread = d.Numbers[len(d.Numbers)-1] - d.Numbers[0]
		}
		sumTotal += float64(sum)
		sumSq += float64(sum) * float64(sum)
		rangeTotal += float64(spread)
		evenTotal += float64(evens)
		lowTotal += float64(lows)
		consecTotal += float64(consec)
	}

	mean := sumTotal / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return DistributionStats{
		Valid:           true,
		SumMean:         mean,
		SumStd:          math.Sqrt(variance),
		RangeMean:       rangeTotal / n,
		EvenMean:        evenTotal / n,
		LowMean:         lowTotal / n,
		ConsecutiveMean: consecTotal / n,
	}
}

// SumZScore measures how far a combination's sum sits from the historical
// mean, in standard deviations. Returns 0 when stats are missing or the
// spread is degenerate.
func (ds DistributionStats) SumZScore(nums []int) float64 {
	if !ds.Valid || ds.SumStd < 1e-9 {
		return 0
	}
	sum := 0
	for _, v := range nums {
		sum += v
	}
	return (float64(sum) - ds.SumMean) / ds.SumStd
}
