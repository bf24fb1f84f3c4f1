// Package features turns an ordered draw history into a read-only snapshot
// of statistical signals. Extraction is a pure function: no randomness, no
// side effects, and graceful degradation — signals whose minimum history
// threshold isn't met come back empty or neutral, never as an error.
package features

import (
	"math"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

// Extraction windows and thresholds.
const (
	TrendWindow  = 30 // draws counted for the recent-frequency trend
	EMAWindow    = 50 // draws folded into the exponential moving average
	StreakWindow = 20 // draws classified against expected uniform frequency
	EMAAlpha     = 0.2

	// MinCorrelationHistory gates pair correlations and distribution stats.
	MinCorrelationHistory = 30
	// MinCompanionDraws is how many appearances a number needs before its
	// companion list is considered meaningful.
	MinCompanionDraws = 5
	// CycleScoreCap clamps gap/cycleEstimate. >1 means overdue relative to
	// the number's own cadence; the cap keeps long-absent numbers from
	// dominating every score.
	CycleScoreCap = 3.0
)

// Pair keys a two-number correlation, always with A < B.
type Pair struct {
	A, B int
}

// StreakClass labels a number's recent frequency against uniform expectation.
type StreakClass int

const (
	StreakNeutral StreakClass = iota
	StreakHot
	StreakCold
)

// Streak is the hot/cold classification of one number over StreakWindow
// draws. Intensity is 0..1 — how far the observed frequency sits from the
// uniform expectation, capped at a 2x deviation.
type Streak struct {
	Class     StreakClass
	Intensity float64
}

// DistributionStats summarizes the shape of historical draws. Zero value
// (Valid=false) when the history is shorter than MinCorrelationHistory.
type DistributionStats struct {
	Valid           bool
	SumMean         float64
	SumStd          float64
	RangeMean       float64
	EvenMean        float64 // mean count of even numbers per draw
	LowMean         float64 // mean count of numbers ≤ MaxNumber/2
	ConsecutiveMean float64 // mean count of adjacent pairs per draw
}

// Set is the derived feature snapshot for one game + history. Every
// per-number map is total over [1, MaxNumber]: a number that never
// appeared still has an entry (zero or neutral), never a missing key.
type Set struct {
	Game       draw.Game
	HistoryLen int

	Frequency map[int]int     // total appearances
	Gap       map[int]int     // draws since last seen (history length if never)
	Trend     map[int]int     // appearances within TrendWindow
	EMA       map[int]float64 // appearance-indicator EMA over EMAWindow
	CycleEst  map[int]float64 // mean inter-appearance gap
	CycleScr  map[int]float64 // gap/cycleEst, clamped to [0, CycleScoreCap]
	Streaks   map[int]Streak

	Correlation map[Pair]float64 // phi, only |phi| > 0.1, empty below threshold
	Companions  map[int][]int    // top-5 co-occurring numbers

	Distribution DistributionStats

	// SuccessMemory is the caller-supplied per-number credit from past
	// successful predictions. Numbers without credit are simply absent.
	SuccessMemory map[int]float64
}

// Extract computes the full feature snapshot. successMemory may be nil.
func Extract(hist draw.History, game draw.Game, successMemory map[int]float64) Set {
	n := game.MaxNumber
	s := Set{
		Game:          game,
		HistoryLen:    len(hist),
		Frequency:     make(map[int]int, n),
		Gap:           make(map[int]int, n),
		Trend:         make(map[int]int, n),
		EMA:           make(map[int]float64, n),
		CycleEst:      make(map[int]float64, n),
		CycleScr:      make(map[int]float64, n),
		Streaks:       make(map[int]Streak, n),
		Correlation:   map[Pair]float64{},
		Companions:    map[int][]int{},
		SuccessMemory: successMemory,
	}

	// appearances[v] collects the history indices (0 = most recent) where
	// v was drawn, oldest index last. Single pass feeds every signal below.
	appearances := make(map[int][]int, n)
	for i, d := range hist {
		for _, v := range d.Numbers {
			appearances[v] = append(appearances[v], i)
		}
	}

	trendWin := TrendWindow
	if trendWin > len(hist) {
		trendWin = len(hist)
	}

	for v := 1; v <= n; v++ {
		idxs := appearances[v]
		s.Frequency[v] = len(idxs)

		if len(idxs) == 0 {
			s.Gap[v] = len(hist)
		} else {
			s.Gap[v] = idxs[0]
		}

		trend := 0
		for _, i := range idxs {
			if i < trendWin {
				trend++
			}
		}
		s.Trend[v] = trend

		s.EMA[v] = emaIndicator(idxs, len(hist))
		s.CycleEst[v] = cycleEstimate(idxs, len(hist))
		s.CycleScr[v] = cycleScore(float64(s.Gap[v]), s.CycleEst[v])
		s.Streaks[v] = classifyStreak(idxs, len(hist), game)
	}

	if len(hist) >= MinCorrelationHistory {
		s.Correlation = phiCorrelations(hist, s.Frequency, game)
		s.Distribution = distributionStats(hist, game)
	}
	s.Companions = companionNumbers(hist, appearances, game)

	return s
}

// emaIndicator folds the appeared/did-not indicator over the EMA window,
// oldest draw first so recent draws carry the most weight.
func emaIndicator(idxs []int, histLen int) float64 {
	win := EMAWindow
	if win > histLen {
		win = histLen
	}
	if win == 0 {
		return 0
	}
	inWindow := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		if i < win {
			inWindow[i] = true
		}
	}
	ema := 0.0
	for i := win - 1; i >= 0; i-- { // oldest → newest
		x := 0.0
		if inWindow[i] {
			x = 1.0
		}
		ema = EMAAlpha*x + (1-EMAAlpha)*ema
	}
	return ema
}

// cycleEstimate is the mean inter-appearance gap. Numbers with fewer than
// two appearances get the full history length — the neutral "no cadence
// known" value.
func cycleEstimate(idxs []int, histLen int) float64 {
	if len(idxs) < 2 {
		return float64(histLen)
	}
	total := 0
	for i := 1; i < len(idxs); i++ {
		total += idxs[i] - idxs[i-1]
	}
	return float64(total) / float64(len(idxs)-1)
}

func cycleScore(gap, est float64) float64 {
	if est < 1 {
		est = 1
	}
	score := gap / est
	if score > CycleScoreCap {
		score = CycleScoreCap
	}
	if score < 0 {
		score = 0
	}
	return score
}

// classifyStreak compares observed frequency in the streak window with the
// uniform expectation window×k/N. Histories shorter than the window come
// back neutral.
func classifyStreak(idxs []int, histLen int, game draw.Game) Streak {
	if histLen < StreakWindow {
		return Streak{Class: StreakNeutral}
	}
	observed := 0
	for _, i := range idxs {
		if i < StreakWindow {
			observed++
		}
	}
	expected := float64(StreakWindow) * float64(game.PerDraw) / float64(game.MaxNumber)
	if expected < 1e-9 {
		return Streak{Class: StreakNeutral}
	}
	ratio := float64(observed) / expected
	intensity := math.Abs(ratio-1) / 2
	switch {
	case ratio >= 1.5:
		return Streak{Class: StreakHot, Intensity: capIntensity(intensity)}
	case ratio <= 0.5:
		return Streak{Class: StreakCold, Intensity: capIntensity(intensity)}
	default:
		return Streak{Class: StreakNeutral, Intensity: capIntensity(intensity)}
	}
}

func capIntensity(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
