package features

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

func testGame(t *testing.T) draw.Game {
	t.Helper()
	g, err := draw.GameByKey("primitiva")
	require.NoError(t, err)
	return g
}

// syntheticHistory builds a deterministic history, most recent first. The
// pinned number (when > 0) is forced into every draw.
func syntheticHistory(t *testing.T, game draw.Game, n int, seed int64, pinned int) draw.History {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	hist := make(draw.History, 0, n)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		seen := map[int]bool{}
		nums := make([]int, 0, game.PerDraw)
		if pinned > 0 {
			nums = append(nums, pinned)
			seen[pinned] = true
		}
		for len(nums) < game.PerDraw {
			v := rng.Intn(game.MaxNumber) + 1
			if !seen[v] {
				seen[v] = true
				nums = append(nums, v)
			}
		}
		supp := []int{rng.Intn(game.SuppMax + 1)}
		hist = append(hist, draw.NewDraw(date.AddDate(0, 0, -3*i), nums, supp))
	}
	return hist
}

func TestExtract_EverPresentNumber(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 200, 11, 7)

	fs := Extract(hist, game, nil)

	assert.Equal(t, 200, fs.Frequency[7])
	assert.Equal(t, 0, fs.Gap[7])
	assert.Equal(t, TrendWindow, fs.Trend[7])
	assert.InDelta(t, 1.0, fs.CycleEst[7], 1e-12)
	assert.Equal(t, StreakHot, fs.Streaks[7].Class)
	assert.Greater(t, fs.EMA[7], 0.99)
}

func TestExtract_AbsentNumberGetsNeutralValues(t *testing.T) {
	game := testGame(t)
	// Draws use only 1..12, so 49 never appears.
	hist := make(draw.History, 60)
	for i := range hist {
		base := (i % 7) + 1
		hist[i] = draw.NewDraw(time.Now().AddDate(0, 0, -i),
			[]int{base, base + 1, base + 2, base + 3, base + 4, base + 5}, nil)
	}

	fs := Extract(hist, game, nil)

	assert.Equal(t, 0, fs.Frequency[49])
	assert.Equal(t, len(hist), fs.Gap[49])
	assert.Equal(t, 0, fs.Trend[49])
	assert.InDelta(t, float64(len(hist)), fs.CycleEst[49], 1e-12)
	assert.Equal(t, StreakCold, fs.Streaks[49].Class)
}

func TestExtract_MapsAreTotal(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 80, 3, 0)

	fs := Extract(hist, game, nil)

	for v := 1; v <= game.MaxNumber; v++ {
		_, ok := fs.Frequency[v]
		require.True(t, ok, "frequency missing %d", v)
		_, ok = fs.Gap[v]
		require.True(t, ok, "gap missing %d", v)
		_, ok = fs.CycleScr[v]
		require.True(t, ok, "cycle score missing %d", v)
		_, ok = fs.Streaks[v]
		require.True(t, ok, "streak missing %d", v)
	}
}

func TestExtract_ShortHistorySkipsCorrelationAndDistribution(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, MinCorrelationHistory-1, 5, 0)

	fs := Extract(hist, game, nil)

	assert.Empty(t, fs.Correlation)
	assert.False(t, fs.Distribution.Valid)
}

func TestExtract_LongHistoryFillsCorrelationAndDistribution(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 300, 17, 0)

	fs := Extract(hist, game, nil)

	assert.True(t, fs.Distribution.Valid)
	assert.Greater(t, fs.Distribution.SumMean, 0.0)
	assert.Greater(t, fs.Distribution.SumStd, 0.0)

	for pair, phi := range fs.Correlation {
		assert.Less(t, pair.A, pair.B)
		assert.Greater(t, absFloat(phi), phiThreshold)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 150, 23, 0)

	a := Extract(hist, game, nil)
	b := Extract(hist, game, nil)

	assert.Equal(t, a.Frequency, b.Frequency)
	assert.Equal(t, a.EMA, b.EMA)
	assert.Equal(t, a.Correlation, b.Correlation)
	assert.Equal(t, a.Companions, b.Companions)
}

func TestExtract_CycleScoreClamped(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 200, 29, 0)

	fs := Extract(hist, game, nil)
	for v := 1; v <= game.MaxNumber; v++ {
		score := fs.CycleScr[v]
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, CycleScoreCap)
	}
}

func TestExtract_CarriesSuccessMemory(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 60, 31, 0)
	memory := map[int]float64{7: 1.5, 22: 0.4}

	fs := Extract(hist, game, memory)
	assert.Equal(t, memory, fs.SuccessMemory)
}

func TestDistributionStats_SumZScore(t *testing.T) {
	game := testGame(t)
	hist := syntheticHistory(t, game, 300, 37, 0)
	fs := Extract(hist, game, nil)
	require.True(t, fs.Distribution.Valid)

	// A typical draw should sit within a few standard deviations.
	z := fs.Distribution.SumZScore([]int{10, 17, 24, 30, 38, 45})
	assert.Less(t, absFloat(z), 3.0)

	// Invalid stats give the neutral zero.
	var empty DistributionStats
	assert.Zero(t, empty.SumZScore([]int{1, 2, 3, 4, 5, 6}))
}

func TestClassifyStreak_NeutralOnShortHistory(t *testing.T) {
	game := testGame(t)
	s := classifyStreak([]int{0, 1, 2}, StreakWindow-1, game)
	assert.Equal(t, StreakNeutral, s.Class)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
