// Package draw holds the immutable data model shared by every engine
// component: a single historical draw, an ordered history, and the game
// presets that parameterize the generic engine.
package draw

import (
	"fmt"
	"sort"
	"time"

	"github.com/drawlab/sorteo/internal/ports"
)

// Draw is one historical result. Numbers are sorted ascending and never
// mutated after load. Supplementary holds extra values drawn from a
// separate pool (the reintegro for Spanish games), empty when the game
// has none.
type Draw struct {
	Date          time.Time
	Numbers       []int
	Supplementary []int
}

// Contains reports whether n was among the primary numbers.
func (d Draw) Contains(n int) bool {
	// Numbers is sorted; history draws are tiny so a scan is fine.
	for _, v := range d.Numbers {
		if v == n {
			return true
		}
	}
	return false
}

// History is an ordered sequence of draws, most recent first (index 0 is
// the latest draw). It is never mutated after load.
type History []Draw

// Latest returns the most recent draw and false when the history is empty.
func (h History) Latest() (Draw, bool) {
	if len(h) == 0 {
		return Draw{}, false
	}
	return h[0], true
}

// Recent returns the newest n draws (all of them when n exceeds the length).
func (h History) Recent(n int) History {
	if n >= len(h) {
		return h
	}
	return h[:n]
}

// Game is the tagged variant that parameterizes the engine, replacing
// per-game code paths. Primary numbers are drawn without replacement from
// [1, MaxNumber], PerDraw at a time. SuppMax is the top of the
// supplementary pool (0 when the game has no supplementary draw; the
// reintegro pool is 0..SuppMax).
type Game struct {
	Key       string
	Name      string
	MaxNumber int
	PerDraw   int
	SuppMax   int
}

// HasSupplementary reports whether the game draws a supplementary value.
func (g Game) HasSupplementary() bool { return g.SuppMax > 0 }

// games is the closed set of supported presets.
var games = []Game{
	{Key: "primitiva", Name: "La Primitiva", MaxNumber: 49, PerDraw: 6, SuppMax: 9},
	{Key: "bonoloto", Name: "Bonoloto", MaxNumber: 49, PerDraw: 6, SuppMax: 9},
	{Key: "euromillones", Name: "Euromillones", MaxNumber: 50, PerDraw: 5},
	{Key: "gordo", Name: "El Gordo", MaxNumber: 54, PerDraw: 5},
}

// GameByKey resolves a preset by its key.
func GameByKey(key string) (Game, error) {
	for _, g := range games {
		if g.Key == key {
			return g, nil
		}
	}
	return Game{}, fmt.Errorf("%w: %q", ports.ErrUnknownGame, key)
}

// Games returns every registered preset, in declaration order.
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

// ValidCombination reports whether nums is a legal combination for the
// game: exactly PerDraw distinct values, each in [1, MaxNumber].
func (g Game) ValidCombination(nums []int) bool {
	if len(nums) != g.PerDraw {
		return false
	}
	seen := make(map[int]bool, len(nums))
	for _, n := range nums {
		if n < 1 || n > g.MaxNumber || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// Combinations returns C(MaxNumber, PerDraw), saturating at MaxUint-ish
// bounds well above anything a caller can request.
func (g Game) Combinations() uint64 {
	n, k := uint64(g.MaxNumber), uint64(g.PerDraw)
	if k > n {
		return 0
	}
	var c uint64 = 1
	for i := uint64(0); i < k; i++ {
		c = c * (n - i) / (i + 1)
	}
	return c
}

// NewDraw builds a Draw with the numbers copied and sorted, so callers
// can hand over their own slices without aliasing the history.
func NewDraw(date time.Time, numbers []int, supplementary []int) Draw {
	nums := make([]int, len(numbers))
	copy(nums, numbers)
	sort.Ints(nums)
	var supp []int
	if len(supplementary) > 0 {
		supp = make([]int, len(supplementary))
		copy(supp, supplementary)
	}
	return Draw{Date: date, Numbers: nums, Supplementary: supp}
}
