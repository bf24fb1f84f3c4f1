// Package learner owns the adaptive weights: the per-game feature weight
// vector, the per-strategy ensemble weights, and the smoothing rule that
// updates both after an evaluation run.
//
// The update rule is not textbook gradient descent; it is a calibrated
// smoothing rule and must be reproduced exactly. Constants are
// configuration defaults, not derived values.
package learner

import (
	"sort"
)

// FeatureNames is the closed set of fitness features. Weight vectors are
// total over this set; no other keys are ever stored under the features kind.
var FeatureNames = []string{
	"frequency",
	"gap",
	"trend",
	"ema",
	"cycle",
	"correlation",
	"companions",
	"distribution",
	"streak",
	"memory",
}

// StrategyNames is the closed set of ensemble strategies.
var StrategyNames = []string{
	"genetic",
	"highconfidence",
	"hotcold",
	"equilibrium",
	"cycle",
	"correlation",
	"frequency",
	"trend",
}

// Bounds for one weight family. Feature weights and strategy weights share
// the update rule but carry different clamps.
type Bounds struct {
	Min float64
	Max float64
}

// Default bounds: features in [0.05, 0.50], strategies in [0.02, 0.60].
var (
	FeatureBounds  = Bounds{Min: 0.05, Max: 0.50}
	StrategyBounds = Bounds{Min: 0.02, Max: 0.60}
)

// UniformWeights builds the first-access weight vector: every name gets
// 1/len(names).
func UniformWeights(names []string) map[string]float64 {
	w := make(map[string]float64, len(names))
	u := 1.0 / float64(len(names))
	for _, name := range names {
		w[name] = u
	}
	return w
}

// Sanitize makes a stored weight map total over names and normalized.
// Unknown keys are dropped, missing keys get the minimum bound, and the
// whole vector is renormalized. A nil or empty map becomes uniform —
// this is the "corrupt state reads as absent" fallback.
func Sanitize(stored map[string]float64, names []string, b Bounds) map[string]float64 {
	if len(stored) == 0 {
		return UniformWeights(names)
	}
	w := make(map[string]float64, len(names))
	for _, name := range names {
		v, ok := stored[name]
		if !ok || v != v || v <= 0 { // missing, NaN, or nonsense
			v = b.Min
		}
		w[name] = v
	}
	Normalize(w, b)
	return w
}

// Normalize rescales w in place so the weights sum to 1.0 within 1e-6
// while every weight stays inside the bounds. Weights pinned at a bound
// are held there and the remainder is spread over the free weights.
func Normalize(w map[string]float64, b Bounds) {
	names := sortedKeys(w)

	for _, name := range names {
		w[name] = clamp(w[name], b.Min, b.Max)
	}

	// A few passes are enough: each pass pins at most len(w) weights.
	for iter := 0; iter < len(names)+1; iter++ {
		sum := 0.0
		for _, name := range names {
			sum += w[name]
		}
		if sum > 0.999999 && sum < 1.000001 {
			return
		}

		// Scale only the weights that can still move in the needed
		// direction; the rest stay pinned at their bound.
		free := make([]string, 0, len(names))
		pinnedSum := 0.0
		for _, name := range names {
			v := w[name]
			if (sum > 1 && v <= b.Min) || (sum < 1 && v >= b.Max) {
				pinnedSum += v
				continue
			}
			free = append(free, name)
		}
		if len(free) == 0 {
			return // bounds make exact normalization impossible
		}
		freeSum := sum - pinnedSum
		if freeSum <= 0 {
			return
		}
		scale := (1 - pinnedSum) / freeSum
		for _, name := range free {
			w[name] = clamp(w[name]*scale, b.Min, b.Max)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
