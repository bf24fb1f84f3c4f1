// Package backtest replays history walk-forward: for each of the last N
// draws, every strategy predicts from the draws that preceded it, and the
// hits against the real draw are tallied. The aggregate is the evaluation
// feed the weight adapter consumes — the engine itself never sees future
// draws.
package backtest

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/domain/engine"
	"github.com/drawlab/sorteo/internal/domain/ensemble"
	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/domain/genetic"
	"github.com/drawlab/sorteo/internal/domain/learner"
)

// MethodResult is the hit table for one strategy over the replay window.
type MethodResult struct {
	Strategy     string  `json:"strategy"`
	HitBuckets   []int   `json:"hit_buckets"` // index = hits per draw, 0..k
	MeanHits     float64 `json:"mean_hits"`
	PctThreePlus float64 `json:"pct_three_plus"`
}

// Result aggregates a full walk-forward run.
type Result struct {
	GameKey string         `json:"game"`
	Draws   int            `json:"draws"` // draws actually replayed
	Methods []MethodResult `json:"methods"`

	// ConsensusHits maps each number the consensus picked correctly to
	// how often it hit — the success-memory feed.
	ConsensusHits map[int]float64 `json:"consensus_hits,omitempty"`

	// FeatureContributions accumulates the genetic evaluation's
	// per-feature contributions across the replay.
	FeatureContributions map[string]float64 `json:"feature_contributions,omitempty"`

	// Score is the consensus strategy's mean hits — the achieved score
	// handed to the weight adapter.
	Score float64 `json:"score"`

	// PrizeTallies counts how often the consensus pick landed in each
	// fixed prize category across the replay. Non-winning draws are
	// not tallied.
	PrizeTallies map[string]int `json:"prize_tallies,omitempty"`
}

// StrategyScores extracts the per-strategy mean hits, keyed for the
// adapter's ensemble-weight update.
func (r *Result) StrategyScores() map[string]float64 {
	out := make(map[string]float64, len(r.Methods))
	for _, m := range r.Methods {
		if m.Strategy == "consensus" {
			continue
		}
		out[m.Strategy] = m.MeanHits
	}
	return out
}

// Config bounds the replay cost. The genetic settings deliberately run
// lighter than a live prediction; the replay multiplies them by the
// window size.
type Config struct {
	Window  int // draws to replay, default 100
	Genetic genetic.Config
}

// DefaultConfig returns the replay defaults.
func DefaultConfig() Config {
	return Config{
		Window: 100,
		Genetic: genetic.Config{
			PopulationMin: 60,
			PopulationMax: 100,
			Generations:   15,
		},
	}
}

// Run replays the last cfg.Window draws. Weights come from the adapter
// so the replay scores with the same vector a live prediction would use.
func Run(adapter *learner.Adapter, game draw.Game, hist draw.History, cfg Config) (*Result, error) {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	window := cfg.Window
	// Each replayed draw needs a full-length prior history.
	if len(hist) < engine.MinFullHistory+1 {
		return nil, fmt.Errorf("history too short to backtest: %d draws, need %d", len(hist), engine.MinFullHistory+1)
	}
	if window > len(hist)-engine.MinFullHistory {
		window = len(hist) - engine.MinFullHistory
	}

	weights := adapter.FeatureWeights(game.Key)
	stratWeights := adapter.StrategyWeights(game.Key)
	memory := adapter.SuccessMemory(game.Key)
	state := adapter.TrainingState(game.Key)

	k := game.PerDraw
	buckets := make(map[string][]int)
	consensusHits := make(map[int]float64)
	contributions := make(map[string]float64)
	prizeTallies := make(map[string]int)

	// Oldest target first, so the walk moves forward in time.
	for i := window - 1; i >= 0; i-- {
		target := hist[i]
		prior := hist[i+1:]

		fs := features.Extract(prior, game, memory)
		seed := engine.Seed(game.Key, prior, weights, state)
		rng := rand.New(rand.NewSource(int64(seed)))

		genResult, err := genetic.Optimize(fs, weights, cfg.Genetic, rng, 1)
		if err != nil {
			return nil, err
		}
		for name, c := range genResult.Contributions {
			contributions[name] += c
		}

		picks := ensemble.StrategyPicks(&fs, genResult.Combinations, k)
		for strategy, nums := range picks {
			hits := countHits(nums, target)
			buckets[strategy] = bucketAdd(buckets[strategy], k, hits)
		}

		outcome := ensemble.Vote(&fs, genResult.Combinations, stratWeights)
		hits := countHits(outcome.Numbers, target)
		buckets["consensus"] = bucketAdd(buckets["consensus"], k, hits)
		if category, _ := PrizeCategory(hits, false); category != "" {
			prizeTallies[category]++
		}
		for _, n := range outcome.Numbers {
			if target.Contains(n) {
				consensusHits[n]++
			}
		}
	}

	result := &Result{
		GameKey:              game.Key,
		Draws:                window,
		ConsensusHits:        consensusHits,
		FeatureContributions: contributions,
	}
	if len(prizeTallies) > 0 {
		result.PrizeTallies = prizeTallies
	}
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := summarize(name, buckets[name])
		result.Methods = append(result.Methods, m)
		if name == "consensus" {
			result.Score = m.MeanHits
		}
	}
	return result, nil
}

// Apply feeds a replay result through the adapter: feature weights from
// the genetic contributions, strategy weights from the per-strategy mean
// hits, and success memory from the consensus hits. One training event,
// one game, nothing else touched.
func Apply(adapter *learner.Adapter, result *Result) error {
	if _, err := adapter.UpdateFeatures(result.GameKey, result.FeatureContributions, result.Score); err != nil {
		return err
	}
	if _, err := adapter.UpdateStrategies(result.GameKey, result.StrategyScores(), result.Score); err != nil {
		return err
	}
	return adapter.RecordSuccess(result.GameKey, result.ConsensusHits)
}

func countHits(nums []int, target draw.Draw) int {
	hits := 0
	for _, n := range nums {
		if target.Contains(n) {
			hits++
		}
	}
	return hits
}

func bucketAdd(bucket []int, k, hits int) []int {
	if bucket == nil {
		bucket = make([]int, k+1)
	}
	if hits > k {
		hits = k
	}
	bucket[hits]++
	return bucket
}

func summarize(name string, bucket []int) MethodResult {
	total := 0
	weighted := 0
	threePlus := 0
	for hits, count := range bucket {
		total += count
		weighted += hits * count
		if hits >= 3 {
			threePlus += count
		}
	}
	m := MethodResult{Strategy: name, HitBuckets: bucket}
	if total > 0 {
		m.MeanHits = float64(weighted) / float64(total)
		m.PctThreePlus = 100 * float64(threePlus) / float64(total)
	}
	return m
}
