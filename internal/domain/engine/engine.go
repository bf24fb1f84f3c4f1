// Package engine orchestrates a prediction run: feature extraction, the
// genetic optimizer, the ensemble vote, and the simplified fallback for
// short histories. The engine performs no I/O of its own — the weight
// store is the only boundary that touches disk, and the store adapter
// owns that.
package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/domain/ensemble"
	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/domain/genetic"
	"github.com/drawlab/sorteo/internal/domain/learner"
	"github.com/drawlab/sorteo/internal/ports"
)

// Modes tagged on a report. Simplified is informational, not an error:
// it means the history was too short for the full pipeline.
const (
	ModeFull       = "full"
	ModeSimplified = "simplified"
)

// MinFullHistory is the shortest history the genetic pipeline accepts.
const MinFullHistory = 50

// Config collects every engine tunable.
type Config struct {
	Genetic genetic.Config
	Learner learner.Config
}

// Combination is one scored candidate in a report. Rationale maps the
// contributing features (full GA combos) or strategies (consensus combo)
// to their share of the score.
type Combination struct {
	Numbers    []int              `json:"numbers"`
	Score      float64            `json:"score"`
	Confidence float64            `json:"confidence"`
	Source     string             `json:"source"` // "consensus", "genetic", "simplified"
	Rationale  map[string]float64 `json:"rationale,omitempty"`
}

// Alternates are the secondary suggestions derived from the ensemble vote.
type Alternates struct {
	NextByVotes  []int `json:"next_by_votes,omitempty"`
	TopConsensus []int `json:"top_consensus,omitempty"`
	Blend        []int `json:"blend,omitempty"`
	Pool         []int `json:"pool,omitempty"`
}

// Report is the full outcome of one prediction run.
type Report struct {
	SessionID   string    `json:"session_id"`
	GameKey     string    `json:"game"`
	Mode        string    `json:"mode"`
	GeneratedAt time.Time `json:"generated_at"`
	Seed        uint64    `json:"seed"`
	HistoryLen  int       `json:"history_len"`

	Combinations []Combination `json:"combinations"`
	Alternates   Alternates    `json:"alternates"`

	// Supplementary is the predicted supplementary draw values by raw
	// frequency, empty for games without one.
	Supplementary []int `json:"supplementary,omitempty"`

	// FeatureContributions is the accumulated per-feature contribution
	// of the genetic run — the evaluation feed consumes this after a
	// backtest to drive the weight adapter.
	FeatureContributions map[string]float64 `json:"feature_contributions,omitempty"`

	Confidence float64 `json:"confidence"`
}

// Engine wires the domain packages to a weight store.
type Engine struct {
	adapter *learner.Adapter
	cfg     Config
}

// New builds an engine over the given store.
func New(store ports.WeightStore, cfg Config) *Engine {
	return &Engine{
		adapter: learner.NewAdapter(store, cfg.Learner),
		cfg:     cfg,
	}
}

// Adapter exposes the learner for the training feed.
func (e *Engine) Adapter() *learner.Adapter { return e.adapter }

// Predict produces count ranked combinations for the game. Histories
// shorter than MinFullHistory take the simplified path; the only error a
// caller can see is an invalid request (count beyond the combinatorial
// space or non-positive).
func (e *Engine) Predict(game draw.Game, hist draw.History, count int) (*Report, error) {
	if count < 1 {
		return nil, fmt.Errorf("combination count must be positive, got %d", count)
	}
	if uint64(count) > game.Combinations() {
		return nil, fmt.Errorf("%w: %d requested, C(%d,%d)=%d possible",
			ports.ErrTooManyCombinations, count, game.MaxNumber, game.PerDraw, game.Combinations())
	}

	weights := e.adapter.FeatureWeights(game.Key)
	state := e.adapter.TrainingState(game.Key)
	seed := Seed(game.Key, hist, weights, state)
	rng := rand.New(rand.NewSource(int64(seed)))

	report := &Report{
		SessionID:   uuid.NewSHA1(uuid.NameSpaceOID, seedBytes(seed)).String(),
		GameKey:     game.Key,
		GeneratedAt: time.Now(),
		Seed:        seed,
		HistoryLen:  len(hist),
	}

	if len(hist) < MinFullHistory {
		e.predictSimplified(report, game, hist, rng, count)
		return report, nil
	}

	memory := e.adapter.SuccessMemory(game.Key)
	stratWeights := e.adapter.StrategyWeights(game.Key)
	fs := features.Extract(hist, game, memory)

	genResult, err := genetic.Optimize(fs, weights, e.cfg.Genetic, rng, count)
	if err != nil {
		return nil, err
	}
	outcome := ensemble.Vote(&fs, genResult.Combinations, stratWeights)

	report.Mode = ModeFull
	report.FeatureContributions = genResult.Contributions
	report.Confidence = outcome.Confidence
	report.Alternates = Alternates{
		NextByVotes:  outcome.NextByVotes,
		TopConsensus: outcome.TopConsensus,
		Blend:        outcome.Blend,
		Pool:         outcome.Pool,
	}

	report.Combinations = append(report.Combinations, Combination{
		Numbers:    outcome.Numbers,
		Score:      consensusScore(outcome),
		Confidence: outcome.Confidence,
		Source:     "consensus",
		Rationale:  strategyRationale(outcome, game.PerDraw),
	})
	for _, combo := range genResult.Combinations {
		if len(report.Combinations) == count {
			break
		}
		if equalInts(combo.Numbers, outcome.Numbers) {
			continue
		}
		report.Combinations = append(report.Combinations, Combination{
			Numbers:    combo.Numbers,
			Score:      combo.Fitness,
			Confidence: outcome.Confidence * combo.Fitness,
			Source:     "genetic",
			Rationale:  combo.FeatureScores,
		})
	}

	if game.HasSupplementary() {
		report.Supplementary = topSupplementary(hist, game, 3)
	}
	return report, nil
}

// predictSimplified is the short-history fallback: a blended
// frequency/cold/random generator, tagged so callers can tell the engine
// degraded rather than failed.
func (e *Engine) predictSimplified(report *Report, game draw.Game, hist draw.History, rng *rand.Rand, count int) {
	report.Mode = ModeSimplified
	report.Confidence = 0.2

	freq := make(map[int]int, game.MaxNumber)
	for v := 1; v <= game.MaxNumber; v++ {
		freq[v] = 0
	}
	for _, d := range hist {
		for _, v := range d.Numbers {
			freq[v]++
		}
	}
	ranked := make([]int, game.MaxNumber)
	for i := range ranked {
		ranked[i] = i + 1
	}
	sort.Slice(ranked, func(i, j int) bool {
		if freq[ranked[i]] != freq[ranked[j]] {
			return freq[ranked[i]] > freq[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	k := game.PerDraw
	third := k / 3
	if third < 1 {
		third = 1
	}

	seen := make(map[string]bool, count)
	attempts := 0
	for len(report.Combinations) < count && attempts < 200*count {
		attempts++
		genes := blendedCombination(rng, ranked, third, k, game.MaxNumber)
		key := fmt.Sprint(genes)
		if seen[key] {
			continue
		}
		seen[key] = true
		report.Combinations = append(report.Combinations, Combination{
			Numbers:    genes,
			Confidence: report.Confidence,
			Source:     "simplified",
		})
	}
	// Requests near C(N,k) collide faster than random blending can
	// resolve; sweep the space lexicographically for the remainder.
	for genes := firstCombination(k); len(report.Combinations) < count && genes != nil; genes = nextCombination(genes, game.MaxNumber) {
		key := fmt.Sprint(genes)
		if seen[key] {
			continue
		}
		seen[key] = true
		report.Combinations = append(report.Combinations, Combination{
			Numbers:    append([]int{}, genes...),
			Confidence: report.Confidence,
			Source:     "simplified",
		})
	}

	if game.HasSupplementary() && len(hist) > 0 {
		report.Supplementary = topSupplementary(hist, game, 3)
	}
}

// blendedCombination picks a third of the genes from the frequency
// leaders, a third from the coldest numbers, and fills the rest randomly.
func blendedCombination(rng *rand.Rand, ranked []int, third, k, maxNumber int) []int {
	seen := make(map[int]bool, k)
	out := make([]int, 0, k)

	hotWidth := third * 2
	if hotWidth > len(ranked) {
		hotWidth = len(ranked)
	}
	for len(out) < third {
		v := ranked[rng.Intn(hotWidth)]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	coldStart := len(ranked) - hotWidth
	for len(out) < 2*third {
		v := ranked[coldStart+rng.Intn(hotWidth)]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for len(out) < k {
		v := rng.Intn(maxNumber) + 1
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// topSupplementary ranks supplementary values by raw frequency.
func topSupplementary(hist draw.History, game draw.Game, n int) []int {
	freq := make(map[int]int, game.SuppMax+1)
	for _, d := range hist {
		for _, s := range d.Supplementary {
			freq[s]++
		}
	}
	vals := make([]int, 0, game.SuppMax+1)
	for v := 0; v <= game.SuppMax; v++ {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(i, j int) bool {
		if freq[vals[i]] != freq[vals[j]] {
			return freq[vals[i]] > freq[vals[j]]
		}
		return vals[i] < vals[j]
	})
	if len(vals) > n {
		vals = vals[:n]
	}
	return vals
}

// strategyRationale reports, per strategy, the combined votes it cast for
// the chosen numbers.
func strategyRationale(outcome ensemble.Outcome, k int) map[string]float64 {
	chosen := make(map[int]bool, k)
	for _, n := range outcome.Numbers {
		chosen[n] = true
	}
	out := map[string]float64{}
	for _, t := range outcome.Tallies {
		if chosen[t.Number] {
			out["votes"] += t.Votes
			out["consensus"] += t.Consensus
		}
	}
	if len(outcome.Numbers) > 0 {
		out["votes"] /= float64(len(outcome.Numbers))
		out["consensus"] /= float64(len(outcome.Numbers))
	}
	return out
}

func consensusScore(outcome ensemble.Outcome) float64 {
	chosen := make(map[int]bool, len(outcome.Numbers))
	for _, n := range outcome.Numbers {
		chosen[n] = true
	}
	score := 0.0
	for _, t := range outcome.Tallies {
		if chosen[t.Number] {
			score += t.Votes * t.Consensus
		}
	}
	if len(outcome.Numbers) > 0 {
		score /= float64(len(outcome.Numbers))
	}
	return score
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func firstCombination(k int) []int {
	genes := make([]int, k)
	for i := range genes {
		genes[i] = i + 1
	}
	return genes
}

// nextCombination advances to the next lexicographic combination in
// place, returning nil after the last one.
func nextCombination(genes []int, maxNumber int) []int {
	k := len(genes)
	i := k - 1
	for i >= 0 && genes[i] == maxNumber-(k-1-i) {
		i--
	}
	if i < 0 {
		return nil
	}
	genes[i]++
	for j := i + 1; j < k; j++ {
		genes[j] = genes[j-1] + 1
	}
	return genes
}

func seedBytes(seed uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	return b
}
