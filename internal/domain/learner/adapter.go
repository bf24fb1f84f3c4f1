package learner

import (
	"fmt"
	"strconv"
	"time"

	"github.com/drawlab/sorteo/internal/ports"
)

// Config holds the smoothing-rule constants. Zero fields are replaced by
// the calibrated defaults.
type Config struct {
	LearningRate float64 // default 0.15
	Decay        float64 // default 0.98
	Epsilon      float64 // division floor, default 1e-9

	// MemoryDecay fades success-memory credit each training event.
	MemoryDecay float64 // default 0.90

	// StrategyPriors seeds the ensemble strategy weights before any
	// training has happened. Nil means uniform.
	StrategyPriors map[string]float64
}

// DefaultConfig returns the calibrated constants.
func DefaultConfig() Config {
	return Config{LearningRate: 0.15, Decay: 0.98, Epsilon: 1e-9, MemoryDecay: 0.90}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LearningRate == 0 {
		c.LearningRate = d.LearningRate
	}
	if c.Decay == 0 {
		c.Decay = d.Decay
	}
	if c.Epsilon == 0 {
		c.Epsilon = d.Epsilon
	}
	if c.MemoryDecay == 0 {
		c.MemoryDecay = d.MemoryDecay
	}
	return c
}

// Adapter applies the online learning rule and persists the result.
// It mutates exactly the given game's entries in the store; other games
// are never touched.
type Adapter struct {
	store ports.WeightStore
	cfg   Config
	now   func() time.Time
}

// NewAdapter wires an adapter to a store.
func NewAdapter(store ports.WeightStore, cfg Config) *Adapter {
	return &Adapter{store: store, cfg: cfg.withDefaults(), now: time.Now}
}

// FeatureWeights returns the current feature weight vector for a game,
// uniform on first access or after corruption.
func (a *Adapter) FeatureWeights(gameKey string) map[string]float64 {
	stored, _ := a.store.LoadWeights(gameKey, ports.KindFeatures)
	return Sanitize(stored, FeatureNames, FeatureBounds)
}

// StrategyWeights returns the current ensemble strategy weights for a
// game. Before any training the configured priors apply (uniform when
// none were set).
func (a *Adapter) StrategyWeights(gameKey string) map[string]float64 {
	stored, _ := a.store.LoadWeights(gameKey, ports.KindStrategies)
	if len(stored) == 0 {
		stored = a.cfg.StrategyPriors
	}
	return Sanitize(stored, StrategyNames, StrategyBounds)
}

// SuccessMemory returns the per-number success credit for a game, keyed by
// the drawn number. Absent or corrupt state yields an empty map.
func (a *Adapter) SuccessMemory(gameKey string) map[int]float64 {
	stored, _ := a.store.LoadWeights(gameKey, ports.KindMemory)
	out := make(map[int]float64, len(stored))
	for k, v := range stored {
		n, err := strconv.Atoi(k)
		if err != nil || v != v || v < 0 {
			continue
		}
		out[n] = v
	}
	return out
}

// TrainingState returns the per-game bookkeeping (zero state on first access).
func (a *Adapter) TrainingState(gameKey string) ports.TrainingState {
	st, _ := a.store.LoadTrainingState(gameKey)
	return st
}

// UpdateFeatures runs the smoothing rule over the feature weight vector:
//
//  1. success = clamp(achieved/max(best, ε), 0.5, 2.0), or 1.0 with no prior
//  2. contributions → relative shares (sum floored at ε)
//  3. w' = w·decay + learningRate·(share−w)·success·(1−decay), clamped
//  4. renormalize to Σ=1
//  5. persist; bump counter, best score, timestamp
//
// Returns the new vector.
func (a *Adapter) UpdateFeatures(gameKey string, contributions map[string]float64, achievedScore float64) (map[string]float64, error) {
	current := a.FeatureWeights(gameKey)
	state := a.TrainingState(gameKey)

	updated := a.smooth(current, contributions, achievedScore, state.BestScore, FeatureNames, FeatureBounds)
	if err := a.store.SaveWeights(gameKey, ports.KindFeatures, updated); err != nil {
		return nil, fmt.Errorf("save feature weights: %w", err)
	}
	if err := a.bumpState(gameKey, state, achievedScore); err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStrategies applies the same rule to the ensemble strategy weights,
// with the per-strategy hit counts as contributions. Isolated under the
// strategies kind; feature weights are untouched.
func (a *Adapter) UpdateStrategies(gameKey string, hits map[string]float64, achievedScore float64) (map[string]float64, error) {
	current := a.StrategyWeights(gameKey)
	state := a.TrainingState(gameKey)

	updated := a.smooth(current, hits, achievedScore, state.BestScore, StrategyNames, StrategyBounds)
	if err := a.store.SaveWeights(gameKey, ports.KindStrategies, updated); err != nil {
		return nil, fmt.Errorf("save strategy weights: %w", err)
	}
	return updated, nil
}

// RecordSuccess fades existing success-memory credit and adds the hit
// counts from a real draw, so numbers the engine predicted correctly keep
// a slowly-decaying bonus.
func (a *Adapter) RecordSuccess(gameKey string, hits map[int]float64) error {
	memory := a.SuccessMemory(gameKey)
	out := make(map[string]float64, len(memory)+len(hits))
	for n, v := range memory {
		faded := v * a.cfg.MemoryDecay
		if faded > 0.01 {
			out[strconv.Itoa(n)] = faded
		}
	}
	for n, h := range hits {
		out[strconv.Itoa(n)] += h
	}
	if err := a.store.SaveWeights(gameKey, ports.KindMemory, out); err != nil {
		return fmt.Errorf("save success memory: %w", err)
	}
	return nil
}

// Reset wipes every learned weight and the training state for a game.
func (a *Adapter) Reset(gameKey string) error {
	return a.store.ResetGame(gameKey)
}

func (a *Adapter) smooth(current, contributions map[string]float64, achieved, best float64, names []string, b Bounds) map[string]float64 {
	success := 1.0
	if best > 0 {
		denom := best
		if denom < a.cfg.Epsilon {
			denom = a.cfg.Epsilon
		}
		success = clamp(achieved/denom, 0.5, 2.0)
	}

	total := 0.0
	for _, name := range names {
		if c := contributions[name]; c > 0 {
			total += c
		}
	}
	if total < a.cfg.Epsilon {
		total = a.cfg.Epsilon
	}

	updated := make(map[string]float64, len(names))
	for _, name := range names {
		share := 0.0
		if c := contributions[name]; c > 0 {
			share = c / total
		}
		w := current[name]
		gradient := (share - w) * success
		delta := a.cfg.LearningRate * gradient
		next := w*a.cfg.Decay + delta*(1-a.cfg.Decay)
		updated[name] = clamp(next, b.Min, b.Max)
	}
	Normalize(updated, b)
	return updated
}

func (a *Adapter) bumpState(gameKey string, state ports.TrainingState, achievedScore float64) error {
	state.Events++
	if achievedScore > state.BestScore {
		state.BestScore = achievedScore
	}
	state.UpdatedAt = a.now().Unix()
	if err := a.store.SaveTrainingState(gameKey, state); err != nil {
		return fmt.Errorf("save training state: %w", err)
	}
	return nil
}
