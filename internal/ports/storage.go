// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "errors"

// Kind names one of the per-game weight maps. Each kind is an independent
// string→float64 map with its own lifecycle.
type Kind string

const (
	KindFeatures   Kind = "features"   // feature-name → weight (sums to 1.0)
	KindStrategies Kind = "strategies" // strategy-id → ensemble weight
	KindMemory     Kind = "memory"     // number → historical success credit
)

// Sentinel errors surfaced to callers. Everything else inside the engine is
// a data-sufficiency degradation, reported as a tag, never an error.
var (
	// ErrTooManyCombinations means the caller asked for more distinct
	// combinations than C(maxNumber, perDraw) allows.
	ErrTooManyCombinations = errors.New("requested combinations exceed the combinatorial space")

	// ErrUnknownGame means the game key has no registered preset.
	ErrUnknownGame = errors.New("unknown game")
)

// TrainingState is the per-game learning bookkeeping. The event counter is
// monotonically non-decreasing and the best score only ever increases.
type TrainingState struct {
	Events    uint64  `json:"events"`
	BestScore float64 `json:"best_score"`
	UpdatedAt int64   `json:"updated_at"` // unix seconds of last adapter run
}

// WeightStore persists learned weights and training state, keyed per game.
// The backing store (bbolt) gives each game its own namespace. Concurrent
// reads are safe; writes are serialized by the adapter (at most one writer
// per game key at a time).
//
// Corruption tolerance: a malformed or missing entry must read as absent
// (nil map / zero state, nil error) so the caller can fall back to defaults.
// Corruption never propagates as an error.
//
// Crash safety: SaveWeights and SaveTrainingState must be transactional.
// A crash mid-write must not corrupt previously committed data.
type WeightStore interface {
	// LoadWeights retrieves one weight map for a game.
	// Returns nil, nil if none exists (fresh game).
	LoadWeights(gameKey string, kind Kind) (map[string]float64, error)

	// SaveWeights persists one weight map for a game, overwriting any
	// prior map of the same kind.
	SaveWeights(gameKey string, kind Kind, weights map[string]float64) error

	// LoadTrainingState retrieves training bookkeeping for a game.
	// Returns the zero state and nil error if none exists.
	LoadTrainingState(gameKey string) (TrainingState, error)

	// SaveTrainingState persists training bookkeeping for a game.
	SaveTrainingState(gameKey string, state TrainingState) error

	// ResetGame removes all learned data for a game. Idempotent:
	// resetting a game that was never trained is not an error.
	ResetGame(gameKey string) error
}
