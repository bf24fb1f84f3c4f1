// Package bbolt implements the ports.WeightStore interface using bbolt
// (embedded B+ tree). Each game gets its own top-level bucket holding the
// JSON-serialized weight maps and training state. Writes are
// transactional — a crash mid-write cannot corrupt previously committed
// data — and a per-game mutex keeps writers to one at a time per key.
package bbolt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/drawlab/sorteo/internal/ports"
)

var keyState = []byte("state")

func weightsKey(kind ports.Kind) []byte {
	return []byte("weights:" + string(kind))
}

// Store implements ports.WeightStore backed by bbolt.
type Store struct {
	db *bolt.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex // one writer at a time per game key
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, locks: map[string]*sync.Mutex{}}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) gameLock(gameKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[gameKey] == nil {
		s.locks[gameKey] = &sync.Mutex{}
	}
	return s.locks[gameKey]
}

// LoadWeights retrieves one weight map for a game. Missing buckets,
// missing keys, and malformed JSON all read as absent (nil, nil) so the
// caller falls back to defaults — corruption never surfaces as an error.
func (s *Store) LoadWeights(gameKey string, kind ports.Kind) (map[string]float64, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(gameKey))
		if b == nil {
			return nil
		}
		if v := b.Get(weightsKey(kind)); v != nil {
			raw = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var weights map[string]float64
	if err := json.Unmarshal(raw, &weights); err != nil {
		return nil, nil // corrupt entry reads as absent
	}
	return weights, nil
}

// SaveWeights persists one weight map for a game.
func (s *Store) SaveWeights(gameKey string, kind ports.Kind, weights map[string]float64) error {
	lock := s.gameLock(gameKey)
	lock.Lock()
	defer lock.Unlock()

	raw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(gameKey))
		if err != nil {
			return err
		}
		return b.Put(weightsKey(kind), raw)
	})
}

// LoadTrainingState retrieves training bookkeeping for a game. Absent or
// corrupt state reads as the zero state.
func (s *Store) LoadTrainingState(gameKey string) (ports.TrainingState, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(gameKey))
		if b == nil {
			return nil
		}
		if v := b.Get(keyState); v != nil {
			raw = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return ports.TrainingState{}, fmt.Errorf("load training state: %w", err)
	}
	if raw == nil {
		return ports.TrainingState{}, nil
	}
	var state ports.TrainingState
	if err := json.Unmarshal(raw, &state); err != nil {
		return ports.TrainingState{}, nil
	}
	return state, nil
}

// SaveTrainingState persists training bookkeeping for a game.
func (s *Store) SaveTrainingState(gameKey string, state ports.TrainingState) error {
	lock := s.gameLock(gameKey)
	lock.Lock()
	defer lock.Unlock()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal training state: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(gameKey))
		if err != nil {
			return err
		}
		return b.Put(keyState, raw)
	})
}

// ResetGame removes all learned data for a game. Idempotent.
func (s *Store) ResetGame(gameKey string) error {
	lock := s.gameLock(gameKey)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(gameKey)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(gameKey))
	})
}
