package engine

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/ports"
)

// Seed derives the one reproducible RNG seed for a prediction run from the
// history identity and the persisted learning state. Equal inputs always
// yield the same seed, so the same situation always produces the same
// suggestion — and any training event changes the suggestion.
func Seed(gameKey string, hist draw.History, weights map[string]float64, state ports.TrainingState) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	h.Write([]byte(gameKey))

	binary.LittleEndian.PutUint64(buf[:], uint64(len(hist)))
	h.Write(buf[:])

	if latest, ok := hist.Latest(); ok {
		binary.LittleEndian.PutUint64(buf[:], uint64(latest.Date.Unix()))
		h.Write(buf[:])
		for _, n := range latest.Numbers {
			binary.LittleEndian.PutUint64(buf[:], uint64(n))
			h.Write(buf[:])
		}
		for _, s := range latest.Supplementary {
			binary.LittleEndian.PutUint64(buf[:], uint64(s))
			h.Write(buf[:])
		}
	}

	// Weights fold in sorted-name order so map iteration order can't
	// leak into the seed.
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Write([]byte(name))
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(weights[name]))
		h.Write(buf[:])
	}

	binary.LittleEndian.PutUint64(buf[:], state.Events)
	h.Write(buf[:])

	return h.Sum64()
}
