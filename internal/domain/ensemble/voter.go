package ensemble

import (
	"sort"

	"github.com/drawlab/sorteo/internal/domain/features"
	"github.com/drawlab/sorteo/internal/domain/genetic"
)

// Tally is the aggregated standing of one number after every strategy has
// voted. Rebuilt from scratch on every Vote call.
type Tally struct {
	Number     int
	Votes      float64 // Σ strategyWeight × normalized internal score
	Strategies int     // distinct strategies voting for this number
	MeanRank   float64
	Consensus  float64 // ∈ [0,1]
}

// Outcome is the voter's full answer: the consensus combination, the
// alternates, and the tally table for the rationale.
type Outcome struct {
	Numbers    []int
	Confidence float64 // mean consensus over the chosen numbers

	// Alternates, per the three published variants.
	NextByVotes  []int // next numbers by raw votes, excluding chosen
	TopConsensus []int // top-consensus numbers regardless of vote total
	Blend        []int // interleave of principal picks and alternates

	// Pool is the wide balanced candidate set (low/high interleave).
	Pool []int

	Tallies []Tally // sorted by votes×consensus, descending
}

// consensus blend constants: 60% breadth of strategy agreement, 40% rank
// quality. Calibrated, not derived.
const (
	consensusAgreeWeight = 0.6
	consensusRankWeight  = 0.4
)

// Vote runs every strategy, tallies the votes with the given per-strategy
// weights, and greedily selects the consensus combination. The genetic
// strategy reuses the optimizer result the engine already computed.
func Vote(fs *features.Set, combos []genetic.ScoredCombination, strategyWeights map[string]float64) Outcome {
	votesByStrategy := [][]ballot{
		strategyGenetic(fs, combos),
		strategyHighConfidence(fs),
		strategyHotCold(fs),
		strategyEquilibrium(fs),
		strategyCycle(fs),
		strategyCorrelation(fs),
		strategyFrequency(fs),
		strategyTrend(fs),
	}
	totalStrategies := len(votesByStrategy)
	pool := float64(poolSize(dims(fs)))

	type agg struct {
		votes   float64
		count   int
		rankSum float64
	}
	tallies := map[int]*agg{}
	for _, votes := range votesByStrategy {
		if len(votes) == 0 {
			continue
		}
		// Normalize internal scores within the strategy's own list.
		maxScore := votes[0].Score
		for _, v := range votes {
			if v.Score > maxScore {
				maxScore = v.Score
			}
		}
		if maxScore < 1e-9 {
			continue
		}
		weight := strategyWeights[votes[0].Strategy]
		for _, v := range votes {
			t := tallies[v.Number]
			if t == nil {
				t = &agg{}
				tallies[v.Number] = t
			}
			t.votes += weight * (v.Score / maxScore)
			t.count++
			t.rankSum += float64(v.Rank)
		}
	}

	ranked := make([]Tally, 0, len(tallies))
	for n, t := range tallies {
		meanRank := t.rankSum / float64(t.count)
		rankQuality := 1 - (meanRank-1)/pool
		if rankQuality < 0 {
			rankQuality = 0
		}
		c := consensusAgreeWeight*float64(t.count)/float64(totalStrategies) + consensusRankWeight*rankQuality
		if c > 1 {
			c = 1
		}
		if c < 0 {
			c = 0
		}
		ranked = append(ranked, Tally{
			Number:     n,
			Votes:      t.votes,
			Strategies: t.count,
			MeanRank:   meanRank,
			Consensus:  c,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		si := ranked[i].Votes * ranked[i].Consensus
		sj := ranked[j].Votes * ranked[j].Consensus
		if si != sj {
			return si > sj
		}
		return ranked[i].Number < ranked[j].Number
	})

	chosen := selectBalanced(ranked, fs.Game.PerDraw, fs.Game.MaxNumber)

	confidence := 0.0
	chosenSet := make(map[int]bool, len(chosen))
	for _, n := range chosen {
		chosenSet[n] = true
		for _, t := range ranked {
			if t.Number == n {
				confidence += t.Consensus
				break
			}
		}
	}
	if len(chosen) > 0 {
		confidence /= float64(len(chosen))
	}

	return Outcome{
		Numbers:      chosen,
		Confidence:   confidence,
		NextByVotes:  nextByVotes(ranked, chosenSet, fs.Game.PerDraw),
		TopConsensus: topConsensus(ranked, fs.Game.PerDraw),
		Blend:        blend(chosen, nextByVotes(ranked, chosenSet, fs.Game.PerDraw), fs.Game.PerDraw),
		Pool:         balancedPool(ranked, fs.Game.MaxNumber),
		Tallies:      ranked,
	}
}

// selectBalanced greedily picks by votes×consensus. The balance
// constraint bites only on the last two picks: a final pick that would
// leave the combination all-even/all-odd or all-low/all-high is skipped
// in favor of the next candidate.
func selectBalanced(ranked []Tally, k, maxNumber int) []int {
	chosen := make([]int, 0, k)
	used := make(map[int]bool, k)

	for len(chosen) < k {
		picked := false
		for _, t := range ranked {
			if used[t.Number] {
				continue
			}
			if len(chosen) == k-1 && breaksBalance(chosen, t.Number, maxNumber) {
				continue
			}
			chosen = append(chosen, t.Number)
			used[t.Number] = true
			picked = true
			break
		}
		if !picked {
			// Candidate list exhausted (short histories produce thin
			// tallies): fall back to the lowest unused number, relaxing
			// balance only if nothing can satisfy it.
			n := fallbackNumber(used, chosen, k, maxNumber)
			chosen = append(chosen, n)
			used[n] = true
		}
	}
	sort.Ints(chosen)
	return chosen
}

// breaksBalance reports whether completing the combination with n leaves
// it all one parity or all in one half of the number range.
func breaksBalance(chosen []int, n, maxNumber int) bool {
	evens, lows := 0, 0
	low := maxNumber / 2
	all := append(append([]int{}, chosen...), n)
	for _, v := range all {
		if v%2 == 0 {
			evens++
		}
		if v <= low {
			lows++
		}
	}
	if evens == 0 || evens == len(all) {
		return true
	}
	if lows == 0 || lows == len(all) {
		return true
	}
	return false
}

func fallbackNumber(used map[int]bool, chosen []int, k, maxNumber int) int {
	for n := 1; n <= maxNumber; n++ {
		if !used[n] && !(len(chosen) == k-1 && breaksBalance(chosen, n, maxNumber)) {
			return n
		}
	}
	for n := 1; n <= maxNumber; n++ {
		if !used[n] {
			return n
		}
	}
	return 1
}

func nextByVotes(ranked []Tally, chosen map[int]bool, k int) []int {
	byVotes := make([]Tally, len(ranked))
	copy(byVotes, ranked)
	sort.Slice(byVotes, func(i, j int) bool {
		if byVotes[i].Votes != byVotes[j].Votes {
			return byVotes[i].Votes > byVotes[j].Votes
		}
		return byVotes[i].Number < byVotes[j].Number
	})
	out := make([]int, 0, k)
	for _, t := range byVotes {
		if len(out) == k {
			break
		}
		if !chosen[t.Number] {
			out = append(out, t.Number)
		}
	}
	sort.Ints(out)
	return out
}

func topConsensus(ranked []Tally, k int) []int {
	byConsensus := make([]Tally, len(ranked))
	copy(byConsensus, ranked)
	sort.Slice(byConsensus, func(i, j int) bool {
		if byConsensus[i].Consensus != byConsensus[j].Consensus {
			return byConsensus[i].Consensus > byConsensus[j].Consensus
		}
		return byConsensus[i].Number < byConsensus[j].Number
	})
	out := make([]int, 0, k)
	for _, t := range byConsensus {
		if len(out) == k {
			break
		}
		out = append(out, t.Number)
	}
	sort.Ints(out)
	return out
}

// blend interleaves principal picks with the vote alternates.
func blend(principal, alternates []int, k int) []int {
	seen := make(map[int]bool, k)
	out := make([]int, 0, k)
	for i := 0; len(out) < k && (i < len(principal) || i < len(alternates)); i++ {
		if i < len(principal) && !seen[principal[i]] {
			seen[principal[i]] = true
			out = append(out, principal[i])
		}
		if len(out) < k && i < len(alternates) && !seen[alternates[i]] {
			seen[alternates[i]] = true
			out = append(out, alternates[i])
		}
	}
	sort.Ints(out)
	return out
}

// balancedPoolSize is the wide candidate pool width used by the covering
// generator.
const balancedPoolSize = 17

// balancedPool interleaves the best low-half and high-half numbers so the
// wide candidate set never collapses onto one side of the range.
func balancedPool(ranked []Tally, maxNumber int) []int {
	mid := maxNumber / 2
	var lows, highs []int
	for _, t := range ranked {
		if t.Number <= mid {
			lows = append(lows, t.Number)
		} else {
			highs = append(highs, t.Number)
		}
	}
	out := make([]int, 0, balancedPoolSize)
	li, hi := 0, 0
	for len(out) < balancedPoolSize {
		switch {
		case li < len(lows) && (hi >= len(highs) || li <= hi):
			out = append(out, lows[li])
			li++
		case hi < len(highs):
			out = append(out, highs[hi])
			hi++
		default:
			return out
		}
	}
	return out
}
