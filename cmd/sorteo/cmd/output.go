package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/drawlab/sorteo/internal/domain/backtest"
	"github.com/drawlab/sorteo/internal/domain/engine"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

func formatNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}

// printReport renders a prediction report for the terminal.
//
//	⚡ primitiva │ full │ 1,024 draws │ seed 0x…
//	  1. 03 17 22 31 40 47  (consensus, 0.81)
func printReport(report *engine.Report) {
	fmt.Printf("%s⚡ %s%s │ %s │ %d draws │ seed %#x\n",
		colorBold, report.GameKey, colorReset, report.Mode, report.HistoryLen, report.Seed)

	for i, c := range report.Combinations {
		fmt.Printf("  %d. %s%s%s  %s(%s, %.2f)%s\n",
			i+1, colorCyan, formatNumbers(c.Numbers), colorReset,
			colorGray, c.Source, c.Confidence, colorReset)
	}

	if len(report.Supplementary) > 0 {
		fmt.Printf("  Supplementary: %s%s%s\n", colorMagenta, formatNumbers(report.Supplementary), colorReset)
	}

	alt := report.Alternates
	if len(alt.NextByVotes) > 0 {
		fmt.Printf("  %sAlternates%s\n", colorBold, colorReset)
		fmt.Printf("    votes:     %s\n", formatNumbers(alt.NextByVotes))
		fmt.Printf("    consensus: %s\n", formatNumbers(alt.TopConsensus))
		fmt.Printf("    blend:     %s\n", formatNumbers(alt.Blend))
	}
	if len(alt.Pool) > 0 {
		fmt.Printf("    pool:      %s\n", formatNumbers(alt.Pool))
	}

	fmt.Printf("  Confidence: %s\n", confidenceBadge(report.Confidence))
}

func confidenceBadge(c float64) string {
	switch {
	case c >= 0.6:
		return fmt.Sprintf("%s%.2f high%s", colorGreen, c, colorReset)
	case c >= 0.35:
		return fmt.Sprintf("%s%.2f medium%s", colorYellow, c, colorReset)
	default:
		return fmt.Sprintf("%s%.2f low%s", colorGray, c, colorReset)
	}
}

// printBacktest renders the walk-forward hit table, one row per strategy.
func printBacktest(result *backtest.Result, perDraw int) {
	fmt.Printf("%s⚡ backtest %s%s │ %d draws replayed\n",
		colorBold, result.GameKey, colorReset, result.Draws)

	fmt.Printf("  %-16s %7s %7s   hits\n", "strategy", "mean", "3+")
	for _, m := range result.Methods {
		name := fmt.Sprintf("%-16s", m.Strategy)
		if m.Strategy == "consensus" {
			name = colorGreen + name + colorReset
		}
		// PctThreePlus is already a percentage.
		fmt.Printf("  %s %7.3f %6.1f%%   %s\n", name, m.MeanHits, m.PctThreePlus, formatBuckets(m.HitBuckets))
	}

	if len(result.PrizeTallies) > 0 {
		categories := make([]string, 0, len(result.PrizeTallies))
		for category := range result.PrizeTallies {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		parts := make([]string, len(categories))
		for i, category := range categories {
			parts[i] = fmt.Sprintf("%s×%d", category, result.PrizeTallies[category])
		}
		fmt.Printf("  Prizes (consensus): %s%s%s\n", colorYellow, strings.Join(parts, " "), colorReset)
	}

	if len(result.ConsensusHits) > 0 {
		nums := make([]int, 0, len(result.ConsensusHits))
		for n := range result.ConsensusHits {
			nums = append(nums, n)
		}
		sort.Slice(nums, func(i, j int) bool {
			if result.ConsensusHits[nums[i]] != result.ConsensusHits[nums[j]] {
				return result.ConsensusHits[nums[i]] > result.ConsensusHits[nums[j]]
			}
			return nums[i] < nums[j]
		})
		if len(nums) > perDraw {
			nums = nums[:perDraw]
		}
		fmt.Printf("  Best hitters: %s%s%s\n", colorCyan, formatNumbers(nums), colorReset)
	}
}

func formatBuckets(buckets []int) string {
	parts := make([]string, len(buckets))
	for i, n := range buckets {
		parts[i] = fmt.Sprintf("%d:%d", i, n)
	}
	return colorGray + strings.Join(parts, " ") + colorReset
}

// printWeights renders a weight vector sorted by weight descending.
func printWeights(title string, weights map[string]float64) {
	fmt.Printf("  %s%s%s\n", colorBold, title, colorReset)
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if weights[names[i]] != weights[names[j]] {
			return weights[names[i]] > weights[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		bar := strings.Repeat("█", int(weights[name]*40))
		fmt.Printf("    %-16s %.4f %s%s%s\n", name, weights[name], colorCyan, bar, colorReset)
	}
}
