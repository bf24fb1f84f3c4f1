package backtest

// PrizeCategory maps a (hits, supplementary-hit) outcome to the fixed
// 6-of-49 prize tiers. Approximate payouts for the variable categories
// are reported as 0. Returns "" for a non-winning outcome.
func PrizeCategory(hits int, supplementary bool) (string, int) {
	switch {
	case hits == 6 && supplementary:
		return "jackpot", 0
	case hits == 6:
		return "2nd", 0
	case hits == 5 && supplementary:
		return "3rd", 20000
	case hits == 5:
		return "4th", 1500
	case hits == 4:
		return "5th", 48
	case hits == 3:
		return "6th", 8
	case supplementary:
		return "refund", 1
	default:
		return "", 0
	}
}
