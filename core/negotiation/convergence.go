package negotiation

import (
	"math"
	"sort"
)

// Movement trends across rounds
type Trend string

const (
	TrendConverging       Trend = "converging"
	TrendStable           Trend = "stable"
	TrendDiverging        Trend = "diverging"
	TrendInsufficientData Trend = "insufficient_data"
)

// ConvergenceReport carries the numeric convergence signals for a simulation.
// Gap and GapPercentage are nil until both sides have offered in some round.
type ConvergenceReport struct {
	Gap                   *float64 `json:"gap"`
	GapPercentage         *float64 `json:"gap_percentage"`
	MovementTrend         Trend    `json:"movement_trend"`
	SettlementProbability int      `json:"settlement_probability"`
}

// latestOfferByRole returns the authoritative offer for the given role among
// the offers of one round: the most recent by submission time.
func latestOfferByRole(offers []Offer, role Role) (Offer, bool) {
	var latest Offer
	var found bool
	for _, off := range offers {
		if off.Role != role {
			continue
		}
		if !found || off.SubmittedAt.After(latest.SubmittedAt) {
			latest = off
			found = true
		}
	}
	return latest, found
}

// RoundGap computes |plaintiff - defendant| over each side's latest offer in
// one round. The second result is false when either side has not offered yet.
func RoundGap(offers []Offer) (float64, bool) {
	p, pOK := latestOfferByRole(offers, RolePlaintiff)
	d, dOK := latestOfferByRole(offers, RoleDefendant)
	if !pOK || !dOK {
		return 0, false
	}
	return math.Abs(p.Amount - d.Amount), true
}

// GapPercentage expresses the round gap as a percentage of the plaintiff's
// latest amount, rounded to 1 decimal.
func GapPercentage(offers []Offer) (float64, bool) {
	p, pOK := latestOfferByRole(offers, RolePlaintiff)
	gap, ok := RoundGap(offers)
	if !ok || !pOK || p.Amount == 0 {
		return 0, false
	}
	return math.Round(gap/p.Amount*100*10) / 10, true
}

// roundGaps returns the per-round gaps for every round in which both sides
// have submitted, ordered by ascending round number.
func roundGaps(rounds []Round, offersByRound map[string][]Offer) []float64 {
	sorted := make([]Round, len(rounds))
	copy(sorted, rounds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	gaps := make([]float64, 0, len(sorted))
	for _, rnd := range sorted {
		if gap, ok := RoundGap(offersByRound[rnd.ID]); ok {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// MovementTrend compares the gaps of the two most recent rounds in which both
// sides submitted offers.
func MovementTrend(rounds []Round, offersByRound map[string][]Offer) Trend {
	gaps := roundGaps(rounds, offersByRound)
	if len(gaps) < 2 {
		return TrendInsufficientData
	}
	newer, older := gaps[len(gaps)-1], gaps[len(gaps)-2]
	switch {
	case newer < older:
		return TrendConverging
	case newer > older:
		return TrendDiverging
	default:
		return TrendStable
	}
}

// SettlementProbability estimates the likelihood of settlement on a 5-95
// scale: a base value per trend, a gap-size adjustment, and round pressure.
func SettlementProbability(trend Trend, gap float64, gapKnown bool, currentRound int) int {
	var probability int
	switch trend {
	case TrendConverging:
		probability = 60
	case TrendStable:
		probability = 30
	case TrendDiverging:
		probability = 10
	default:
		probability = 25
	}

	if gapKnown {
		switch {
		case gap < 25000:
			probability += 30
		case gap < 50000:
			probability += 15
		case gap > 200000:
			probability -= 20
		}
	}

	probability += (currentRound - 1) * 5

	if probability < 5 {
		probability = 5
	} else if probability > 95 {
		probability = 95
	}
	return probability
}
