package scoring

import "math"

// frontierPoint is a candidate projected onto the value dimensions.
type frontierPoint struct {
	score   float64 // higher is better
	price   float64 // lower is better
	commute float64 // higher is better
}

// MarkValueFrontier flags the candidates that no other candidate dominates on
// (adjusted score, price, commute score). A candidate is dominated if another
// is >= on score and commute, <= on price, and strictly better on at least
// one. Candidates without a price are treated as the most expensive.
// O(n^2) dominance check; the shown list is at most a handful of entries.
func MarkValueFrontier(cands []*ScoredCandidate) {
	points := make([]frontierPoint, len(cands))
	for i, c := range cands {
		points[i] = frontierPoint{
			score:   c.AdjustedScore,
			price:   c.PriceOr(math.Inf(1)),
			commute: c.Scores.Commute,
		}
	}
	for i := range cands {
		dominated := false
		for j := range cands {
			if i == j {
				continue
			}
			if dominates(points[j], points[i]) {
				dominated = true
				break
			}
		}
		cands[i].OnValueFrontier = !dominated
	}
}

// dominates returns true if a dominates b.
func dominates(a, b frontierPoint) bool {
	if a.score < b.score || a.commute < b.commute || a.price > b.price {
		return false
	}
	return a.score > b.score || a.commute > b.commute || a.price < b.price
}
