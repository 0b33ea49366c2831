package scoring

import "sort"

// Rank returns the candidates in global order (adjusted score descending,
// ties keep input order) and fills in every candidate's per-criterion rank.
// The per-criterion table must be computed over the full working set, before
// any budget truncation.
func Rank(cands []*ScoredCandidate) []*ScoredCandidate {
	ranked := make([]*ScoredCandidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AdjustedScore > ranked[j].AdjustedScore
	})

	for _, c := range ranked {
		c.Ranks = make(map[Criterion]int, len(AllCriteria))
		c.TotalCompared = len(ranked)
	}
	for _, k := range AllCriteria {
		byCriterion := make([]*ScoredCandidate, len(ranked))
		copy(byCriterion, ranked)
		sort.SliceStable(byCriterion, func(i, j int) bool {
			si, sj := byCriterion[i].Score(k), byCriterion[j].Score(k)
			if si != sj {
				return si > sj
			}
			return byCriterion[i].ZipCode < byCriterion[j].ZipCode
		})
		for pos, c := range byCriterion {
			c.Ranks[k] = pos + 1
		}
	}
	return ranked
}
