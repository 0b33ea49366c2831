package scoring

// BudgetTier identifies which relaxation step produced the shown list.
type BudgetTier string

const (
	TierPrimary  BudgetTier = "primary"
	TierRelaxed  BudgetTier = "relaxed"
	TierFallback BudgetTier = "fallback"
	TierNone     BudgetTier = "none"
)

// BudgetPolicy configures the three-tier selection.
type BudgetPolicy struct {
	PrimaryStretch float64 `json:"primary_stretch"` // ceiling multiplier for the primary tier
	RelaxedStretch float64 `json:"relaxed_stretch"` // ceiling multiplier for the relaxed tier
	MinPrimary     int     `json:"min_primary"`     // primary matches needed to skip relaxation
	MinRelaxed     int     `json:"min_relaxed"`     // relaxed matches needed to skip the fallback
	Limit          int     `json:"limit"`           // max candidates shown
}

// DefaultBudgetPolicy returns the 110% / 120% policy showing up to five.
func DefaultBudgetPolicy() BudgetPolicy {
	return BudgetPolicy{
		PrimaryStretch: 1.10,
		RelaxedStretch: 1.20,
		MinPrimary:     3,
		MinRelaxed:     3,
		Limit:          5,
	}
}

// Selection is the output of SelectForBudget.
type Selection struct {
	Shown []*ScoredCandidate
	Tier  BudgetTier
}

// SelectForBudget picks the shown list from ranked (already in global order).
// Shown candidates are copies; stretch flags never leak into ranked.
//
//  1. primary: price <= max×PrimaryStretch, if at least MinPrimary match
//  2. relaxed: price <= max×RelaxedStretch, if at least MinRelaxed match;
//     flags candidates over the primary ceiling
//  3. fallback: global top, all flagged
//
// A budgetMax of zero means no ceiling. Candidates without a price never
// qualify for tiers 1 and 2.
func (p BudgetPolicy) SelectForBudget(ranked []*ScoredCandidate, budgetMax float64) Selection {
	if len(ranked) == 0 {
		return Selection{Tier: TierNone}
	}

	if budgetMax <= 0 {
		return Selection{Shown: p.take(ranked, nil), Tier: TierPrimary}
	}

	primaryCeiling := budgetMax * p.PrimaryStretch
	primary := withinCeiling(ranked, primaryCeiling)
	if len(primary) >= p.MinPrimary {
		return Selection{Shown: p.take(primary, nil), Tier: TierPrimary}
	}

	relaxed := withinCeiling(ranked, budgetMax*p.RelaxedStretch)
	if len(relaxed) > 0 && len(relaxed) >= p.MinRelaxed {
		return Selection{
			Shown: p.take(relaxed, func(c *ScoredCandidate) bool {
				return c.PriceOr(0) > primaryCeiling
			}),
			Tier: TierRelaxed,
		}
	}

	return Selection{
		Shown: p.take(ranked, func(*ScoredCandidate) bool { return true }),
		Tier:  TierFallback,
	}
}

func (p BudgetPolicy) take(cands []*ScoredCandidate, stretch func(*ScoredCandidate) bool) []*ScoredCandidate {
	n := len(cands)
	if p.Limit > 0 && n > p.Limit {
		n = p.Limit
	}
	out := make([]*ScoredCandidate, n)
	for i := 0; i < n; i++ {
		c := *cands[i]
		c.IsStretchBudget = stretch != nil && stretch(cands[i])
		out[i] = &c
	}
	return out
}

func withinCeiling(ranked []*ScoredCandidate, ceiling float64) []*ScoredCandidate {
	var out []*ScoredCandidate
	for _, c := range ranked {
		if c.HasPrice() && *c.Price <= ceiling {
			out = append(out, c)
		}
	}
	return out
}
