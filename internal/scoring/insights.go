package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InsightType tags which rule produced an insight.
type InsightType string

const (
	InsightValueAlternative InsightType = "value_alternative"
	InsightJustOutOfReach   InsightType = "just_out_of_reach"
	InsightTradeOffAlert    InsightType = "trade_off_alert"
)

// Insight rule thresholds.
const (
	MaxInsights = 2

	valueAltScoreWindow = 15.0
	valueAltMinSavings  = 50_000.0
	valueAltRounding    = 1_000.0

	reachCeilingStretch = 1.25
	reachRounding       = 5_000.0
	reachMinWeight      = 1

	tradeOffMinWeight = 2
	tradeOffWeakScore = 60.0
	tradeOffMinGap    = 20.0
	tradeOffScanDepth = 5
)

// Insight is a short derived narrative over the ranked result.
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Highlight   string      `json:"highlight,omitempty"`
	ZipCode     string      `json:"zip_code,omitempty"`
}

// GenerateInsights evaluates the insight rules in priority order (value
// alternative, just out of reach, trade-off alert) and returns at most
// MaxInsights records, one per type. shown is the budget-selected list and
// pool the full ranked working set. Neither is modified.
func GenerateInsights(shown, pool []*ScoredCandidate, prefs Preferences, policy BudgetPolicy) []Insight {
	if len(shown) == 0 {
		return nil
	}

	rules := []func() (Insight, bool){
		func() (Insight, bool) { return valueAlternative(shown) },
		func() (Insight, bool) { return justOutOfReach(shown, pool, prefs, policy) },
		func() (Insight, bool) { return tradeOffAlert(shown, prefs) },
	}

	var out []Insight
	for _, rule := range rules {
		if len(out) == MaxInsights {
			break
		}
		if ins, ok := rule(); ok {
			out = append(out, ins)
		}
	}
	return out
}

func valueAlternative(shown []*ScoredCandidate) (Insight, bool) {
	top := shown[0]
	if !top.HasPrice() || top.AdjustedScore <= 0 {
		return Insight{}, false
	}
	for _, alt := range shown[1:] {
		if !alt.HasPrice() {
			continue
		}
		if top.AdjustedScore-alt.AdjustedScore > valueAltScoreWindow {
			continue
		}
		diff := *top.Price - *alt.Price
		if diff < valueAltMinSavings {
			continue
		}
		match := int(math.Round(alt.AdjustedScore / top.AdjustedScore * 100))
		savings := math.Round(diff/valueAltRounding) * valueAltRounding
		return Insight{
			Type:  InsightValueAlternative,
			Title: "Similar fit for less",
			Description: fmt.Sprintf("%s is a %d%% match compared to %s and costs about %s less.",
				alt.Name, match, top.Name, formatMoney(savings)),
			Highlight: "Save " + formatMoney(savings),
			ZipCode:   alt.ZipCode,
		}, true
	}
	return Insight{}, false
}

func justOutOfReach(shown, pool []*ScoredCandidate, prefs Preferences, policy BudgetPolicy) (Insight, bool) {
	if prefs.BudgetMax <= 0 {
		return Insight{}, false
	}
	floor := prefs.BudgetMax * policy.PrimaryStretch
	ceiling := prefs.BudgetMax * reachCeilingStretch
	topShown := shown[0].AdjustedScore

	inShown := make(map[string]bool, len(shown))
	for _, c := range shown {
		inShown[c.ZipCode] = true
	}

	var best *ScoredCandidate
	for _, c := range pool {
		if inShown[c.ZipCode] || !c.HasPrice() {
			continue
		}
		if *c.Price <= floor || *c.Price > ceiling {
			continue
		}
		if c.AdjustedScore <= topShown {
			continue
		}
		if best == nil || c.AdjustedScore > best.AdjustedScore {
			best = c
		}
	}
	if best == nil {
		return Insight{}, false
	}

	delta := math.Ceil((*best.Price-prefs.BudgetMax)/reachRounding) * reachRounding
	knownFor := strongestCriterion(best, prefs)
	return Insight{
		Type:  InsightJustOutOfReach,
		Title: "Just out of reach",
		Description: fmt.Sprintf("Stretching your budget by %s opens up %s, which outscores every match %s and stands out for %s.",
			formatMoney(delta), best.Name, budgetRange(prefs), knownFor.Label()),
		Highlight: "+" + formatMoney(delta),
		ZipCode:   best.ZipCode,
	}, true
}

// strongestCriterion is the criterion with the highest raw score among those
// the user weighted at least reachMinWeight; all criteria when none qualify.
func strongestCriterion(c *ScoredCandidate, prefs Preferences) Criterion {
	pick := func(minWeight int) (Criterion, bool) {
		var best Criterion
		found := false
		for _, k := range AllCriteria {
			if prefs.Weight(k) < minWeight {
				continue
			}
			if !found || c.Score(k) > c.Score(best) {
				best = k
				found = true
			}
		}
		return best, found
	}
	if k, ok := pick(reachMinWeight); ok {
		return k
	}
	k, _ := pick(0)
	return k
}

func tradeOffAlert(shown []*ScoredCandidate, prefs Preferences) (Insight, bool) {
	top := shown[0]
	depth := len(shown)
	if depth > tradeOffScanDepth {
		depth = tradeOffScanDepth
	}
	for _, k := range AllCriteria {
		if prefs.Weight(k) < tradeOffMinWeight || top.Score(k) >= tradeOffWeakScore {
			continue
		}
		for _, alt := range shown[1:depth] {
			gap := alt.Score(k) - top.Score(k)
			if gap < tradeOffMinGap {
				continue
			}
			overall := top.AdjustedScore - alt.AdjustedScore
			return Insight{
				Type:  InsightTradeOffAlert,
				Title: "Trade-off alert",
				Description: fmt.Sprintf("%s is your top match but scores only %d on %s. %s scores %d points higher there, at %d points lower overall.",
					top.Name, int(math.Round(top.Score(k))), k.Label(), alt.Name,
					int(math.Round(gap)), int(math.Round(overall))),
				Highlight: fmt.Sprintf("+%d %s", int(math.Round(gap)), k.Label()),
				ZipCode:   alt.ZipCode,
			}, true
		}
	}
	return Insight{}, false
}

func budgetRange(prefs Preferences) string {
	if prefs.BudgetMin > 0 {
		return fmt.Sprintf("in your %s–%s range", formatMoney(prefs.BudgetMin), formatMoney(prefs.BudgetMax))
	}
	return "up to " + formatMoney(prefs.BudgetMax)
}

// formatMoney renders whole-dollar amounts as $80k or $1.25M.
func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000:
		s := strconv.FormatFloat(v/1_000_000, 'f', 2, 64)
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		return sign + "$" + s + "M"
	case v >= 1_000:
		return fmt.Sprintf("%s$%dk", sign, int(math.Round(v/1_000)))
	default:
		return fmt.Sprintf("%s$%d", sign, int(math.Round(v)))
	}
}
