package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// parkDensityQoLScale turns parks per unit area into a 0–100 quality-of-life
// signal when no explicit score exists.
const parkDensityQoLScale = 20.0

// CriterionScores is the output of the two-layer model for one locality.
type CriterionScores struct {
	Baseline  float64           `json:"baseline"`
	Priority  float64           `json:"priority"`
	Fit       float64           `json:"fit"`
	Blend     BlendWeights      `json:"blend"`
	Breakdown []CriterionResult `json:"breakdown"`
}

// CriterionScorer computes the baseline, priority-weighted and fit scores.
type CriterionScorer struct {
	categories CategoryWeightSet
	baseline   BaselineWeightSet
}

// NewCriterionScorer creates a scorer with the given weight sets.
func NewCriterionScorer(categories CategoryWeightSet, baseline BaselineWeightSet) *CriterionScorer {
	return &CriterionScorer{categories: categories, baseline: baseline}
}

// Score runs both layers and blends them. It never fails: missing inputs were
// replaced by neutral values during normalization.
func (s *CriterionScorer) Score(l *store.Locality, n NormalizedScores, prefs Preferences) CriterionScores {
	baseline := s.BaselineScore(l.Attributes, n)
	priority, breakdown := s.PriorityScore(n, prefs)

	blend := DefaultBlend()
	if len(prefs.NonNegotiables) > 0 {
		blend = NonNegotiableBlend()
	}

	return CriterionScores{
		Baseline:  baseline,
		Priority:  priority,
		Fit:       baseline*blend.Baseline + priority*blend.Priority,
		Blend:     blend,
		Breakdown: breakdown,
	}
}

// BaselineScore is the objective, preference-independent score.
//
//	0.18·school + 0.18·safety + 0.10·diversity×100 + 0.10·affordability +
//	0.10·lifestyle + 0.08·commute + 0.12·childDev + 0.14·qualityOfLife
func (s *CriterionScorer) BaselineScore(a store.Attributes, n NormalizedScores) float64 {
	diversity := DefaultDiversityIndex
	if a.DiversityIndex != nil {
		diversity = clamp(*a.DiversityIndex, 0, 1)
	}

	w := s.baseline
	score := w.SchoolQuality*n.SchoolQuality +
		w.Safety*n.Safety +
		w.Diversity*diversity*100 +
		w.Affordability*n.Affordability +
		w.Lifestyle*n.Lifestyle +
		w.Commute*n.Commute +
		w.ChildDevelopment*n.ChildDevelopment +
		w.QualityOfLife*QualityOfLife(a, n)
	return clamp(score, 0, 100)
}

// QualityOfLife returns the explicit score when present, otherwise the mean of
// safety, lifestyle and scaled park density.
func QualityOfLife(a store.Attributes, n NormalizedScores) float64 {
	if a.QualityOfLife != nil {
		return clamp(*a.QualityOfLife, 0, 100)
	}
	parks := NeutralScore
	if a.ParkDensity != nil {
		parks = math.Min(*a.ParkDensity*parkDensityQoLScale, 100)
		parks = math.Max(parks, 0)
	}
	return (n.Safety + n.Lifestyle + parks) / 3
}

// PriorityScore applies the user multipliers to the category weights and
// re-normalizes by the total weight actually used, so all-default weights
// reduce to the category weights themselves.
func (s *CriterionScorer) PriorityScore(n NormalizedScores, prefs Preferences) (float64, []CriterionResult) {
	results := make([]CriterionResult, 0, len(AllCriteria))
	var weighted, totalWeight float64
	for _, c := range AllCriteria {
		weight := prefs.Weight(c)
		nonNeg := prefs.IsNonNegotiable(c)
		mult := Multiplier(weight, nonNeg)
		effective := mult * s.categories.For(c)
		score := n.For(c)

		weighted += score * effective
		totalWeight += effective
		results = append(results, CriterionResult{
			Criterion:     c,
			Weight:        weight,
			Multiplier:    mult,
			NonNegotiable: nonNeg,
			Score:         score,
			Contribution:  score * effective,
		})
	}

	if totalWeight <= 0 {
		return NeutralScore, results
	}
	for i := range results {
		results[i].Contribution /= totalWeight
	}
	return clamp(weighted/totalWeight, 0, 100), results
}
