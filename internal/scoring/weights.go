package scoring

import (
	"fmt"
	"math"
)

// Criterion is one of the seven user-weighted scoring dimensions.
type Criterion string

const (
	CriterionSchoolQuality    Criterion = "school_quality"
	CriterionCommute          Criterion = "commute"
	CriterionSafety           Criterion = "safety"
	CriterionLifestyle        Criterion = "lifestyle"
	CriterionChildDevelopment Criterion = "child_development"
	CriterionTaxBurden        Criterion = "tax_burden"
	CriterionTollConvenience  Criterion = "toll_convenience"
)

// AllCriteria lists the criteria in canonical order. Insight rules and
// breakdowns iterate in this order.
var AllCriteria = []Criterion{
	CriterionSchoolQuality,
	CriterionCommute,
	CriterionSafety,
	CriterionLifestyle,
	CriterionChildDevelopment,
	CriterionTaxBurden,
	CriterionTollConvenience,
}

// Valid reports whether c is one of the known criteria.
func (c Criterion) Valid() bool {
	for _, k := range AllCriteria {
		if k == c {
			return true
		}
	}
	return false
}

// Label is the human-readable name used in insight text.
func (c Criterion) Label() string {
	switch c {
	case CriterionSchoolQuality:
		return "school quality"
	case CriterionCommute:
		return "commute"
	case CriterionSafety:
		return "safety"
	case CriterionLifestyle:
		return "lifestyle & convenience"
	case CriterionChildDevelopment:
		return "child development"
	case CriterionTaxBurden:
		return "tax burden"
	case CriterionTollConvenience:
		return "toll-road convenience"
	default:
		return string(c)
	}
}

// Business constants for the priority layer.
const (
	// NonNegotiableFactor multiplies the weight multiplier of a criterion the
	// user marked as a dealbreaker, regardless of its stated weight.
	NonNegotiableFactor = 4.0

	MaxUserWeight     = 3
	MaxNonNegotiables = 3
	MaxLifestyleTags  = 2
)

// weightMultipliers maps a 0–3 user weight to its score multiplier.
var weightMultipliers = [MaxUserWeight + 1]float64{0.5, 1.0, 1.5, 2.0}

// Multiplier returns the priority multiplier for a user weight. Out-of-range
// weights are clamped rather than rejected.
func Multiplier(weight int, nonNegotiable bool) float64 {
	if weight < 0 {
		weight = 0
	}
	if weight > MaxUserWeight {
		weight = MaxUserWeight
	}
	m := weightMultipliers[weight]
	if nonNegotiable {
		m *= NonNegotiableFactor
	}
	return m
}

// CategoryWeightSet is the base weight of each criterion in the
// priority-weighted score. All weights must sum to 1.0 (±0.001 tolerance).
type CategoryWeightSet struct {
	SchoolQuality    float64
	Safety           float64
	Commute          float64
	Lifestyle        float64
	TaxBurden        float64
	ChildDevelopment float64
	TollConvenience  float64
}

// DefaultCategoryWeights returns the standard category distribution.
func DefaultCategoryWeights() CategoryWeightSet {
	return CategoryWeightSet{
		SchoolQuality:    0.20,
		Safety:           0.20,
		Commute:          0.15,
		Lifestyle:        0.15,
		TaxBurden:        0.10,
		ChildDevelopment: 0.15,
		TollConvenience:  0.05,
	}
}

// Sum returns the total of all weights.
func (w CategoryWeightSet) Sum() float64 {
	return w.SchoolQuality + w.Safety + w.Commute + w.Lifestyle +
		w.TaxBurden + w.ChildDevelopment + w.TollConvenience
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w CategoryWeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("category weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, c := range AllCriteria {
		if v := w.For(c); v < 0 {
			return fmt.Errorf("negative category weight for %s: %f", c, v)
		}
	}
	return nil
}

// For returns the base weight of criterion c.
func (w CategoryWeightSet) For(c Criterion) float64 {
	switch c {
	case CriterionSchoolQuality:
		return w.SchoolQuality
	case CriterionSafety:
		return w.Safety
	case CriterionCommute:
		return w.Commute
	case CriterionLifestyle:
		return w.Lifestyle
	case CriterionTaxBurden:
		return w.TaxBurden
	case CriterionChildDevelopment:
		return w.ChildDevelopment
	case CriterionTollConvenience:
		return w.TollConvenience
	}
	return 0
}

// BaselineWeightSet holds the fixed coefficients of the objective baseline
// score. Independent of user preferences.
type BaselineWeightSet struct {
	SchoolQuality    float64
	Safety           float64
	Diversity        float64
	Affordability    float64
	Lifestyle        float64
	Commute          float64
	ChildDevelopment float64
	QualityOfLife    float64
}

// DefaultBaselineWeights returns the standard baseline coefficients.
func DefaultBaselineWeights() BaselineWeightSet {
	return BaselineWeightSet{
		SchoolQuality:    0.18,
		Safety:           0.18,
		Diversity:        0.10,
		Affordability:    0.10,
		Lifestyle:        0.10,
		Commute:          0.08,
		ChildDevelopment: 0.12,
		QualityOfLife:    0.14,
	}
}

// Sum returns the total of all coefficients.
func (w BaselineWeightSet) Sum() float64 {
	return w.SchoolQuality + w.Safety + w.Diversity + w.Affordability +
		w.Lifestyle + w.Commute + w.ChildDevelopment + w.QualityOfLife
}

// BlendWeights splits the fit score between the baseline and the
// priority-weighted layer.
type BlendWeights struct {
	Baseline float64
	Priority float64
}

// DefaultBlend is used when no non-negotiable criterion is set.
func DefaultBlend() BlendWeights { return BlendWeights{Baseline: 0.6, Priority: 0.4} }

// NonNegotiableBlend lets declared dealbreakers dominate the fit score.
func NonNegotiableBlend() BlendWeights { return BlendWeights{Baseline: 0.4, Priority: 0.6} }
