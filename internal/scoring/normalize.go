package scoring

import (
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// Neutral defaults substituted for missing attributes.
const (
	NeutralScore          = 50.0
	DefaultCommuteMinutes = 30.0
	CommuteHorizonMinutes = 60.0
	DefaultDiversityIndex = 0.5

	// PlaceholderCriterionScore is the fixed score of criteria that no raw
	// feed populates yet (tax burden, toll-road convenience).
	PlaceholderCriterionScore = 50.0
)

var safetyBandScores = map[int]float64{
	1: 100,
	2: 80,
	3: 60,
	4: 40,
	5: 20,
}

// NormalizedScores holds one locality's 0–100 scores for a given working set.
type NormalizedScores struct {
	SchoolQuality    float64 `json:"school_quality"`
	Commute          float64 `json:"commute"`
	Safety           float64 `json:"safety"`
	Lifestyle        float64 `json:"lifestyle"`
	ChildDevelopment float64 `json:"child_development"`
	TaxBurden        float64 `json:"tax_burden"`
	TollConvenience  float64 `json:"toll_convenience"`

	Affordability float64 `json:"affordability"`
	Park          float64 `json:"park"`
}

// For returns the score of criterion c.
func (n NormalizedScores) For(c Criterion) float64 {
	switch c {
	case CriterionSchoolQuality:
		return n.SchoolQuality
	case CriterionCommute:
		return n.Commute
	case CriterionSafety:
		return n.Safety
	case CriterionLifestyle:
		return n.Lifestyle
	case CriterionChildDevelopment:
		return n.ChildDevelopment
	case CriterionTaxBurden:
		return n.TaxBurden
	case CriterionTollConvenience:
		return n.TollConvenience
	}
	return NeutralScore
}

// WorkingSet captures the distributions that quantile scores are computed
// against. It must be built from the post-exclusion candidate list.
type WorkingSet struct {
	parkDensities []float64 // ascending
	prices        []float64 // ascending
	Maxima        LifestyleMaxima
	Size          int
}

// NewWorkingSet collects the sorted metric distributions of ls. Missing values
// do not participate.
func NewWorkingSet(ls []*store.Locality) WorkingSet {
	ws := WorkingSet{Size: len(ls)}
	for _, l := range ls {
		a := l.Attributes
		if a.ParkDensity != nil {
			ws.parkDensities = append(ws.parkDensities, *a.ParkDensity)
		}
		if a.SalePrice != nil {
			ws.prices = append(ws.prices, *a.SalePrice)
		}
		if a.RestaurantCount != nil && *a.RestaurantCount > ws.Maxima.Restaurants {
			ws.Maxima.Restaurants = *a.RestaurantCount
		}
		if a.EntertainmentCount != nil && *a.EntertainmentCount > ws.Maxima.Entertainment {
			ws.Maxima.Entertainment = *a.EntertainmentCount
		}
	}
	sort.Float64s(ws.parkDensities)
	sort.Float64s(ws.prices)
	return ws
}

// QuantileRank returns the 0–100 percentile of v within sorted (ascending).
// The rank is the position of the first element >= v, so tied values share
// the lowest position. A single-member distribution ranks at 100.
func QuantileRank(sorted []float64, v float64) float64 {
	n := len(sorted)
	switch n {
	case 0:
		return NeutralScore
	case 1:
		return 100
	}
	idx := sort.SearchFloat64s(sorted, v)
	pct := float64(idx) / float64(n-1) * 100
	return math.Round(clamp(pct, 0, 100))
}

// InvertedQuantileRank is QuantileRank with lower values scoring higher.
func InvertedQuantileRank(sorted []float64, v float64) float64 {
	switch len(sorted) {
	case 0:
		return NeutralScore
	case 1:
		return 100
	}
	return 100 - QuantileRank(sorted, v)
}

// Normalizer converts raw attributes into comparable scores.
type Normalizer struct {
	lifestyle LifestyleScorer
}

// NewNormalizer creates a Normalizer. A nil scorer falls back to the default
// composite.
func NewNormalizer(ls LifestyleScorer) *Normalizer {
	if ls == nil {
		ls = DefaultLifestyleScorer()
	}
	return &Normalizer{lifestyle: ls}
}

// Normalize scores one locality against the working set.
func (n *Normalizer) Normalize(l *store.Locality, ws WorkingSet) NormalizedScores {
	a := l.Attributes
	out := NormalizedScores{
		SchoolQuality:   SchoolScore(a),
		Safety:          SafetyScore(a),
		Commute:         CommuteScore(a),
		TaxBurden:       PlaceholderCriterionScore,
		TollConvenience: PlaceholderCriterionScore,
	}

	out.Park = NeutralScore
	if a.ParkDensity != nil {
		out.Park = QuantileRank(ws.parkDensities, *a.ParkDensity)
	}

	out.Affordability = NeutralScore
	if a.SalePrice != nil {
		out.Affordability = InvertedQuantileRank(ws.prices, *a.SalePrice)
	}

	out.Lifestyle = clamp(n.lifestyle.Score(a, ws.Maxima), 0, 100)
	out.ChildDevelopment = math.Round((out.SchoolQuality + out.Park) / 2)
	return out
}

// NormalizeAll scores every locality against the set they form together.
func (n *Normalizer) NormalizeAll(ls []*store.Locality) []NormalizedScores {
	ws := NewWorkingSet(ls)
	out := make([]NormalizedScores, len(ls))
	for i, l := range ls {
		out[i] = n.Normalize(l, ws)
	}
	return out
}

// SchoolScore passes the raw signal through; missing is neutral.
func SchoolScore(a store.Attributes) float64 {
	if a.SchoolQuality == nil {
		return NeutralScore
	}
	return clamp(*a.SchoolQuality, 0, 100)
}

// SafetyScore maps the 1–5 safety band (lower is safer) to a score.
func SafetyScore(a store.Attributes) float64 {
	if a.SafetyBand == nil {
		return NeutralScore
	}
	if s, ok := safetyBandScores[*a.SafetyBand]; ok {
		return s
	}
	return NeutralScore
}

// CommuteScore maps commute minutes linearly onto 100 (no commute) .. 0 (an
// hour or more).
func CommuteScore(a store.Attributes) float64 {
	minutes := DefaultCommuteMinutes
	if a.CommuteMinutes != nil {
		minutes = *a.CommuteMinutes
	}
	return clamp(100-(minutes/CommuteHorizonMinutes)*100, 0, 100)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
