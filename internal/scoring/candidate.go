package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

var (
	ErrMissingID   = errors.New("locality missing zip code")
	ErrDuplicateID = errors.New("duplicate locality zip code")
)

// CriterionResult captures one criterion's contribution to the
// priority-weighted score.
type CriterionResult struct {
	Criterion     Criterion `json:"criterion"`
	Weight        int       `json:"weight"`
	Multiplier    float64   `json:"multiplier"`
	NonNegotiable bool      `json:"non_negotiable"`
	Score         float64   `json:"score"`
	Contribution  float64   `json:"contribution"`
}

// ScoredCandidate is one locality's complete scoring output for a request.
type ScoredCandidate struct {
	ZipCode string   `json:"zip_code"`
	Name    string   `json:"name"`
	Price   *float64 `json:"price,omitempty"`
	Rent    *float64 `json:"rent,omitempty"`

	Scores        NormalizedScores  `json:"scores"`
	BaselineScore float64           `json:"baseline_score"`
	PriorityScore float64           `json:"priority_score"`
	FitScore      float64           `json:"fit_score"`
	Modifiers     ModifierBreakdown `json:"modifiers"`
	AdjustedScore float64           `json:"adjusted_score"`
	Breakdown     []CriterionResult `json:"breakdown"`

	Ranks         map[Criterion]int `json:"ranks"`
	TotalCompared int               `json:"total_compared"`

	IsStretchBudget bool `json:"is_stretch_budget"`
	OnValueFrontier bool `json:"on_value_frontier"`

	Sources     []string             `json:"sources,omitempty"`
	LastUpdated map[string]time.Time `json:"last_updated,omitempty"`

	locality *store.Locality
}

// Locality returns the merged locality the candidate was scored from.
func (c *ScoredCandidate) Locality() *store.Locality { return c.locality }

// Score returns the raw normalized score of criterion k.
func (c *ScoredCandidate) Score(k Criterion) float64 { return c.Scores.For(k) }

// HasPrice reports whether a sale-price estimate exists.
func (c *ScoredCandidate) HasPrice() bool { return c.Price != nil }

// PriceOr returns the sale price, or def when missing.
func (c *ScoredCandidate) PriceOr(def float64) float64 {
	if c.Price == nil {
		return def
	}
	return *c.Price
}

// ValidateLocalities fails fast on malformed input before the pipeline runs.
func ValidateLocalities(ls []*store.Locality) error {
	seen := make(map[string]bool, len(ls))
	for i, l := range ls {
		if l == nil || strings.TrimSpace(l.ZipCode) == "" {
			return fmt.Errorf("locality at index %d: %w", i, ErrMissingID)
		}
		if seen[l.ZipCode] {
			return fmt.Errorf("zip %s: %w", l.ZipCode, ErrDuplicateID)
		}
		seen[l.ZipCode] = true
	}
	return nil
}
