package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// LifestyleMaxima are the working-set maxima the density sub-scores are
// scaled against.
type LifestyleMaxima struct {
	Restaurants   int `json:"restaurants"`
	Entertainment int `json:"entertainment"`
}

// LifestyleScorer produces the lifestyle/convenience/culture composite.
// Implementations must return a value in [0,100] that is monotonic in each
// sub-metric.
type LifestyleScorer interface {
	Score(a store.Attributes, maxima LifestyleMaxima) float64
}

// LifestyleScorerFunc adapts a plain function to LifestyleScorer.
type LifestyleScorerFunc func(a store.Attributes, maxima LifestyleMaxima) float64

func (f LifestyleScorerFunc) Score(a store.Attributes, maxima LifestyleMaxima) float64 {
	return f(a, maxima)
}

// CompositeLifestyleScorer blends four sub-scores with fixed weights.
type CompositeLifestyleScorer struct {
	Restaurants   float64
	Diversity     float64
	Entertainment float64
	Convenience   float64
}

// DefaultLifestyleScorer returns the standard composite weighting.
func DefaultLifestyleScorer() *CompositeLifestyleScorer {
	return &CompositeLifestyleScorer{
		Restaurants:   0.35,
		Diversity:     0.20,
		Entertainment: 0.25,
		Convenience:   0.20,
	}
}

func (s *CompositeLifestyleScorer) Score(a store.Attributes, maxima LifestyleMaxima) float64 {
	restaurants := density(a.RestaurantCount, maxima.Restaurants)
	entertainment := density(a.EntertainmentCount, maxima.Entertainment)

	diversity := DefaultDiversityIndex * 100
	if a.DiversityIndex != nil {
		diversity = clamp(*a.DiversityIndex, 0, 1) * 100
	}
	convenience := NeutralScore
	if a.ConvenienceScore != nil {
		convenience = clamp(*a.ConvenienceScore, 0, 100)
	}

	total := s.Restaurants + s.Diversity + s.Entertainment + s.Convenience
	if total <= 0 {
		return NeutralScore
	}
	score := (restaurants*s.Restaurants + diversity*s.Diversity +
		entertainment*s.Entertainment + convenience*s.Convenience) / total
	return math.Round(clamp(score, 0, 100))
}

// density scales a count against the working-set maximum; missing counts and
// an all-zero set score 0.
func density(count *int, max int) float64 {
	if count == nil || max <= 0 || *count <= 0 {
		return 0
	}
	return clamp(float64(*count)/float64(max)*100, 0, 100)
}
