package api

import (
	"fmt"

	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// validatePreferences rejects requests naming unknown criteria or tags, or
// carrying an impossible budget. Out-of-range weights are clamped by the
// engine instead.
func validatePreferences(p scoring.Preferences) error {
	for c := range p.Weights {
		if !c.Valid() {
			return fmt.Errorf("unknown criterion %q", c)
		}
	}
	for _, c := range p.NonNegotiables {
		if !c.Valid() {
			return fmt.Errorf("unknown non-negotiable %q", c)
		}
	}
	for _, t := range p.LifestyleTags {
		if !t.Valid() {
			return fmt.Errorf("unknown lifestyle tag %q", t)
		}
	}
	if p.BudgetMax < 0 || p.BudgetMin < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if p.BudgetMax > 0 && p.BudgetMin > p.BudgetMax {
		return fmt.Errorf("budget_min exceeds budget_max")
	}
	return nil
}

func validateAttributes(a store.Attributes) error {
	checkRange := func(name string, v *float64, lo, hi float64) error {
		if v != nil && (*v < lo || *v > hi) {
			return fmt.Errorf("%s must be between %g and %g", name, lo, hi)
		}
		return nil
	}
	checkNonNegative := func(name string, v *float64) error {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		return nil
	}

	checks := []error{
		checkNonNegative("sale_price", a.SalePrice),
		checkNonNegative("rent_price", a.RentPrice),
		checkRange("school_quality", a.SchoolQuality, 0, 100),
		checkNonNegative("park_density", a.ParkDensity),
		checkNonNegative("commute_minutes", a.CommuteMinutes),
		checkRange("diversity_index", a.DiversityIndex, 0, 1),
		checkRange("convenience_score", a.ConvenienceScore, 0, 100),
		checkRange("percent_new_construction", a.PercentNewConstruction, 0, 100),
		checkNonNegative("tax_burden", a.TaxBurden),
		checkRange("quality_of_life", a.QualityOfLife, 0, 100),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if a.SafetyBand != nil && (*a.SafetyBand < 1 || *a.SafetyBand > 5) {
		return fmt.Errorf("safety_band must be between 1 and 5")
	}
	if a.RestaurantCount != nil && *a.RestaurantCount < 0 {
		return fmt.Errorf("restaurant_count must not be negative")
	}
	if a.EntertainmentCount != nil && *a.EntertainmentCount < 0 {
		return fmt.Errorf("entertainment_count must not be negative")
	}
	return nil
}
