package store

import "time"

// Merge returns a copy of a with every field present in o taking precedence.
// Neither input is modified.
func (a Attributes) Merge(o Attributes) Attributes {
	out := a.Clone()

	if o.SalePrice != nil {
		out.SalePrice = float64Ptr(*o.SalePrice)
	}
	if o.RentPrice != nil {
		out.RentPrice = float64Ptr(*o.RentPrice)
	}
	if o.SchoolQuality != nil {
		out.SchoolQuality = float64Ptr(*o.SchoolQuality)
	}
	if o.SafetyBand != nil {
		out.SafetyBand = intPtr(*o.SafetyBand)
	}
	if o.ParkDensity != nil {
		out.ParkDensity = float64Ptr(*o.ParkDensity)
	}
	if o.CommuteMinutes != nil {
		out.CommuteMinutes = float64Ptr(*o.CommuteMinutes)
	}
	if o.RestaurantCount != nil {
		out.RestaurantCount = intPtr(*o.RestaurantCount)
	}
	if o.EntertainmentCount != nil {
		out.EntertainmentCount = intPtr(*o.EntertainmentCount)
	}
	if o.DiversityIndex != nil {
		out.DiversityIndex = float64Ptr(*o.DiversityIndex)
	}
	if o.HasTownCenter != nil {
		v := *o.HasTownCenter
		out.HasTownCenter = &v
	}
	if o.ConvenienceScore != nil {
		out.ConvenienceScore = float64Ptr(*o.ConvenienceScore)
	}
	if o.PercentNewConstruction != nil {
		out.PercentNewConstruction = float64Ptr(*o.PercentNewConstruction)
	}
	if o.TaxBurden != nil {
		out.TaxBurden = float64Ptr(*o.TaxBurden)
	}
	if o.QualityOfLife != nil {
		out.QualityOfLife = float64Ptr(*o.QualityOfLife)
	}

	if len(o.LastUpdated) > 0 {
		if out.LastUpdated == nil {
			out.LastUpdated = make(map[string]time.Time, len(o.LastUpdated))
		}
		for facet, ts := range o.LastUpdated {
			out.LastUpdated[facet] = ts
		}
	}
	if len(o.Sources) > 0 {
		out.Sources = mergeSources(out.Sources, o.Sources)
	}
	return out
}

// Clone returns a deep copy so callers can hand attributes to concurrent readers.
func (a Attributes) Clone() Attributes {
	out := a
	if a.SalePrice != nil {
		out.SalePrice = float64Ptr(*a.SalePrice)
	}
	if a.RentPrice != nil {
		out.RentPrice = float64Ptr(*a.RentPrice)
	}
	if a.SchoolQuality != nil {
		out.SchoolQuality = float64Ptr(*a.SchoolQuality)
	}
	if a.SafetyBand != nil {
		out.SafetyBand = intPtr(*a.SafetyBand)
	}
	if a.ParkDensity != nil {
		out.ParkDensity = float64Ptr(*a.ParkDensity)
	}
	if a.CommuteMinutes != nil {
		out.CommuteMinutes = float64Ptr(*a.CommuteMinutes)
	}
	if a.RestaurantCount != nil {
		out.RestaurantCount = intPtr(*a.RestaurantCount)
	}
	if a.EntertainmentCount != nil {
		out.EntertainmentCount = intPtr(*a.EntertainmentCount)
	}
	if a.DiversityIndex != nil {
		out.DiversityIndex = float64Ptr(*a.DiversityIndex)
	}
	if a.HasTownCenter != nil {
		v := *a.HasTownCenter
		out.HasTownCenter = &v
	}
	if a.ConvenienceScore != nil {
		out.ConvenienceScore = float64Ptr(*a.ConvenienceScore)
	}
	if a.PercentNewConstruction != nil {
		out.PercentNewConstruction = float64Ptr(*a.PercentNewConstruction)
	}
	if a.TaxBurden != nil {
		out.TaxBurden = float64Ptr(*a.TaxBurden)
	}
	if a.QualityOfLife != nil {
		out.QualityOfLife = float64Ptr(*a.QualityOfLife)
	}
	if a.LastUpdated != nil {
		out.LastUpdated = make(map[string]time.Time, len(a.LastUpdated))
		for k, v := range a.LastUpdated {
			out.LastUpdated[k] = v
		}
	}
	if a.Sources != nil {
		out.Sources = append([]string(nil), a.Sources...)
	}
	return out
}

// Clone returns a deep copy of the locality.
func (l *Locality) Clone() *Locality {
	c := *l
	c.Attributes = l.Attributes.Clone()
	return &c
}

func mergeSources(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(append([]string(nil), base...), extra...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

// Fields lists the JSON names of the attribute values present in a.
func (a Attributes) Fields() []string {
	var out []string
	add := func(name string, present bool) {
		if present {
			out = append(out, name)
		}
	}
	add("sale_price", a.SalePrice != nil)
	add("rent_price", a.RentPrice != nil)
	add("school_quality", a.SchoolQuality != nil)
	add("safety_band", a.SafetyBand != nil)
	add("park_density", a.ParkDensity != nil)
	add("commute_minutes", a.CommuteMinutes != nil)
	add("restaurant_count", a.RestaurantCount != nil)
	add("entertainment_count", a.EntertainmentCount != nil)
	add("diversity_index", a.DiversityIndex != nil)
	add("has_town_center", a.HasTownCenter != nil)
	add("convenience_score", a.ConvenienceScore != nil)
	add("percent_new_construction", a.PercentNewConstruction != nil)
	add("tax_burden", a.TaxBurden != nil)
	add("quality_of_life", a.QualityOfLife != nil)
	return out
}
