package scoring

import (
	"strings"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

// MaxModifierMagnitude bounds every individual modifier so that modifiers stay
// secondary to the weighted score.
const MaxModifierMagnitude = 2.0

// DefaultUpscalePrice is the sale price at which a locality counts as upscale.
const DefaultUpscalePrice = 750_000.0

// Modifier is one additive bonus or penalty applied after the fit score.
type Modifier struct {
	Source string  `json:"source"`
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

// ModifierBreakdown itemizes every modifier applied to a candidate.
type ModifierBreakdown struct {
	Special   float64    `json:"special"`
	Lifestyle float64    `json:"lifestyle"`
	Items     []Modifier `json:"items,omitempty"`
}

// Total is the summed modifier delta.
func (m ModifierBreakdown) Total() float64 { return m.Special + m.Lifestyle }

// ModifierEngine applies special-preference and lifestyle-tag modifiers.
type ModifierEngine struct {
	sportsLocalities map[string]bool
	upscalePrice     float64
}

// NewModifierEngine creates an engine. sportsLocalities names the localities
// treated as sports cities by the sports_heavy tag.
func NewModifierEngine(sportsLocalities []string, upscalePrice float64) *ModifierEngine {
	m := &ModifierEngine{
		sportsLocalities: make(map[string]bool, len(sportsLocalities)),
		upscalePrice:     upscalePrice,
	}
	if m.upscalePrice <= 0 {
		m.upscalePrice = DefaultUpscalePrice
	}
	for _, name := range sportsLocalities {
		m.sportsLocalities[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return m
}

// Apply adds the modifiers selected by prefs to fit and clamps to [0,100].
func (m *ModifierEngine) Apply(fit float64, l *store.Locality, prefs Preferences) (float64, ModifierBreakdown) {
	var b ModifierBreakdown
	a := l.Attributes

	add := func(special bool, source string, delta float64, reason string) {
		delta = clamp(delta, -MaxModifierMagnitude, MaxModifierMagnitude)
		if special {
			b.Special += delta
		} else {
			b.Lifestyle += delta
		}
		b.Items = append(b.Items, Modifier{Source: source, Delta: delta, Reason: reason})
	}

	if prefs.PreferTownCenter {
		if hasTownCenter(a) {
			add(true, "prefer_town_center", 1, "has a town center")
		} else {
			add(true, "prefer_town_center", -1, "no town center")
		}
	}
	if prefs.PreferNewerHomes && a.PercentNewConstruction != nil {
		d, r := newerHomesModifier(*a.PercentNewConstruction)
		add(true, "prefer_newer_homes", d, r)
	}
	if prefs.PreferEstablished && a.PercentNewConstruction != nil {
		d, r := establishedModifier(*a.PercentNewConstruction)
		add(true, "prefer_established", d, r)
	}

	for _, tag := range prefs.LifestyleTags {
		d, r := m.tagModifier(tag, l)
		add(false, string(tag), d, r)
	}

	return clamp(fit+b.Total(), 0, 100), b
}

func newerHomesModifier(pct float64) (float64, string) {
	switch {
	case pct >= 60:
		return 2, "mostly new construction"
	case pct >= 40:
		return 1, "substantial new construction"
	case pct >= 25:
		return 0, "some new construction"
	default:
		return -2, "little new construction"
	}
}

func establishedModifier(pct float64) (float64, string) {
	switch {
	case pct <= 15:
		return 2, "long-established housing stock"
	case pct <= 25:
		return 1, "mostly established housing stock"
	case pct <= 40:
		return 0, "mixed housing stock"
	default:
		return -2, "heavy new construction"
	}
}

func (m *ModifierEngine) tagModifier(tag LifestyleTag, l *store.Locality) (float64, string) {
	a := l.Attributes
	switch tag {
	case TagDiverseGlobal:
		d := DefaultDiversityIndex
		if a.DiversityIndex != nil {
			d = *a.DiversityIndex
		}
		switch {
		case d >= 0.75:
			return 2, "highly diverse cuisine scene"
		case d >= 0.60:
			return 1, "diverse cuisine scene"
		case d >= 0.40:
			return 0, "moderate diversity"
		default:
			return -1, "limited diversity"
		}

	case TagLateNightFood:
		venues := intOr(a.RestaurantCount, 0) + intOr(a.EntertainmentCount, 0)
		switch {
		case venues >= 80:
			return 2, "dense late-night food and entertainment"
		case venues >= 40:
			return 1, "good late-night options"
		case venues >= 15:
			return 0, "some late-night options"
		default:
			return -1, "few late-night options"
		}

	case TagSportsHeavy:
		if m.sportsLocalities[strings.ToLower(strings.TrimSpace(l.Name))] {
			return 2, "sports city"
		}
		parks := 0.0
		if a.ParkDensity != nil {
			parks = *a.ParkDensity
		}
		switch {
		case parks >= 4:
			return 1, "plenty of fields and parks"
		case parks >= 2:
			return 0, "average park access"
		default:
			return -1, "few fields and parks"
		}

	case TagQuietPredictable:
		band := 3
		if a.SafetyBand != nil {
			band = *a.SafetyBand
		}
		switch {
		case band <= 2 && intOr(a.EntertainmentCount, 0) <= 10:
			return 2, "safe and quiet"
		case band <= 2:
			return 1, "safe"
		case band >= 4:
			return -2, "less predictable safety"
		default:
			return 0, "average safety"
		}

	case TagUpscaleRefined:
		hits := 0
		if a.SalePrice != nil && *a.SalePrice >= m.upscalePrice {
			hits++
		}
		if a.ConvenienceScore != nil && *a.ConvenienceScore >= 70 {
			hits++
		}
		if hasTownCenter(a) {
			hits++
		}
		switch hits {
		case 3:
			return 2, "upscale with a refined town center"
		case 2:
			return 1, "mostly upscale"
		case 0:
			return -1, "not an upscale area"
		default:
			return 0, "partly upscale"
		}

	case TagTownCenter:
		if hasTownCenter(a) {
			return 2, "walkable town center"
		}
		return -1, "no town center"
	}
	return 0, "unknown tag"
}

func hasTownCenter(a store.Attributes) bool {
	return a.HasTownCenter != nil && *a.HasTownCenter
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
