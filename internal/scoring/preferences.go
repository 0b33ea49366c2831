package scoring

import "strings"

// LifestyleTag is one of the closed set of lifestyle preferences a user may pick.
type LifestyleTag string

const (
	TagDiverseGlobal    LifestyleTag = "diverse_global"
	TagLateNightFood    LifestyleTag = "late_night_food"
	TagSportsHeavy      LifestyleTag = "sports_heavy"
	TagQuietPredictable LifestyleTag = "quiet_predictable"
	TagUpscaleRefined   LifestyleTag = "upscale_refined"
	TagTownCenter       LifestyleTag = "town_center"
)

// AllLifestyleTags lists the closed tag set.
var AllLifestyleTags = []LifestyleTag{
	TagDiverseGlobal,
	TagLateNightFood,
	TagSportsHeavy,
	TagQuietPredictable,
	TagUpscaleRefined,
	TagTownCenter,
}

// Valid reports whether t belongs to the closed tag set.
func (t LifestyleTag) Valid() bool {
	for _, k := range AllLifestyleTags {
		if k == t {
			return true
		}
	}
	return false
}

// DefaultUserWeight applies to any criterion the request leaves unset and maps
// to a 1.0× multiplier.
const DefaultUserWeight = 1

// Preferences is one scoring request from a user.
type Preferences struct {
	Weights            map[Criterion]int `json:"weights"`
	NonNegotiables     []Criterion       `json:"non_negotiables,omitempty"`
	LifestyleTags      []LifestyleTag    `json:"lifestyle_tags,omitempty"`
	PreferTownCenter   bool              `json:"prefer_town_center"`
	PreferNewerHomes   bool              `json:"prefer_newer_homes"`
	PreferEstablished  bool              `json:"prefer_established"`
	BudgetMax          float64           `json:"budget_max"`
	BudgetMin          float64           `json:"budget_min,omitempty"`
	ExcludedLocalities []string          `json:"excluded_localities,omitempty"`
}

// Sanitize returns a copy with weights clamped to 0–3, unknown or duplicate
// keys dropped, and non-negotiables and tags capped in request order.
func (p Preferences) Sanitize() Preferences {
	out := Preferences{
		Weights:           make(map[Criterion]int, len(AllCriteria)),
		PreferTownCenter:  p.PreferTownCenter,
		PreferNewerHomes:  p.PreferNewerHomes,
		PreferEstablished: p.PreferEstablished,
		BudgetMax:         p.BudgetMax,
		BudgetMin:         p.BudgetMin,
	}
	if out.BudgetMax < 0 {
		out.BudgetMax = 0
	}
	if out.BudgetMin < 0 {
		out.BudgetMin = 0
	}

	for _, c := range AllCriteria {
		w, ok := p.Weights[c]
		if !ok {
			w = DefaultUserWeight
		}
		if w < 0 {
			w = 0
		}
		if w > MaxUserWeight {
			w = MaxUserWeight
		}
		out.Weights[c] = w
	}

	seen := make(map[Criterion]bool)
	for _, c := range p.NonNegotiables {
		if !c.Valid() || seen[c] || len(out.NonNegotiables) == MaxNonNegotiables {
			continue
		}
		seen[c] = true
		out.NonNegotiables = append(out.NonNegotiables, c)
	}

	seenTag := make(map[LifestyleTag]bool)
	for _, t := range p.LifestyleTags {
		if !t.Valid() || seenTag[t] || len(out.LifestyleTags) == MaxLifestyleTags {
			continue
		}
		seenTag[t] = true
		out.LifestyleTags = append(out.LifestyleTags, t)
	}

	for _, name := range p.ExcludedLocalities {
		if n := strings.TrimSpace(name); n != "" {
			out.ExcludedLocalities = append(out.ExcludedLocalities, n)
		}
	}
	return out
}

// Weight returns the clamped user weight for c.
func (p Preferences) Weight(c Criterion) int {
	w, ok := p.Weights[c]
	if !ok {
		return DefaultUserWeight
	}
	if w < 0 {
		return 0
	}
	if w > MaxUserWeight {
		return MaxUserWeight
	}
	return w
}

// IsNonNegotiable reports whether c was marked as a dealbreaker.
func (p Preferences) IsNonNegotiable(c Criterion) bool {
	for _, n := range p.NonNegotiables {
		if n == c {
			return true
		}
	}
	return false
}

// HasTag reports whether t is among the selected lifestyle tags.
func (p Preferences) HasTag(t LifestyleTag) bool {
	for _, s := range p.LifestyleTags {
		if s == t {
			return true
		}
	}
	return false
}

// IsExcluded reports whether a locality name is on the exclusion list.
// Matching is case-insensitive.
func (p Preferences) IsExcluded(name string) bool {
	for _, ex := range p.ExcludedLocalities {
		if strings.EqualFold(strings.TrimSpace(ex), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
