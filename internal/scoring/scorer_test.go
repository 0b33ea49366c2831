package scoring

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }
func boolPtr(v bool) *bool          { return &v }

func sampleLocalities() []*store.Locality {
	return []*store.Locality{
		{ZipCode: "07040", Name: "Maplewood", Attributes: store.Attributes{
			SalePrice: float64Ptr(720_000), SchoolQuality: float64Ptr(82), SafetyBand: intPtr(2),
			ParkDensity: float64Ptr(3.1), CommuteMinutes: float64Ptr(38), RestaurantCount: intPtr(65),
			EntertainmentCount: intPtr(12), DiversityIndex: float64Ptr(0.71), HasTownCenter: boolPtr(true),
			ConvenienceScore: float64Ptr(74), PercentNewConstruction: float64Ptr(8),
		}},
		{ZipCode: "07042", Name: "Montclair", Attributes: store.Attributes{
			SalePrice: float64Ptr(910_000), SchoolQuality: float64Ptr(88), SafetyBand: intPtr(2),
			ParkDensity: float64Ptr(4.4), CommuteMinutes: float64Ptr(42), RestaurantCount: intPtr(140),
			EntertainmentCount: intPtr(30), DiversityIndex: float64Ptr(0.78), HasTownCenter: boolPtr(true),
			ConvenienceScore: float64Ptr(85), PercentNewConstruction: float64Ptr(6),
		}},
		{ZipCode: "07302", Name: "Jersey City", Attributes: store.Attributes{
			SalePrice: float64Ptr(650_000), SchoolQuality: float64Ptr(61), SafetyBand: intPtr(3),
			ParkDensity: float64Ptr(2.2), CommuteMinutes: float64Ptr(22), RestaurantCount: intPtr(210),
			EntertainmentCount: intPtr(55), DiversityIndex: float64Ptr(0.92), HasTownCenter: boolPtr(true),
			ConvenienceScore: float64Ptr(90), PercentNewConstruction: float64Ptr(64),
		}},
		{ZipCode: "07960", Name: "Morristown", Attributes: store.Attributes{
			SalePrice: float64Ptr(680_000), SchoolQuality: float64Ptr(79), SafetyBand: intPtr(1),
			ParkDensity: float64Ptr(2.9), CommuteMinutes: float64Ptr(58), RestaurantCount: intPtr(80),
			EntertainmentCount: intPtr(18), DiversityIndex: float64Ptr(0.55), HasTownCenter: boolPtr(true),
			ConvenienceScore: float64Ptr(70), PercentNewConstruction: float64Ptr(22),
		}},
		{ZipCode: "08837", Name: "Edison", Attributes: store.Attributes{
			SalePrice: float64Ptr(540_000), SchoolQuality: float64Ptr(74), SafetyBand: intPtr(3),
			ParkDensity: float64Ptr(1.6), CommuteMinutes: float64Ptr(49), RestaurantCount: intPtr(120),
			EntertainmentCount: intPtr(9), DiversityIndex: float64Ptr(0.88), HasTownCenter: boolPtr(false),
			ConvenienceScore: float64Ptr(66), PercentNewConstruction: float64Ptr(31),
		}},
		{ZipCode: "07003", Name: "Bloomfield", Attributes: store.Attributes{
			SalePrice: float64Ptr(520_000), SafetyBand: intPtr(4), CommuteMinutes: float64Ptr(35),
			RestaurantCount: intPtr(40), EntertainmentCount: intPtr(6),
		}},
		{ZipCode: "07090", Name: "Westfield"},
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultCategoryWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default category weights invalid: %v", err)
	}
	if math.Abs(DefaultBaselineWeights().Sum()-1.0) > 0.001 {
		t.Errorf("baseline weights sum to %f, expected 1.0", DefaultBaselineWeights().Sum())
	}
}

func TestCategoryWeightsValidate(t *testing.T) {
	w := DefaultCategoryWeights()
	w.SchoolQuality = 0.5
	if err := w.Validate(); err == nil {
		t.Error("expected error for bad sum")
	}

	w = DefaultCategoryWeights()
	w.TollConvenience = -0.05
	w.SchoolQuality = 0.30
	if err := w.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		weight int
		nonNeg bool
		want   float64
	}{
		{"weight 0", 0, false, 0.5},
		{"weight 1", 1, false, 1.0},
		{"weight 2", 2, false, 1.5},
		{"weight 3", 3, false, 2.0},
		{"negative clamps", -4, false, 0.5},
		{"too large clamps", 9, false, 2.0},
		{"non-negotiable weight 3", 3, true, 8.0},
		{"non-negotiable weight 0", 0, true, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Multiplier(tt.weight, tt.nonNeg); got != tt.want {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNonNegotiableQuadruplesMultiplier(t *testing.T) {
	for w := 0; w <= MaxUserWeight; w++ {
		if got, want := Multiplier(w, true), Multiplier(w, false)*NonNegotiableFactor; got != want {
			t.Errorf("weight %d: got %f, want %f", w, got, want)
		}
	}
}

func sampleScores() NormalizedScores {
	return NormalizedScores{
		SchoolQuality:    80,
		Commute:          60,
		Safety:           100,
		Lifestyle:        40,
		ChildDevelopment: 70,
		TaxBurden:        50,
		TollConvenience:  50,
		Affordability:    50,
		Park:             60,
	}
}

func TestPriorityScoreDefaultsReduceToCategoryWeights(t *testing.T) {
	s := NewCriterionScorer(DefaultCategoryWeights(), DefaultBaselineWeights())
	prefs := Preferences{}.Sanitize()

	got, breakdown := s.PriorityScore(sampleScores(), prefs)
	// 0.2*80 + 0.15*60 + 0.2*100 + 0.15*40 + 0.15*70 + 0.1*50 + 0.05*50
	if math.Abs(got-69.0) > 0.001 {
		t.Errorf("got %f, want 69.0", got)
	}
	if len(breakdown) != len(AllCriteria) {
		t.Fatalf("expected %d breakdown entries, got %d", len(AllCriteria), len(breakdown))
	}
	var sum float64
	for _, r := range breakdown {
		sum += r.Contribution
	}
	if math.Abs(sum-got) > 0.001 {
		t.Errorf("contributions sum to %f, score is %f", sum, got)
	}
}

func TestPriorityScoreNonNegotiable(t *testing.T) {
	s := NewCriterionScorer(DefaultCategoryWeights(), DefaultBaselineWeights())
	prefs := Preferences{
		Weights:        map[Criterion]int{CriterionSchoolQuality: 3},
		NonNegotiables: []Criterion{CriterionSchoolQuality},
	}.Sanitize()

	got, breakdown := s.PriorityScore(sampleScores(), prefs)
	// school: 80 * 8.0 * 0.2 = 128 over 1.6; rest: 53 over 0.8
	want := (128.0 + 53.0) / 2.4
	if math.Abs(got-want) > 0.001 {
		t.Errorf("got %f, want %f", got, want)
	}
	if breakdown[0].Multiplier != 8.0 || !breakdown[0].NonNegotiable {
		t.Errorf("school breakdown: %+v", breakdown[0])
	}
}

func TestBaselineScore(t *testing.T) {
	s := NewCriterionScorer(DefaultCategoryWeights(), DefaultBaselineWeights())
	a := store.Attributes{DiversityIndex: float64Ptr(0.6), ParkDensity: float64Ptr(3)}

	// QoL = (100 + 40 + 60) / 3
	want := 14.4 + 18 + 6 + 5 + 4 + 4.8 + 8.4 + 0.14*(200.0/3)
	if got := s.BaselineScore(a, sampleScores()); math.Abs(got-want) > 0.001 {
		t.Errorf("got %f, want %f", got, want)
	}

	a.QualityOfLife = float64Ptr(90)
	want = 14.4 + 18 + 6 + 5 + 4 + 4.8 + 8.4 + 12.6
	if got := s.BaselineScore(a, sampleScores()); math.Abs(got-want) > 0.001 {
		t.Errorf("explicit QoL: got %f, want %f", got, want)
	}
}

func TestFitBlend(t *testing.T) {
	s := NewCriterionScorer(DefaultCategoryWeights(), DefaultBaselineWeights())
	l := &store.Locality{ZipCode: "1"}

	t.Run("default blend", func(t *testing.T) {
		cs := s.Score(l, sampleScores(), Preferences{}.Sanitize())
		want := cs.Baseline*0.6 + cs.Priority*0.4
		if math.Abs(cs.Fit-want) > 0.001 {
			t.Errorf("got %f, want %f", cs.Fit, want)
		}
	})

	t.Run("non-negotiable blend", func(t *testing.T) {
		prefs := Preferences{NonNegotiables: []Criterion{CriterionSafety}}.Sanitize()
		cs := s.Score(l, sampleScores(), prefs)
		want := cs.Baseline*0.4 + cs.Priority*0.6
		if math.Abs(cs.Fit-want) > 0.001 {
			t.Errorf("got %f, want %f", cs.Fit, want)
		}
		if cs.Blend != NonNegotiableBlend() {
			t.Errorf("expected non-negotiable blend, got %+v", cs.Blend)
		}
	})
}

func TestPreferencesSanitize(t *testing.T) {
	p := Preferences{
		Weights: map[Criterion]int{CriterionCommute: 7, CriterionSafety: -2},
		NonNegotiables: []Criterion{
			CriterionSafety, CriterionSafety, "bogus", CriterionCommute,
			CriterionLifestyle, CriterionSchoolQuality,
		},
		LifestyleTags:      []LifestyleTag{TagTownCenter, "karaoke", TagTownCenter, TagDiverseGlobal, TagSportsHeavy},
		ExcludedLocalities: []string{"  Newark ", ""},
	}.Sanitize()

	if p.Weight(CriterionCommute) != 3 || p.Weight(CriterionSafety) != 0 {
		t.Errorf("weights not clamped: %v", p.Weights)
	}
	if p.Weight(CriterionTaxBurden) != DefaultUserWeight {
		t.Errorf("unset weight should default to %d", DefaultUserWeight)
	}
	want := []Criterion{CriterionSafety, CriterionCommute, CriterionLifestyle}
	if len(p.NonNegotiables) != len(want) {
		t.Fatalf("non-negotiables: got %v, want %v", p.NonNegotiables, want)
	}
	for i := range want {
		if p.NonNegotiables[i] != want[i] {
			t.Errorf("non-negotiable %d: got %s, want %s", i, p.NonNegotiables[i], want[i])
		}
	}
	if len(p.LifestyleTags) != 2 || p.LifestyleTags[0] != TagTownCenter || p.LifestyleTags[1] != TagDiverseGlobal {
		t.Errorf("lifestyle tags: got %v", p.LifestyleTags)
	}
	if !p.IsExcluded("newark") || len(p.ExcludedLocalities) != 1 {
		t.Errorf("exclusions: got %v", p.ExcludedLocalities)
	}
}
