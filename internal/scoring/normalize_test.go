package scoring

import (
	"math"
	"testing"

	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

func TestQuantileRank(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		v      float64
		want   float64
	}{
		{"lowest", []float64{1, 2, 3, 4, 5}, 1, 0},
		{"middle", []float64{1, 2, 3, 4, 5}, 3, 50},
		{"highest", []float64{1, 2, 3, 4, 5}, 5, 100},
		{"ties share first position", []float64{1, 2, 2, 3}, 2, 33},
		{"all equal", []float64{7, 7, 7}, 7, 0},
		{"single member", []float64{42}, 42, 100},
		{"empty", nil, 3, NeutralScore},
		{"above range clamps", []float64{1, 2}, 9, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuantileRank(tt.sorted, tt.v)
			if got != tt.want {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestInvertedQuantileRank(t *testing.T) {
	prices := []float64{300_000, 400_000, 500_000}
	if got := InvertedQuantileRank(prices, 300_000); got != 100 {
		t.Errorf("cheapest: got %f, want 100", got)
	}
	if got := InvertedQuantileRank(prices, 500_000); got != 0 {
		t.Errorf("most expensive: got %f, want 0", got)
	}
	if got := InvertedQuantileRank([]float64{500_000}, 500_000); got != 100 {
		t.Errorf("single member: got %f, want 100", got)
	}
}

func TestSafetyScore(t *testing.T) {
	tests := []struct {
		name string
		band *int
		want float64
	}{
		{"band 1", intPtr(1), 100},
		{"band 2", intPtr(2), 80},
		{"band 3", intPtr(3), 60},
		{"band 4", intPtr(4), 40},
		{"band 5", intPtr(5), 20},
		{"missing", nil, 50},
		{"out of range", intPtr(9), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafetyScore(store.Attributes{SafetyBand: tt.band})
			if got != tt.want {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCommuteScore(t *testing.T) {
	tests := []struct {
		name    string
		minutes *float64
		want    float64
	}{
		{"missing defaults to 30 minutes", nil, 50},
		{"no commute", float64Ptr(0), 100},
		{"quarter hour", float64Ptr(15), 75},
		{"over an hour", float64Ptr(90), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommuteScore(store.Attributes{CommuteMinutes: tt.minutes})
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSchoolScore(t *testing.T) {
	if got := SchoolScore(store.Attributes{}); got != NeutralScore {
		t.Errorf("missing: got %f, want %f", got, NeutralScore)
	}
	if got := SchoolScore(store.Attributes{SchoolQuality: float64Ptr(87)}); got != 87 {
		t.Errorf("passthrough: got %f, want 87", got)
	}
	if got := SchoolScore(store.Attributes{SchoolQuality: float64Ptr(140)}); got != 100 {
		t.Errorf("clamped: got %f, want 100", got)
	}
}

func TestNormalizeSingleMember(t *testing.T) {
	n := NewNormalizer(nil)
	l := &store.Locality{ZipCode: "07001", Name: "Solo", Attributes: store.Attributes{
		SalePrice:     float64Ptr(450_000),
		ParkDensity:   float64Ptr(1.5),
		SchoolQuality: float64Ptr(81),
		SafetyBand:    intPtr(1),
	}}
	got := n.NormalizeAll([]*store.Locality{l})[0]

	if got.Park != 100 {
		t.Errorf("park: got %f, want 100", got.Park)
	}
	if got.Affordability != 100 {
		t.Errorf("affordability: got %f, want 100", got.Affordability)
	}
	if got.Safety != 100 {
		t.Errorf("safety: got %f, want 100", got.Safety)
	}
	// round((81 + 100) / 2)
	if got.ChildDevelopment != 91 {
		t.Errorf("child development: got %f, want 91", got.ChildDevelopment)
	}
	if got.TaxBurden != PlaceholderCriterionScore || got.TollConvenience != PlaceholderCriterionScore {
		t.Errorf("placeholder criteria should be %f, got tax=%f toll=%f",
			PlaceholderCriterionScore, got.TaxBurden, got.TollConvenience)
	}
}

func TestNormalizeMissingDefaults(t *testing.T) {
	n := NewNormalizer(nil)
	ls := []*store.Locality{
		{ZipCode: "1", Attributes: store.Attributes{SalePrice: float64Ptr(1), ParkDensity: float64Ptr(1)}},
		{ZipCode: "2", Attributes: store.Attributes{SalePrice: float64Ptr(2), ParkDensity: float64Ptr(2)}},
		{ZipCode: "3"},
	}
	got := n.NormalizeAll(ls)[2]
	if got.Park != NeutralScore {
		t.Errorf("park: got %f, want neutral", got.Park)
	}
	if got.Affordability != NeutralScore {
		t.Errorf("affordability: got %f, want neutral", got.Affordability)
	}
	if got.SchoolQuality != NeutralScore || got.Safety != NeutralScore {
		t.Errorf("school/safety should be neutral, got %f/%f", got.SchoolQuality, got.Safety)
	}
	if got.ChildDevelopment != NeutralScore {
		t.Errorf("child development: got %f, want neutral", got.ChildDevelopment)
	}
}

func TestNormalizeBoundsAndDeterminism(t *testing.T) {
	n := NewNormalizer(nil)
	ls := sampleLocalities()

	first := n.NormalizeAll(ls)
	second := n.NormalizeAll(ls)

	for i, s := range first {
		for _, v := range []float64{s.SchoolQuality, s.Commute, s.Safety, s.Lifestyle,
			s.ChildDevelopment, s.TaxBurden, s.TollConvenience, s.Affordability, s.Park} {
			if v < 0 || v > 100 {
				t.Errorf("%s: score %f out of [0,100]", ls[i].ZipCode, v)
			}
		}
		if s != second[i] {
			t.Errorf("%s: normalization not deterministic: %+v vs %+v", ls[i].ZipCode, s, second[i])
		}
	}
}

func TestAffordabilityMonotonic(t *testing.T) {
	n := NewNormalizer(nil)
	ls := sampleLocalities()
	scores := n.NormalizeAll(ls)

	for i := range ls {
		for j := range ls {
			pi, pj := ls[i].Attributes.SalePrice, ls[j].Attributes.SalePrice
			if pi == nil || pj == nil || *pi >= *pj {
				continue
			}
			if scores[i].Affordability < scores[j].Affordability {
				t.Errorf("%s (%.0f) scored %f < %s (%.0f) scored %f",
					ls[i].ZipCode, *pi, scores[i].Affordability,
					ls[j].ZipCode, *pj, scores[j].Affordability)
			}
		}
	}
}

func TestCompositeLifestyleScorer(t *testing.T) {
	s := DefaultLifestyleScorer()
	maxima := LifestyleMaxima{Restaurants: 10, Entertainment: 10}
	a := store.Attributes{
		RestaurantCount:    intPtr(10),
		EntertainmentCount: intPtr(4),
		DiversityIndex:     float64Ptr(1.0),
		ConvenienceScore:   float64Ptr(80),
	}
	// 100*0.35 + 100*0.20 + 40*0.25 + 80*0.20
	if got := s.Score(a, maxima); got != 81 {
		t.Errorf("got %f, want 81", got)
	}

	t.Run("monotonic in restaurants", func(t *testing.T) {
		prev := -1.0
		for count := 0; count <= 10; count++ {
			a.RestaurantCount = intPtr(count)
			got := s.Score(a, maxima)
			if got < prev {
				t.Fatalf("score dropped from %f to %f at %d restaurants", prev, got, count)
			}
			prev = got
		}
	})

	t.Run("zero maxima", func(t *testing.T) {
		got := s.Score(store.Attributes{}, LifestyleMaxima{})
		if got < 0 || got > 100 {
			t.Errorf("out of bounds: %f", got)
		}
	})
}

func TestNormalizerUsesInjectedLifestyleScorer(t *testing.T) {
	called := false
	n := NewNormalizer(LifestyleScorerFunc(func(store.Attributes, LifestyleMaxima) float64 {
		called = true
		return 250
	}))
	got := n.NormalizeAll([]*store.Locality{{ZipCode: "1"}})[0]
	if !called {
		t.Fatal("injected scorer not called")
	}
	if got.Lifestyle != 100 {
		t.Errorf("lifestyle should be clamped to 100, got %f", got.Lifestyle)
	}
}
