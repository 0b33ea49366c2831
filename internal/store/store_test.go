package store

import (
	"testing"
	"time"
)

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

func TestMergePrefersOverrideFields(t *testing.T) {
	base := Attributes{
		SalePrice:      float64Ptr(500_000),
		SchoolQuality:  float64Ptr(70),
		CommuteMinutes: float64Ptr(40),
		Sources:        []string{"census"},
		LastUpdated:    map[string]time.Time{FacetPrice: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	override := Attributes{
		SalePrice:   float64Ptr(540_000),
		SafetyBand:  intPtr(2),
		Sources:     []string{"listing-feed", "census"},
		LastUpdated: map[string]time.Time{FacetPrice: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := base.Merge(override)

	if *got.SalePrice != 540_000 {
		t.Errorf("sale price: got %f, want override", *got.SalePrice)
	}
	if *got.SchoolQuality != 70 || *got.CommuteMinutes != 40 {
		t.Error("fields absent from the override should keep base values")
	}
	if got.SafetyBand == nil || *got.SafetyBand != 2 {
		t.Error("override should fill a missing base field")
	}
	if len(got.Sources) != 2 || got.Sources[0] != "census" || got.Sources[1] != "listing-feed" {
		t.Errorf("sources: got %v", got.Sources)
	}
	if got.LastUpdated[FacetPrice].Month() != time.June {
		t.Errorf("last updated: got %v", got.LastUpdated[FacetPrice])
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := Attributes{SalePrice: float64Ptr(500_000), LastUpdated: map[string]time.Time{}}
	override := Attributes{SalePrice: float64Ptr(1), LastUpdated: map[string]time.Time{FacetTax: time.Now()}}

	got := base.Merge(override)
	*got.SalePrice = 42

	if *base.SalePrice != 500_000 {
		t.Error("base attributes were mutated")
	}
	if *override.SalePrice != 1 {
		t.Error("override attributes were mutated")
	}
	if _, ok := base.LastUpdated[FacetTax]; ok {
		t.Error("base LastUpdated map was shared")
	}
}

func TestLocalityClone(t *testing.T) {
	l := &Locality{
		ZipCode: "07040",
		Name:    "Maplewood",
		Attributes: Attributes{
			RestaurantCount: intPtr(10),
			Sources:         []string{"a"},
		},
	}
	c := l.Clone()
	*c.Attributes.RestaurantCount = 99
	c.Attributes.Sources[0] = "b"

	if *l.Attributes.RestaurantCount != 10 || l.Attributes.Sources[0] != "a" {
		t.Error("clone shares state with the original")
	}
}

func TestAttributesFields(t *testing.T) {
	a := Attributes{SalePrice: float64Ptr(1), SafetyBand: intPtr(2)}
	got := a.Fields()
	if len(got) != 2 || got[0] != "sale_price" || got[1] != "safety_band" {
		t.Errorf("unexpected fields: %v", got)
	}
	if len((Attributes{}).Fields()) != 0 {
		t.Error("empty attributes should have no fields")
	}
}
