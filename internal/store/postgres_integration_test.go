//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE zipfit_rankings, zipfit_overrides, zipfit_localities")
		s.Close()
	})

	return s
}

func TestUpsertAndGetLocality(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	l := &Locality{
		ZipCode: "07040",
		Name:    "Maplewood",
		Attributes: Attributes{
			SalePrice:     float64Ptr(720_000),
			SchoolQuality: float64Ptr(82),
			SafetyBand:    intPtr(2),
			Sources:       []string{"census", "district-report"},
		},
	}
	if err := s.UpsertLocality(ctx, l); err != nil {
		t.Fatalf("UpsertLocality failed: %v", err)
	}
	if l.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be set")
	}

	got, err := s.GetLocality(ctx, "07040")
	if err != nil {
		t.Fatalf("GetLocality failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected locality, got nil")
	}
	if got.Name != "Maplewood" {
		t.Errorf("expected name 'Maplewood', got '%s'", got.Name)
	}
	if got.Attributes.SalePrice == nil || *got.Attributes.SalePrice != 720_000 {
		t.Errorf("sale price did not round-trip: %v", got.Attributes.SalePrice)
	}
	if got.Attributes.CommuteMinutes != nil {
		t.Error("missing fields should stay missing")
	}
	if len(got.Attributes.Sources) != 2 {
		t.Errorf("expected 2 sources, got %v", got.Attributes.Sources)
	}

	l.Attributes.SalePrice = float64Ptr(735_000)
	if err := s.UpsertLocality(ctx, l); err != nil {
		t.Fatalf("second UpsertLocality failed: %v", err)
	}
	all, err := s.ListLocalities(ctx)
	if err != nil {
		t.Fatalf("ListLocalities failed: %v", err)
	}
	if len(all) != 1 || *all[0].Attributes.SalePrice != 735_000 {
		t.Errorf("upsert should replace attributes, got %+v", all)
	}
}

func TestGetLocalityNotFound(t *testing.T) {
	s := setupTestDB(t)
	got, err := s.GetLocality(context.Background(), "99999")
	if err != nil {
		t.Fatalf("GetLocality failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestDeleteLocality(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.UpsertLocality(ctx, &Locality{ZipCode: "07003", Name: "Bloomfield"}); err != nil {
		t.Fatalf("UpsertLocality failed: %v", err)
	}
	if err := s.DeleteLocality(ctx, "07003"); err != nil {
		t.Fatalf("DeleteLocality failed: %v", err)
	}
	got, _ := s.GetLocality(ctx, "07003")
	if got != nil {
		t.Error("expected locality to be deleted")
	}
}

func TestOverrides(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	o := &Override{ZipCode: "07302", Source: "county-assessor", Attributes: Attributes{TaxBurden: float64Ptr(35)}}
	if err := s.UpsertOverride(ctx, o); err != nil {
		t.Fatalf("UpsertOverride failed: %v", err)
	}
	all, err := s.ListOverrides(ctx)
	if err != nil {
		t.Fatalf("ListOverrides failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 override, got %d", len(all))
	}
	if all[0].Source != "county-assessor" || *all[0].Attributes.TaxBurden != 35 {
		t.Errorf("unexpected override: %+v", all[0])
	}

	if err := s.DeleteOverride(ctx, "07302"); err != nil {
		t.Fatalf("DeleteOverride failed: %v", err)
	}
	all, _ = s.ListOverrides(ctx)
	if len(all) != 0 {
		t.Errorf("expected no overrides, got %d", len(all))
	}
}

func TestCreateAndGetRanking(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	r := &RankingRecord{
		ClientID:      "web",
		Preferences:   map[string]interface{}{"budget_max": 500000.0},
		Tier:          "fallback",
		TotalCompared: 3,
		Shown:         []string{"07040", "07003", "07302"},
		InsightTypes:  []string{"value_alternative"},
	}
	if err := s.CreateRanking(ctx, r); err != nil {
		t.Fatalf("CreateRanking failed: %v", err)
	}
	if r.ID == uuid.Nil || r.CreatedAt.IsZero() {
		t.Fatal("expected ID and CreatedAt to be set")
	}

	got, err := s.GetRanking(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRanking failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected ranking, got nil")
	}
	if got.Tier != "fallback" || got.TotalCompared != 3 {
		t.Errorf("unexpected ranking: %+v", got)
	}
	if len(got.Shown) != 3 || got.Shown[0] != "07040" {
		t.Errorf("shown did not round-trip: %v", got.Shown)
	}
	if got.Preferences["budget_max"] != 500000.0 {
		t.Errorf("preferences did not round-trip: %v", got.Preferences)
	}

	missing, err := s.GetRanking(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GetRanking failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown ranking")
	}
}
