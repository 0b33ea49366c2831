package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Data facets tracked in Attributes.LastUpdated.
const (
	FacetPrice     = "price"
	FacetSchools   = "schools"
	FacetSafety    = "safety"
	FacetParks     = "parks"
	FacetCommute   = "commute"
	FacetLifestyle = "lifestyle"
	FacetHousing   = "housing"
	FacetTax       = "tax"
)

// Attributes are the raw per-locality signals. A nil field means the value is
// missing and the scoring engine substitutes its neutral default.
type Attributes struct {
	SalePrice              *float64 `json:"sale_price,omitempty"`
	RentPrice              *float64 `json:"rent_price,omitempty"`
	SchoolQuality          *float64 `json:"school_quality,omitempty"`
	SafetyBand             *int     `json:"safety_band,omitempty"`
	ParkDensity            *float64 `json:"park_density,omitempty"`
	CommuteMinutes         *float64 `json:"commute_minutes,omitempty"`
	RestaurantCount        *int     `json:"restaurant_count,omitempty"`
	EntertainmentCount     *int     `json:"entertainment_count,omitempty"`
	DiversityIndex         *float64 `json:"diversity_index,omitempty"`
	HasTownCenter          *bool    `json:"has_town_center,omitempty"`
	ConvenienceScore       *float64 `json:"convenience_score,omitempty"`
	PercentNewConstruction *float64 `json:"percent_new_construction,omitempty"`
	TaxBurden              *float64 `json:"tax_burden,omitempty"`
	QualityOfLife          *float64 `json:"quality_of_life,omitempty"`

	LastUpdated map[string]time.Time `json:"last_updated,omitempty"`
	Sources     []string             `json:"sources,omitempty"`
}

// Locality is one scoreable postal-code area.
type Locality struct {
	ZipCode    string     `json:"zip_code"`
	Name       string     `json:"name"`
	Attributes Attributes `json:"attributes"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Override carries externally supplied attribute values that take precedence
// over a locality's base attributes.
type Override struct {
	ZipCode    string     `json:"zip_code"`
	Attributes Attributes `json:"attributes"`
	Source     string     `json:"source,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RankingRecord is the audit trail of one ranking request.
type RankingRecord struct {
	ID            uuid.UUID              `json:"ranking_id"`
	ClientID      string                 `json:"client_id,omitempty"`
	Preferences   map[string]interface{} `json:"preferences"`
	Tier          string                 `json:"tier"`
	TotalCompared int                    `json:"total_compared"`
	Shown         []string               `json:"shown"`
	InsightTypes  []string               `json:"insight_types"`
	UsedOverrides bool                   `json:"used_overrides"`
	CreatedAt     time.Time              `json:"created_at"`
}

type Store interface {
	// Localities
	ListLocalities(ctx context.Context) ([]*Locality, error)
	GetLocality(ctx context.Context, zip string) (*Locality, error)
	UpsertLocality(ctx context.Context, l *Locality) error
	DeleteLocality(ctx context.Context, zip string) error

	// Overrides
	ListOverrides(ctx context.Context) ([]*Override, error)
	UpsertOverride(ctx context.Context, o *Override) error
	DeleteOverride(ctx context.Context, zip string) error

	// Rankings
	CreateRanking(ctx context.Context, r *RankingRecord) error
	GetRanking(ctx context.Context, id uuid.UUID) (*RankingRecord, error)

	Close() error
}
