package hermes

import "time"

type LocalityUpdatedEvent struct {
	ZipCode   string    `json:"zip_code"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LocalityDeletedEvent struct {
	ZipCode string `json:"zip_code"`
}

type OverrideRecordedEvent struct {
	ZipCode string   `json:"zip_code"`
	Source  string   `json:"source,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

type OverrideClearedEvent struct {
	ZipCode string `json:"zip_code"`
}

type RankingCompletedEvent struct {
	RankingID     string    `json:"ranking_id"`
	ClientID      string    `json:"client_id,omitempty"`
	Tier          string    `json:"tier"`
	TotalCompared int       `json:"total_compared"`
	Shown         []string  `json:"shown"`
	InsightTypes  []string  `json:"insight_types,omitempty"`
	DurationMs    float64   `json:"duration_ms"`
	Timestamp     time.Time `json:"timestamp"`
}
