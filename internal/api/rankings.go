package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Zipfit/internal/catalog"
	"github.com/MikeSquared-Agency/Zipfit/internal/hermes"
	"github.com/MikeSquared-Agency/Zipfit/internal/metrics"
	"github.com/MikeSquared-Agency/Zipfit/internal/narrator"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

type RankingsHandler struct {
	store    store.Store
	hermes   hermes.Client
	catalog  *catalog.Catalog
	engine   *scoring.Engine
	narrator narrator.Narrator
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewRankingsHandler(s store.Store, h hermes.Client, c *catalog.Catalog, e *scoring.Engine, n narrator.Narrator, m *metrics.Metrics, logger *slog.Logger) *RankingsHandler {
	if n == nil {
		n = narrator.Nop{}
	}
	return &RankingsHandler{store: s, hermes: h, catalog: c, engine: e, narrator: n, metrics: m, logger: logger}
}

// CreateRankingRequest is the body of POST /api/v1/rankings. UseOverrides
// merges the stored override set; inline Overrides always apply on top.
type CreateRankingRequest struct {
	Preferences  scoring.Preferences         `json:"preferences"`
	UseOverrides bool                        `json:"use_overrides"`
	Overrides    map[string]store.Attributes `json:"overrides,omitempty"`
}

type RankingResponse struct {
	RankingID     uuid.UUID                  `json:"ranking_id"`
	Tier          scoring.BudgetTier         `json:"tier"`
	TotalCompared int                        `json:"total_compared"`
	Results       []*scoring.ScoredCandidate `json:"results"`
	Insights      []scoring.Insight          `json:"insights"`
	Narratives    map[string]string          `json:"narratives,omitempty"`
}

// Create handles POST /api/v1/rankings
func (h *RankingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validatePreferences(req.Preferences); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	for zip, attrs := range req.Overrides {
		if err := validateAttributes(attrs); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "override " + zip + ": " + err.Error()})
			return
		}
	}

	snap := h.catalog.Snapshot()
	start := time.Now()
	result, err := h.engine.Run(scoring.Request{
		Localities:  snap.Localities,
		Preferences: req.Preferences,
		Overrides:   resolveOverrides(snap.Overrides, req),
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	elapsed := time.Since(start)

	shown := make([]string, 0, len(result.Results))
	stretch := 0
	for _, c := range result.Results {
		shown = append(shown, c.ZipCode)
		if c.IsStretchBudget {
			stretch++
		}
	}
	insightTypes := make([]string, 0, len(result.Insights))
	for _, in := range result.Insights {
		insightTypes = append(insightTypes, string(in.Type))
	}

	record := &store.RankingRecord{
		ID:            uuid.New(),
		ClientID:      r.Header.Get(ClientIDHeader),
		Preferences:   preferencesDocument(result.Preferences),
		Tier:          string(result.Tier),
		TotalCompared: result.TotalCompared,
		Shown:         shown,
		InsightTypes:  insightTypes,
		UsedOverrides: req.UseOverrides || len(req.Overrides) > 0,
	}
	if err := h.store.CreateRanking(r.Context(), record); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.metrics.ObserveRanking(string(result.Tier), elapsed, insightTypes, stretch)

	if h.hermes != nil {
		if err := h.hermes.Publish(hermes.SubjectRankingCompleted(record.ID.String()), hermes.RankingCompletedEvent{
			RankingID:     record.ID.String(),
			ClientID:      record.ClientID,
			Tier:          record.Tier,
			TotalCompared: record.TotalCompared,
			Shown:         shown,
			InsightTypes:  insightTypes,
			DurationMs:    float64(elapsed.Microseconds()) / 1000,
			Timestamp:     time.Now(),
		}); err != nil {
			h.logger.Warn("failed to publish ranking event", "ranking_id", record.ID, "error", err)
		}
	}

	resp := RankingResponse{
		RankingID:     record.ID,
		Tier:          result.Tier,
		TotalCompared: result.TotalCompared,
		Results:       result.Results,
		Insights:      result.Insights,
	}
	if len(result.Results) > 0 {
		narratives, err := h.narrator.Narrate(r.Context(), narrator.NewRequest(record.ID.String(), result.Preferences, result.Results))
		if err != nil {
			h.logger.Debug("narration unavailable", "ranking_id", record.ID, "error", err)
		} else if len(narratives) > 0 {
			resp.Narratives = narratives
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /api/v1/rankings/{id}
func (h *RankingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	rec, err := h.store.GetRanking(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ranking not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// resolveOverrides builds the per-request override map once, before the
// engine runs.
func resolveOverrides(stored map[string]store.Attributes, req CreateRankingRequest) map[string]store.Attributes {
	out := make(map[string]store.Attributes, len(stored)+len(req.Overrides))
	if req.UseOverrides {
		for zip, a := range stored {
			out[zip] = a
		}
	}
	for zip, a := range req.Overrides {
		if base, ok := out[zip]; ok {
			out[zip] = base.Merge(a)
		} else {
			out[zip] = a
		}
	}
	return out
}

// preferencesDocument converts sanitized preferences into the generic
// document stored with a ranking record.
func preferencesDocument(p scoring.Preferences) map[string]interface{} {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
