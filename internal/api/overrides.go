package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Zipfit/internal/catalog"
	"github.com/MikeSquared-Agency/Zipfit/internal/hermes"
	"github.com/MikeSquared-Agency/Zipfit/internal/store"
)

type OverridesHandler struct {
	store   store.Store
	hermes  hermes.Client
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewOverridesHandler(s store.Store, h hermes.Client, c *catalog.Catalog, logger *slog.Logger) *OverridesHandler {
	return &OverridesHandler{store: s, hermes: h, catalog: c, logger: logger}
}

type PutOverrideRequest struct {
	Attributes store.Attributes `json:"attributes"`
	Source     string           `json:"source,omitempty"`
}

// List handles GET /api/v1/overrides
func (h *OverridesHandler) List(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.store.ListOverrides(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if overrides == nil {
		overrides = []*store.Override{}
	}
	writeJSON(w, http.StatusOK, overrides)
}

// Put handles PUT /api/v1/overrides/{zip}. The stored override is replaced,
// not merged.
func (h *OverridesHandler) Put(w http.ResponseWriter, r *http.Request) {
	zip := strings.TrimSpace(chi.URLParam(r, "zip"))
	if zip == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "zip code required"})
		return
	}

	var req PutOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	fields := req.Attributes.Fields()
	if len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "override must set at least one attribute"})
		return
	}
	if err := validateAttributes(req.Attributes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	o := &store.Override{ZipCode: zip, Attributes: req.Attributes, Source: req.Source}
	if err := h.store.UpsertOverride(r.Context(), o); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now()
	}

	h.publish(hermes.SubjectOverrideRecorded(zip), hermes.OverrideRecordedEvent{
		ZipCode: zip,
		Source:  o.Source,
		Fields:  fields,
	})
	h.catalog.RequestRefresh()

	writeJSON(w, http.StatusOK, o)
}

// Delete handles DELETE /api/v1/overrides/{zip}. Clearing a missing override
// succeeds.
func (h *OverridesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")
	if err := h.store.DeleteOverride(r.Context(), zip); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.publish(hermes.SubjectOverrideCleared(zip), hermes.OverrideClearedEvent{ZipCode: zip})
	h.catalog.RequestRefresh()

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "zip_code": zip})
}

func (h *OverridesHandler) publish(subject string, evt interface{}) {
	if h.hermes == nil {
		return
	}
	if err := h.hermes.Publish(subject, evt); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
