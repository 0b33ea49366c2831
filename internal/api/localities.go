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

type LocalitiesHandler struct {
	store   store.Store
	hermes  hermes.Client
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewLocalitiesHandler(s store.Store, h hermes.Client, c *catalog.Catalog, logger *slog.Logger) *LocalitiesHandler {
	return &LocalitiesHandler{store: s, hermes: h, catalog: c, logger: logger}
}

type UpsertLocalityRequest struct {
	Name       string           `json:"name"`
	Attributes store.Attributes `json:"attributes"`
}

// List handles GET /api/v1/localities. With ?with_overrides=true the stored
// overrides are merged into the returned attributes.
func (h *LocalitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()
	localities := snap.Localities
	if r.URL.Query().Get("with_overrides") == "true" {
		for _, l := range localities {
			if o, ok := snap.Overrides[l.ZipCode]; ok {
				l.Attributes = l.Attributes.Merge(o)
			}
		}
	}
	if localities == nil {
		localities = []*store.Locality{}
	}
	writeJSON(w, http.StatusOK, localities)
}

// Get handles GET /api/v1/localities/{zip}
func (h *LocalitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.catalog.Locality(chi.URLParam(r, "zip"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "locality not found"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Put handles PUT /api/v1/localities/{zip}
func (h *LocalitiesHandler) Put(w http.ResponseWriter, r *http.Request) {
	zip := strings.TrimSpace(chi.URLParam(r, "zip"))
	if zip == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "zip code required"})
		return
	}

	var req UpsertLocalityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if err := validateAttributes(req.Attributes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l := &store.Locality{ZipCode: zip, Name: strings.TrimSpace(req.Name), Attributes: req.Attributes}
	if err := h.store.UpsertLocality(r.Context(), l); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = time.Now()
	}

	h.publish(hermes.SubjectLocalityUpdated(zip), hermes.LocalityUpdatedEvent{
		ZipCode:   zip,
		Name:      l.Name,
		UpdatedAt: l.UpdatedAt,
	})
	h.catalog.RequestRefresh()

	writeJSON(w, http.StatusOK, l)
}

// Delete handles DELETE /api/v1/localities/{zip}
func (h *LocalitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")

	existing, err := h.store.GetLocality(r.Context(), zip)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "locality not found"})
		return
	}

	if err := h.store.DeleteLocality(r.Context(), zip); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.publish(hermes.SubjectLocalityDeleted(zip), hermes.LocalityDeletedEvent{ZipCode: zip})
	h.catalog.RequestRefresh()

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "zip_code": zip})
}

func (h *LocalitiesHandler) publish(subject string, evt interface{}) {
	if h.hermes == nil {
		return
	}
	if err := h.hermes.Publish(subject, evt); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
