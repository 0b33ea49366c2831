package api

import (
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Zipfit/internal/catalog"
	"github.com/MikeSquared-Agency/Zipfit/internal/hermes"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
)

type AdminHandler struct {
	catalog *catalog.Catalog
	hermes  hermes.Client
	engine  *scoring.Engine
}

func NewAdminHandler(c *catalog.Catalog, h hermes.Client, e *scoring.Engine) *AdminHandler {
	return &AdminHandler{catalog: c, hermes: h, engine: e}
}

type CatalogStatus struct {
	Localities      int                  `json:"localities"`
	Overrides       int                  `json:"overrides"`
	LoadedAt        time.Time            `json:"loaded_at"`
	EventsConnected bool                 `json:"events_connected"`
	BudgetPolicy    scoring.BudgetPolicy `json:"budget_policy"`
}

// Status handles GET /api/v1/catalog
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

// Refresh handles POST /api/v1/catalog/refresh and reloads synchronously.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.status())
}

func (h *AdminHandler) status() CatalogStatus {
	snap := h.catalog.Snapshot()
	st := CatalogStatus{
		Localities:   len(snap.Localities),
		Overrides:    len(snap.Overrides),
		LoadedAt:     snap.LoadedAt,
		BudgetPolicy: h.engine.BudgetPolicy(),
	}
	if h.hermes != nil {
		st.EventsConnected = h.hermes.Connected()
	}
	return st
}
