package handler

import (
	"net/http"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/phone"
)

// CatalogHandler serves the static option lists used by the onboarding forms.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler { return &CatalogHandler{} }

func (h *CatalogHandler) Countries(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":   phone.DefaultCountry(region),
		"countries": phone.Countries,
	})
}

func (h *CatalogHandler) Preferences(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cuisines":             domain.Cuisines,
		"dietary_restrictions": domain.DietaryOptions,
		"allergies":            domain.AllergyOptions,
		"spice_levels":         domain.SpiceLevels,
	})
}
