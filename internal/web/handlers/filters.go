package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/logging"
)

// FiltersHandler handles the filter catalog endpoints
type FiltersHandler struct {
	catalog *catalog.Catalog
}

// NewFiltersHandler creates a new filters handler
func NewFiltersHandler(cat *catalog.Catalog) *FiltersHandler {
	return &FiltersHandler{catalog: cat}
}

// FilterResponse is one catalog entry as the renderer sees it
type FilterResponse struct {
	Value    string           `json:"value"`
	Label    string           `json:"label"`
	Image    string           `json:"image"`
	Category catalog.Category `json:"category"`
}

// RegisterFilterRequest is the body of a filter registration
type RegisterFilterRequest struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// RegisterFilterResponse reports whether the catalog accepted the filter
type RegisterFilterResponse struct {
	Registered bool `json:"registered"`
	Count      int  `json:"count"`
}

func toFilterResponse(def catalog.FilterDefinition) FilterResponse {
	return FilterResponse{
		Value:    def.Identifier,
		Label:    def.DisplayLabel(),
		Image:    def.ImageRef,
		Category: def.Category,
	}
}

// List returns built-in filters followed by registered ones
func (h *FiltersHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.catalog.AllFilters()
	result := make([]FilterResponse, len(all))
	for i, def := range all {
		result[i] = toFilterResponse(def)
	}
	respondJSON(w, http.StatusOK, result)
}

// Register adds a filter. Incomplete definitions are dropped without an error
// status; the response says whether anything was added.
func (h *FiltersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterFilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	registered := h.catalog.RegisterFilter(catalog.FilterDefinition{
		Identifier: req.Value,
		Label:      req.Label,
		ImageRef:   req.Image,
		Category:   catalog.Category(req.Category),
	})
	if !registered {
		logging.Debug(logging.Fields{"value": sanitizeForLog(req.Value)}, "ignored incomplete filter registration")
	}

	respondJSON(w, http.StatusOK, RegisterFilterResponse{
		Registered: registered,
		Count:      h.catalog.Len(),
	})
}
