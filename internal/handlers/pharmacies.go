package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/nobetci/eczane/internal/links"
	logpkg "github.com/nobetci/eczane/internal/logger"
	"github.com/nobetci/eczane/internal/metrics"
	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/pharmacy"
	"go.uber.org/zap"
)

// PharmacyHandler serves the JSON pharmacy API.
type PharmacyHandler struct {
	service *pharmacy.Service
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewPharmacyHandler creates a new pharmacy API handler
func NewPharmacyHandler(service *pharmacy.Service, m *metrics.Metrics, log *zap.Logger) *PharmacyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PharmacyHandler{service: service, metrics: m, log: log}
}

// SearchResult is the data payload of a pharmacy search.
type SearchResult struct {
	City       string                `json:"city"`
	District   string                `json:"district,omitempty"`
	Count      int                   `json:"count"`
	Pharmacies []models.PharmacyView `json:"pharmacies"`
}

// ListCities handles GET /api/v1/cities
func (h *PharmacyHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.Cities(r.Context())
	if err != nil {
		h.sourceError(w, r, err)
		return
	}
	if cities == nil {
		cities = []models.City{}
	}
	respondJSON(w, http.StatusOK, cities)
}

// Search handles GET /api/v1/pharmacies?city=&district=&sort=distance&limit=
func (h *PharmacyHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, r.URL.Query().Get("city"))
}

// SearchByCity handles GET /api/v1/pharmacies/{city}
func (h *PharmacyHandler) SearchByCity(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, mux.Vars(r)["city"])
}

func (h *PharmacyHandler) search(w http.ResponseWriter, r *http.Request, city string) {
	q, err := parseQuery(r, city)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	list, err := h.service.Search(r.Context(), q)
	if errors.Is(err, pharmacy.ErrInvalidQuery) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err != nil {
		h.sourceError(w, r, err)
		return
	}

	if len(list) == 0 {
		if found, err := h.cityExists(r.Context(), q.City); err != nil {
			h.sourceError(w, r, err)
			return
		} else if !found {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Şehir bulunamadı")
			return
		}
	}

	respondJSON(w, http.StatusOK, SearchResult{
		City:       q.City,
		District:   q.District,
		Count:      len(list),
		Pharmacies: links.Views(list),
	})
}

func (h *PharmacyHandler) cityExists(ctx context.Context, slug string) (bool, error) {
	_, err := h.service.City(ctx, slug)
	if errors.Is(err, pharmacy.ErrCityNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (h *PharmacyHandler) sourceError(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.IncSourceErrors()
	h.log.Error("pharmacy_source_failed",
		zap.Error(err),
		zap.String("path", logpkg.SanitizePath(r.URL.Path)),
	)
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Eczane bilgileri şu anda alınamıyor")
}

// parseQuery reads the search parameters; field-level rules are enforced by the service
func parseQuery(r *http.Request, city string) (pharmacy.Query, error) {
	values := r.URL.Query()
	q := pharmacy.Query{
		City:     strings.ToLower(strings.TrimSpace(city)),
		District: values.Get("district"),
	}

	switch values.Get("sort") {
	case "", "name":
	case "distance":
		q.SortByDistance = true
	default:
		return q, errors.New("sort must be 'distance' or 'name'")
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.New("limit must be an integer")
		}
		q.Limit = limit
	}
	return q, nil
}
