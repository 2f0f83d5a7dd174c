package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/pharmacy"
)

const handlerDataset = `
duty_date: "2026-10-17"
cities:
  - name: İstanbul
    pharmacies:
      - name: Moda Eczanesi
        address: Moda Cad. No:12
        district: Kadıköy
        phone: "0216 123 45 67"
        lat: 40.987
        lng: 29.026
        distance: 2.4
      - name: Çarşı Eczanesi
        address: Çarşı Sk. No:3
        district: Beşiktaş
        phone: "0212 765 43 21"
        lat: 41.043
        lng: 29.006
        distance: 0.8
  - name: Ankara
    pharmacies:
      - name: Kızılay Eczanesi
        district: Çankaya
        phone: "0312 111 22 33"
`

func newTestService(t *testing.T) *pharmacy.Service {
	t.Helper()
	src, err := pharmacy.ParseDataset(strings.NewReader(handlerDataset))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	return pharmacy.NewService(src)
}

type failingSource struct{}

func (failingSource) ListByCity(context.Context, string) ([]models.Pharmacy, error) {
	return nil, errors.New("connection reset")
}

func (failingSource) Cities(context.Context) ([]models.City, error) {
	return nil, errors.New("connection reset")
}

func newTestRouter(api *PharmacyHandler, pages *PageHandler) *mux.Router {
	r := mux.NewRouter()
	if api != nil {
		r.HandleFunc("/api/v1/cities", api.ListCities).Methods(http.MethodGet)
		r.HandleFunc("/api/v1/pharmacies", api.Search).Methods(http.MethodGet)
		r.HandleFunc("/api/v1/pharmacies/{city}", api.SearchByCity).Methods(http.MethodGet)
	}
	if pages != nil {
		r.HandleFunc("/", pages.Home).Methods(http.MethodGet)
		r.HandleFunc("/{city}", pages.City).Methods(http.MethodGet)
		r.HandleFunc("/{city}/{district}", pages.City).Methods(http.MethodGet)
	}
	return r
}

func serve(h http.Handler, path string) *http.Response {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Result()
}
