package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/nobetci/eczane/internal/links"
	"github.com/nobetci/eczane/internal/metrics"
	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/pharmacy"
	"github.com/nobetci/eczane/internal/seo"
	"github.com/nobetci/eczane/internal/validation"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"telURL": telURL,
}).ParseFS(templateFS, "templates/*.html"))

// telURL marks tel: links safe; html/template rejects the scheme otherwise
func telURL(s string) template.URL {
	if !strings.HasPrefix(s, "tel:+") {
		return ""
	}
	return template.URL(s)
}

// PageHandler renders the server-side city and district pages.
type PageHandler struct {
	service *pharmacy.Service
	baseURL string
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewPageHandler creates a new page handler. baseURL has no trailing slash.
func NewPageHandler(service *pharmacy.Service, baseURL string, m *metrics.Metrics, log *zap.Logger) *PageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageHandler{service: service, baseURL: baseURL, metrics: m, log: log}
}

type pageData struct {
	Page           seo.Page
	StructuredData template.JS
	Cities         []models.City
	City           models.City
	District       string
	DistrictLinks  []seo.Breadcrumb
	Pharmacies     []models.PharmacyView
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.Cities(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, http.StatusOK, "home", pageData{
		Page: seo.Page{
			Title:        "Nöbetçi Eczaneler | Nöbetçi Eczane",
			Heading:      "Bugün Nöbetçi Eczaneler",
			Description:  "Türkiye genelinde bugün açık nöbetçi eczaneler. Adres, telefon ve yol tarifi.",
			CanonicalURL: h.baseURL + "/",
		},
		Cities: cities,
	})
}

// City handles GET /{city} and GET /{city}/{district}
func (h *PageHandler) City(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ctx := r.Context()

	city, err := h.service.City(ctx, vars["city"])
	if errors.Is(err, pharmacy.ErrCityNotFound) {
		h.notFound(w)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	district := ""
	if slug := vars["district"]; slug != "" {
		var ok bool
		if district, ok = findDistrict(city, slug); !ok {
			h.notFound(w)
			return
		}
	}

	list, err := h.service.Search(ctx, pharmacy.Query{City: city.Slug, District: district, Limit: pharmacy.MaxLimit})
	if err != nil {
		h.fail(w, err)
		return
	}
	views := links.Views(list)

	page := seo.CityPage(h.baseURL, city, district, len(views))
	ld, err := seo.StructuredData(page, views)
	if err != nil {
		h.fail(w, err)
		return
	}

	data := pageData{
		Page:           page,
		StructuredData: template.JS(ld),
		City:           city,
		District:       district,
		Pharmacies:     views,
	}
	if district == "" {
		for _, d := range city.Districts {
			data.DistrictLinks = append(data.DistrictLinks, seo.Breadcrumb{
				Name: d,
				URL:  "/" + city.Slug + "/" + validation.Slugify(d),
			})
		}
	}
	h.render(w, http.StatusOK, "city", data)
}

func findDistrict(city models.City, slug string) (string, bool) {
	for _, d := range city.Districts {
		if validation.Slugify(d) == slug {
			return d, true
		}
	}
	return "", false
}

func (h *PageHandler) notFound(w http.ResponseWriter) {
	h.render(w, http.StatusNotFound, "notfound", pageData{
		Page: seo.Page{Title: "Sayfa bulunamadı | Nöbetçi Eczane", Heading: "Sayfa bulunamadı"},
	})
}

func (h *PageHandler) fail(w http.ResponseWriter, err error) {
	h.metrics.IncSourceErrors()
	h.log.Error("page_render_failed", zap.Error(err))
	http.Error(w, "Eczane bilgileri şu anda alınamıyor", http.StatusInternalServerError)
}

// render executes into a buffer so a template error never leaves a half-written page
func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("template_execute_failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Sayfa oluşturulamadı", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
