// Package seo builds page metadata, breadcrumb trails and schema.org
// structured data for the city and district pharmacy pages.
package seo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/validation"
)

const siteName = "Nöbetçi Eczane"

// Breadcrumb is one step of the navigation trail.
type Breadcrumb struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Page holds the head metadata of a rendered page.
type Page struct {
	Title        string
	Description  string
	CanonicalURL string
	Heading      string
	Breadcrumbs  []Breadcrumb
}

// CityPage builds metadata for a city page, or a district page when district is non-empty.
func CityPage(baseURL string, city models.City, district string, count int) Page {
	place := city.Name
	if district != "" {
		place = district + ", " + city.Name
	}

	page := Page{
		Title:        fmt.Sprintf("%s Nöbetçi Eczaneler | %s", place, siteName),
		Heading:      fmt.Sprintf("%s Nöbetçi Eczaneler", place),
		CanonicalURL: cityURL(baseURL, city.Slug, district),
		Breadcrumbs:  Breadcrumbs(baseURL, city, district),
	}
	if count > 0 {
		page.Description = fmt.Sprintf("%s bölgesinde bugün açık %d nöbetçi eczane. Adres, telefon ve yol tarifi.", place, count)
	} else {
		page.Description = fmt.Sprintf("%s bölgesindeki nöbetçi eczaneler. Adres, telefon ve yol tarifi.", place)
	}
	return page
}

// Breadcrumbs returns the Home › City › District trail.
func Breadcrumbs(baseURL string, city models.City, district string) []Breadcrumb {
	trail := []Breadcrumb{
		{Name: "Ana Sayfa", URL: baseURL + "/"},
		{Name: city.Name, URL: cityURL(baseURL, city.Slug, "")},
	}
	if district != "" {
		trail = append(trail, Breadcrumb{Name: district, URL: cityURL(baseURL, city.Slug, district)})
	}
	return trail
}

// StructuredData returns the JSON-LD document for a page: one schema.org Pharmacy per
// entry plus the BreadcrumbList.
func StructuredData(page Page, list []models.PharmacyView) ([]byte, error) {
	graph := make([]any, 0, len(list)+1)
	for _, p := range list {
		graph = append(graph, pharmacyLD(p))
	}
	graph = append(graph, breadcrumbLD(page.Breadcrumbs))

	doc := map[string]any{
		"@context": "https://schema.org",
		"@graph":   graph,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal structured data: %w", err)
	}
	return data, nil
}

func pharmacyLD(p models.PharmacyView) map[string]any {
	item := map[string]any{
		"@type": "Pharmacy",
		"name":  p.Name,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   p.Address,
			"addressLocality": p.District,
			"addressRegion":   p.City,
			"addressCountry":  "TR",
		},
	}
	if p.TelURL != "" {
		item["telephone"] = strings.TrimPrefix(p.TelURL, "tel:")
	}
	if p.HasCoordinates() {
		item["geo"] = map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  p.Lat,
			"longitude": p.Lng,
		}
	}
	if p.DirectionsURL != "" {
		item["hasMap"] = p.DirectionsURL
	}
	return item
}

func breadcrumbLD(trail []Breadcrumb) map[string]any {
	items := make([]map[string]any, 0, len(trail))
	for i, b := range trail {
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     b.Name,
			"item":     b.URL,
		})
	}
	return map[string]any{
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

func cityURL(baseURL, citySlug, district string) string {
	u := baseURL + "/" + citySlug
	if district != "" {
		u += "/" + validation.Slugify(district)
	}
	return u
}
