package links

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nobetci/eczane/internal/models"
)

const directionsBase = "https://www.google.com/maps/dir/"

// DirectionsURL returns a map deep link that opens turn-by-turn directions to p.
// Without coordinates it falls back to a text destination built from name and address.
func DirectionsURL(p models.Pharmacy) string {
	q := url.Values{}
	q.Set("api", "1")
	if p.HasCoordinates() {
		q.Set("destination", formatCoord(p.Lat)+","+formatCoord(p.Lng))
	} else {
		parts := make([]string, 0, 4)
		for _, s := range []string{p.Name, p.Address, p.District, p.City} {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		q.Set("destination", strings.Join(parts, ", "))
	}
	return directionsBase + "?" + q.Encode()
}

// NormalizePhone converts a Turkish phone number to E.164 (+90XXXXXXXXXX).
// It returns "" when the input does not contain a 10-digit national number.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 12 && strings.HasPrefix(d, "90"):
		d = d[2:]
	case len(d) == 11 && strings.HasPrefix(d, "0"):
		d = d[1:]
	}
	if len(d) != 10 {
		return ""
	}
	return "+90" + d
}

// TelURL returns a tel: link for phone, or "" if the number cannot be normalized.
func TelURL(phone string) string {
	n := NormalizePhone(phone)
	if n == "" {
		return ""
	}
	return "tel:" + n
}

// View attaches directions and dialer links to p.
func View(p models.Pharmacy) models.PharmacyView {
	return models.PharmacyView{
		Pharmacy:      p,
		DirectionsURL: DirectionsURL(p),
		TelURL:        TelURL(p.Phone),
	}
}

// Views converts a list of pharmacies.
func Views(list []models.Pharmacy) []models.PharmacyView {
	out := make([]models.PharmacyView, 0, len(list))
	for _, p := range list {
		out = append(out, View(p))
	}
	return out
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
