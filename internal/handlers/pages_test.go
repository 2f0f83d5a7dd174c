package handlers

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/nobetci/eczane/internal/pharmacy"
)

func TestPageHandler(t *testing.T) {
	t.Parallel()
	router := newTestRouter(nil, NewPageHandler(newTestService(t), "https://eczane.example", nil, nil))

	tests := []struct {
		name         string
		path         string
		expectStatus int
		contains     []string
		excludes     []string
	}{
		{
			name:         "home lists cities",
			path:         "/",
			expectStatus: http.StatusOK,
			contains:     []string{`href="/istanbul"`, `href="/ankara"`, "Bugün Nöbetçi Eczaneler"},
		},
		{
			name:         "city page",
			path:         "/istanbul",
			expectStatus: http.StatusOK,
			contains: []string{
				"<title>İstanbul Nöbetçi Eczaneler | Nöbetçi Eczane</title>",
				`<link rel="canonical" href="https://eczane.example/istanbul">`,
				`application/ld+json`,
				`"@type":"Pharmacy"`,
				"Moda Eczanesi",
				"Çarşı Eczanesi",
				`href="/istanbul/kadikoy"`,
				`href="tel:&#43;902161234567"`,
			},
		},
		{
			name:         "district page",
			path:         "/istanbul/kadikoy",
			expectStatus: http.StatusOK,
			contains:     []string{"Kadıköy, İstanbul Nöbetçi Eczaneler", "Moda Eczanesi", "https://eczane.example/istanbul/kadikoy"},
			excludes:     []string{"Çarşı Eczanesi"},
		},
		{name: "unknown city", path: "/atlantis", expectStatus: http.StatusNotFound, contains: []string{"Sayfa bulunamadı"}},
		{name: "unknown district", path: "/istanbul/sisli", expectStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := serve(router, tt.path)
			defer func() {
				_ = resp.Body.Close() // Ignore error in test
			}()

			if resp.StatusCode != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectStatus, resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			raw, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			body := string(raw)
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(body, unwanted) {
					t.Errorf("body unexpectedly contains %q", unwanted)
				}
			}
		})
	}
}

func TestPageHandler_SourceFailure(t *testing.T) {
	t.Parallel()
	router := newTestRouter(nil, NewPageHandler(pharmacy.NewService(failingSource{}), "", nil, nil))

	resp := serve(router, "/istanbul")
	defer func() {
		_ = resp.Body.Close() // Ignore error in test
	}()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}
}

func TestTelURL(t *testing.T) {
	t.Parallel()
	if got := telURL("tel:+902161234567"); got != "tel:+902161234567" {
		t.Errorf("telURL kept = %q", got)
	}
	if got := telURL("javascript:alert(1)"); got != "" {
		t.Errorf("telURL unsafe = %q", got)
	}
}
