package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nobetci/eczane/internal/models"
)

// envelope mirrors the JSON written by respondJSON and respondJSONError.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, env.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", env.Timestamp, err)
	}
	return env
}

func TestRespondJSON_SearchResult(t *testing.T) {
	t.Parallel()

	result := SearchResult{
		City:     "istanbul",
		District: "Kadıköy",
		Count:    1,
		Pharmacies: []models.PharmacyView{{
			Pharmacy: models.Pharmacy{ID: "ist-1", Name: "Moda Eczanesi", District: "Kadıköy", CitySlug: "istanbul"},
			TelURL:   "tel:+902163450000",
		}},
	}

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusOK, result)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("success = false, want true")
	}

	var got SearchResult
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.City != "istanbul" || got.District != "Kadıköy" || got.Count != 1 {
		t.Errorf("data = %+v", got)
	}
	if len(got.Pharmacies) != 1 || got.Pharmacies[0].Name != "Moda Eczanesi" {
		t.Fatalf("pharmacies = %+v", got.Pharmacies)
	}
	if got.Pharmacies[0].TelURL != "tel:+902163450000" {
		t.Errorf("tel_url = %q", got.Pharmacies[0].TelURL)
	}
}

func TestRespondJSON_CityList(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusOK, []models.City{
		{Slug: "ankara", Name: "Ankara", Districts: []string{"Çankaya"}},
		{Slug: "sanliurfa", Name: "Şanlıurfa"},
	})

	env := decodeEnvelope(t, w)
	var cities []models.City
	if err := json.Unmarshal(env.Data, &cities); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(cities) != 2 || cities[1].Name != "Şanlıurfa" {
		t.Errorf("cities = %+v", cities)
	}
	if strings.Contains(string(env.Data), `"districts":null`) {
		t.Error("empty district list should be omitted")
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		errorType string
		message   string
	}{
		{"invalid query", http.StatusBadRequest, "Bad Request", "limit must be a positive integer"},
		{"unknown city", http.StatusNotFound, "Not Found", "Şehir bulunamadı"},
		{"source failure", http.StatusInternalServerError, "Internal Server Error", "Eczane bilgileri şu anda alınamıyor"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSONError(w, tt.status, tt.errorType, tt.message)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			env := decodeEnvelope(t, w)
			if env.Success {
				t.Error("success = true, want false")
			}
			if env.Error != tt.errorType {
				t.Errorf("error = %q, want %q", env.Error, tt.errorType)
			}
			if env.Message != tt.message {
				t.Errorf("message = %q, want %q", env.Message, tt.message)
			}
			if len(env.Data) != 0 {
				t.Errorf("error envelope carries data: %s", env.Data)
			}
		})
	}
}

func TestRespondJSONError_TruncatesMessage(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", strings.Repeat("ı", maxErrorMessageLength*2))

	env := decodeEnvelope(t, w)
	if !strings.HasSuffix(env.Message, "...") {
		t.Errorf("message not truncated: %d runes", utf8.RuneCountInString(env.Message))
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	t.Parallel()

	short := "şehir bulunamadı"
	if got := sanitizeErrorMessage(short); got != short {
		t.Errorf("short message changed to %q", got)
	}

	long := strings.Repeat("ğ", maxErrorMessageLength+10)
	got := sanitizeErrorMessage(long)
	if !utf8.ValidString(got) {
		t.Error("truncated message is not valid UTF-8")
	}
	if utf8.RuneCountInString(got) != maxErrorMessageLength+3 {
		t.Errorf("truncated length = %d", utf8.RuneCountInString(got))
	}
}
