package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	turkishLower = cases.Lower(language.Turkish)

	asciiFold = strings.NewReplacer(
		"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
		"â", "a", "î", "i", "û", "u",
	)
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("slug", validateSlug); err != nil {
		panic(fmt.Sprintf("failed to register slug validator: %v", err))
	}
}

// validateSlug validates that a string is a lowercase ASCII slug such as "istanbul" or "sanli-urfa"
func validateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

// IsSlug reports whether s is a lowercase ASCII slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// FoldTurkish lowercases s with Turkish casing rules (İ→i, I→ı) so that
// district names compare equal regardless of how they were typed.
func FoldTurkish(s string) string {
	return turkishLower.String(strings.TrimSpace(s))
}

// Slugify turns a Turkish place name into an ASCII slug: "Şanlıurfa" → "sanliurfa", "Afyon Karahisar" → "afyon-karahisar".
func Slugify(name string) string {
	folded := asciiFold.Replace(FoldTurkish(name))
	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
