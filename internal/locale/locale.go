// Package locale maps UI language codes to BCP 47 speech locales.
package locale

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loan4farm-api/internal/model"
)

// India is the region every supported locale is bound to
var India = language.MustParseRegion("IN")

var fallback = language.MustParse("en-IN")

var languages = []struct {
	code string
	name string
	base string
}{
	{"EN", "English", "en"},
	{"HI", "हिंदी", "hi"},
	{"MR", "मराठी", "mr"},
	{"KN", "ಕನ್ನಡ", "kn"},
	{"TA", "தமிழ்", "ta"},
	{"TE", "తెలుగు", "te"},
	{"GU", "ગુજરાતી", "gu"},
}

// Tag returns the speech locale for a UI language code; unknown codes get en-IN
func Tag(code string) language.Tag {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, l := range languages {
		if l.code != code {
			continue
		}
		base, err := language.ParseBase(l.base)
		if err != nil {
			return fallback
		}
		tag, err := language.Compose(base, India)
		if err != nil {
			return fallback
		}
		return tag
	}
	return fallback
}

// For is Tag as a string, e.g. "hi-IN"
func For(code string) string {
	return Tag(code).String()
}

// Languages lists the supported UI languages
func Languages() []model.Language {
	out := make([]model.Language, 0, len(languages))
	for _, l := range languages {
		out = append(out, model.Language{Code: l.code, Name: l.name, Locale: For(l.code)})
	}
	return out
}

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Rupees formats a whole rupee amount with Indian digit grouping, e.g. ₹1,50,000
func Rupees(amount float64) string {
	return inrPrinter.Sprintf("₹%d", int64(math.Round(amount)))
}
