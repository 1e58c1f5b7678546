package usecase

import (
	"fmt"
	"strings"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/utils"

	"golang.org/x/text/language"
)

func parseLocale(key string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(key), "_", "-"))
}

// checkLocales reports every key of text that is not a BCP 47 tag.
func checkLocales(field string, text domain.LocalizedText, verr *domain.ValidationError) {
	for key := range text {
		if _, err := parseLocale(key); err != nil {
			verr.Add(fmt.Sprintf("%s.%s", field, key), "is not a valid language tag")
		}
	}
}

// canonicalLocales rewrites keys to canonical form ("FR_fr" -> "fr-FR") and
// drops empty translations. Run checkLocales first; bad keys are skipped.
func canonicalLocales(text domain.LocalizedText) domain.LocalizedText {
	if text == nil {
		return nil
	}
	out := make(domain.LocalizedText, len(text))
	for key, v := range text {
		tag, err := parseLocale(key)
		if err != nil || strings.TrimSpace(v) == "" {
			continue
		}
		out[tag.String()] = v
	}
	return out
}

// sanitizeLocalized runs every translation through the HTML sanitizer.
func sanitizeLocalized(text domain.LocalizedText) domain.LocalizedText {
	for key, v := range text {
		text[key] = utils.SanitizeHTML(v)
	}
	return text
}
