package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var descriptionPolicy = newDescriptionPolicy()

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// SanitizeHTML keeps the formatting tags an admin may use in product copy and
// strips scripts, event handlers and unsafe URLs.
func SanitizeHTML(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(descriptionPolicy.Sanitize(s))
}
