package models

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title into a lowercase URL slug
// e.g. "10 Career Tips (2025)!" -> "10-career-tips-2025"
func Slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
