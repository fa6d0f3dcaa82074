package domain

import (
	"regexp"
	"strings"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugNonWord    = regexp.MustCompile(`[^\w-]`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// GenerateSlug builds a URL-friendly slug from a name.
//
// Examples:
//   - "Test Product" → "test-product"
//   - "Camiseta  Básica!" → "camiseta-bsica"
//   - "  Hello -- World " → "hello-world"
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugNonWord.ReplaceAllString(slug, "")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
