package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var realmSlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,24}$`)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

var reservedRealmSlugs = map[string]struct{}{
	"admin":       {},
	"api":         {},
	"auth":        {},
	"about":       {},
	"create":      {},
	"feed":        {},
	"profile":     {},
	"search":      {},
	"settings":    {},
	"realms":      {},
	"users":       {},
	"posts":       {},
	"comments":    {},
	"collections": {},
	"storage":     {},
	"media":       {},
	"ws":          {},
	"swagger":     {},
	"metrics":     {},
	"login":       {},
	"signup":      {},
}

// ValidateRealmSlug validates realm slug format and reserved names.
func ValidateRealmSlug(slug string) error {
	if !realmSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-24 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedRealmSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}

// Slugify derives a slug candidate from a display name, e.g.
// "Urban Photography" -> "urban-photography". The result still has to pass
// ValidateRealmSlug.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 24 {
		s = strings.TrimRight(s[:24], "-")
	}
	return s
}
