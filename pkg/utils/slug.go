package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const MaxTenantIDLength = 60

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	tenantIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,59}$`)
)

// Slugify lower-cases s, collapses every run of characters outside [a-z0-9]
// into a single "-" and truncates to MaxTenantIDLength. The result may be
// empty.
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxTenantIDLength {
		slug = strings.TrimRight(slug[:MaxTenantIDLength], "-")
	}
	return slug
}

// DeriveTenantID returns the tenant id for a signup. An explicit id wins over
// the email; both go through Slugify. Two emails that slug to the same value
// share one tenant.
func DeriveTenantID(explicit, email string, now time.Time) string {
	if id := Slugify(explicit); id != "" {
		return id
	}
	if id := Slugify(email); id != "" {
		return id
	}
	return fmt.Sprintf("tenant-%d", now.Unix())
}

// ValidTenantID reports whether id has the shape DeriveTenantID produces.
// File-backed stores use it as a path guard.
func ValidTenantID(id string) bool {
	return tenantIDRegex.MatchString(id)
}
