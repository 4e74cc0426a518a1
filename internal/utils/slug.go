package utils

import (
	"regexp"
	"strings"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s_-]+`)
)

// Slugify derives a URL-safe identifier from a display name:
// lowercase, strip non-word characters, collapse whitespace/underscore/hyphen
// runs into a single hyphen, trim leading and trailing hyphens.
// Applying it twice yields the same result as applying it once.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
