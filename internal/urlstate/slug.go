package urlstate

import "strings"

// SectionPrefix starts every section anchor
const SectionPrefix = "section-"

// Slugify lowercases s, collapses runs of characters outside [a-z0-9] into a
// single dash and trims dashes at both ends.
func Slugify(s string) string {
	slug := make([]rune, 0, len(s))
	lastDash := false
	for _, ch := range strings.ToLower(strings.TrimSpace(s)) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			slug = append(slug, ch)
			lastDash = false
			continue
		}
		if !lastDash {
			slug = append(slug, '-')
			lastDash = true
		}
	}
	return strings.Trim(string(slug), "-")
}

// SectionID returns the anchor id of a chart heading
func SectionID(heading string) string {
	return SectionPrefix + Slugify(heading)
}
