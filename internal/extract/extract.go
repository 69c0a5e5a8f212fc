// Package extract recognizes vulnerability identifiers inside free text.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// CVERegex matches a CVE identifier anywhere in a string, tolerating
// underscore and en-dash separators and any letter case.
const CVERegex = `(?i)cve[-–_][0-9]{4}[-–_][0-9]+`

var cveRegex = regexp.MustCompile(CVERegex)

// Normalize canonicalizes a raw identifier to upper case with dash separators.
func Normalize(id string) string {
	normalized := strings.ToUpper(strings.TrimSpace(id))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, "–", "-")
	return normalized
}

// CVEs returns the sorted set of normalized CVE identifiers found as
// substrings of text. No match yields an empty result, not an error.
func CVEs(text string) []string {
	ids := make(map[string]bool)
	for _, m := range cveRegex.FindAllString(text, -1) {
		if m != "" {
			ids[Normalize(m)] = true
		}
	}

	result := make([]string, 0, len(ids))
	for id := range ids {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Bucket returns the fan-out directory name for an identifier: its prefix up
// to and including the year ("CVE-2021-44228" -> "CVE-2021"). Identifiers
// without a year component bucket under "misc".
func Bucket(id string) string {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) < 3 {
		return "misc"
	}
	return parts[0] + "-" + parts[1]
}
