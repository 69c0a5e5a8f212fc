// Package aggregate collapses repeated search observations of the same
// repository into one record per repository ID.
package aggregate

import (
	"regexp"
	"sort"
	"strings"

	"cvescout/internal/extract"
	"cvescout/internal/model"
)

// Search queries carry a "pushed:>DATE" qualifier that varies by collection
// day. It must be stripped before grouping so the same query run on different
// days does not fragment into distinct match reasons.
var pushedSuffix = regexp.MustCompile(`\s+pushed:.*$`)

// CleanMatchedOn removes a trailing push-date qualifier from a match reason.
func CleanMatchedOn(matchedOn string) string {
	return pushedSuffix.ReplaceAllString(matchedOn, "")
}

// Dedupe produces exactly one record per repository ID. The surviving record
// is the first occurrence after a stable sort by ID; its MatchedList is the
// sorted, duplicate-free union of all cleaned match reasons in the group, and
// its VulIDs are the identifiers extracted from the record's merged text.
//
// Duplicate rows for the same ID are assumed field-identical apart from
// MatchedOn. That assumption comes from upstream collection behavior and is
// not enforced here.
func Dedupe(records []model.Repository) []model.Repository {
	sorted := make([]model.Repository, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	reasons := make(map[int64]map[string]bool)
	add := func(id int64, reason string) {
		if reason == "" {
			return
		}
		if reasons[id] == nil {
			reasons[id] = make(map[string]bool)
		}
		reasons[id][reason] = true
	}
	for _, r := range sorted {
		add(r.ID, CleanMatchedOn(r.MatchedOn))
		// Records may already carry a matched list from a previous
		// aggregation pass; fold it into the union.
		for _, reason := range r.MatchedList {
			add(r.ID, reason)
		}
	}

	var out []model.Repository
	seen := make(map[int64]bool)
	for _, r := range sorted {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		r.MatchedOn = CleanMatchedOn(r.MatchedOn)
		r.MatchedList = sortedKeys(reasons[r.ID])
		r.MatchedCount = len(r.MatchedList)
		r.VulIDs = extract.CVEs(mergedText(r))
		out = append(out, r)
	}
	return out
}

// mergedText concatenates the textual fields an identifier may hide in.
func mergedText(r model.Repository) string {
	parts := []string{r.FullName, r.Description, r.HTMLURL}
	parts = append(parts, r.MatchedList...)
	return strings.Join(parts, " ")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
