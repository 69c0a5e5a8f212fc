// Package report renders a ranked, deduplicated repository table into the
// three per-scope output artifacts.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"cvescout/internal/model"
)

const maxDescriptionLen = 256

// columns is the restricted column set shared by data.csv and README.md.
var columns = []string{
	"full_name", "description", "html_url", "matched_list", "matched_count",
	"pushed_at", "size", "stargazers_count", "language", "forks_count", "vul_ids",
}

var spaceRuns = regexp.MustCompile(` +`)

// WriteAll writes data.json, data.csv and README.md into scopeDir.
func WriteAll(scopeDir string, records []model.Repository) error {
	if err := os.MkdirAll(scopeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create scope directory %s: %w", scopeDir, err)
	}
	if err := WriteJSON(filepath.Join(scopeDir, "data.json"), records); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(scopeDir, "data.csv"), records); err != nil {
		return err
	}
	return WriteMarkdown(filepath.Join(scopeDir, "README.md"), records)
}

// WriteJSON writes the full record table.
func WriteJSON(path string, records []model.Repository) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the restricted column set.
func WriteCSV(path string, records []model.Repository) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteMarkdown writes the human-readable table document: a one-line summary
// followed by a markdown table. Runs of spaces in the rendered table are
// collapsed to keep the document small enough for hosted rendering; newlines
// are preserved.
func WriteMarkdown(path string, records []model.Repository) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d records found after deduplication\n\n", len(records))

	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	for _, r := range records {
		table.Append(row(r))
	}
	table.Render()

	sb.WriteString(spaceRuns.ReplaceAllString(buf.String(), " "))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func row(r model.Repository) []string {
	return []string{
		r.FullName,
		cleanDescription(r.Description),
		r.HTMLURL,
		strings.Join(r.MatchedList, ";"),
		strconv.Itoa(r.MatchedCount),
		r.PushedAt,
		strconv.Itoa(r.Size),
		strconv.Itoa(r.StargazersCount),
		r.Language,
		strconv.Itoa(r.ForksCount),
		strings.Join(r.VulIDs, ";"),
	}
}

// cleanDescription truncates long descriptions and replaces literal pipes,
// which would corrupt tabular rendering.
func cleanDescription(desc string) string {
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen]
	}
	return strings.ReplaceAll(desc, "|", "_")
}
