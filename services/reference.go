package services

import (
	"fmt"
	"regexp"
	"strings"

	"paper-archive/models"
)

// ReferenceItem is a numbered entry in a paper's "built upon" bibliography
type ReferenceItem struct {
	Number    int    `json:"number"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Org       string `json:"organization"`
	Year      string `json:"year"`
	ArxivID   string `json:"arxiv_id,omitempty"`
	Reference string `json:"reference"`
}

var arxivIDExpr = regexp.MustCompile(`(\d{4}\.\d{4,5})(v\d+)?`)

// ArxivID extracts the arXiv identifier (without version) from an abs/pdf URL
func ArxivID(url string) string {
	m := arxivIDExpr.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// FormatReference renders a paper into a compact reference string
func FormatReference(p models.Paper) string {
	org := string(p.Organization)
	if org == "" {
		org = "Unknown Organization"
	}
	year := "n.d."
	if len(p.Date) >= 4 {
		year = p.Date[:4]
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Untitled"
	}
	ref := fmt.Sprintf("%s (%s). %s.", org, year, title)
	if id := ArxivID(p.ArxivURL); id != "" {
		ref += " arXiv:" + id
	} else if p.ArxivURL != "" {
		ref += " " + p.ArxivURL
	}
	return ref
}

// BuildBibliography numbers the resolvable buildUpon references of p in declaration order.
// Ids that are not in the table produce a warning instead of an entry.
func BuildBibliography(p models.Paper, lookup func(id string) (models.Paper, bool)) (ordered []ReferenceItem, warnings []string) {
	seen := map[string]bool{}
	for _, id := range p.BuildUpon {
		if seen[id] {
			continue
		}
		seen[id] = true
		ref, ok := lookup(id)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("reference %s has no matching paper", id))
			continue
		}
		year := ""
		if len(ref.Date) >= 4 {
			year = ref.Date[:4]
		}
		ordered = append(ordered, ReferenceItem{
			Number:    len(ordered) + 1,
			ID:        ref.ID,
			Title:     ref.Title,
			Org:       string(ref.Organization),
			Year:      year,
			ArxivID:   ArxivID(ref.ArxivURL),
			Reference: FormatReference(ref),
		})
	}
	return ordered, warnings
}
