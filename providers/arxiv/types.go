// Package arxiv liest die Kategorie-Listings von arXiv und liefert Paper-Kandidaten.
package arxiv

import (
	"regexp"
	"strings"
)

var (
	// 2510.12345 -> Oktober 2025
	idMonthExpr  = regexp.MustCompile(`^(\d{2})(\d{2})\.\d{4,5}`)
	dateExpr     = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)
	categoryExpr = regexp.MustCompile(`\(([a-z-]+(?:\.[A-Za-z-]+)?)\)`)
	spaceExpr    = regexp.MustCompile(`\s+`)
)

// listingEntry ist ein roher dt/dd-Eintrag eines Listings vor der Umwandlung.
type listingEntry struct {
	ID       string
	Href     string
	Title    string
	Authors  string
	Subjects string
	Abstract string
	Dateline string
}

func collapse(s string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(s, " "))
}

// parseCategories zieht die Kategorie-Kürzel aus der Subjects-Zeile.
func parseCategories(subjects string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range categoryExpr.FindAllStringSubmatch(subjects, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
