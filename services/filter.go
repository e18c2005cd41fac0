package services

import (
	"sort"

	"paper-archive/models"
)

const (
	EmptyFavoritesMessage = "No favorite papers yet."
	EmptyFilterMessage    = "No papers match the current filters."
)

// FavoriteChecker ist alles, was Favoritenstatus zu einer ID kennt.
type FavoriteChecker interface {
	IsFavorite(id string) bool
}

// PaperFilter beschreibt die aktiven Filter der Listenansicht. Leere Felder sind inaktiv.
type PaperFilter struct {
	Organization  models.Organization `json:"organization,omitempty"`
	Domain        models.Domain       `json:"domain,omitempty"`
	Tag           string              `json:"tag,omitempty"`
	FavoritesOnly bool                `json:"favorites_only,omitempty"`
}

// Active meldet, ob mindestens ein Filter gesetzt ist.
func (f PaperFilter) Active() bool {
	return f.Organization != "" || f.Domain != "" || f.Tag != "" || f.FavoritesOnly
}

// Match prüft die Konjunktion aller aktiven Filter.
func (f PaperFilter) Match(p models.Paper, favs FavoriteChecker) bool {
	if f.Organization != "" && p.Organization != f.Organization {
		return false
	}
	if f.Domain != "" && !p.HasDomain(f.Domain) {
		return false
	}
	if f.Tag != "" && !p.HasTag(f.Tag) {
		return false
	}
	if f.FavoritesOnly && (favs == nil || !favs.IsFavorite(p.ID)) {
		return false
	}
	return true
}

// FilterPapers wendet den Filter an und sortiert stabil nach Datum absteigend.
func FilterPapers(papers []models.Paper, f PaperFilter, favs FavoriteChecker) []models.Paper {
	out := make([]models.Paper, 0, len(papers))
	for _, p := range papers {
		if f.Match(p, favs) {
			out = append(out, p)
		}
	}
	sortByDateDesc(out)
	return out
}

// EmptyMessage liefert den Hinweistext für eine leere Ergebnisliste.
func EmptyMessage(f PaperFilter) string {
	if f.FavoritesOnly {
		return EmptyFavoritesMessage
	}
	return EmptyFilterMessage
}

// RecentPapers liefert die n neuesten Paper.
func RecentPapers(papers []models.Paper, n int) []models.Paper {
	out := FilterPapers(papers, PaperFilter{}, nil)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FavoritePapers liefert bis zu n favorisierte Paper in Tabellenreihenfolge (n < 0: alle).
func FavoritePapers(papers []models.Paper, favs FavoriteChecker, n int) []models.Paper {
	out := []models.Paper{}
	for _, p := range papers {
		if n >= 0 && len(out) >= n {
			break
		}
		if favs.IsFavorite(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// CountFavorites zählt nur Favoriten, die in der Tabelle existieren.
func CountFavorites(papers []models.Paper, favs FavoriteChecker) int {
	n := 0
	for _, p := range papers {
		if favs.IsFavorite(p.ID) {
			n++
		}
	}
	return n
}

// MonthGroup fasst die Paper eines Monats zusammen.
type MonthGroup struct {
	Month  string         `json:"month"`
	Papers []models.Paper `json:"papers"`
}

// GroupByMonth gruppiert nach YYYY-MM, neueste Monate zuerst; innerhalb eines Monats bleibt die Tabellenreihenfolge.
func GroupByMonth(papers []models.Paper) []MonthGroup {
	index := map[string]int{}
	var groups []MonthGroup
	for _, p := range papers {
		i, ok := index[p.Date]
		if !ok {
			i = len(groups)
			index[p.Date] = i
			groups = append(groups, MonthGroup{Month: p.Date})
		}
		groups[i].Papers = append(groups[i].Papers, p)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Month > groups[j].Month
	})
	return groups
}

func sortByDateDesc(papers []models.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Date > papers[j].Date
	})
}
