package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-archive/models"
)

type favSet map[string]bool

func (f favSet) IsFavorite(id string) bool { return f[id] }

func ids(papers []models.Paper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.ID
	}
	return out
}

func filterFixture() []models.Paper {
	a := testPaper("a", models.OrgDeepSeek, "2024-12")
	a.Tags = []string{"moe"}
	b := testPaper("b", models.OrgDeepSeek, "2025-01")
	b.Domains = []models.Domain{models.DomainReasoning}
	b.Tags = []string{"grpo", "reasoning"}
	c := testPaper("c", models.OrgGoogle, "2024-12")
	c.Tags = []string{"moe"}
	d := testPaper("d", models.OrgMeta, "2023-02")
	return []models.Paper{a, b, c, d}
}

func TestFilterPapersNoFilterSortsByDate(t *testing.T) {
	got := FilterPapers(filterFixture(), PaperFilter{}, nil)
	// a and c share a date; table order is kept.
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(got))
}

func TestFilterPapersConjunction(t *testing.T) {
	papers := filterFixture()
	favs := favSet{"a": true, "d": true}

	cases := []struct {
		name   string
		filter PaperFilter
		want   []string
	}{
		{"org", PaperFilter{Organization: models.OrgDeepSeek}, []string{"b", "a"}},
		{"domain", PaperFilter{Domain: models.DomainReasoning}, []string{"b"}},
		{"tag", PaperFilter{Tag: "moe"}, []string{"a", "c"}},
		{"org and domain", PaperFilter{Organization: models.OrgDeepSeek, Domain: models.DomainLLM}, []string{"a"}},
		{"org and tag", PaperFilter{Organization: models.OrgDeepSeek, Tag: "moe"}, []string{"a"}},
		{"favorites", PaperFilter{FavoritesOnly: true}, []string{"a", "d"}},
		{"favorites and org", PaperFilter{FavoritesOnly: true, Organization: models.OrgMeta}, []string{"d"}},
		{"no match", PaperFilter{Organization: models.OrgAnthropic}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterPapers(papers, tc.filter, favs)
			assert.Equal(t, tc.want, ids(got))
			for _, p := range got {
				assert.True(t, tc.filter.Match(p, favs))
			}
		})
	}
}

func TestFilterPapersDoesNotMutateInput(t *testing.T) {
	papers := filterFixture()
	FilterPapers(papers, PaperFilter{}, nil)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(papers))
}

func TestEmptyMessage(t *testing.T) {
	assert.Equal(t, EmptyFavoritesMessage, EmptyMessage(PaperFilter{FavoritesOnly: true, Tag: "x"}))
	assert.Equal(t, EmptyFilterMessage, EmptyMessage(PaperFilter{Tag: "x"}))
	assert.Equal(t, EmptyFilterMessage, EmptyMessage(PaperFilter{}))
}

func TestActive(t *testing.T) {
	assert.False(t, PaperFilter{}.Active())
	assert.True(t, PaperFilter{Tag: "x"}.Active())
	assert.True(t, PaperFilter{FavoritesOnly: true}.Active())
}

func TestRecentAndFavoritePapers(t *testing.T) {
	papers := filterFixture()
	assert.Equal(t, []string{"b", "a"}, ids(RecentPapers(papers, 2)))
	assert.Len(t, RecentPapers(papers, 10), 4)

	favs := favSet{"d": true, "b": true, "ghost": true}
	assert.Equal(t, []string{"b", "d"}, ids(FavoritePapers(papers, favs, 4)))
	assert.Equal(t, []string{"b"}, ids(FavoritePapers(papers, favs, 1)))
	assert.Equal(t, 2, CountFavorites(papers, favs))
}

func TestGroupByMonth(t *testing.T) {
	groups := GroupByMonth(filterFixture())
	require.Len(t, groups, 3)
	assert.Equal(t, "2025-01", groups[0].Month)
	assert.Equal(t, "2024-12", groups[1].Month)
	assert.Equal(t, []string{"a", "c"}, ids(groups[1].Papers))
	assert.Equal(t, "2023-02", groups[2].Month)

	assert.Empty(t, GroupByMonth(nil))
}
