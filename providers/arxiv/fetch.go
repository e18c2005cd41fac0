package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paper-archive/models"
	"paper-archive/providers"
)

// CustomTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type CustomTransport struct {
	Transport http.RoundTripper
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "paper-archive/1.0 (+https://arxiv.org/help/robots)")
	return t.Transport.RoundTrip(req)
}

// Fetcher liest die "new"-Listings mehrerer Kategorien parallel.
type Fetcher struct {
	BaseURL  string
	PageSize int
	Logger   *zap.Logger

	client *http.Client
	now    func() time.Time
}

var _ providers.Provider = (*Fetcher)(nil)

// NewFetcher erstellt einen Fetcher; ein leerer baseURL bedeutet https://arxiv.org.
func NewFetcher(baseURL string, logger *zap.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = "https://arxiv.org"
	}
	return &Fetcher{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		PageSize: 200,
		Logger:   logger.With(zap.String("provider", "arxiv")),
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &CustomTransport{Transport: http.DefaultTransport},
		},
		now: time.Now,
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "arxiv"
}

// Fetch holt alle Kategorien parallel (höchstens vier gleichzeitig) und dedupliziert nach arXiv-ID.
// Die Reihenfolge folgt den Kategorien und innerhalb einer Kategorie dem Listing.
func (f *Fetcher) Fetch(ctx context.Context, categories []string) ([]models.Candidate, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories provided")
	}

	perCategory := make([][]models.Candidate, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, cat := range categories {
		g.Go(func() error {
			items, err := f.fetchCategory(gctx, cat)
			if err != nil {
				return fmt.Errorf("category %s: %w", cat, err)
			}
			perCategory[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []models.Candidate
	for _, items := range perCategory {
		for _, c := range items {
			if seen[c.ArxivID] {
				continue
			}
			seen[c.ArxivID] = true
			out = append(out, c)
		}
	}
	f.Logger.Info("arXiv-Listings gelesen", zap.Int("categories", len(categories)), zap.Int("candidates", len(out)))
	return out, nil
}

func (f *Fetcher) fetchCategory(ctx context.Context, category string) ([]models.Candidate, error) {
	pageURL, err := buildListURL(f.BaseURL, category, 0, f.PageSize)
	if err != nil {
		return nil, err
	}
	f.Logger.Debug("Rufe Listing auf", zap.String("url", pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var out []models.Candidate
	doc.Find("dl > dt").Each(func(_ int, dt *goquery.Selection) {
		entry := parseEntry(dt, dt.Next())
		if entry.ID == "" || entry.Title == "" {
			return
		}
		out = append(out, f.toCandidate(entry))
	})
	return out, nil
}

func buildListURL(base, category string, skip, show int) (string, error) {
	u, err := url.Parse(base + "/list/" + url.PathEscape(category) + "/new")
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("skip", strconv.Itoa(skip))
	q.Set("show", strconv.Itoa(show))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseEntry(dt, dd *goquery.Selection) listingEntry {
	link := dt.Find(`a[href*="/abs/"]`).First()
	href, _ := link.Attr("href")
	id := strings.TrimPrefix(strings.TrimSpace(link.Text()), "arXiv:")
	if id == "" {
		id = href[strings.LastIndex(href, "/")+1:]
	}

	title := collapse(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	authors := collapse(dd.Find(".list-authors").First().Text())
	authors = strings.TrimSpace(strings.TrimPrefix(authors, "Authors:"))

	subjects := collapse(dd.Find(".list-subjects").First().Text())

	abstract := collapse(dd.Find("p.mathjax").First().Text())
	abstract = strings.TrimSpace(strings.TrimPrefix(abstract, "Abstract:"))

	dateline := strings.TrimSpace(dd.Find(".list-dateline").First().Text())

	return listingEntry{
		ID:       strings.TrimSpace(id),
		Href:     href,
		Title:    title,
		Authors:  authors,
		Subjects: subjects,
		Abstract: abstract,
		Dateline: dateline,
	}
}

func (f *Fetcher) toCandidate(e listingEntry) models.Candidate {
	absURL := e.Href
	if !strings.HasPrefix(absURL, "http") {
		absURL = f.BaseURL + absURL
	}
	return models.Candidate{
		ArxivID:    e.ID,
		Title:      e.Title,
		Abstract:   e.Abstract,
		Authors:    e.Authors,
		Categories: parseCategories(e.Subjects),
		URL:        absURL,
		Published:  f.publishedAt(e),
	}
}

// publishedAt leitet das Datum aus der ID ab, sonst aus der Dateline, sonst jetzt.
func (f *Fetcher) publishedAt(e listingEntry) time.Time {
	if m := idMonthExpr.FindStringSubmatch(e.ID); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		}
	}
	if match := dateExpr.FindString(e.Dateline); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			return parsed
		}
	}
	return f.now().UTC()
}
