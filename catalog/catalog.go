// Package catalog hält die unveränderliche Paper-Tabelle des Archivs.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"paper-archive/models"
)

//go:embed data/papers.yaml
var embeddedPapers []byte

// ErrNotFound wird geliefert, wenn eine Paper-ID nicht in der Tabelle steht.
var ErrNotFound = errors.New("paper not found")

// Catalog ist die geordnete, nach dem Laden unveränderliche Paper-Tabelle.
type Catalog struct {
	papers []models.Paper
	index  map[string]int
}

// OrgCount ist die Anzahl der Paper einer Organisation.
type OrgCount struct {
	Organization models.Organization `json:"organization"`
	Count        int                 `json:"count"`
}

// DanglingRef beschreibt eine Referenz auf eine ID, die nicht in der Tabelle steht.
type DanglingRef struct {
	PaperID string `json:"paper_id"`
	Field   string `json:"field"`
	Target  string `json:"target"`
}

// LoadEmbedded lädt die mit dem Binary ausgelieferte Tabelle.
func LoadEmbedded() (*Catalog, error) {
	return Parse(bytes.NewReader(embeddedPapers))
}

// LoadFile lädt eine Tabelle aus einer YAML-Datei.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Load wählt zwischen Datei und eingebetteter Tabelle.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFile(path)
}

// Parse dekodiert eine YAML-Liste von Papern und prüft sie.
func Parse(r io.Reader) (*Catalog, error) {
	var papers []models.Paper
	if err := yaml.NewDecoder(r).Decode(&papers); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(papers)
}

// New baut einen Katalog aus einer Liste; doppelte oder ungültige Einträge sind ein Fehler.
func New(papers []models.Paper) (*Catalog, error) {
	c := &Catalog{
		papers: make([]models.Paper, 0, len(papers)),
		index:  make(map[string]int, len(papers)),
	}
	for _, p := range papers {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate paper id %q", p.ID)
		}
		c.index[p.ID] = len(c.papers)
		c.papers = append(c.papers, p)
	}
	return c, nil
}

// Len liefert die Anzahl der Paper.
func (c *Catalog) Len() int {
	return len(c.papers)
}

// All liefert eine Kopie der Tabelle in Originalreihenfolge.
func (c *Catalog) All() []models.Paper {
	out := make([]models.Paper, len(c.papers))
	copy(out, c.papers)
	return out
}

// ByID sucht ein Paper über seine ID.
func (c *Catalog) ByID(id string) (models.Paper, error) {
	i, ok := c.index[id]
	if !ok {
		return models.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.papers[i], nil
}

// Has meldet, ob die ID in der Tabelle steht.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs liefert alle IDs in Tabellenreihenfolge.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.papers))
	for i, p := range c.papers {
		ids[i] = p.ID
	}
	return ids
}

// Resolve übersetzt IDs in Paper und verwirft unbekannte IDs stillschweigend.
func (c *Catalog) Resolve(ids []string) []models.Paper {
	out := make([]models.Paper, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.index[id]; ok {
			out = append(out, c.papers[i])
		}
	}
	return out
}

// Domains liefert die feste Domain-Aufzählung.
func (c *Catalog) Domains() []models.Domain {
	out := make([]models.Domain, len(models.Domains))
	copy(out, models.Domains)
	return out
}

// OrganizationCounts zählt die Paper pro Organisation; Organisationen ohne Paper fehlen.
func (c *Catalog) OrganizationCounts() []OrgCount {
	counts := map[models.Organization]int{}
	for _, p := range c.papers {
		counts[p.Organization]++
	}
	var out []OrgCount
	for _, org := range models.Organizations {
		if n := counts[org]; n > 0 {
			out = append(out, OrgCount{Organization: org, Count: n})
		}
	}
	return out
}

// DanglingReferences listet alle Beziehungen, die auf unbekannte IDs zeigen.
func (c *Catalog) DanglingReferences() []DanglingRef {
	var out []DanglingRef
	for _, p := range c.papers {
		for _, id := range p.BuildUpon {
			if !c.Has(id) {
				out = append(out, DanglingRef{PaperID: p.ID, Field: "buildUpon", Target: id})
			}
		}
		for _, id := range p.RelatedPapers {
			if !c.Has(id) {
				out = append(out, DanglingRef{PaperID: p.ID, Field: "relatedPapers", Target: id})
			}
		}
	}
	return out
}

// MarshalPapers kodiert Paper als YAML-Liste im Format der Tabelle.
func MarshalPapers(papers []models.Paper) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(papers); err != nil {
		return nil, fmt.Errorf("encode papers: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}
