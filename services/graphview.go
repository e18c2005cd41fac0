package services

import (
	"fmt"
	"sync"

	"paper-archive/models"
)

// FallbackColor wird für Organisationen ohne eigene Farbe verwendet.
const FallbackColor = "#666"

// BackgroundColor ist der Hintergrund der Graphansicht.
const BackgroundColor = "#171717"

var orgColors = map[models.Organization]string{
	models.OrgDeepSeek:  "#3b82f6",
	models.OrgDeepMind:  "#22c55e",
	models.OrgOpenAI:    "#a855f7",
	models.OrgAnthropic: "#f97316",
	models.OrgMeta:      "#ef4444",
	models.OrgGoogle:    "#eab308",
	models.OrgMicrosoft: "#06b6d4",
	models.OrgAlibaba:   "#ec4899",
	models.OrgMIT:       "#8b5cf6",
	models.OrgStanford:  "#14b8a6",
	models.OrgBerkeley:  "#f59e0b",
	models.OrgCMU:       "#6366f1",
	models.OrgPrinceton: "#84cc16",
	models.OrgTsinghua:  "#d946ef",
	models.OrgPeking:    "#64748b",
}

// OrgColor liefert die Hex-Farbe einer Organisation.
func OrgColor(org models.Organization) string {
	if c, ok := orgColors[org]; ok {
		return c
	}
	return FallbackColor
}

// LinkStyle beschreibt Farbe und Strichstärke einer Kante.
type LinkStyle struct {
	R, G, B int
	Alpha   float64
	Width   float64
}

// CSS liefert die Farbe als rgba()-String.
func (s LinkStyle) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", s.R, s.G, s.B, s.Alpha)
}

// StyleForLink wählt den Stil nach Kantentyp.
func StyleForLink(t models.LinkType) LinkStyle {
	switch t {
	case models.LinkBuildUpon:
		return LinkStyle{R: 255, G: 255, B: 255, Alpha: 0.6, Width: 2}
	case models.LinkSameOrg:
		return LinkStyle{R: 100, G: 100, B: 100, Alpha: 0.2, Width: 0.5}
	case models.LinkSameDomain:
		return LinkStyle{R: 100, G: 100, B: 100, Alpha: 0.1, Width: 0.5}
	default:
		return LinkStyle{R: 100, G: 100, B: 100, Alpha: 0.3, Width: 0.5}
	}
}

// LegendEntry ist ein Eintrag der Farblegende.
type LegendEntry struct {
	Organization models.Organization `json:"organization"`
	Color        string              `json:"color"`
}

// Legend listet die im Graphen vorkommenden Organisationen in Anzeigereihenfolge.
func Legend(g models.Graph) []LegendEntry {
	present := map[models.Organization]bool{}
	for _, n := range g.Nodes {
		present[n.Organization] = true
	}
	out := []LegendEntry{}
	for _, org := range models.Organizations {
		if present[org] {
			out = append(out, LegendEntry{Organization: org, Color: OrgColor(org)})
		}
	}
	return out
}

// PaperPath ist das Navigationsziel der Detailansicht.
func PaperPath(id string) string {
	return "/papers/" + id
}

// GraphView hält den Interaktionszustand über einem Graphen:
// einen flüchtigen Hover und eine Auswahl per Klick.
type GraphView struct {
	mu       sync.RWMutex
	graph    models.Graph
	index    map[string]int
	hovered  string
	selected string
}

// NewGraphView erstellt eine Ansicht ohne Hover und Auswahl.
func NewGraphView(g models.Graph) *GraphView {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	return &GraphView{graph: g, index: index}
}

// Graph liefert den zugrunde liegenden Graphen.
func (v *GraphView) Graph() models.Graph {
	return v.graph
}

// Node sucht einen Knoten über seine ID.
func (v *GraphView) Node(id string) (models.GraphNode, bool) {
	i, ok := v.index[id]
	if !ok {
		return models.GraphNode{}, false
	}
	return v.graph.Nodes[i], true
}

// Hover setzt den Hover-Knoten; unbekannte IDs löschen ihn.
func (v *GraphView) Hover(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[id]; !ok {
		v.hovered = ""
		return
	}
	v.hovered = id
}

// Leave beendet den Hover.
func (v *GraphView) Leave() {
	v.mu.Lock()
	v.hovered = ""
	v.mu.Unlock()
}

// Click ersetzt die Auswahl und liefert das Navigationsziel.
func (v *GraphView) Click(id string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[id]; !ok {
		return "", false
	}
	v.selected = id
	return PaperPath(id), true
}

// ClearSelection hebt die Auswahl auf.
func (v *GraphView) ClearSelection() {
	v.mu.Lock()
	v.selected = ""
	v.mu.Unlock()
}

// Hovered liefert die ID des Hover-Knotens oder "".
func (v *GraphView) Hovered() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hovered
}

// Selected liefert die ID des ausgewählten Knotens oder "".
func (v *GraphView) Selected() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selected
}

// Panel liefert den Knoten für das Infopanel. Eine Auswahl hat Vorrang vor dem Hover.
func (v *GraphView) Panel() (models.GraphNode, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.selected != "" {
		return v.Node(v.selected)
	}
	if v.hovered != "" {
		return v.Node(v.hovered)
	}
	return models.GraphNode{}, false
}

// Highlighted meldet, ob ein Knoten hervorgehoben gezeichnet wird.
func (v *GraphView) Highlighted(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return id != "" && (id == v.hovered || id == v.selected)
}
