package services

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"

	"paper-archive/models"
)

// Point ist eine Position im Layout-Raum.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout ordnet Knoten iterativ an.
type Layout interface {
	Init(nodes []models.GraphNode, links []models.GraphLink)
	// Tick rechnet einen Schritt und meldet false, sobald das Layout abgekühlt ist.
	Tick() bool
	Positions() map[string]Point
}

// RunLayout initialisiert das Layout und rechnet bis zur Abkühlung.
func RunLayout(l Layout, g models.Graph) map[string]Point {
	l.Init(g.Nodes, g.Links)
	for l.Tick() {
	}
	return l.Positions()
}

// ForceLayout ist ein kräftebasiertes Layout nach Eades (gonum graph/layout).
// Bei gleichem Seed ist das Ergebnis reproduzierbar.
type ForceLayout struct {
	CooldownTicks int
	Repulsion     float64
	Rate          float64
	Theta         float64
	Seed          uint64

	ids       []string
	optimizer layout.OptimizerR2
	ticks     int
}

// NewForceLayout liefert ein Layout mit Standardparametern.
func NewForceLayout() *ForceLayout {
	return &ForceLayout{
		CooldownTicks: 100,
		Repulsion:     1,
		Rate:          0.05,
		Theta:         0.2,
		Seed:          1,
	}
}

var (
	_ Layout           = (*ForceLayout)(nil)
	_ graph.Undirected = (*layoutGraph)(nil)
)

// Init baut den ungerichteten Layout-Graphen. Selbstkanten und unbekannte IDs werden ignoriert.
func (f *ForceLayout) Init(nodes []models.GraphNode, links []models.GraphLink) {
	g := newLayoutGraph(len(nodes))
	index := make(map[string]int64, len(nodes))
	f.ids = make([]string, len(nodes))
	for i, n := range nodes {
		f.ids[i] = n.ID
		index[n.ID] = int64(i)
	}
	for _, l := range links {
		s, okS := index[l.Source]
		t, okT := index[l.Target]
		if !okS || !okT || s == t {
			continue
		}
		g.addEdge(s, t)
	}

	eades := &layout.EadesR2{
		Updates:   f.CooldownTicks,
		Repulsion: f.Repulsion,
		Rate:      f.Rate,
		Theta:     f.Theta,
		Src:       rand.NewPCG(f.Seed, f.Seed),
	}
	f.optimizer = layout.NewOptimizerR2(g, eades.Update)
	f.ticks = 0
}

// Tick führt einen Optimierungsschritt aus.
func (f *ForceLayout) Tick() bool {
	if len(f.ids) == 0 || f.ticks >= f.CooldownTicks {
		return false
	}
	if !f.optimizer.Update() {
		return false
	}
	f.ticks++
	return true
}

// Ticks liefert die Anzahl gerechneter Schritte.
func (f *ForceLayout) Ticks() int {
	return f.ticks
}

func (f *ForceLayout) Positions() map[string]Point {
	out := make(map[string]Point, len(f.ids))
	for i, id := range f.ids {
		c := f.optimizer.Coord2(int64(i))
		out[id] = Point{X: c.X, Y: c.Y}
	}
	return out
}

// layoutGraph ist ein ungerichteter Graph mit fester Knotenreihenfolge,
// damit die Startpositionen nicht von der Map-Iteration abhängen.
type layoutGraph struct {
	nodes []graph.Node
	adj   [][]graph.Node
	edges map[[2]int64]bool
}

func newLayoutGraph(n int) *layoutGraph {
	g := &layoutGraph{
		nodes: make([]graph.Node, n),
		adj:   make([][]graph.Node, n),
		edges: map[[2]int64]bool{},
	}
	for i := range g.nodes {
		g.nodes[i] = simple.Node(i)
	}
	return g
}

func (g *layoutGraph) addEdge(u, v int64) {
	if g.HasEdgeBetween(u, v) {
		return
	}
	g.edges[[2]int64{u, v}] = true
	g.adj[u] = append(g.adj[u], g.nodes[v])
	g.adj[v] = append(g.adj[v], g.nodes[u])
}

func (g *layoutGraph) valid(id int64) bool {
	return id >= 0 && id < int64(len(g.nodes))
}

func (g *layoutGraph) Node(id int64) graph.Node {
	if !g.valid(id) {
		return nil
	}
	return g.nodes[id]
}

func (g *layoutGraph) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(g.nodes)
}

func (g *layoutGraph) From(id int64) graph.Nodes {
	if !g.valid(id) {
		return iterator.NewOrderedNodes(nil)
	}
	return iterator.NewOrderedNodes(g.adj[id])
}

func (g *layoutGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.edges[[2]int64{xid, yid}] || g.edges[[2]int64{yid, xid}]
}

func (g *layoutGraph) Edge(uid, vid int64) graph.Edge {
	if !g.HasEdgeBetween(uid, vid) {
		return nil
	}
	return simple.Edge{F: g.nodes[uid], T: g.nodes[vid]}
}

func (g *layoutGraph) EdgeBetween(xid, yid int64) graph.Edge {
	return g.Edge(xid, yid)
}
