package services

import (
	"paper-archive/models"
)

const (
	nodeNameLimit = 40
	nodeBaseVal   = 5
	nodeValPerRef = 2
)

// BuildGraph leitet aus der Paper-Tabelle den Beziehungsgraphen ab.
// Kanten zeigen von der Grundlage auf das darauf aufbauende Paper.
// Verweise auf unbekannte IDs werden übersprungen, doppelte Kanten nur einmal ausgegeben.
func BuildGraph(papers []models.Paper) models.Graph {
	g := models.Graph{
		Nodes: make([]models.GraphNode, 0, len(papers)),
		Links: []models.GraphLink{},
	}

	known := make(map[string]struct{}, len(papers))
	for _, p := range papers {
		known[p.ID] = struct{}{}
	}

	type edge struct{ source, target string }
	seen := map[edge]struct{}{}

	for _, p := range papers {
		g.Nodes = append(g.Nodes, models.GraphNode{
			ID:           p.ID,
			Name:         truncateName(p.Title),
			Organization: p.Organization,
			Domains:      append([]models.Domain{}, p.Domains...),
			Date:         p.Date,
			Val:          nodeBaseVal + nodeValPerRef*len(p.BuildUpon),
		})

		for _, ref := range p.BuildUpon {
			if _, ok := known[ref]; !ok {
				continue
			}
			e := edge{source: ref, target: p.ID}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			g.Links = append(g.Links, models.GraphLink{
				Source: ref,
				Target: p.ID,
				Type:   models.LinkBuildUpon,
			})
		}
	}

	return g
}

func truncateName(title string) string {
	runes := []rune(title)
	if len(runes) <= nodeNameLimit {
		return title
	}
	return string(runes[:nodeNameLimit]) + "..."
}
