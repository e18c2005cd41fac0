package models

// LinkType beschreibt die Art einer Kante im Beziehungsgraphen.
type LinkType string

const (
	LinkBuildUpon  LinkType = "buildUpon"
	LinkSameOrg    LinkType = "sameOrg"
	LinkSameDomain LinkType = "sameDomain"
)

// GraphNode ist ein abgeleiteter Knoten für die Force-Graph-Darstellung.
type GraphNode struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Organization Organization `json:"organization"`
	Domains      []Domain     `json:"domains"`
	Date         string       `json:"date"`
	Val          int          `json:"val"`
}

// GraphLink modelliert eine gerichtete Kante: Quelle (Grundlage) -> Ziel (darauf aufbauendes Paper)
type GraphLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   LinkType `json:"type"`
}

// Graph bündelt Knoten und Kanten.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}
