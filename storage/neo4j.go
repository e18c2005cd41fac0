package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"paper-archive/models"
)

// Neo4jExporter spiegelt den Beziehungsgraphen in eine Neo4j-Datenbank.
type Neo4jExporter struct {
	driver   neo4j.DriverWithContext
	database string
	log      *zap.Logger
}

// NewNeo4jExporter baut den Treiber auf und prüft die Verbindung.
func NewNeo4jExporter(ctx context.Context, uri, user, password, database string, log *zap.Logger) (*Neo4jExporter, error) {
	if user == "" {
		user = "neo4j"
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = 10
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j init driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j verify connectivity: %w", err)
	}
	return &Neo4jExporter{
		driver:   driver,
		database: database,
		log:      log.With(zap.String("component", "neo4j")),
	}, nil
}

// Close schließt den Treiber.
func (e *Neo4jExporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// ExportGraph schreibt alle Paper als (:Paper)-Knoten und die Kanten als Beziehungen.
// Der Export ist idempotent (MERGE).
func (e *Neo4jExporter) ExportGraph(ctx context.Context, papers []models.Paper, g models.Graph) error {
	nodes := paperNodeRows(papers)
	rels := graphLinkRows(g.Links)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: e.database,
	})
	defer session.Close(ctx)

	if res, err := session.Run(ctx, `CREATE CONSTRAINT paper_id_unique IF NOT EXISTS FOR (p:Paper) REQUIRE p.id IS UNIQUE`, nil); err != nil {
		e.log.Warn("neo4j schema init failed (continuing)", zap.Error(err))
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $papers AS p
MERGE (n:Paper {id: p.id})
SET n += p, n.synced_at = $synced_at
`, map[string]any{"papers": nodes, "synced_at": now})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		if len(rels) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $links AS l
MATCH (s:Paper {id: l.source})
MATCH (t:Paper {id: l.target})
MERGE (s)-[r:RELATES {type: l.type}]->(t)
SET r.synced_at = $synced_at
`, map[string]any{"links": rels, "synced_at": now})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j export: %w", err)
	}
	e.log.Info("Graph nach Neo4j exportiert", zap.Int("papers", len(nodes)), zap.Int("links", len(rels)))
	return nil
}

func paperNodeRows(papers []models.Paper) []map[string]any {
	rows := make([]map[string]any, 0, len(papers))
	for _, p := range papers {
		domains := make([]string, len(p.Domains))
		for i, d := range p.Domains {
			domains[i] = string(d)
		}
		rows = append(rows, map[string]any{
			"id":           p.ID,
			"title":        p.Title,
			"organization": string(p.Organization),
			"date":         p.Date,
			"domains":      domains,
			"tags":         append([]string{}, p.Tags...),
			"arxiv_url":    p.ArxivURL,
		})
	}
	return rows
}

func graphLinkRows(links []models.GraphLink) []map[string]any {
	rows := make([]map[string]any, 0, len(links))
	for _, l := range links {
		rows = append(rows, map[string]any{
			"source": l.Source,
			"target": l.Target,
			"type":   string(l.Type),
		})
	}
	return rows
}
