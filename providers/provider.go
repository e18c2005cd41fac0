package providers

import (
	"context"

	"paper-archive/models"
)

// Provider ist das Interface, das jede Quelle für neue Paper-Kandidaten implementieren muss.
type Provider interface {
	// Fetch liefert die aktuellen Kandidaten der angegebenen Kategorien, dedupliziert nach ID.
	Fetch(ctx context.Context, categories []string) ([]models.Candidate, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "arxiv").
	Name() string
}
