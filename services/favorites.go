package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"paper-archive/storage"
)

// FavoritesKey ist der Schlüssel, unter dem die Favoriten als JSON-Array liegen.
const FavoritesKey = "paper-favorites"

// FavoritesStore verwaltet die Menge der favorisierten Paper-IDs.
//
// Bis Load abgeschlossen ist, ändern Toggles nur den Speicher im Prozess und werden
// nicht zurückgeschrieben, damit ein noch nicht gelesener Bestand nicht überschrieben wird.
type FavoritesStore struct {
	mu     sync.RWMutex
	kv     storage.KV
	log    *zap.Logger
	ids    map[string]struct{}
	loaded bool
}

// NewFavoritesStore erstellt einen leeren, noch nicht geladenen Store.
func NewFavoritesStore(kv storage.KV, log *zap.Logger) *FavoritesStore {
	return &FavoritesStore{
		kv:  kv,
		log: log.With(zap.String("component", "favorites")),
		ids: map[string]struct{}{},
	}
}

// Load liest den persistierten Bestand einmalig ein. Lese- oder Parsefehler werden
// geloggt und führen zu einer leeren Menge; danach gilt der Store immer als geladen.
func (s *FavoritesStore) Load(ctx context.Context) {
	ids := map[string]struct{}{}

	raw, err := s.kv.Get(ctx, FavoritesKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.log.Debug("Keine gespeicherten Favoriten gefunden")
	case err != nil:
		s.log.Error("Favoriten konnten nicht gelesen werden", zap.Error(err))
	default:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			s.log.Error("Gespeicherte Favoriten sind ungültig, starte leer", zap.Error(err))
		} else {
			for _, id := range list {
				ids[id] = struct{}{}
			}
		}
	}

	s.mu.Lock()
	s.ids = ids
	s.loaded = true
	s.mu.Unlock()

	s.log.Info("Favoriten geladen", zap.Int("count", len(ids)))
}

// IsLoaded meldet, ob der Ladeversuch abgeschlossen ist.
func (s *FavoritesStore) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// IsFavorite prüft die Mitgliedschaft einer ID.
func (s *FavoritesStore) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Toggle kehrt die Mitgliedschaft um und liefert den neuen Zustand.
// Ist der Store geladen, wird die ganze Menge zurückgeschrieben. Schlägt das fehl,
// bleibt die Änderung im Speicher erhalten und der Fehler wird zurückgegeben.
func (s *FavoritesStore) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, was := s.ids[id]
	if was {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	now := !was

	if !s.loaded {
		return now, nil
	}

	data, err := json.Marshal(s.sortedLocked())
	if err != nil {
		return now, fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.kv.Set(ctx, FavoritesKey, data); err != nil {
		s.log.Error("Favoriten konnten nicht gespeichert werden", zap.String("id", id), zap.Error(err))
		return now, fmt.Errorf("persist favorites: %w", err)
	}
	return now, nil
}

// Favorites liefert die IDs sortiert.
func (s *FavoritesStore) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Count liefert die Anzahl der Favoriten.
func (s *FavoritesStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *FavoritesStore) sortedLocked() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
