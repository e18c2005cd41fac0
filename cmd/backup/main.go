package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	"paper-archive/catalog"
	"paper-archive/config"
	"paper-archive/services"
	"paper-archive/storage"
)

const backupPrefix = "archive-backup-"

type BackupConfig struct {
	BackupBucket    string `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	BackupEndpoint  string `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	BackupAccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	BackupSecretKey string `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	BackupRegion    string `envconfig:"BACKUP_S3_REGION" required:"true"`
	KeepBackups     int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// snapshot ist der Inhalt einer Sicherung.
type snapshot struct {
	CreatedAt  time.Time `json:"created_at"`
	Backend    string    `json:"backend"`
	CatalogIDs []string  `json:"catalog_ids"`
	Favorites  []string  `json:"favorites"`
}

func main() {
	log.Println("Starte Backup-Prozess...")

	var cfg BackupConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der App-Konfiguration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 1. Snapshot erstellen
	data, err := createSnapshot(ctx, appCfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des Snapshots: %v", err)
	}

	// 2. S3-Client erstellen
	client, err := storage.NewS3Client(ctx, storage.S3Settings{
		URL:    cfg.BackupEndpoint,
		Region: cfg.BackupRegion,
		Key:    cfg.BackupAccessKey,
		Secret: cfg.BackupSecretKey,
	})
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}

	// 3. Backup nach S3 hochladen
	fileName := fmt.Sprintf("%s%s.json.gz", backupPrefix, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := storage.UploadFile(ctx, client, cfg.BackupEndpoint, cfg.BackupBucket, fileName, data)
	if err != nil {
		log.Fatalf("Fehler beim Hochladen nach S3: %v", err)
	}
	log.Printf("Backup erfolgreich nach %s hochgeladen", link)

	// 4. Alte Backups rotieren
	deleted, err := storage.RotateObjects(ctx, client, cfg.BackupBucket, backupPrefix, cfg.KeepBackups)
	for _, key := range deleted {
		log.Printf("Altes Backup gelöscht: %s", key)
	}
	if err != nil {
		log.Fatalf("Fehler bei der Rotation alter Backups: %v", err)
	}
	if len(deleted) == 0 {
		log.Printf("Höchstens %d Backups vorhanden, keine Rotation nötig.", cfg.KeepBackups)
	}

	log.Println("Backup-Prozess erfolgreich abgeschlossen.")
}

func createSnapshot(ctx context.Context, cfg *config.Config) ([]byte, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	kv, closeKV, err := storage.OpenKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeKV()

	favorites := []string{}
	raw, err := kv.Get(ctx, services.FavoritesKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("read favorites: %w", err)
	default:
		if err := json.Unmarshal(raw, &favorites); err != nil {
			return nil, fmt.Errorf("decode favorites: %w", err)
		}
	}

	return encodeSnapshot(snapshot{
		CreatedAt:  time.Now().UTC(),
		Backend:    cfg.FavoritesBackend,
		CatalogIDs: cat.IDs(),
		Favorites:  favorites,
	})
}

func encodeSnapshot(s snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gzipWriter).Encode(s); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
