package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Unterstützte Backends für den Favoriten-Speicher.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	LogMode      string `envconfig:"LOG_MODE" default:"production"`
	GinMode      string `envconfig:"GIN_MODE" default:"release"`
	CORSOrigins  string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	// Leer bedeutet: eingebettete Paper-Tabelle verwenden
	CatalogPath string `envconfig:"CATALOG_PATH"`

	FavoritesBackend string `envconfig:"FAVORITES_BACKEND" default:"file"`
	FavoritesDir     string `envconfig:"FAVORITES_DIR" default:"./data"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"./data/archive.db"`

	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION"`
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	Neo4jURI      string `envconfig:"NEO4J_URI"`
	Neo4jUser     string `envconfig:"NEO4J_USER" default:"neo4j"`
	Neo4jPassword string `envconfig:"NEO4J_PASSWORD"`
	Neo4jDatabase string `envconfig:"NEO4J_DATABASE"`

	TracingEnabled bool `envconfig:"TRACING_ENABLED" default:"false"`

	// arXiv-Import (Vorschläge für neue Katalogeinträge)
	ImportEnabled    bool   `envconfig:"IMPORT_ENABLED" default:"false"`
	ImportCron       string `envconfig:"IMPORT_CRON" default:"0 6 * * *"`
	ImportCategories string `envconfig:"IMPORT_CATEGORIES" default:"cs.LG,cs.CL,cs.AI,cs.CV,cs.MA"`
	ImportOutput     string `envconfig:"IMPORT_OUTPUT" default:"./data/pending_papers.yaml"`
	ImportMinScore   int    `envconfig:"IMPORT_MIN_SCORE" default:"10"`
	ImportMaxNew     int    `envconfig:"IMPORT_MAX_NEW" default:"10"`
	ArxivBaseURL     string `envconfig:"ARXIV_BASE_URL" default:"https://arxiv.org"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Categories liefert die arXiv-Kategorien als bereinigte Liste.
func (c *Config) Categories() []string {
	return splitList(c.ImportCategories)
}

// Origins liefert die erlaubten CORS-Origins.
func (c *Config) Origins() []string {
	return splitList(c.CORSOrigins)
}

// Validate prüft die backend-spezifischen Pflichtfelder.
func (c *Config) Validate() error {
	switch c.FavoritesBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("postgres backend requires DB_HOST, DB_USER and DB_NAME")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis backend requires REDIS_ADDR")
		}
	case BackendS3:
		if !c.S3Configured() {
			return fmt.Errorf("s3 backend requires S3_URL, S3_REGION, S3_KEY, S3_SECRET and S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown favorites backend %q", c.FavoritesBackend)
	}
	if c.ImportMaxNew < 0 {
		return fmt.Errorf("IMPORT_MAX_NEW must not be negative")
	}
	if c.ImportMinScore < 0 {
		return fmt.Errorf("IMPORT_MIN_SCORE must not be negative")
	}
	if c.ImportEnabled && len(c.Categories()) == 0 {
		return fmt.Errorf("import enabled but IMPORT_CATEGORIES is empty")
	}
	return nil
}

// S3Configured meldet, ob alle S3-Parameter gesetzt sind.
func (c *Config) S3Configured() bool {
	return c.S3URL != "" && c.S3Region != "" && c.S3Key != "" && c.S3Secret != "" && c.S3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	c.FavoritesBackend = strings.ToLower(strings.TrimSpace(c.FavoritesBackend))
	return &c, c.Validate()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
