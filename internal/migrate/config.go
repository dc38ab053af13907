package migrate

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	blobcore "nemastocks/internal/blob/core"
	blobfs "nemastocks/internal/infra/blob/fs"
	blobmem "nemastocks/internal/infra/blob/memory"
	blobs3 "nemastocks/internal/infra/blob/s3"
	"nemastocks/internal/infra/persistence/memory"
	"nemastocks/internal/infra/persistence/postgres"
	"nemastocks/internal/infra/persistence/sqlite"
	"nemastocks/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / dry runs)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// BlobConfig selects the blob backend for export input and report archival.
type BlobConfig struct {
	Driver string `yaml:"driver"`
	Root   string `yaml:"root"` // fs driver only
}

// Config is the migration run configuration. Values load from an optional
// yaml file; environment variables override the file.
type Config struct {
	ExportPath   string        `yaml:"export_path"`
	ReportPrefix string        `yaml:"report_prefix"`
	DryRun       bool          `yaml:"dry_run"`
	Storage      StorageConfig `yaml:"storage"`
	Blob         BlobConfig    `yaml:"blob"`
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfig reads the yaml file at path (when non-empty), then applies
// environment overrides:
//
//	NEMASTOCKS_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	NEMASTOCKS_SQLITE_PATH:    path to sqlite file (default ./nemastocks.db)
//	NEMASTOCKS_POSTGRES_DSN:   postgres DSN when driver=postgres
//	NEMASTOCKS_BLOB_DRIVER:    fs|s3|memory (default fs)
//	NEMASTOCKS_BLOB_FS_ROOT:   root directory for the fs blob driver
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ReportPrefix: "reports/",
		Storage:      StorageConfig{Driver: string(StorageSQLite), SQLitePath: "./nemastocks.db"},
		Blob:         BlobConfig{Driver: string(blobcore.DriverFilesystem), Root: "./blobdata"},
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.Storage.Driver = getenvDefault("NEMASTOCKS_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.SQLitePath = getenvDefault("NEMASTOCKS_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresDSN = getenvDefault("NEMASTOCKS_POSTGRES_DSN", cfg.Storage.PostgresDSN)
	cfg.Blob.Driver = getenvDefault("NEMASTOCKS_BLOB_DRIVER", cfg.Blob.Driver)
	cfg.Blob.Root = getenvDefault("NEMASTOCKS_BLOB_FS_ROOT", cfg.Blob.Root)
	return cfg, nil
}

// OpenRecordStore opens the configured record store backend. Dry runs always
// get an in-memory store regardless of the configured driver.
func OpenRecordStore(ctx context.Context, cfg Config) (domain.RecordStore, error) {
	if cfg.DryRun {
		return memory.NewStore(), nil
	}
	switch StorageDriver(cfg.Storage.Driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.Storage.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.Storage.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Storage.Driver)
	}
}

// OpenBlobStore opens the configured blob backend. Dry runs get an in-memory
// store so nothing is archived.
func OpenBlobStore(ctx context.Context, cfg Config) (blobcore.Store, error) {
	if cfg.DryRun {
		return blobmem.New(), nil
	}
	switch blobcore.Driver(cfg.Blob.Driver) {
	case blobcore.DriverFilesystem:
		return blobfs.New(cfg.Blob.Root)
	case blobcore.DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case blobcore.DriverMemory:
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Blob.Driver)
	}
}
