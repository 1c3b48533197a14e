// Package config loads runtime settings from defaults, an optional YAML
// file and INVENTARIO_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides. INVENTARIO_BLOB_DRIVER
// overrides blob.driver.
const EnvPrefix = "INVENTARIO"

// Config holds the application configuration.
type Config struct {
	DataDir  string
	Snapshot SnapshotConfig
	Blob     BlobConfig
	Autosave AutosaveConfig
	Photos   PhotosConfig
	Log      LogConfig
	Timezone string
	Undo     UndoConfig
	PageSize int
}

// SnapshotConfig selects the session document store.
type SnapshotConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Key         string
	MaxBytes    int
}

// BlobConfig selects the photo and layout image store.
type BlobConfig struct {
	Driver     string
	SQLitePath string
	FSRoot     string
	S3         S3Config
}

// S3Config holds the S3 blob driver settings.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	Prefix    string
}

// AutosaveConfig controls the periodic save.
type AutosaveConfig struct {
	Interval time.Duration
}

// PhotosConfig limits photo uploads.
type PhotosConfig struct {
	MaxBytes int
}

// LogConfig controls the operational log.
type LogConfig struct {
	Level string
	File  string
}

// UndoConfig controls how long a deletion can be undone.
type UndoConfig struct {
	Window time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")

	v.SetDefault("snapshot.driver", "sqlite")
	v.SetDefault("snapshot.sqlite_path", "")
	v.SetDefault("snapshot.postgres_dsn", "")
	v.SetDefault("snapshot.key", "inventarioProState")
	v.SetDefault("snapshot.max_bytes", 5<<20)

	v.SetDefault("blob.driver", "sqlite")
	v.SetDefault("blob.sqlite_path", "")
	v.SetDefault("blob.fs_root", "")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", "")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.path_style", false)
	v.SetDefault("blob.s3.prefix", "")

	v.SetDefault("autosave.interval", 30*time.Second)
	v.SetDefault("photos.max_bytes", 2<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("timezone", "America/Mexico_City")
	v.SetDefault("undo.window", 5*time.Second)
	v.SetDefault("page_size", 50)
}

// Load reads the configuration. cfgFile may be empty, in which case
// inventario.yaml is looked up in the working directory and is optional.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("inventario")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		DataDir: v.GetString("data_dir"),
		Snapshot: SnapshotConfig{
			Driver:      v.GetString("snapshot.driver"),
			SQLitePath:  v.GetString("snapshot.sqlite_path"),
			PostgresDSN: v.GetString("snapshot.postgres_dsn"),
			Key:         v.GetString("snapshot.key"),
			MaxBytes:    v.GetInt("snapshot.max_bytes"),
		},
		Blob: BlobConfig{
			Driver:     v.GetString("blob.driver"),
			SQLitePath: v.GetString("blob.sqlite_path"),
			FSRoot:     v.GetString("blob.fs_root"),
			S3: S3Config{
				Bucket:    v.GetString("blob.s3.bucket"),
				Region:    v.GetString("blob.s3.region"),
				Endpoint:  v.GetString("blob.s3.endpoint"),
				PathStyle: v.GetBool("blob.s3.path_style"),
				Prefix:    v.GetString("blob.s3.prefix"),
			},
		},
		Autosave: AutosaveConfig{Interval: v.GetDuration("autosave.interval")},
		Photos:   PhotosConfig{MaxBytes: v.GetInt("photos.max_bytes")},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		Timezone: v.GetString("timezone"),
		Undo:     UndoConfig{Window: v.GetDuration("undo.window")},
		PageSize: v.GetInt("page_size"),
	}
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillPaths points unset sqlite and fs locations into DataDir.
func (c *Config) fillPaths() {
	db := filepath.Join(c.DataDir, "inventario.db")
	if c.Snapshot.SQLitePath == "" {
		c.Snapshot.SQLitePath = db
	}
	if c.Blob.SQLitePath == "" {
		c.Blob.SQLitePath = db
	}
	if c.Blob.FSRoot == "" {
		c.Blob.FSRoot = filepath.Join(c.DataDir, "blobs")
	}
}

// Validate checks driver names and driver-specific requirements.
func (c *Config) Validate() error {
	switch c.Snapshot.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Snapshot.PostgresDSN == "" {
			return errors.New("config: snapshot.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown snapshot.driver %q", c.Snapshot.Driver)
	}

	switch c.Blob.Driver {
	case "memory", "sqlite", "fs":
	case "s3":
		if c.Blob.S3.Bucket == "" {
			return errors.New("config: blob.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("config: unknown blob.driver %q", c.Blob.Driver)
	}

	if c.Autosave.Interval <= 0 {
		return fmt.Errorf("config: autosave.interval must be positive, got %s", c.Autosave.Interval)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone: %w", err)
	}
	return nil
}

// Location returns the display timezone, or UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
