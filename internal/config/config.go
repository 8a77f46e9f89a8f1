package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	S3           S3Config           `mapstructure:"s3"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Materializer MaterializerConfig `mapstructure:"materializer"`
	Completions  CompletionsConfig  `mapstructure:"completions"`
	Stats        StatsConfig        `mapstructure:"stats"`
	Export       ExportConfig       `mapstructure:"export"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the backing store. Driver "memory" keeps everything
// in process and is meant for local development only.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// CatalogConfig caps catalog listings; resolution always sees the whole
// catalog. SeedFile, when set, is a YAML catalog loaded at startup and
// existing names are left alone.
type CatalogConfig struct {
	Limit    int    `mapstructure:"limit"`
	SeedFile string `mapstructure:"seed_file"`
}

// MaterializerConfig carries the defaults applied to untrusted plan documents
// and to every materialized exercise link.
type MaterializerConfig struct {
	DefaultSets        int    `mapstructure:"default_sets"`
	DefaultReps        string `mapstructure:"default_reps"`
	DefaultRestSeconds int    `mapstructure:"default_rest_seconds"`
}

// CompletionsConfig controls which optional completion columns are written.
// ColumnsMode is one of "auto" (probe the collection validator), "full" or "minimal".
type CompletionsConfig struct {
	ColumnsMode  string        `mapstructure:"columns_mode"`
	ProbeTTL     time.Duration `mapstructure:"probe_ttl"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

type StatsConfig struct {
	Timezone  string `mapstructure:"timezone"`
	WeekStart string `mapstructure:"week_start"`
}

type ExportConfig struct {
	URLExpiry time.Duration `mapstructure:"url_expiry"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Running on defaults and env vars only is fine.
		err = nil
	} else if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("database.name", "fitness_tracker")
	// Keys without a default are invisible to Unmarshal when they only come from env.
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "fitness-tracker-exports")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("log.mode", "development")
	v.SetDefault("catalog.limit", 500)
	v.SetDefault("catalog.seed_file", "")
	v.SetDefault("materializer.default_sets", 3)
	v.SetDefault("materializer.default_reps", "10")
	v.SetDefault("materializer.default_rest_seconds", 60)
	v.SetDefault("completions.columns_mode", "auto")
	v.SetDefault("completions.probe_ttl", "10m")
	v.SetDefault("completions.history_limit", 50)
	v.SetDefault("stats.timezone", "UTC")
	v.SetDefault("stats.week_start", "sunday")
	v.SetDefault("export.url_expiry", "15m")
}
