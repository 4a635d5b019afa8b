package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the full application configuration.
type Config struct {
	Input     string          `yaml:"input" mapstructure:"input"`
	Output    string          `yaml:"output" mapstructure:"output"`
	Districts []string        `yaml:"districts" mapstructure:"districts"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Offset    OffsetConfig    `yaml:"offset" mapstructure:"offset"`
	Centroids CentroidsConfig `yaml:"centroids" mapstructure:"centroids"`
	Points    PointsConfig    `yaml:"points" mapstructure:"points"`
	Merge     MergeConfig     `yaml:"merge" mapstructure:"merge"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the optional network geocoding path.
type GeocodeConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Providers    []string      `yaml:"providers" mapstructure:"providers"`
	NominatimURL string        `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	OverpassURL  string        `yaml:"overpass_url" mapstructure:"overpass_url"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinInterval  time.Duration `yaml:"min_interval" mapstructure:"min_interval"`
	Country      string        `yaml:"country" mapstructure:"country"`
	CountryCodes string        `yaml:"country_codes" mapstructure:"country_codes"`
}

// Timeout returns the per-request timeout.
func (g GeocodeConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// OffsetConfig configures approximate placement.
type OffsetConfig struct {
	Radius    float64 `yaml:"radius" mapstructure:"radius"`
	Precision int     `yaml:"precision" mapstructure:"precision"`
}

// CentroidsConfig points at an optional district centroid table file.
// An empty file uses the built-in table.
type CentroidsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// PointsConfig names the point output files.
type PointsConfig struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// MergeConfig configures the boundary merge.
type MergeConfig struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// FetchConfig configures remote input downloads.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ServerConfig configures the layer server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Load reads configuration from .env, an optional config file and the
// environment. An empty path searches for config.yaml in the working
// directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("ZSJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input", "")
	v.SetDefault("output", ".")
	v.SetDefault("geocode.enabled", false)
	v.SetDefault("geocode.providers", []string{"nominatim"})
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("geocode.user_agent", "zsj-cli/1.0")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.min_interval", time.Second)
	v.SetDefault("geocode.country", "Slovakia")
	v.SetDefault("geocode.country_codes", "sk")
	v.SetDefault("offset.radius", 0.01)
	v.SetDefault("offset.precision", 6)
	v.SetDefault("centroids.file", "")
	v.SetDefault("points.prefix", "zsj_points")
	v.SetDefault("merge.prefix", "zsj_polygons")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "zsj.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger. When cfg.File is set, log
// entries are also written to a rotating file.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			zapCfg.Level,
		)
		logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	zap.ReplaceGlobals(logger)

	return nil
}
