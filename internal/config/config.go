// Package config loads application configuration and installs the
// global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourceConfig describes the catalog site being scraped.
type SourceConfig struct {
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	IndexURLTemplate string `yaml:"index_url_template" mapstructure:"index_url_template"`
	Pages            int    `yaml:"pages" mapstructure:"pages"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PipelineConfig controls pacing and checkpoint cadence.
type PipelineConfig struct {
	PolitenessMinMs        int `yaml:"politeness_min_ms" mapstructure:"politeness_min_ms"`
	PolitenessMaxMs        int `yaml:"politeness_max_ms" mapstructure:"politeness_max_ms"`
	CheckpointEvery        int `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
	GeocodeCheckpointEvery int `yaml:"geocode_checkpoint_every" mapstructure:"geocode_checkpoint_every"`
	Workers                int `yaml:"workers" mapstructure:"workers"`
}

// GeocodeConfig configures the two providers and the strategy chain.
type GeocodeConfig struct {
	NominatimURL           string `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	NominatimMinIntervalMs int    `yaml:"nominatim_min_interval_ms" mapstructure:"nominatim_min_interval_ms"`
	PhotonURL              string `yaml:"photon_url" mapstructure:"photon_url"`
	PhotonMinIntervalMs    int    `yaml:"photon_min_interval_ms" mapstructure:"photon_min_interval_ms"`
	TimeoutSecs            int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	QuerySuffix            string `yaml:"query_suffix" mapstructure:"query_suffix"`
}

// StoreConfig locates the catalog file and the run log.
type StoreConfig struct {
	CatalogPath string `yaml:"catalog_path" mapstructure:"catalog_path"`
	RunLogPath  string `yaml:"runlog_path" mapstructure:"runlog_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RYOKAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.base_url", "https://selected-ryokan.com")
	v.SetDefault("source.index_url_template", "https://selected-ryokan.com/ryokan/page/%d")
	v.SetDefault("source.pages", 54)
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("source.timeout_secs", 15)
	v.SetDefault("pipeline.politeness_min_ms", 500)
	v.SetDefault("pipeline.politeness_max_ms", 1000)
	v.SetDefault("pipeline.checkpoint_every", 5)
	v.SetDefault("pipeline.geocode_checkpoint_every", 10)
	v.SetDefault("pipeline.workers", 1)
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.nominatim_min_interval_ms", 1100)
	v.SetDefault("geocode.photon_url", "https://photon.komoot.io")
	v.SetDefault("geocode.photon_min_interval_ms", 500)
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.query_suffix", "Japan")
	v.SetDefault("store.catalog_path", "ryokans_db.csv")
	v.SetDefault("store.runlog_path", "ryokan-atlas.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Source.Pages <= 0 {
		return eris.New("config: source.pages must be positive")
	}
	if c.Pipeline.PolitenessMinMs > c.Pipeline.PolitenessMaxMs {
		return eris.New("config: politeness_min_ms exceeds politeness_max_ms")
	}
	if c.Pipeline.CheckpointEvery <= 0 || c.Pipeline.GeocodeCheckpointEvery <= 0 {
		return eris.New("config: checkpoint cadences must be positive")
	}
	if c.Pipeline.Workers <= 0 {
		return eris.New("config: pipeline.workers must be positive")
	}
	if c.Store.CatalogPath == "" {
		return eris.New("config: store.catalog_path is required")
	}
	return nil
}

// InitLogger initializes the global zap logger.
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
	zap.ReplaceGlobals(logger)

	return nil
}
