package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://selected-ryokan.com", cfg.Source.BaseURL)
	assert.Equal(t, "https://selected-ryokan.com/ryokan/page/%d", cfg.Source.IndexURLTemplate)
	assert.Equal(t, 54, cfg.Source.Pages)
	assert.Contains(t, cfg.Source.UserAgent, "Mozilla/5.0")

	assert.Equal(t, 500, cfg.Pipeline.PolitenessMinMs)
	assert.Equal(t, 1000, cfg.Pipeline.PolitenessMaxMs)
	assert.Equal(t, 5, cfg.Pipeline.CheckpointEvery)
	assert.Equal(t, 10, cfg.Pipeline.GeocodeCheckpointEvery)
	assert.Equal(t, 1, cfg.Pipeline.Workers)

	assert.Equal(t, 1100, cfg.Geocode.NominatimMinIntervalMs)
	assert.Equal(t, 500, cfg.Geocode.PhotonMinIntervalMs)
	assert.Equal(t, "Japan", cfg.Geocode.QuerySuffix)

	assert.Equal(t, "ryokans_db.csv", cfg.Store.CatalogPath)
	assert.Equal(t, "ryokan-atlas.db", cfg.Store.RunLogPath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte("source:\n  pages: 3\npipeline:\n  workers: 4\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Source.Pages)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Pipeline.CheckpointEvery)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RYOKAN_SOURCE_PAGES", "7")
	t.Setenv("RYOKAN_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Source.Pages)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Source: SourceConfig{Pages: 54},
			Pipeline: PipelineConfig{
				PolitenessMinMs:        500,
				PolitenessMaxMs:        1000,
				CheckpointEvery:        5,
				GeocodeCheckpointEvery: 10,
				Workers:                1,
			},
			Store: StoreConfig{CatalogPath: "ryokans_db.csv"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "zero pages",
			mutate:  func(c *Config) { c.Source.Pages = 0 },
			wantErr: "pages",
		},
		{
			name:    "inverted politeness window",
			mutate:  func(c *Config) { c.Pipeline.PolitenessMinMs = 2000 },
			wantErr: "politeness",
		},
		{
			name:    "zero checkpoint cadence",
			mutate:  func(c *Config) { c.Pipeline.CheckpointEvery = 0 },
			wantErr: "cadences",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Pipeline.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "missing catalog path",
			mutate:  func(c *Config) { c.Store.CatalogPath = "" },
			wantErr: "catalog_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
