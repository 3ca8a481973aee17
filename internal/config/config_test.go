package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
grpc:
  addr: ":6000"
payments:
  workers: 4
  scale_interval: 2s
catalog:
  product_id_seed: 1
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("MARKETPLACE_LOG_FORMAT", "console")
	t.Setenv("MARKETPLACE_CONTRACT_ACCOUNT", "shop.near")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.GRPC.Addr)
	assert.Equal(t, 4, cfg.Payments.Workers)
	assert.Equal(t, 2*time.Second, cfg.Payments.ScaleInterval)
	assert.Equal(t, uint64(1), cfg.Catalog.ProductIDSeed)
	assert.Equal(t, uint64(100), cfg.Catalog.OrderIDSeed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "shop.near", cfg.ContractAccount)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"spanner without database", func(c *Config) { c.Storage.Backend = StorageSpanner }},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "redis" }},
		{"unknown payments", func(c *Config) { c.Payments.Backend = "carrier-pigeon" }},
		{"no workers", func(c *Config) { c.Payments.Workers = 0 }},
		{"zero seed", func(c *Config) { c.Catalog.OrderIDSeed = 0 }},
		{"no contract account", func(c *Config) { c.ContractAccount = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	ok := Default()
	ok.Storage.Backend = StorageSpanner
	ok.Storage.SpannerDatabase = "projects/p/instances/i/databases/d"
	assert.NoError(t, ok.Validate())
}
