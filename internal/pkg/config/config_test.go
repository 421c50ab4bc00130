package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml or .env

	cfg, err := Load("jobbmapper-test")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "https://jobbmapper.netlify.app", cfg.Server.CORSOrigins)
	assert.Equal(t, "cidades_brasil.csv", cfg.Dataset.CachePath)
	assert.Equal(t, "https://raw.githubusercontent.com/kelvins/Municipios-Brasileiros/main/csv/municipios.csv", cfg.Dataset.URL)
	assert.Equal(t, 30, cfg.Dataset.FetchTimeout)
	assert.Equal(t, "https://portal.gupy.io/job-search/", cfg.Search.BaseURL)
	assert.Equal(t, 80, cfg.Search.MaxMunicipalities)
	assert.Equal(t, "first", cfg.Search.RegionPolicy)
	assert.Equal(t, "jobbmapper-test", cfg.Telemetry.ServiceName)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.NATS.URL)
	assert.Empty(t, cfg.Valkey.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JOBBMAPPER_SERVER_PORT", "8080")
	t.Setenv("JOBBMAPPER_SEARCH_MAX_MUNICIPALITIES", "25")
	t.Setenv("JOBBMAPPER_SEARCH_REGION_POLICY", "majority")
	t.Setenv("JOBBMAPPER_VALKEY_ADDR", "localhost:6379")

	cfg, err := Load("jobbmapper-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Search.MaxMunicipalities)
	assert.Equal(t, "majority", cfg.Search.RegionPolicy)
	assert.Equal(t, "localhost:6379", cfg.Valkey.Addr)
}

func TestLoad_InvalidEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JOBBMAPPER_SEARCH_REGION_POLICY", "random")

	_, err := Load("jobbmapper-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.region_policy")
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 5000, ReadTimeout: 10, WriteTimeout: 10},
		Dataset: DatasetConfig{URL: "http://x", CachePath: "c.csv", FetchTimeout: 30},
		Search:  SearchConfig{BaseURL: "http://y/", MaxMunicipalities: 80, RegionPolicy: "first"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Dataset.URL = ""
	cfg.Search.MaxMunicipalities = -1
	cfg.Search.CacheTTL = -5

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"server.port", "dataset.url", "search.max_municipalities", "search.cache_ttl"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}
