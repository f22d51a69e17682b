package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "http://localhost:8000/api/v1", conf.API.BaseURL)
	assert.Equal(t, 15*time.Second, conf.API.Timeout)
	assert.Equal(t, 60*time.Second, conf.Cache.KeepUnusedFor)
	assert.Equal(t, ":8000", conf.Server.Address)
	assert.NotEmpty(t, conf.CLI.TokenFile)
}

func TestNewConfig_env(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("MASOMO_API_BASEURL", "https://masomo.example.com/api/v1/")
	t.Setenv("MASOMO_API_TIMEOUT", "3s")
	t.Setenv("MASOMO_CACHE_KEEPUNUSEDFOR", "2m")
	t.Setenv("MASOMO_SERVER_SEEDFILE", "config/seed.yaml")
	t.Setenv("MASOMO_DEBUG", "false")

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://masomo.example.com/api/v1", conf.API.BaseURL)
	assert.Equal(t, 3*time.Second, conf.API.Timeout)
	assert.Equal(t, 2*time.Minute, conf.Cache.KeepUnusedFor)
	assert.Equal(t, "config/seed.yaml", conf.Server.SeedFile)
	assert.False(t, conf.Debug)
}

func TestConfig_validate(t *testing.T) {
	valid := func() Config {
		return Config{
			SecretKey: "secret",
			API:       APIConfig{BaseURL: "http://localhost:8000/api/v1", Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "no base URL", modify: func(c *Config) { c.API.BaseURL = "" }, wantErr: "config: api.baseURL is required"},
		{name: "negative timeout", modify: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: "config: api.timeout must be >= 0"},
		{name: "negative prune interval", modify: func(c *Config) { c.Cache.PruneInterval = -time.Second }, wantErr: "config: cache durations must be >= 0"},
		{name: "no secret in prod", modify: func(c *Config) { c.SecretKey = "" }, wantErr: "config: secretKey is required outside debug mode"},
		{name: "no secret in debug", modify: func(c *Config) { c.SecretKey, c.Debug = "", true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := valid()
			tt.modify(&conf)
			err := conf.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
