package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/config"
)

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("testdata/missing.env")
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "annotated-container"},
		{"App.Env", cfg.App.Env, "local"},
		{"Analysis.Profiles", cfg.Analysis.Profiles, []string{"default"}},
		{"Cache.Driver", cfg.Cache.Driver, "none"},
		{"Cache.Prefix", cfg.Cache.Prefix, "container:"},
		{"Cache.TTL", cfg.Cache.TTL, time.Duration(0)},
		{"Cache.Size", cfg.Cache.Size, 128},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Server.Port", cfg.Server.Port, "8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsLocal())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CONTAINER_SCAN_SOURCES", "src,lib")
	t.Setenv("CONTAINER_PROFILES", "dev,test")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, []string{"src", "lib"}, cfg.Analysis.Sources)
	assert.Equal(t, []string{"dev", "test"}, cfg.Analysis.Profiles)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Cleanup(func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("CACHE_DRIVER")
	})

	cfg, err := config.Load("testdata/test.env")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.App.Name)
	assert.Equal(t, "memory", cfg.Cache.Driver)
}

func TestLoadFile(t *testing.T) {
	cfg, err := config.LoadFile("testdata/app.yaml")
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.App.Name)
	assert.Equal(t, []string{"manifests/app", "manifests/vendor"}, cfg.Analysis.Sources)
	assert.Equal(t, []string{"prod"}, cfg.Analysis.Profiles)
	assert.Equal(t, "/tmp/container-cache", cfg.Cache.Dir)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "container:", cfg.Cache.Prefix, "unset keys keep their defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile("testdata/nope.yaml")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrConfigLoad))
}

// ── Validate ─────────────────────────────────────────────────────────────────

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("testdata/missing.env")
	require.NoError(t, err)
	return cfg
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Cache.Driver = "memcached" }},
		{"bad redis addr", func(c *config.Config) { c.Cache.Driver = "redis"; c.Cache.RedisAddr = "nowhere" }},
		{"negative ttl", func(c *config.Config) { c.Cache.TTL = -time.Second }},
		{"duplicate sources", func(c *config.Config) { c.Analysis.Sources = []string{"src", "src"} }},
		{"bad profile", func(c *config.Config) { c.Analysis.Profiles = []string{"my profile"} }},
		{"port out of range", func(c *config.Config) { c.Server.Port = "0" }},
		{"unknown env", func(c *config.Config) { c.App.Env = "staging" }},
		{"unknown log level", func(c *config.Config) { c.Log.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.True(t, apperrors.HasCode(err, apperrors.ErrConfigValidate), "got %v", err)
		})
	}
}

func TestValidate_RedisAddrIgnoredForOtherDrivers(t *testing.T) {
	cfg := validConfig(t)
	cfg.Cache.Driver = "file"
	cfg.Cache.RedisAddr = "nowhere"

	assert.NoError(t, cfg.Validate())
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestGet(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "value")

	assert.Equal(t, "value", config.Get("CUSTOM_KEY", "fallback"))
	assert.Equal(t, "fallback", config.Get("MISSING_KEY_XYZ", "fallback"))
}
