package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/validation"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

type AppConfig struct {
	Name string `yaml:"name" env:"APP_NAME" env-default:"annotated-container"`
	Env  string `yaml:"env" env:"APP_ENV" env-default:"local"` // local | production | testing
}

// AnalysisConfig says what to analyze and under which profiles.
type AnalysisConfig struct {
	Sources  []string `yaml:"sources" env:"CONTAINER_SCAN_SOURCES" env-separator:","`
	Profiles []string `yaml:"profiles" env:"CONTAINER_PROFILES" env-separator:"," env-default:"default"`
}

// CacheConfig selects the definition cache backend.
type CacheConfig struct {
	Driver        string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"none"` // none | file | redis | memory
	Dir           string        `yaml:"dir" env:"CACHE_DIR" env-default:".cache/container"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	Prefix        string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"container:"`
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"0s"`
	Size          int           `yaml:"size" env:"CACHE_SIZE" env-default:"128"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"` // json | console
}

type ServerConfig struct {
	Port string `yaml:"port" env:"APP_PORT" env-default:"8000"`
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, apperrors.New(apperrors.ErrConfigLoad, "read configuration from environment", err)
	}
	return &cfg, nil
}

// LoadFile reads a YAML configuration file; environment variables still
// override what the file says.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, apperrors.New(apperrors.ErrConfigLoad, "read configuration file "+path, err)
	}
	return &cfg, nil
}

// Validate checks the values a typed struct cannot.
func (c *Config) Validate() error {
	rules := validation.Rules{
		"app.name":          "required",
		"app.env":           "required|in:local,production,testing",
		"analysis.sources":  "distinct",
		"analysis.profiles": "names|distinct",
		"cache.driver":      "required|in:none,file,redis,memory",
		"cache.redis_db":    "integer|between:0,15",
		"cache.ttl":         "duration",
		"cache.size":        "integer|between:0,1000000",
		"log.level":         "in:debug,info,warn,error",
		"log.format":        "in:json,console",
		"server.port":       "required|integer|between:1,65535",
	}
	if c.Cache.Driver == "redis" {
		rules["cache.redis_addr"] = "required|hostport"
	}

	v := validation.Make(map[string]string{
		"app.name":          c.App.Name,
		"app.env":           c.App.Env,
		"analysis.sources":  strings.Join(c.Analysis.Sources, ","),
		"analysis.profiles": strings.Join(c.Analysis.Profiles, ","),
		"cache.driver":      c.Cache.Driver,
		"cache.redis_addr":  c.Cache.RedisAddr,
		"cache.redis_db":    strconv.Itoa(c.Cache.RedisDB),
		"cache.ttl":         c.Cache.TTL.String(),
		"cache.size":        strconv.Itoa(c.Cache.Size),
		"log.level":         c.Log.Level,
		"log.format":        c.Log.Format,
		"server.port":       c.Server.Port,
	}, rules)
	if err := v.Err(); err != nil {
		return apperrors.New(apperrors.ErrConfigValidate, "invalid configuration", err)
	}
	return nil
}

// IsLocal reports whether the app runs in the local environment.
func (c *Config) IsLocal() bool { return c.App.Env == "local" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
