package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/painelbot/atendente/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "atendente.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ATENDENTE_"

// Session backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the dashboard configuration.
type Config struct {
	APIURL   string `yaml:"api_url" json:"api_url"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string        `yaml:"log_format" json:"log_format"`
	Session   SessionConfig `yaml:"session" json:"session"`
	Redis     RedisConfig   `yaml:"redis" json:"redis"`
	Server    ServerConfig  `yaml:"server" json:"server"`
	Graph     GraphConfig   `yaml:"graph" json:"graph"`
}

// SessionConfig selects where the login token is kept.
type SessionConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
	// Key, when set, is a base64 AES-256 key that encrypts the stored token.
	Key string `yaml:"key" json:"key"`
}

// RedisConfig is used when Session.Backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// ServerConfig configures the local HTTP server.
type ServerConfig struct {
	Port string `yaml:"port" json:"port"`
}

// GraphConfig configures the flow graph build.
type GraphConfig struct {
	ExpandAll bool     `yaml:"expand_all" json:"expand_all"`
	Terminals []string `yaml:"terminals" json:"terminals"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:    "http://localhost:3000",
		LogLevel:  "info",
		LogFormat: "text",
		Session:   SessionConfig{Backend: BackendFile},
		Redis:     RedisConfig{Addr: "localhost:6379", Prefix: "atendente:"},
		Server:    ServerConfig{Port: "8080"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults and applies ATENDENTE_* overrides.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			err = json.Unmarshal(data, &cfg)
		} else {
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"API_URL":         &c.APIURL,
		"LOG_LEVEL":       &c.LogLevel,
		"LOG_FORMAT":      &c.LogFormat,
		"SESSION_BACKEND": &c.Session.Backend,
		"SESSION_PATH":    &c.Session.Path,
		"SESSION_KEY":     &c.Session.Key,
		"REDIS_ADDR":      &c.Redis.Addr,
		"REDIS_PASSWORD":  &c.Redis.Password,
		"REDIS_PREFIX":    &c.Redis.Prefix,
		"PORT":            &c.Server.Port,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_DB %q: %w", EnvPrefix, v, err)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup(EnvPrefix + "EXPAND_ALL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sEXPAND_ALL %q: %w", EnvPrefix, v, err)
		}
		c.Graph.ExpandAll = b
	}
	if v, ok := lookup(EnvPrefix + "TERMINALS"); ok {
		c.Graph.Terminals = splitList(v)
	}
	return nil
}

// Validate checks the fields that would otherwise fail later with a less helpful error.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url is required")
	}
	switch c.Session.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (want file, memory or redis)", c.Session.Backend)
	}
	return nil
}

// Terminals returns the configured terminal steps, or the built-in ones when none are configured.
func (c Config) Terminals() domain.TerminalSet {
	if len(c.Graph.Terminals) == 0 {
		return domain.DefaultTerminals()
	}
	ids := make([]domain.StepID, len(c.Graph.Terminals))
	for i, t := range c.Graph.Terminals {
		ids[i] = domain.StepID(t)
	}
	return domain.NewTerminalSet(ids...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
