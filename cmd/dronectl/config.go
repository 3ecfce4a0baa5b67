package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/remote/baas"
	"gopkg.in/yaml.v3"
)

const (
	BackendAPI  = "api"
	BackendBaaS = "baas"
	BackendDemo = "demo"

	defaultAPIURL = "http://localhost:3000"
)

type Config struct {
	Backend string `yaml:"backend"`
	API     struct {
		BaseURL string `yaml:"baseURL"`
	} `yaml:"api"`
	BaaS struct {
		URL     string `yaml:"url"`
		AnonKey string `yaml:"anonKey"`
	} `yaml:"baas"`
	// WeekStart is "sunday" or "monday".
	WeekStart string `yaml:"weekStart"`

	dir string
}

// configDir is ~/.config/dronectl unless DRONECTL_CONFIG_DIR is set.
func configDir() (string, error) {
	if dir := os.Getenv("DRONECTL_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "dronectl"), nil
}

// loadConfig reads config.yaml from dir, if present, and applies environment
// overrides on top.
func loadConfig(dir string) (*Config, error) {
	cfg := &Config{Backend: BackendAPI, WeekStart: "sunday", dir: dir}
	cfg.API.BaseURL = defaultAPIURL

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config.yaml: %w", err)
	}

	if v := os.Getenv("DRONECTL_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("DRONECTL_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.BaaS.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.BaaS.AnonKey = v
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendAPI:
		if c.API.BaseURL == "" {
			return errors.New("api.baseURL is required for the api backend")
		}
	case BackendBaaS:
		if c.BaaS.URL == "" || c.BaaS.AnonKey == "" {
			return errors.New("baas.url and baas.anonKey are required for the baas backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want api or baas)", c.Backend)
	}
	if _, err := c.weekday(); err != nil {
		return err
	}
	return nil
}

func (c *Config) weekday() (time.Weekday, error) {
	switch strings.ToLower(c.WeekStart) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return 0, fmt.Errorf("weekStart must be sunday or monday, got %q", c.WeekStart)
}

// savedSession is what session.json holds between invocations. Only the
// field of the configured backend is set.
type savedSession struct {
	Backend string        `json:"backend"`
	Cookie  string        `json:"cookie,omitempty"`
	BaaS    *baas.Session `json:"baas,omitempty"`
}

func sessionPath(dir string) string {
	return filepath.Join(dir, "session.json")
}

// loadSession returns nil when nothing is saved for backend.
func loadSession(dir, backend string) (*savedSession, error) {
	data, err := os.ReadFile(sessionPath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.Backend != backend {
		return nil, nil
	}
	return &s, nil
}

func saveSession(dir string, s *savedSession) error {
	if s == nil || (s.Cookie == "" && s.BaaS == nil) {
		return clearSession(dir)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(sessionPath(dir), data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func clearSession(dir string) error {
	if err := os.Remove(sessionPath(dir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
