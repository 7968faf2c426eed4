// Package config loads the league configuration file and environment settings
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/myusername/wordle-league-tracker/pkg/models"
)

// LeagueConfig describes one league: who plays in it, where its messages come
// from and where its pages land in the exported site.
type LeagueConfig struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Dir       string `json:"dir"`
	SourceURL string `json:"source_url"`
	// Phones maps cleaned phone numbers to player names. Each number maps to
	// exactly one player within a league; the same number may map to
	// different names in different leagues.
	Phones map[string]string `json:"phone_mappings"`
}

// Config is the parsed league_config.json.
type Config struct {
	Leagues []LeagueConfig `json:"leagues"`
	// Schedule is a cron expression for daemon mode, e.g. "*/30 * * * *".
	Schedule string `json:"schedule"`
}

// Load reads and validates a league configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if len(cfg.Leagues) == 0 {
		return nil, fmt.Errorf("config file %s defines no leagues", path)
	}

	seen := make(map[int]bool)
	for _, l := range cfg.Leagues {
		if l.ID <= 0 {
			return nil, fmt.Errorf("league %q has invalid id %d", l.Name, l.ID)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("duplicate league id %d", l.ID)
		}
		seen[l.ID] = true
	}

	log.Printf("Loaded %d leagues from %s", len(cfg.Leagues), path)
	return &cfg, nil
}

// League returns the league with the given ID, if configured.
func (c *Config) League(id int) (LeagueConfig, bool) {
	for _, l := range c.Leagues {
		if l.ID == id {
			return l, true
		}
	}
	return LeagueConfig{}, false
}

// Models converts the configured leagues to domain values.
func (c *Config) Models() []models.League {
	leagues := make([]models.League, 0, len(c.Leagues))
	for _, l := range c.Leagues {
		leagues = append(leagues, models.League{ID: l.ID, Name: l.Name, Dir: l.Dir})
	}
	return leagues
}

// PhoneMappings returns all phone mappings keyed by league ID.
func (c *Config) PhoneMappings() map[int]map[string]string {
	out := make(map[int]map[string]string, len(c.Leagues))
	for _, l := range c.Leagues {
		out[l.ID] = l.Phones
	}
	return out
}

// Env holds environment-derived settings, loaded from the process environment
// with .env as a fallback.
type Env struct {
	SourceBase  string
	SourceToken string
	DBPath      string
	ExportDir   string
	ListenAddr  string
}

// LoadEnv reads settings from the environment, after loading .env when one is
// present. Missing values fall back to local defaults.
func LoadEnv() Env {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded settings from .env")
	}
	return Env{
		SourceBase:  getenv("WORDLE_SOURCE_BASE", ""),
		SourceToken: getenv("WORDLE_SOURCE_TOKEN", ""),
		DBPath:      getenv("WORDLE_DB_PATH", "wordle_league.db"),
		ExportDir:   getenv("WORDLE_EXPORT_DIR", "website_export"),
		ListenAddr:  getenv("WORDLE_LISTEN_ADDR", ":8080"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
