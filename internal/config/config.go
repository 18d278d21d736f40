package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Events     EventsConfig     `yaml:"events"`
	Allocation AllocationConfig `yaml:"allocation"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	// URL is the NATS server. Empty disables event publishing.
	URL string `yaml:"url"`
}

type AllocationConfig struct {
	// DefaultStrategy applies when a request names none.
	DefaultStrategy string `yaml:"default_strategy"`

	// MaxCandidatePairs bounds len(tasks) x len(members) per run. Zero
	// disables the bound.
	MaxCandidatePairs int `yaml:"max_candidate_pairs"`
}

type ScoringConfig struct {
	Weights ScoringWeights `yaml:"weights"`
}

// ScoringWeights configure the automatic strategy profile. The named
// strategies (fast, balanced, constraint_focused) are fixed in code.
type ScoringWeights struct {
	WorkloadFairness     float64 `yaml:"workload_fairness"`
	Experience           float64 `yaml:"experience"`
	AvailabilityRichness float64 `yaml:"availability_richness"`
	SkillBreadth         float64 `yaml:"skill_breadth"`
	DeliverySpeed        float64 `yaml:"delivery_speed"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8080,
			MetricsPort: 8081,
		},
		Events: EventsConfig{
			URL: "nats://localhost:4222",
		},
		Allocation: AllocationConfig{
			DefaultStrategy:   "automatic",
			MaxCandidatePairs: 250000,
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				WorkloadFairness:     0.35,
				Experience:           0.25,
				AvailabilityRichness: 0.20,
				SkillBreadth:         0.10,
				DeliverySpeed:        0.10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("KRAFT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("KRAFT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("KRAFT_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("KRAFT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("KRAFT_NATS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("KRAFT_DEFAULT_STRATEGY"); v != "" {
		cfg.Allocation.DefaultStrategy = v
	}
	if v := os.Getenv("KRAFT_MAX_CANDIDATE_PAIRS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Allocation.MaxCandidatePairs = n
		}
	}
	if v := os.Getenv("KRAFT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
