package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		QuestionsPerGame int    `yaml:"questions_per_game"`
		TimePerQuestion  int    `yaml:"time_per_question"`
		MaxNameLength    int    `yaml:"max_name_length"`
		StartGrace       string `yaml:"start_grace"`
		QuestionDelay    string `yaml:"question_delay"`
		RevealDelay      string `yaml:"reveal_delay"`
	} `yaml:"game"`
	Questions struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"questions"`
	Housekeeping struct {
		Retention string `yaml:"retention"`
		Interval  string `yaml:"interval"`
	} `yaml:"housekeeping"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Server.ReadTimeout = "15s"
	cfg.Server.WriteTimeout = "15s"
	cfg.Game.QuestionsPerGame = 5
	cfg.Game.TimePerQuestion = 15
	cfg.Game.MaxNameLength = 20
	cfg.Game.StartGrace = "3s"
	cfg.Game.QuestionDelay = "1s"
	cfg.Game.RevealDelay = "2s"
	cfg.Questions.CacheTTL = "10m"
	cfg.Housekeeping.Retention = "1h"
	cfg.Housekeeping.Interval = "1h"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
