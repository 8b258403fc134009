package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr        = ":8080"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultDialogTitle = "Open quiz file"
	defaultTick        = time.Second
)

type Config struct {
	ServerAddress string
	QuestionFile  string
	LogLevel      string
	LogFormat     string
	DialogTitle   string
	TickInterval  time.Duration
}

// Load reads an optional .env file, then the environment, then the YAML file named by
// QUIZ_CONFIG. Later layers override earlier ones where they set a value.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress: getenvDefault(defaultAddr, "QUIZ_ADDR", "ADDR"),
		QuestionFile:  getenvDefault("", "QUIZ_FILE"),
		LogLevel:      getenvDefault(defaultLogLevel, "QUIZ_LOG_LEVEL"),
		LogFormat:     getenvDefault(defaultLogFormat, "QUIZ_LOG_FORMAT"),
		DialogTitle:   getenvDefault(defaultDialogTitle, "QUIZ_DIALOG_TITLE"),
		TickInterval:  defaultTick,
	}

	if raw := os.Getenv("QUIZ_TICK"); raw != "" {
		tick, err := time.ParseDuration(raw)
		if err != nil || tick <= 0 {
			return nil, fmt.Errorf("config: QUIZ_TICK=%q is not a positive duration", raw)
		}
		cfg.TickInterval = tick
	}

	if path := strings.TrimSpace(os.Getenv("QUIZ_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	overrideString(&c.ServerAddress, file.ServerAddress)
	overrideString(&c.QuestionFile, file.QuestionFile)
	overrideString(&c.LogLevel, file.LogLevel)
	overrideString(&c.LogFormat, file.LogFormat)
	overrideString(&c.DialogTitle, file.DialogTitle)
	if file.TickInterval != "" {
		tick, err := time.ParseDuration(file.TickInterval)
		if err != nil || tick <= 0 {
			return fmt.Errorf("config: tick_interval %q is not a positive duration", file.TickInterval)
		}
		c.TickInterval = tick
	}
	return nil
}

// fileConfig keeps durations as strings so "1s" style values work in YAML.
type fileConfig struct {
	ServerAddress string `yaml:"server_address"`
	QuestionFile  string `yaml:"question_file"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	DialogTitle   string `yaml:"dialog_title"`
	TickInterval  string `yaml:"tick_interval"`
}

func overrideString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func getenvDefault(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return fallback
}
