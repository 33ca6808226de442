/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/HamedShams/linear-pulse/internal/report"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	DBDSN string

	RedisURL        string
	MentionCacheTTL time.Duration

	LinearAPIURL    string
	LinearAPIKey    string
	LinearPageSize  int
	LinearSecretID  string
	LinearSecretKey string

	SlackToken     string
	SlackAPIURL    string
	SlackChannel   string
	SlackSecretID  string
	SlackSecretKey string
	ChunkSize      int

	HTTPTimeout time.Duration
	RunTimeout  time.Duration

	ReportConfigFile string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads configuration from the environment. A .env file in the working directory, if
// present, is loaded first and never overrides variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBDSN: getenv("DB_DSN", ""),

		RedisURL:        getenv("REDIS_URL", ""),
		MentionCacheTTL: dur("MENTION_CACHE_TTL", 24*time.Hour),

		LinearAPIURL:    getenv("LINEAR_API_URL", "https://api.linear.app/graphql"),
		LinearAPIKey:    getenv("LINEAR_API_KEY", ""),
		LinearPageSize:  atoi("LINEAR_PAGE_SIZE", 250),
		LinearSecretID:  getenv("LINEAR_SECRET_ID", "LINEAR_SLACK_BOT_TOKEN"),
		LinearSecretKey: getenv("LINEAR_SECRET_KEY", "LINEAR_API_KEY"),

		SlackToken:     getenv("SLACK_BOT_TOKEN", ""),
		SlackAPIURL:    getenv("SLACK_API_URL", ""),
		SlackChannel:   getenv("SLACK_CHANNEL", "#bot-test"),
		SlackSecretID:  getenv("SLACK_SECRET_ID", "LINEAR_SLACK_BOT_TOKEN"),
		SlackSecretKey: getenv("SLACK_SECRET_KEY", "SLACK_BOT_TOKEN"),
		ChunkSize:      atoi("SLACK_CHUNK_SIZE", 3800),

		HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
		RunTimeout:  dur("RUN_TIMEOUT", 2*time.Minute),

		ReportConfigFile: getenv("REPORT_CONFIG_FILE", ""),
	}
	if strings.TrimSpace(cfg.SlackChannel) == "" {
		cfg.SlackChannel = "#bot-test"
	}
	if _, err := time.LoadLocation(cfg.TZ); err != nil {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
		cfg.TZ = "UTC"
	}
	return cfg
}

// Location returns the report timezone; Load has already validated TZ.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReportOptions returns the renderer options, overlaying the YAML file named by
// REPORT_CONFIG_FILE on the defaults. Keys missing from the file keep their defaults.
func (c Config) ReportOptions() (report.Options, error) {
	opts := report.DefaultOptions()
	if c.ReportConfigFile == "" {
		return opts, nil
	}
	data, err := os.ReadFile(c.ReportConfigFile)
	if err != nil {
		return opts, fmt.Errorf("config: read report options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("config: parse report options %s: %w", c.ReportConfigFile, err)
	}
	return opts, nil
}
