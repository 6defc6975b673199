// Copyright 2026 SAR Project
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads service configuration from an optional YAML file
// with environment variable overrides (12-Factor App methodology).
// Environment always wins over the file; the file wins over defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration for the health agent service.
type Config struct {
	Port      string `yaml:"port"`
	MissionID string `yaml:"mission_id"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Database struct {
		// URL takes precedence when set. Otherwise a DSN is assembled
		// from the separate fields (password URL-encoded).
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Name     string `yaml:"name"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Interactions struct {
		BaseURL         string `yaml:"base_url"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"interactions"`

	LLM struct {
		OpenAIKey     string `yaml:"openai_key"`
		OpenAIModel   string `yaml:"openai_model"`
		GeminiKey     string `yaml:"gemini_key"`
		GeminiModel   string `yaml:"gemini_model"`
		BedrockRegion string `yaml:"bedrock_region"`
		BedrockModel  string `yaml:"bedrock_model"`
	} `yaml:"llm"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
}

// Load builds the configuration. When path is empty the CONFIG_FILE
// environment variable is consulted; a missing file is not an error
// unless it was explicitly requested.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Port = "8080"
	cfg.MissionID = "default"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Database.Port = "5432"
	cfg.Database.Name = "sar"
	cfg.Database.User = "sar_app"
	cfg.Database.SSLMode = "require"
	cfg.Redis.Addr = ""
	cfg.Interactions.BaseURL = "https://www.drugs.com"
	cfg.Interactions.CacheTTLSeconds = 3600
	return cfg
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.MissionID, "MISSION_ID")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Host, "DATABASE_HOST")
	setString(&c.Database.Port, "DATABASE_PORT")
	setString(&c.Database.Name, "DATABASE_NAME")
	setString(&c.Database.User, "DATABASE_USER")
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Database.SSLMode, "DATABASE_SSLMODE")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setString(&c.Interactions.BaseURL, "INTERACTIONS_BASE_URL")
	setInt(&c.Interactions.CacheTTLSeconds, "INTERACTIONS_CACHE_TTL")

	setString(&c.LLM.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&c.LLM.GeminiKey, "GOOGLE_API_KEY")
	setString(&c.LLM.GeminiModel, "GEMINI_MODEL")
	setString(&c.LLM.BedrockRegion, "BEDROCK_REGION")
	setString(&c.LLM.BedrockModel, "BEDROCK_MODEL")

	setString(&c.Auth.JWTSecret, "AUTH_JWT_SECRET")
}

// DatabaseDSN returns the PostgreSQL connection string, or "" when no
// database is configured and the in-memory profile store should be used.
func (c *Config) DatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
