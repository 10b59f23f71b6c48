// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig `json:"server"`
	Chroma ChromaConfig `json:"chroma"`
	Memory MemoryConfig `json:"memory"`
}

// ServerConfig represents the HTTP facade configuration.
type ServerConfig struct {
	Addr         string `json:"addr"`
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`
}

// ChromaConfig addresses the vector backend: a base URL (or host/port pair)
// plus the tenant/database/collection namespace.
type ChromaConfig struct {
	URL              string `json:"url"`
	Host             string `json:"host"`
	Port             int    `json:"port"`
	Tenant           string `json:"tenant"`
	Database         string `json:"database"`
	Collection       string `json:"collection"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	StartupWaitSecs  int    `json:"startup_wait_seconds"`
	HeartbeatSeconds int    `json:"heartbeat_interval_seconds"`
}

// BaseURL returns the explicit URL when set, else one built from host/port.
func (c *ChromaConfig) BaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// MemoryConfig controls the durable journal and write-time defaults.
type MemoryConfig struct {
	Dir             string `json:"dir"`
	DefaultUserID   string `json:"default_user_id"`
	DefaultTeamID   string `json:"default_team_id"`
	DefaultProject  string `json:"default_project"`
	DisableJSON     bool   `json:"disable_json"`
	PrivateJSONOnly bool   `json:"private_json_only"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":9080",
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Chroma: ChromaConfig{
			Host:             "localhost",
			Port:             8000,
			Tenant:           "default_tenant",
			Database:         "default_database",
			Collection:       "conversation_memory",
			TimeoutSeconds:   5,
			StartupWaitSecs:  60,
			HeartbeatSeconds: 1,
		},
		Memory: MemoryConfig{
			Dir: defaultMemoryDir(),
		},
	}
}

func defaultMemoryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mcp-recall"
	}
	return filepath.Join(home, ".mcp-recall", "memory")
}

// LoadConfig loads configuration from environment variables and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := DefaultConfig()
	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func loadFromEnv(config *Config) {
	loadServerConfig(config)
	loadChromaConfig(config)
	loadMemoryConfig(config)
}

func loadServerConfig(config *Config) {
	if addr := os.Getenv("MCP_RECALL_HTTP_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
	setEnvInt(&config.Server.ReadTimeout, "MCP_RECALL_READ_TIMEOUT_SECONDS")
	setEnvInt(&config.Server.WriteTimeout, "MCP_RECALL_WRITE_TIMEOUT_SECONDS")
}

func loadChromaConfig(config *Config) {
	if u := os.Getenv("MCP_RECALL_CHROMA_URL"); u != "" {
		config.Chroma.URL = u
	}
	if host := os.Getenv("MCP_RECALL_CHROMA_HOST"); host != "" {
		config.Chroma.Host = host
	}
	setEnvInt(&config.Chroma.Port, "MCP_RECALL_CHROMA_PORT")
	if tenant := os.Getenv("MCP_RECALL_CHROMA_TENANT"); tenant != "" {
		config.Chroma.Tenant = tenant
	}
	if db := os.Getenv("MCP_RECALL_CHROMA_DATABASE"); db != "" {
		config.Chroma.Database = db
	}
	if coll := os.Getenv("MCP_RECALL_CHROMA_COLLECTION"); coll != "" {
		config.Chroma.Collection = coll
	}
	setEnvInt(&config.Chroma.TimeoutSeconds, "MCP_RECALL_CHROMA_TIMEOUT_SECONDS")
	setEnvInt(&config.Chroma.StartupWaitSecs, "MCP_RECALL_CHROMA_STARTUP_WAIT_SECONDS")
}

func loadMemoryConfig(config *Config) {
	if dir := os.Getenv("MCP_RECALL_MEMORY_DIR"); dir != "" {
		config.Memory.Dir = dir
	}
	if user := os.Getenv("MCP_RECALL_USER_ID"); user != "" {
		config.Memory.DefaultUserID = user
	}
	if team := os.Getenv("MCP_RECALL_TEAM_ID"); team != "" {
		config.Memory.DefaultTeamID = team
	}
	if project := os.Getenv("MCP_RECALL_DEFAULT_PROJECT"); project != "" {
		config.Memory.DefaultProject = project
	}
	setEnvBool(&config.Memory.DisableJSON, "MCP_RECALL_DISABLE_JSON")
	setEnvBool(&config.Memory.PrivateJSONOnly, "MCP_RECALL_PRIVATE_JSON_ONLY")
}

func setEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setEnvBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Chroma.URL != "" {
		if _, err := url.Parse(c.Chroma.URL); err != nil {
			return fmt.Errorf("invalid chroma URL: %w", err)
		}
	} else if c.Chroma.Port <= 0 || c.Chroma.Port > 65535 {
		return fmt.Errorf("invalid chroma port: %d", c.Chroma.Port)
	}
	if c.Chroma.Tenant == "" || c.Chroma.Database == "" || c.Chroma.Collection == "" {
		return errors.New("chroma tenant, database, and collection must be set")
	}
	if c.Memory.Dir == "" {
		return errors.New("memory dir must be set")
	}
	if c.Chroma.TimeoutSeconds <= 0 {
		return errors.New("chroma timeout must be positive")
	}
	return nil
}
