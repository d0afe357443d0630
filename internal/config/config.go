package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Jira     JiraConfig     `yaml:"jira"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JiraConfig struct {
	BaseURL string `yaml:"base_url"` // e.g. https://jira.example.com
	Token   string `yaml:"token"`    // personal access token (Bearer)
	// Default RTM project id used when a request does not name one.
	ProjectID int `yaml:"project_id"`
	// Outbound request throttle; the server will not answer faster anyway.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the yaml config, falling back to defaults when the file does not
// exist, then applies environment overrides. The JIRA token normally arrives
// via RTM_JIRA_TOKEN (or a .env file) rather than the yaml file.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8765",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "rtm_local.db",
		},
		Jira: JiraConfig{
			ProjectID:         41500,
			RequestsPerSecond: 10,
			TimeoutSeconds:    30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if v := os.Getenv("RTM_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("RTM_SERVER_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("RTM_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("RTM_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("RTM_JIRA_URL"); v != "" {
		c.Jira.BaseURL = v
	}
	if v := os.Getenv("RTM_JIRA_TOKEN"); v != "" {
		c.Jira.Token = v
	}
	if v := os.Getenv("RTM_JIRA_PROJECT_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Jira.ProjectID = id
		}
	}
	if v := os.Getenv("RTM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
