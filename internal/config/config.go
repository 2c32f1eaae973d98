package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Project  ProjectConfig  `yaml:"project"`
	AI       AIConfig       `yaml:"ai"`
	Discord  DiscordConfig  `yaml:"discord"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Mode        string   `yaml:"mode"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ProjectConfig holds the domain defaults shared by the task builder and reminders.
type ProjectConfig struct {
	Timezone          string `yaml:"timezone"`
	FallbackPortfolio uint   `yaml:"fallback_portfolio_id"`
	FallbackDeadline  string `yaml:"fallback_deadline"`
}

type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	APIBase  string `yaml:"api_base"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "release", CORSOrigins: []string{"http://localhost:3000"}},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "ai_society_dashboard_db",
			SSLMode:  "disable",
		},
		Auth: AuthConfig{JWTSecret: "supersecretkey", ExpiryHours: 24 * 8},
		Log:  LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Project: ProjectConfig{
			Timezone:          "Australia/Sydney",
			FallbackPortfolio: 100,
			FallbackDeadline:  "2025-12-31",
		},
		AI:      AIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", TimeoutSeconds: 120},
		Discord: DiscordConfig{APIBase: "https://discord.com/api/v10"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file and finally the process environment, in that order of precedence.
func Load(configFile string) (*Config, error) {
	c := defaults()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}

	envOverride(&c.Server.Port, "SERVER_PORT")
	envOverride(&c.Server.Mode, "GIN_MODE")
	envOverrideList(&c.Server.CORSOrigins, "BACKEND_CORS_ORIGINS")

	envOverride(&c.Database.URL, "DATABASE_URL")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.Port, "DB_PORT")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASSWORD")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Database.SSLMode, "DB_SSLMODE")

	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverrideInt(&c.Auth.ExpiryHours, "JWT_EXPIRY_HOURS")

	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")

	envOverride(&c.Project.Timezone, "PROJECT_TIMEZONE")
	envOverrideUint(&c.Project.FallbackPortfolio, "FALLBACK_PORTFOLIO_ID")
	envOverride(&c.Project.FallbackDeadline, "FALLBACK_DEADLINE")

	envOverride(&c.AI.BaseURL, "AI_BASE_URL")
	envOverride(&c.AI.APIKey, "AI_API_KEY")
	envOverride(&c.AI.Model, "AI_MODEL")
	envOverrideInt(&c.AI.TimeoutSeconds, "AI_TIMEOUT_SECONDS")

	envOverride(&c.Discord.BotToken, "DISCORD_BOT_TOKEN")
	envOverride(&c.Discord.APIBase, "DISCORD_API_BASE")

	return c, nil
}

// DSN returns the postgres connection string. DATABASE_URL wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func envOverride(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideUint(dst *uint, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = uint(n)
		}
	}
}

func envOverrideList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
