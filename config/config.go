package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Webhooks
	Webhook WebhookConfig

	// Remediation pipeline
	Remediation RemediationConfig
	Git         GitConfig

	// Collaborators
	GitHub   GitHubConfig
	Telegram TelegramConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type WebhookConfig struct {
	Secret          string
	AllowedIPs      []string
	RateLimitPerMin int
	DedupeTTL       time.Duration
}

type RemediationConfig struct {
	RepoPath   string
	Manifest   string
	Timeout    time.Duration
	RulesPath  string // empty means the built-in rule table
	WatchRules bool
}

type GitConfig struct {
	Remote       string
	Branch       string
	AuthorName   string
	AuthorEmail  string
	PushAttempts int
}

type GitHubConfig struct {
	Token  string
	APIURL string
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Load loads configuration using Viper.
// A .env file, when present, is loaded into the process environment first.
// Config file name: config.yaml, searched in ./config, ., /etc/autoremedy/
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/autoremedy/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = v.GetString("environment.name")
	cfg.HTTPServer.Port = v.GetInt("http_server.port")
	cfg.HTTPServer.Mode = v.GetString("http_server.mode")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	// Webhooks
	cfg.Webhook.Secret = expandEnvVar(v, v.GetString("webhook.secret"))
	cfg.Webhook.RateLimitPerMin = v.GetInt("webhook.rate_limit_per_min")
	cfg.Webhook.DedupeTTL = v.GetDuration("webhook.dedupe_ttl")
	cfg.Webhook.AllowedIPs = stringList(v, "webhook.allowed_ips")

	// Remediation
	cfg.Remediation.RepoPath = v.GetString("remediation.repo_path")
	cfg.Remediation.Manifest = v.GetString("remediation.manifest")
	cfg.Remediation.Timeout = v.GetDuration("remediation.timeout")
	cfg.Remediation.RulesPath = v.GetString("remediation.rules_path")
	cfg.Remediation.WatchRules = v.GetBool("remediation.watch_rules")

	cfg.Git.Remote = v.GetString("git.remote")
	cfg.Git.Branch = v.GetString("git.branch")
	cfg.Git.AuthorName = v.GetString("git.author_name")
	cfg.Git.AuthorEmail = v.GetString("git.author_email")
	cfg.Git.PushAttempts = v.GetInt("git.push_attempts")

	// Collaborators
	cfg.GitHub.Token = expandEnvVar(v, v.GetString("github.token"))
	cfg.GitHub.APIURL = v.GetString("github.api_url")
	cfg.Telegram.BotToken = expandEnvVar(v, v.GetString("telegram.bot_token"))
	cfg.Telegram.ChatID = v.GetInt64("telegram.chat_id")

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment.name", "development")
	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.mode", "debug")
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.mode", "debug")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", true)

	v.SetDefault("webhook.rate_limit_per_min", 60)
	v.SetDefault("webhook.dedupe_ttl", "1h")

	v.SetDefault("remediation.repo_path", ".")
	v.SetDefault("remediation.manifest", "Gemfile")
	v.SetDefault("remediation.timeout", "30s")
	v.SetDefault("remediation.watch_rules", false)

	v.SetDefault("git.remote", "origin")
	v.SetDefault("git.branch", "main")
	v.SetDefault("git.author_name", "autoremedy")
	v.SetDefault("git.author_email", "autoremedy@localhost")
	v.SetDefault("git.push_attempts", 2)

	v.SetDefault("github.api_url", "https://api.github.com")
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Webhook.Secret == "" {
		return errors.New("webhook.secret (WEBHOOK_SECRET) is required")
	}
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("http_server.port %d is out of range", c.HTTPServer.Port)
	}
	if c.Remediation.RepoPath == "" {
		return errors.New("remediation.repo_path is required")
	}
	if c.Remediation.Manifest == "" {
		return errors.New("remediation.manifest is required")
	}
	if c.Remediation.Timeout <= 0 {
		return fmt.Errorf("remediation.timeout must be positive, got %s", c.Remediation.Timeout)
	}
	if c.Git.PushAttempts < 1 || c.Git.PushAttempts > 2 {
		return fmt.Errorf("git.push_attempts must be 1 or 2, got %d", c.Git.PushAttempts)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// stringList reads a YAML list or a comma separated env value.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case []interface{}, []string:
		raw = v.GetStringSlice(key)
	case string:
		raw = strings.Split(val, ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// expandEnvVar expands values in the format ${VAR_NAME}
func expandEnvVar(v *viper.Viper, value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	envVar := value[2 : len(value)-1]
	if envValue := v.GetString(strings.ToLower(envVar)); envValue != "" {
		return envValue
	}
	return os.Getenv(envVar)
}
