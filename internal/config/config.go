package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "NEWSLETTER_CONFIG"
	portEnv          = "PORT"
	storeEndpointEnv = "STORE_ENDPOINT"
	storeAPIKeyEnv   = "STORE_API_KEY"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	smtpHostEnv      = "SMTP_HOST"
	smtpPortEnv      = "SMTP_PORT"
	smtpUsernameEnv  = "SMTP_USERNAME"
	smtpPasswordEnv  = "SMTP_PASSWORD"
	emailFromEnv     = "EMAIL_FROM"
	logLevelEnv      = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Store     StoreConfig     `yaml:"store"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Email     EmailConfig     `yaml:"email"`
	Sources   []SourceConfig  `yaml:"sources"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig describes the HTTP API listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// SchedulerConfig defines when newsletter runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
	RunTimeout     time.Duration  `yaml:"runTimeout"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// StoreConfig describes the remote document store holding subscribers.
type StoreConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// OpenAIConfig defines how to contact the completion API.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// EmailConfig wires the SMTP transport and digest rendering settings.
type EmailConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Username            string `yaml:"username"`
	Password            string `yaml:"password"`
	From                string `yaml:"from"`
	Subject             string `yaml:"subject"`
	UnsubscribeBaseLink string `yaml:"unsubscribeBaseLink"`
}

// SourceConfig describes a single news site and its extraction selectors.
// Country is an Alpha-2 code matching subscriber groups to this source.
type SourceConfig struct {
	Type            string `yaml:"type"`
	URL             string `yaml:"url"`
	TitleSelector   string `yaml:"titleSelector"`
	LinkSelector    string `yaml:"linkSelector"`
	ContentSelector string `yaml:"contentSelector"`
	Country         string `yaml:"country"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	if v := os.Getenv(storeEndpointEnv); v != "" {
		c.Store.Endpoint = v
	}

	if v := os.Getenv(storeAPIKeyEnv); v != "" {
		c.Store.APIKey = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Email.Host = v
	}

	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.Port = port
		}
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Email.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.Password = v
	}

	if v := os.Getenv(emailFromEnv); v != "" {
		c.Email.From = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != 0 {
		base.Server.Port = override.Server.Port
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.RunOnStart {
		base.Scheduler.RunOnStart = true
	}
	if override.Scheduler.RunTimeout > 0 {
		base.Scheduler.RunTimeout = override.Scheduler.RunTimeout
	}

	if override.Store.Endpoint != "" {
		base.Store.Endpoint = override.Store.Endpoint
	}
	if override.Store.APIKey != "" {
		base.Store.APIKey = override.Store.APIKey
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.Email.Host != "" {
		base.Email.Host = override.Email.Host
	}
	if override.Email.Port != 0 {
		base.Email.Port = override.Email.Port
	}
	if override.Email.Username != "" {
		base.Email.Username = override.Email.Username
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}
	if override.Email.Subject != "" {
		base.Email.Subject = override.Email.Subject
	}
	if override.Email.UnsubscribeBaseLink != "" {
		base.Email.UnsubscribeBaseLink = override.Email.UnsubscribeBaseLink
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server:    ServerConfig{Port: 8080},
		Scheduler: SchedulerConfig{CronExpression: "0 7 * * *", Timezone: defaultTimezone, RunTimeout: 10 * time.Minute, location: tz},
		Store:     StoreConfig{Endpoint: "http://localhost:4100/v1"},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Email: EmailConfig{
			Port:                587,
			Subject:             "Your weekly local news digest",
			UnsubscribeBaseLink: "http://localhost:8080/unsubscribe",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
