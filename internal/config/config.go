package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Reminder      ReminderConfig
	Scheduler     SchedulerConfig
	Notifications NotificationsConfig
	OpenAI        PublicOpenAIConfig
	Azure         AzureConfig
	Logging       LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// ReminderConfig holds the reminder poller settings
type ReminderConfig struct {
	PollInterval time.Duration
	AlarmWindow  time.Duration
	Timezone     string
}

// Location resolves the configured timezone used for local-day bounds
func (r ReminderConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

// SchedulerConfig holds the dose materialisation job settings
type SchedulerConfig struct {
	Enabled bool
	Cron    string
}

// NotificationsConfig selects the notification backend
type NotificationsConfig struct {
	Desktop bool
}

// PublicOpenAIConfig holds api.openai.com configuration
type PublicOpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AzureConfig holds Azure service configuration
type AzureConfig struct {
	OpenAI  OpenAIConfig
	Storage StorageConfig
}

// OpenAIConfig holds Azure OpenAI configuration
type OpenAIConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// StorageConfig holds Azure Blob Storage configuration
type StorageConfig struct {
	AccountName     string
	AccountKey      string
	BlobEndpoint    string
	PhotoContainer  string
	ReportContainer string
}

// Enabled reports whether blob storage credentials are present
func (s StorageConfig) Enabled() bool {
	return s.AccountName != "" && s.AccountKey != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from .env files, environment variables and defaults.
// Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.corsorigins", []string{"*"})

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	// Reminder defaults
	v.SetDefault("reminder.pollinterval", 60*time.Second)
	v.SetDefault("reminder.alarmwindow", 10*time.Minute)
	v.SetDefault("reminder.timezone", "")

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cron", "5 0 * * *")

	v.SetDefault("notifications.desktop", false)

	v.SetDefault("openai.model", "gpt-4o-mini")

	// Azure Storage defaults
	v.SetDefault("azure.storage.photocontainer", "medication-photos")
	v.SetDefault("azure.storage.reportcontainer", "adherence-reports")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.corsorigins", "CORS_ORIGINS")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Auth
	v.BindEnv("auth.jwtsecret", "AUTH_JWT_SECRET")
	v.BindEnv("auth.issuer", "AUTH_ISSUER")

	// Reminder
	v.BindEnv("reminder.pollinterval", "REMINDER_POLL_INTERVAL")
	v.BindEnv("reminder.alarmwindow", "REMINDER_ALARM_WINDOW")
	v.BindEnv("reminder.timezone", "REMINDER_TIMEZONE")

	// Scheduler
	v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	v.BindEnv("scheduler.cron", "SCHEDULER_CRON")

	v.BindEnv("notifications.desktop", "NOTIFICATIONS_DESKTOP")

	// OpenAI
	v.BindEnv("openai.apikey", "OPENAI_API_KEY")
	v.BindEnv("openai.model", "OPENAI_MODEL")
	v.BindEnv("openai.baseurl", "OPENAI_BASE_URL")

	// Azure OpenAI
	v.BindEnv("azure.openai.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("azure.openai.apikey", "AZURE_OPENAI_API_KEY")
	v.BindEnv("azure.openai.deployment", "AZURE_OPENAI_DEPLOYMENT")

	// Azure Storage
	v.BindEnv("azure.storage.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("azure.storage.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("azure.storage.blobendpoint", "AZURE_STORAGE_BLOB_ENDPOINT")
	v.BindEnv("azure.storage.photocontainer", "AZURE_STORAGE_PHOTO_CONTAINER")
	v.BindEnv("azure.storage.reportcontainer", "AZURE_STORAGE_REPORT_CONTAINER")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtsecret is required in production")
	}

	if c.Reminder.PollInterval <= 0 {
		return fmt.Errorf("reminder.pollinterval must be positive")
	}

	if c.Reminder.AlarmWindow <= 0 {
		return fmt.Errorf("reminder.alarmwindow must be positive")
	}

	if _, err := c.Reminder.Location(); err != nil {
		return err
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Cron); err != nil {
			return fmt.Errorf("scheduler.cron is invalid: %w", err)
		}
	}

	azureAI := c.Azure.OpenAI
	if azureAI.Endpoint != "" && (azureAI.APIKey == "" || azureAI.Deployment == "") {
		return fmt.Errorf("azure.openai.apikey and azure.openai.deployment are required when azure.openai.endpoint is set")
	}

	storage := c.Azure.Storage
	if (storage.AccountName == "") != (storage.AccountKey == "") {
		return fmt.Errorf("azure storage requires both account name and account key")
	}

	return nil
}
