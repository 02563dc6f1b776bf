package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080", Environment: "development"},
		Database:  DatabaseConfig{URL: "postgres://localhost/medreminder"},
		Reminder:  ReminderConfig{PollInterval: time.Minute, AlarmWindow: 10 * time.Minute},
		Scheduler: SchedulerConfig{Enabled: true, Cron: "5 0 * * *"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medreminder")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Reminder.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Reminder.AlarmWindow)
	assert.Equal(t, "5 0 * * *", cfg.Scheduler.Cron)
	assert.Equal(t, "medication-photos", cfg.Azure.Storage.PhotoContainer)
	assert.False(t, cfg.Azure.Storage.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medreminder")
	t.Setenv("REMINDER_POLL_INTERVAL", "15s")
	t.Setenv("REMINDER_ALARM_WINDOW", "5m")
	t.Setenv("REMINDER_TIMEZONE", "Europe/Budapest")
	t.Setenv("PORT", "9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Reminder.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.AlarmWindow)

	loc, err := cfg.Reminder.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Budapest", loc.String())
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://dotenv/medreminder\n"), 0o600))
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	cfg, err := Load(envFile)

	require.NoError(t, err)
	assert.Equal(t, "postgres://dotenv/medreminder", cfg.Database.URL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: true},
		{name: "production without secret", mutate: func(c *Config) { c.Server.Environment = "production" }, wantErr: true},
		{name: "production with secret", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.Auth.JWTSecret = "s3cret"
		}},
		{name: "zero poll interval", mutate: func(c *Config) { c.Reminder.PollInterval = 0 }, wantErr: true},
		{name: "negative window", mutate: func(c *Config) { c.Reminder.AlarmWindow = -time.Minute }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *Config) { c.Reminder.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "bad cron", mutate: func(c *Config) { c.Scheduler.Cron = "every day" }, wantErr: true},
		{name: "bad cron ignored when disabled", mutate: func(c *Config) {
			c.Scheduler.Enabled = false
			c.Scheduler.Cron = "every day"
		}},
		{name: "azure openai without key", mutate: func(c *Config) { c.Azure.OpenAI.Endpoint = "https://x.openai.azure.com" }, wantErr: true},
		{name: "storage name without key", mutate: func(c *Config) { c.Azure.Storage.AccountName = "acct" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
