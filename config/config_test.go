package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payday.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Calendar.Timeout.Duration)
	assert.Equal(t, "Europe/Moscow", cfg.Calendar.TimeZone)
	assert.Equal(t, []int{14, 29}, cfg.Payroll.PaymentDays)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, `
[server]
addr = ":9090"

[calendar]
timeout = "2s"
warm_months = 3

[storage]
driver = "sqlite"
path = "/tmp/payday.db"

[payroll]
payment_days = [5, 20]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Calendar.Timeout.Duration)
	assert.Equal(t, 3, cfg.Calendar.WarmMonths)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, []int{5, 20}, cfg.Payroll.PaymentDays)
	// untouched sections keep their defaults
	assert.Equal(t, 6, cfg.Payroll.DefaultCount)
}

func TestLoad_UnknownKeys(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, "[server]\nadress = \":1\"\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.adress")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeFile(t, "[server]\naddr = \":9090\"\n")
	t.Setenv("PAYDAY_ADDR", ":7070")
	t.Setenv("PAYDAY_PAYMENT_DAYS", "10, 25")
	t.Setenv("PAYDAY_CALENDAR_TIMEOUT", "750ms")
	t.Setenv("PAYDAY_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []int{10, 25}, cfg.Payroll.PaymentDays)
	assert.Equal(t, 750*time.Millisecond, cfg.Calendar.Timeout.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PAYDAY_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PAYDAY_LOG_LEVEL") })

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesNumbersAndDurations(t *testing.T) {
	// GIVEN: a file setting retries and warm months, and env values for every numeric key
	chdir(t, t.TempDir())
	path := writeFile(t, "[calendar]\nretries = 1\nwarm_months = 6\n")
	t.Setenv("PAYDAY_CALENDAR_RETRIES", "5")
	t.Setenv("PAYDAY_WARM_INTERVAL", "30m")
	t.Setenv("PAYDAY_WARM_MONTHS", " 3 ")
	t.Setenv("PAYDAY_DEFAULT_COUNT", "12")
	t.Setenv("PAYDAY_VACATION_MAX_LINES", "200")
	t.Setenv("PAYDAY_SHUTDOWN_TIMEOUT", "20s")

	// WHEN: the configuration is loaded
	cfg, err := Load(path)

	// THEN: the environment wins over the file and the defaults
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Calendar.Retries)
	assert.Equal(t, 30*time.Minute, cfg.Calendar.WarmInterval.Duration)
	assert.Equal(t, 3, cfg.Calendar.WarmMonths)
	assert.Equal(t, 12, cfg.Payroll.DefaultCount)
	assert.Equal(t, 200, cfg.Vacation.MaxLines)
	assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout.Duration)
}

func TestLoad_BadEnvValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"PAYDAY_PAYMENT_DAYS", "14,x"},
		{"PAYDAY_CALENDAR_RETRIES", "three"},
		{"PAYDAY_WARM_INTERVAL", "6"},
		{"PAYDAY_WARM_MONTHS", "1.5"},
		{"PAYDAY_DEFAULT_COUNT", ""},
		{"PAYDAY_VACATION_MAX_LINES", "lots"},
		{"PAYDAY_LOG_DEVELOPMENT", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: one unparsable override
			chdir(t, t.TempDir())
			t.Setenv(tt.name, tt.value)

			// WHEN: the configuration is loaded
			_, err := Load("")

			// THEN: the error names the variable
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero timeout", func(c *Config) { c.Calendar.Timeout = Duration{} }},
		{"negative retries", func(c *Config) { c.Calendar.Retries = -1 }},
		{"bad zone", func(c *Config) { c.Calendar.TimeZone = "Mars/Olympus" }},
		{"warm months", func(c *Config) { c.Calendar.WarmMonths = 99 }},
		{"driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"sqlite path", func(c *Config) { c.Storage.Driver = DriverSQLite; c.Storage.Path = "" }},
		{"payment day", func(c *Config) { c.Payroll.PaymentDays = []int{32} }},
		{"count", func(c *Config) { c.Payroll.DefaultCount = 0 }},
		{"max lines", func(c *Config) { c.Vacation.MaxLines = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "warn", Development: true}.NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = LogConfig{Level: "nope"}.NewLogger()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
