/*
Package config loads payday settings.

SOURCES (later wins):
  1. Default()
  2. TOML file passed with --config
  3. .env in the working directory (loaded into the environment if present)
  4. PAYDAY_* environment variables

ENVIRONMENT:
  PAYDAY_ADDR, PAYDAY_CORS_ORIGINS, PAYDAY_SHUTDOWN_TIMEOUT
  PAYDAY_PROVIDER_URL, PAYDAY_CALENDAR_TIMEOUT, PAYDAY_CALENDAR_RETRIES,
  PAYDAY_TIME_ZONE, PAYDAY_WARM_INTERVAL, PAYDAY_WARM_MONTHS
  PAYDAY_STORAGE_DRIVER, PAYDAY_STORAGE_PATH
  PAYDAY_PAYMENT_DAYS, PAYDAY_DEFAULT_COUNT, PAYDAY_VACATION_MAX_LINES
  PAYDAY_LOG_LEVEL, PAYDAY_LOG_DEVELOPMENT

EXAMPLE:
  [server]
  addr = ":8080"
  cors_origins = ["http://localhost:3000"]

  [calendar]
  provider_url = "https://isdayoff.ru"
  timeout = "5s"
  time_zone = "Europe/Moscow"
  warm_interval = "6h"
  warm_months = 12

  [storage]
  driver = "sqlite"
  path = "./data/payday.db"
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/warp/payday-engine/payroll"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAYDAY_"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Calendar CalendarConfig `toml:"calendar"`
	Storage  StorageConfig  `toml:"storage"`
	Payroll  PayrollConfig  `toml:"payroll"`
	Vacation VacationConfig `toml:"vacation"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr            string   `toml:"addr"`
	CORSOrigins     []string `toml:"cors_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type CalendarConfig struct {
	ProviderURL  string   `toml:"provider_url"`
	Timeout      Duration `toml:"timeout"`
	Retries      int      `toml:"retries"`
	TimeZone     string   `toml:"time_zone"`
	WarmInterval Duration `toml:"warm_interval"`
	WarmMonths   int      `toml:"warm_months"`
}

type StorageConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type PayrollConfig struct {
	PaymentDays  []int `toml:"payment_days"`
	DefaultCount int   `toml:"default_count"`
}

type VacationConfig struct {
	MaxLines int `toml:"max_lines"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Duration is a time.Duration read from strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Calendar: CalendarConfig{
			ProviderURL:  "https://isdayoff.ru",
			Timeout:      Duration{5 * time.Second},
			Retries:      3,
			TimeZone:     "Europe/Moscow",
			WarmInterval: Duration{6 * time.Hour},
			WarmMonths:   12,
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
			Path:   "./data/payday.db",
		},
		Payroll: PayrollConfig{
			PaymentDays:  []int{14, 29},
			DefaultCount: 6,
		},
		Vacation: VacationConfig{MaxLines: 1000},
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional TOML file, .env
// and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ADDR", &c.Server.Addr)
	str("PROVIDER_URL", &c.Calendar.ProviderURL)
	str("TIME_ZONE", &c.Calendar.TimeZone)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_PATH", &c.Storage.Path)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = Duration{d}
		}
	}
	dur("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	dur("CALENDAR_TIMEOUT", &c.Calendar.Timeout)
	num("CALENDAR_RETRIES", &c.Calendar.Retries)
	dur("WARM_INTERVAL", &c.Calendar.WarmInterval)
	num("WARM_MONTHS", &c.Calendar.WarmMonths)
	num("DEFAULT_COUNT", &c.Payroll.DefaultCount)
	num("VACATION_MAX_LINES", &c.Vacation.MaxLines)

	if v, ok := lookup(EnvPrefix + "PAYMENT_DAYS"); ok {
		days, err := parseInts(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAYMENT_DAYS: %w", EnvPrefix, err))
		} else {
			c.Payroll.PaymentDays = days
		}
	}
	if v, ok := lookup(EnvPrefix + "LOG_DEVELOPMENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLOG_DEVELOPMENT: %w", EnvPrefix, err))
		} else {
			c.Log.Development = b
		}
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Calendar.Timeout.Duration <= 0 {
		return errors.New("calendar.timeout must be positive")
	}
	if c.Calendar.Retries < 0 {
		return errors.New("calendar.retries must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("calendar.time_zone: %w", err)
	}
	if c.Calendar.WarmMonths < 0 || c.Calendar.WarmMonths > 24 {
		return errors.New("calendar.warm_months must be within 0..24")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of %s, %s", c.Storage.Driver, DriverMemory, DriverSQLite)
	}
	if _, err := payroll.NewPaymentDays(c.Payroll.PaymentDays); err != nil {
		return fmt.Errorf("payroll.payment_days: %w", err)
	}
	if c.Payroll.DefaultCount < 1 || c.Payroll.DefaultCount > payroll.MaxCount {
		return fmt.Errorf("payroll.default_count must be within 1..%d", payroll.MaxCount)
	}
	if c.Vacation.MaxLines < 1 {
		return errors.New("vacation.max_lines must be positive")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Location loads the configured time zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Calendar.TimeZone)
}
