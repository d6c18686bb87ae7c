package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/warp/payday-engine/calendar"
	memstore "github.com/warp/payday-engine/calendar/store"
	"github.com/warp/payday-engine/config"
	"github.com/warp/payday-engine/payroll"
	"github.com/warp/payday-engine/provider/isdayoff"
	"github.com/warp/payday-engine/store/sqlite"
	"github.com/warp/payday-engine/vacation"
)

// app holds the components every command shares. One Cache is built per
// process and handed to everything that needs working-day facts.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	location  *time.Location
	store     calendar.DayStore
	cache     *calendar.Cache
	generator *payroll.Generator
	parser    *vacation.Parser
	closers   []func() error
}

// newApp wires the application from cfg. offline skips the remote
// provider so every day resolves through the weekend heuristic.
func newApp(cfg config.Config, offline bool) (*app, error) {
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, location: loc}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	var provider calendar.Provider
	if !offline {
		client := isdayoff.New(cfg.Calendar.ProviderURL, &http.Client{Timeout: cfg.Calendar.Timeout.Duration}, logger.Named("isdayoff"))
		client.Retries = cfg.Calendar.Retries
		provider = client
	}

	a.cache = calendar.NewCache(provider,
		calendar.WithStore(store),
		calendar.WithTimeout(cfg.Calendar.Timeout.Duration),
		calendar.WithLogger(logger.Named("calendar")),
	)
	a.generator = payroll.NewGenerator(a.cache, loc, logger.Named("payroll"))
	a.parser = vacation.NewParser(loc)
	a.parser.MaxLines = cfg.Vacation.MaxLines

	return a, nil
}

func (a *app) openStore() (calendar.DayStore, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(a.cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating storage directory: %w", err)
			}
		}
		s, err := sqlite.New(a.cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening day store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		a.logger.Info("day store opened", zap.String("path", a.cfg.Storage.Path))
		return s, nil
	default:
		return memstore.NewMemory(), nil
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.logger.Sync()
}

// loadApp reads configuration from the --config flag and wires the app.
func loadApp(offline bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, offline)
}
