package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/payday-engine/api"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("no-warm", false, "disable the background calendar warmer")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API with graceful shutdown. On SIGINT/SIGTERM the server
stops accepting connections, waits for active requests up to
server.shutdown_timeout, stops the calendar warmer and closes the day store.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}
	noWarm, _ := cmd.Flags().GetBool("no-warm")

	handler := api.NewHandler(a.cache, a.generator, a.parser, a.logger.Named("api"))
	handler.PaymentDays = a.cfg.Payroll.PaymentDays
	handler.DefaultCount = a.cfg.Payroll.DefaultCount

	warmer := api.NewCalendarWarmer(a.cache, a.location, a.logger.Named("warmer"))
	warmer.Interval = a.cfg.Calendar.WarmInterval.Duration
	warmer.Months = a.cfg.Calendar.WarmMonths
	warmer.Enabled = !noWarm
	warmer.Start()
	defer warmer.Stop()

	handler.Warmer = warmer
	if counter, ok := a.store.(api.DayCounter); ok {
		handler.Stats = counter
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, a.cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
